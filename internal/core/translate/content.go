// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translate

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/taibuivan/mediagate/internal/platform/ctxutil"
)

// # Content Rewriting

// ContentRewriter replaces upload URLs inside HTML with Imgix URLs.
type ContentRewriter struct {
	service *Service
	siteURL string
	pattern *regexp.Regexp
}

// NewContentRewriter matches absolute URLs below siteURL/uploadsDir, with an
// optional yyyy/mm folder and a supported raster extension.
func NewContentRewriter(service *Service, siteURL, uploadsDir string) *ContentRewriter {
	siteURL = strings.TrimRight(siteURL, "/")
	uploadsDir = strings.Trim(uploadsDir, "/")

	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(siteURL) + `/(` + regexp.QuoteMeta(uploadsDir) +
		`/(?:\d{4}/\d{2}/)?[^ '"]+?(?:-\d+x\d+)?\.(?:jpg|jpeg|gif|png))`)

	return &ContentRewriter{service: service, siteURL: siteURL, pattern: pattern}
}

// Rewrite translates every upload URL in content and reports how many were
// replaced. Untranslated URLs are left as they were.
func (rewriter *ContentRewriter) Rewrite(ctx context.Context, content string) (string, int) {
	logger := ctxutil.LoggerOr(ctx, rewriter.service.logger)
	start := time.Now()
	replaced := 0

	out := rewriter.pattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := rewriter.pattern.FindStringSubmatch(match)
		result := rewriter.service.Translate(ctx, sub[1])
		if !result.Translated {
			return match
		}
		replaced++
		return html.EscapeString(result.Value)
	})

	logger.InfoContext(ctx, "content_rewritten",
		slog.Int("replaced", replaced),
		slog.Float64("elapsed_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return out, replaced
}

// TranslateURL translates one absolute URL on the site. URLs elsewhere come
// back unchanged.
func (rewriter *ContentRewriter) TranslateURL(ctx context.Context, absolute string) Result {
	relative, ok := strings.CutPrefix(absolute, rewriter.siteURL+"/")
	if !ok {
		return Result{Value: absolute}
	}

	result := rewriter.service.Translate(ctx, relative)
	if !result.Translated {
		return Result{Value: absolute}
	}
	return result
}

// headPattern finds the opening head tag of a document.
var headPattern = regexp.MustCompile(`(?i)<head(?:\s[^>]*)?>`)

// RewriteDocument rewrites a whole page and adds prefetchTag right after the
// opening head tag, unless the page has no head or already carries the tag.
func (rewriter *ContentRewriter) RewriteDocument(ctx context.Context, document, prefetchTag string) (string, int) {
	out, replaced := rewriter.Rewrite(ctx, document)
	if prefetchTag == "" || strings.Contains(out, prefetchTag) {
		return out, replaced
	}

	loc := headPattern.FindStringIndex(out)
	if loc == nil {
		return out, replaced
	}
	return out[:loc[1]] + "\n" + prefetchTag + out[loc[1]:], replaced
}

// # Srcset

// SrcsetSource is one candidate of a srcset attribute, shaped like the
// sources WordPress computes.
type SrcsetSource struct {
	URL        string `json:"url"`
	Descriptor string `json:"descriptor"`
	Value      int    `json:"value"`
}

// Srcset translates the URL of every source.
func (rewriter *ContentRewriter) Srcset(ctx context.Context, sources []SrcsetSource) []SrcsetSource {
	out := make([]SrcsetSource, len(sources))
	for i, source := range sources {
		source.URL = rewriter.TranslateURL(ctx, source.URL).Value
		out[i] = source
	}
	return out
}
