// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package translate maps local upload URLs to Imgix URLs.

Given a path relative to the WordPress root, the [Service] finds the original
upload, the attachment that owns it and the size the path was generated for,
recomputes the WordPress crop, and emits an Imgix URL that produces the same
pixels.

# Fallback Policy

Every step can fail: the original is missing, the attachment is unknown or
ambiguous, the size is not declared, or WordPress would refuse the resize.
Failures are never returned as errors; they are logged and folded into one of
two outcomes:

  - Strict: the requested path comes back unchanged.
  - Lenient: a sized request still gets an Imgix URL for the original, resized
    to the width and height in its file name without a crop rectangle.
    Requests for the original itself come back unchanged.
*/
package translate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/mediagate/internal/core/attachment"
	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/core/imagepath"
	"github.com/taibuivan/mediagate/internal/core/imgix"
	"github.com/taibuivan/mediagate/internal/platform/ctxutil"
	"github.com/taibuivan/mediagate/internal/platform/logging"
)

// # Collaborators

// Files reports whether an original upload can be read.
type Files interface {
	Readable(relativePath string) bool
}

// Sizes resolves a size name to its declared geometry.
type Sizes interface {
	Resolve(name string) (attachment.SizeSpec, bool)
}

// URLBuilder creates Imgix URLs.
type URLBuilder interface {
	URL(path string, params imgix.Params) string
}

// TransformRectangleOverride may adjust the rectangles computed for a size
// before they become URL parameters.
type TransformRectangleOverride func(record *attachment.Record, sizeName string, dims geometry.Dimensions) geometry.Dimensions

// Result is the outcome of one translation.
type Result struct {
	// Value is the Imgix URL, or the requested path when not translated.
	Value string `json:"value"`
	// Translated reports whether Value is an Imgix URL.
	Translated bool `json:"translated"`
}

// # Service

type Service struct {
	repo   attachment.Repository
	files  Files
	sizes  Sizes
	urls   URLBuilder
	parser *imagepath.Parser

	uploadsPrefix string
	strict        bool
	rectOverride  TransformRectangleOverride

	logger *slog.Logger
}

// Options are the settings the translator reads from configuration.
type Options struct {
	// UploadsDir is the uploads directory relative to the WordPress root.
	UploadsDir string
	// Strict selects the strict fallback policy.
	Strict bool
}

// Option customizes a [Service].
type Option func(*Service)

// WithRectangleOverride installs a [TransformRectangleOverride].
func WithRectangleOverride(override TransformRectangleOverride) Option {
	return func(service *Service) {
		service.rectOverride = override
	}
}

// NewService wires the translator.
func NewService(repo attachment.Repository, files Files, sizes Sizes, urls URLBuilder, opts Options, logger *slog.Logger, options ...Option) *Service {
	service := &Service{
		repo:          repo,
		files:         files,
		sizes:         sizes,
		urls:          urls,
		parser:        imagepath.NewParser(imagepath.RasterExtensions...),
		uploadsPrefix: strings.Trim(opts.UploadsDir, "/") + "/",
		strict:        opts.Strict,
		logger:        logger,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// Strict reports the active fallback policy.
func (service *Service) Strict() bool {
	return service.strict
}

/*
Translate maps a requested path to an Imgix URL.

Description: requested is relative to the WordPress root, e.g.
"wp-content/uploads/2017/08/example-300x200.jpg". A leading slash is ignored.
Absolute URLs and unsupported extensions are returned unchanged without
logging anything above trace.

Parameters:
  - ctx: context.Context (carries the request logger)
  - requested: string

Returns:
  - Result: never an error; see the package fallback policy
*/
func (service *Service) Translate(ctx context.Context, requested string) Result {
	logger := ctxutil.LoggerOr(ctx, service.logger)
	unchanged := Result{Value: requested}

	if isRemote(requested) {
		logging.Trace(ctx, logger, "remote_url_skipped", slog.String("path", requested))
		return unchanged
	}

	// 1. Parse the requested path
	req, ok := service.parser.Parse(strings.TrimLeft(requested, "/"))
	if !ok {
		logging.Trace(ctx, logger, "unsupported_extension", slog.String("path", requested))
		return unchanged
	}

	// 2. Derive the original, relative to the uploads directory
	relative := strings.TrimPrefix(req.Original, service.uploadsPrefix)

	logger.InfoContext(ctx, "translate_requested", slog.String("path", req.Path))
	logging.Trace(ctx, logger, "original_derived",
		slog.String("original", req.Original),
		slog.String("relative", relative),
	)

	attempt := &attempt{service: service, ctx: ctx, logger: logger, requested: requested, req: req, relative: relative}

	// 3. The original must exist locally
	if !service.files.Readable(req.Original) {
		return attempt.fallback("original_unreadable", slog.String("original", req.Original))
	}

	// 4. Exactly one attachment must own it
	ids, err := service.repo.FindIDs(ctx, relative)
	if err != nil {
		return attempt.fallback("attachment_lookup_failed", slog.Any("error", err))
	}
	switch {
	case len(ids) == 0:
		return attempt.fallback("attachment_not_found")
	case len(ids) > 1:
		return attempt.fallback("attachment_ambiguous", slog.Int("matches", len(ids)))
	}

	record, err := service.repo.FindByID(ctx, ids[0])
	if err != nil {
		return attempt.fallback("attachment_lookup_failed", slog.Int64("attachment_id", ids[0]), slog.Any("error", err))
	}
	logger.DebugContext(ctx, "attachment_found", slog.Int64("attachment_id", record.ID))

	// 5. The original itself needs no geometry
	if req.IsOriginal() {
		logger.DebugContext(ctx, "original_requested")
		return attempt.translated(nil)
	}

	// 6. Which size generated the requested file?
	logging.Trace(ctx, logger, "size_lookup", slog.String("file", req.Path))
	sizeName, _, ok := record.VariantByFile(req.Path)
	if !ok {
		return attempt.fallback("size_not_declared")
	}

	// 7. What geometry does that size stand for?
	spec, ok := service.sizes.Resolve(sizeName)
	if !ok {
		return attempt.fallback("size_not_registered", slog.String("size", sizeName))
	}

	// 8. Recompute the WordPress crop
	dims, ok := geometry.ResizeDimensions(record.Width, record.Height, spec.Width, spec.Height, spec.Crop)
	if !ok {
		return attempt.fallback("geometry_refused",
			slog.String("size", sizeName),
			slog.Int("original_width", record.Width),
			slog.Int("original_height", record.Height),
		)
	}
	if service.rectOverride != nil {
		dims = service.rectOverride(record, sizeName, dims)
	}

	// 9. Emit the URL
	return attempt.translated(imgix.Params{}.
		Dimensions(dims.Destination.Width, dims.Destination.Height).
		Rect(dims.Source))
}

// # Attempt

// attempt carries the state of one translation to its outcome helpers.
type attempt struct {
	service   *Service
	ctx       context.Context
	logger    *slog.Logger
	requested string
	req       imagepath.Requested
	relative  string
}

func (a *attempt) translated(params imgix.Params) Result {
	url := a.service.urls.URL(a.relative, params)
	a.logger.DebugContext(a.ctx, "translated", slog.String("path", a.req.Path), slog.String("url", url))
	return Result{Value: url, Translated: true}
}

// fallback applies the fallback policy after a failed step.
func (a *attempt) fallback(reason string, attrs ...any) Result {
	attrs = append([]any{slog.String("path", a.req.Path), slog.Bool("strict", a.service.strict)}, attrs...)

	if a.service.strict || !a.req.Sized {
		a.logger.ErrorContext(a.ctx, reason, attrs...)
		return Result{Value: a.requested}
	}

	a.logger.WarnContext(a.ctx, reason, attrs...)
	return a.translated(imgix.Params{}.Dimensions(a.req.Width, a.req.Height))
}

// isRemote reports whether p is an absolute or protocol-relative URL.
func isRemote(p string) bool {
	return strings.Contains(p, "://") || strings.HasPrefix(p, "//")
}
