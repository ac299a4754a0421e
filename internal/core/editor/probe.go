// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor

import (
	"fmt"
	"image"
	"io"
	"regexp"
	"slices"
	"strings"

	// Decoders for the formats whose headers we read.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/core/imagepath"
)

// Extensions lists the file suffixes the editor opens. JPEG XR and JPEG 2000
// are absent: their headers cannot be probed, though Imgix can still produce
// them on save.
var Extensions = []string{"jpg", "jpeg", "png", "gif", "webp", "tif", "tiff", "bmp"}

// MimeTypes lists the MIME types the editor opens.
var MimeTypes = []string{
	"image/jpeg", "image/pjpg",
	"image/png", "image/png8", "image/png32",
	"image/gif", "image/webp", "image/tiff", "image/bmp",
}

var extensionMime = map[string]string{
	"jpg": "image/jpeg", "jpeg": "image/jpeg",
	"jxr": "image/jxr", "jp2": "image/jp2",
	"png": "image/png", "gif": "image/gif", "webp": "image/webp",
	"tif": "image/tiff", "tiff": "image/tiff", "bmp": "image/bmp",
}

// outputFormats maps output MIME types to the Imgix "fm" value.
var outputFormats = map[string]string{
	"image/jpeg": "jpg", "image/pjpg": "pjpg",
	"image/png": "png", "image/png8": "png8", "image/png32": "png32",
	"image/gif": "gif", "image/webp": "webp",
	"image/jp2": "jp2", "image/jxr": "jxr",
}

// Matcher decides which paths the editor may open: a file directly in the
// uploads directory or in a yyyy/mm folder below it, with a supported suffix.
type Matcher struct {
	pattern *regexp.Regexp
}

// NewMatcher builds a matcher for uploadsDir, relative to the WordPress root.
func NewMatcher(uploadsDir string) *Matcher {
	return &Matcher{pattern: regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(strings.Trim(uploadsDir, "/")) +
		`/(?:\d{4}/\d{2}/)?[^/]+\.(?:` + strings.Join(Extensions, "|") + `)$`)}
}

// Supports reports whether the editor can open p.
func (matcher *Matcher) Supports(p string) bool {
	return matcher.pattern.MatchString(p)
}

// SupportsMimeType reports whether mimeType is an accepted input type.
func SupportsMimeType(mimeType string) bool {
	return slices.Contains(MimeTypes, mimeType)
}

// MimeTypeOf returns the MIME type implied by p's extension, or "".
func MimeTypeOf(p string) string {
	return extensionMime[imagepath.Extension(p)]
}

// Probe reads the image header and returns its size and MIME type.
func Probe(reader io.Reader) (geometry.Size, string, error) {
	config, format, err := image.DecodeConfig(reader)
	if err != nil {
		return geometry.Size{}, "", fmt.Errorf("editor: read image size: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return geometry.Size{}, "", fmt.Errorf("editor: image has no pixels")
	}
	return geometry.Size{Width: config.Width, Height: config.Height}, "image/" + format, nil
}
