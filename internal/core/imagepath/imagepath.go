// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package imagepath parses and builds WordPress media file names.

WordPress names generated thumbnails `<basename>-<width>x<height>.<ext>`. A
requested path either carries such a suffix (a generated size) or refers to the
original upload directly.

Usage:

	req, ok := imagepath.Parse("2020/05/photo-300x200.jpg")
	// req.Original == "2020/05/photo.jpg", req.Width == 300, req.Height == 200
*/
package imagepath

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// sizeSuffix matches the `-WxH` thumbnail suffix at the end of a file stem.
var sizeSuffix = regexp.MustCompile(`-(\d+)x(\d+)$`)

// RasterExtensions are the extensions WordPress generates thumbnails for.
var RasterExtensions = []string{"jpg", "jpeg", "gif", "png"}

// # Requested Image

// Requested is a parsed request for an original or a generated size.
type Requested struct {
	// Path is the requested path, unchanged.
	Path string
	// Original is the path of the original upload.
	Original string
	// Width and Height are the suffix dimensions; meaningful only when Sized.
	Width  int
	Height int
	// Sized reports whether the path carried a `-WxH` suffix.
	Sized bool
}

// IsOriginal reports whether the original itself was requested.
func (r Requested) IsOriginal() bool {
	return !r.Sized
}

// # Parser

// Parser recognizes requested image paths with a whitelist of extensions.
type Parser struct {
	extensions map[string]struct{}
}

// NewParser creates a parser accepting the given extensions (case-insensitive,
// without the leading dot).
func NewParser(extensions ...string) *Parser {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Parser{extensions: set}
}

var defaultParser = NewParser(RasterExtensions...)

// Parse parses a path with the default raster extension whitelist.
func Parse(p string) (Requested, bool) {
	return defaultParser.Parse(p)
}

// Supports reports whether the path's extension is on the whitelist.
func (parser *Parser) Supports(p string) bool {
	_, ok := parser.extensions[Extension(p)]
	return ok
}

// Parse splits a requested path into original path and suffix dimensions.
//
// The second return value is false when the extension is not supported; this is
// a filtering decision, not an error.
func (parser *Parser) Parse(p string) (Requested, bool) {
	if !parser.Supports(p) {
		return Requested{}, false
	}

	ext := path.Ext(p)
	stem := strings.TrimSuffix(p, ext)

	match := sizeSuffix.FindStringSubmatchIndex(stem)
	if match == nil {
		return Requested{Path: p, Original: p}, true
	}

	width, errW := strconv.Atoi(stem[match[2]:match[3]])
	height, errH := strconv.Atoi(stem[match[4]:match[5]])
	if errW != nil || errH != nil {
		// Digits that overflow int cannot name a real size.
		return Requested{Path: p, Original: p}, true
	}

	// A bare "-300x200.jpg" file name has no stem left to be an original.
	base := stem[:match[0]]
	if base == "" || strings.HasSuffix(base, "/") {
		return Requested{Path: p, Original: p}, true
	}

	return Requested{
		Path:     p,
		Original: base + ext,
		Width:    width,
		Height:   height,
		Sized:    true,
	}, true
}

// # Builders

// Extension returns the lower-case extension of p without the dot.
func Extension(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// Sized builds the generated file path for the original at width×height.
//
//	imagepath.Sized("2020/05/photo.jpg", 300, 200) // "2020/05/photo-300x200.jpg"
func Sized(original string, width, height int) string {
	ext := path.Ext(original)
	return fmt.Sprintf("%s-%dx%d%s", strings.TrimSuffix(original, ext), width, height, ext)
}

// WithExtension replaces the extension of p.
func WithExtension(p, ext string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + "." + strings.TrimPrefix(ext, ".")
}
