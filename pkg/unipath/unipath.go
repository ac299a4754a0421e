// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package unipath normalizes requested upload paths before lookup.
//
// # Usage
//
// Browsers and editors may send the same file name percent-encoded or in a
// decomposed Unicode form (macOS uploads store "é" as "e" + combining acute).
// WordPress stores names as they were uploaded, so requests are decoded and
// composed to NFC before they are matched.
package unipath

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean converts a requested path into the form used for lookups.
//
// # Transformation Pipeline
//
// 1. Drops any query string or fragment.
// 2. Decodes percent-escapes (invalid escapes keep the raw text).
// 3. Composes to NFC.
// 4. Cleans "." and duplicate separators and trims the leading slash.
//
// Paths that climb above the root ("..") come back unchanged in that part,
// so callers must still validate the result.
func Clean(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	p = norm.NFC.String(p)
	if p == "" {
		return ""
	}

	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// IsNFC reports whether p is already composed.
func IsNFC(p string) bool {
	return norm.NFC.IsNormalString(p)
}
