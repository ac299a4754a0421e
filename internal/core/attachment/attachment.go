// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package attachment adapts the WordPress media library to the translator.

It answers two questions:

  - Which attachment owns an original upload? ([Repository])
  - What width, height and crop does a size name stand for? ([SizeResolver])

Records are read-only here; WordPress owns them.
*/
package attachment

import (
	"path"
	"sort"

	"github.com/taibuivan/mediagate/internal/core/geometry"
)

// # Domain Types

// Record is an attachment and its generated size variants, as stored in the
// WordPress attachment metadata.
type Record struct {
	ID       int64              `json:"id"`
	File     string             `json:"file"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	MimeType string             `json:"mime_type,omitempty"`
	Sizes    map[string]Variant `json:"sizes"`
}

// Variant is one generated size of an attachment. File is a base name in the
// directory of the original.
type Variant struct {
	File     string `json:"file"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime-type,omitempty"`
}

// Size returns the declared size of the original.
func (r *Record) Size() geometry.Size {
	return geometry.Size{Width: r.Width, Height: r.Height}
}

// VariantByFile returns the size name whose file is the base name of p.
//
// Size names are visited in sorted order so that duplicate file names (two
// sizes that resolve to the same dimensions) resolve deterministically.
func (r *Record) VariantByFile(p string) (string, Variant, bool) {
	base := path.Base(p)

	names := make([]string, 0, len(r.Sizes))
	for name := range r.Sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if variant := r.Sizes[name]; variant.File == base {
			return name, variant, true
		}
	}
	return "", Variant{}, false
}

// # Size Geometry

// SizeSpec is the declared geometry of a size name. A zero Width or Height
// means unconstrained in that direction.
type SizeSpec struct {
	Width  int           `json:"width"  yaml:"width"`
	Height int           `json:"height" yaml:"height"`
	Crop   geometry.Crop `json:"crop"   yaml:"crop"`
}

// IsEmpty reports whether the size constrains neither dimension.
func (s SizeSpec) IsEmpty() bool {
	return s.Width <= 0 && s.Height <= 0
}
