// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package attachment

import (
	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/platform/config"
)

// Built-in WordPress size names.
const (
	SizeThumbnail   = "thumbnail"
	SizeMedium      = "medium"
	SizeMediumLarge = "medium_large"
	SizeLarge       = "large"
)

// BuiltinSizes maps the four built-in size names to their configured
// geometry. Only the thumbnail may crop.
func BuiltinSizes(cfg config.SizesConfig) StaticRegistry {
	thumbnailCrop := geometry.NoCrop
	if cfg.ThumbnailCrop {
		thumbnailCrop = geometry.CenterCrop
	}

	return StaticRegistry{
		SizeThumbnail:   {Width: cfg.ThumbnailWidth, Height: cfg.ThumbnailHeight, Crop: thumbnailCrop},
		SizeMedium:      {Width: cfg.MediumWidth, Height: cfg.MediumHeight},
		SizeMediumLarge: {Width: cfg.MediumLargeWidth, Height: cfg.MediumLargeHeight},
		SizeLarge:       {Width: cfg.LargeWidth, Height: cfg.LargeHeight},
	}
}

// SizeResolutionOverride may replace the resolved geometry of a size name.
// It receives the default result and returns the one to use.
type SizeResolutionOverride func(name string, spec SizeSpec, found bool) (SizeSpec, bool)

// # Size Resolver

// SizeResolver turns a size name into its width, height and crop.
//
// Custom sizes take precedence over built-in ones, so a theme can redefine
// "medium" without touching the media settings.
type SizeResolver struct {
	custom   Registry
	builtin  Registry
	override SizeResolutionOverride
}

// ResolverOption configures a [SizeResolver].
type ResolverOption func(*SizeResolver)

// WithOverride installs a [SizeResolutionOverride].
func WithOverride(override SizeResolutionOverride) ResolverOption {
	return func(resolver *SizeResolver) {
		resolver.override = override
	}
}

// NewSizeResolver builds a resolver. custom may be nil.
func NewSizeResolver(custom Registry, builtin Registry, opts ...ResolverOption) *SizeResolver {
	if custom == nil {
		custom = StaticRegistry{}
	}
	if builtin == nil {
		builtin = StaticRegistry{}
	}

	resolver := &SizeResolver{custom: custom, builtin: builtin}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Resolve returns the geometry of name, or false when no registry knows it
// or it constrains neither dimension.
func (resolver *SizeResolver) Resolve(name string) (SizeSpec, bool) {
	spec, found := resolver.custom.Lookup(name)
	if !found {
		spec, found = resolver.builtin.Lookup(name)
	}

	if resolver.override != nil {
		spec, found = resolver.override(name, spec, found)
	}

	if !found || spec.IsEmpty() {
		return SizeSpec{}, false
	}
	return spec, true
}
