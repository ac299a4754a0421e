// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package imgix builds signed Imgix URLs for uploads.

Every URL carries the process-wide defaults (fit mode, quality and the
"auto" flags) unless the caller overrides them:

	builder := imgix.NewBuilder(cfg.Imgix)
	builder.URL("2020/05/photo.jpg", imgix.Params{"w": "300", "h": "200"})
*/
package imgix

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	imgixgo "github.com/imgix/imgix-go/v2"

	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/platform/config"
)

// Parameter names used across the service.
const (
	ParamWidth       = "w"
	ParamHeight      = "h"
	ParamRect        = "rect"
	ParamFit         = "fit"
	ParamAuto        = "auto"
	ParamQuality     = "q"
	ParamOrientation = "or"
	ParamRotation    = "rot"
	ParamFlip        = "flip"
)

// FitScale stretches the rectangle to exactly w×h, which is what a
// precomputed WordPress crop needs.
const FitScale = "scale"

// Params is a set of Imgix query parameters.
type Params map[string]string

// Dimensions sets w and h.
func (p Params) Dimensions(width, height int) Params {
	p[ParamWidth] = strconv.Itoa(width)
	p[ParamHeight] = strconv.Itoa(height)
	return p
}

// Rect sets the source rectangle as "x,y,w,h".
func (p Params) Rect(rect geometry.Rect) Params {
	p[ParamRect] = FormatRect(rect)
	return p
}

// FormatRect renders rect the way the rect parameter expects it.
func FormatRect(rect geometry.Rect) string {
	return fmt.Sprintf("%d,%d,%d,%d", rect.X, rect.Y, rect.Width, rect.Height)
}

// # Builder

// Builder creates URLs on one Imgix source.
type Builder struct {
	domain   string
	create   func(path string, params ...imgixgo.IxParam) string
	defaults Params
}

// NewBuilder configures a builder from the Imgix settings.
func NewBuilder(cfg config.ImgixConfig) *Builder {
	urls := imgixgo.NewURLBuilder(
		cfg.Domain,
		imgixgo.WithToken(cfg.Token),
		imgixgo.WithHTTPS(cfg.HTTPS),
		imgixgo.WithLibParam(false),
	)

	return &Builder{
		domain:   cfg.Domain,
		create:   urls.CreateURL,
		defaults: DefaultParams(cfg),
	}
}

// DefaultParams returns the parameters merged into every URL.
func DefaultParams(cfg config.ImgixConfig) Params {
	params := Params{
		ParamFit:     FitScale,
		ParamQuality: strconv.Itoa(cfg.RemoteQuality),
	}

	var auto []string
	if cfg.AutomaticEnhancement {
		auto = append(auto, "enhance")
	}
	if cfg.AggressiveCompression {
		auto = append(auto, "compress")
	}
	if cfg.FormatNegotiation {
		auto = append(auto, "format")
	}
	if len(auto) > 0 {
		params[ParamAuto] = strings.Join(auto, ",")
	}

	return params
}

// Domain returns the Imgix source host.
func (builder *Builder) Domain() string {
	return builder.domain
}

// Defaults returns a copy of the default parameters.
func (builder *Builder) Defaults() Params {
	return maps.Clone(builder.defaults)
}

// URL returns the signed URL of path with params layered over the defaults.
// An empty value removes a default.
func (builder *Builder) URL(path string, params Params) string {
	merged := builder.Defaults()
	for key, value := range params {
		if value == "" {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}

	return builder.RawURL(path, merged)
}

// RawURL returns the signed URL of path with exactly params. Empty values are
// skipped.
func (builder *Builder) RawURL(path string, params Params) string {
	ixParams := make([]imgixgo.IxParam, 0, len(params))
	for key, value := range params {
		if value != "" {
			ixParams = append(ixParams, imgixgo.Param(key, value))
		}
	}

	return builder.create(strings.TrimLeft(path, "/"), ixParams...)
}

// # DNS Prefetch

// PrefetchTag returns the HTML hint that lets browsers resolve the source
// host early.
func (builder *Builder) PrefetchTag() string {
	return fmt.Sprintf("<link rel='dns-prefetch' href='//%s' />", builder.domain)
}

// PrefetchLink is [Builder.PrefetchTag] as an HTTP Link header value.
func (builder *Builder) PrefetchLink() string {
	return fmt.Sprintf("<//%s>; rel=dns-prefetch", builder.domain)
}
