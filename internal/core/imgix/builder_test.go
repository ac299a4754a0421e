// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package imgix_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/core/imgix"
	"github.com/taibuivan/mediagate/internal/platform/config"
)

func testConfig() config.ImgixConfig {
	return config.ImgixConfig{
		Domain:                "demo.imgix.net",
		HTTPS:                 true,
		RemoteQuality:         75,
		AggressiveCompression: true,
		FormatNegotiation:     true,
	}
}

func parse(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed
}

func TestDefaultParams(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ImgixConfig
		want imgix.Params
	}{
		{
			name: "compress_format",
			cfg:  testConfig(),
			want: imgix.Params{"fit": "scale", "q": "75", "auto": "compress,format"},
		},
		{
			name: "all_flags",
			cfg: config.ImgixConfig{
				RemoteQuality: 60, AutomaticEnhancement: true, AggressiveCompression: true, FormatNegotiation: true,
			},
			want: imgix.Params{"fit": "scale", "q": "60", "auto": "enhance,compress,format"},
		},
		{
			name: "no_auto",
			cfg:  config.ImgixConfig{RemoteQuality: 90},
			want: imgix.Params{"fit": "scale", "q": "90"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, imgix.DefaultParams(tc.cfg))
		})
	}
}

func TestBuilder_URL(t *testing.T) {
	builder := imgix.NewBuilder(testConfig())

	params := imgix.Params{}.
		Dimensions(300, 200).
		Rect(geometry.Rect{X: 0, Y: 100, Width: 1200, Height: 800})
	got := parse(t, builder.URL("/2020/05/photo.jpg", params))

	assert.Equal(t, "https", got.Scheme)
	assert.Equal(t, "demo.imgix.net", got.Host)
	assert.Equal(t, "/2020/05/photo.jpg", got.Path)

	query := got.Query()
	assert.Equal(t, "300", query.Get("w"))
	assert.Equal(t, "200", query.Get("h"))
	assert.Equal(t, "0,100,1200,800", query.Get("rect"))
	assert.Equal(t, "scale", query.Get("fit"))
	assert.Equal(t, "75", query.Get("q"))
	assert.Equal(t, "compress,format", query.Get("auto"))
	assert.False(t, query.Has("ixlib"))
	assert.False(t, query.Has("s"))
}

func TestBuilder_URL_Overrides(t *testing.T) {
	builder := imgix.NewBuilder(testConfig())

	query := parse(t, builder.URL("photo.jpg", imgix.Params{"q": "40", "auto": ""})).Query()
	assert.Equal(t, "40", query.Get("q"))
	assert.False(t, query.Has("auto"))

	// Defaults are not mutated by overrides.
	assert.Equal(t, "75", builder.Defaults()["q"])
}

func TestBuilder_URL_Signed(t *testing.T) {
	cfg := testConfig()
	cfg.Token = "s3cr3t"
	cfg.HTTPS = false
	builder := imgix.NewBuilder(cfg)

	first := parse(t, builder.URL("photo.jpg", imgix.Params{"w": "100"}))
	second := parse(t, builder.URL("photo.jpg", imgix.Params{"w": "100"}))

	assert.Equal(t, "http", first.Scheme)
	require.True(t, first.Query().Has("s"))
	assert.Len(t, first.Query().Get("s"), 32)
	assert.Equal(t, first.String(), second.String())
}

func TestBuilder_Prefetch(t *testing.T) {
	builder := imgix.NewBuilder(testConfig())

	assert.Equal(t, "demo.imgix.net", builder.Domain())
	assert.Equal(t, "<link rel='dns-prefetch' href='//demo.imgix.net' />", builder.PrefetchTag())
	assert.Equal(t, "<//demo.imgix.net>; rel=dns-prefetch", builder.PrefetchLink())
}

func TestBuilder_RawURL(t *testing.T) {
	builder := imgix.NewBuilder(testConfig())

	query := parse(t, builder.RawURL("photo.jpg", imgix.Params{"or": "90", "flip": "", "q": "90"})).Query()
	assert.Equal(t, "90", query.Get("or"))
	assert.Equal(t, "90", query.Get("q"))
	assert.False(t, query.Has("flip"))
	assert.False(t, query.Has("fit"), "defaults are not merged")
	assert.False(t, query.Has("auto"))
}
