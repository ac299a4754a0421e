// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor_test

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediagate/internal/core/editor"
	"github.com/taibuivan/mediagate/internal/core/geometry"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	size, mimeType, err := editor.Probe(bytes.NewReader(encodePNG(t, 64, 48)))
	require.NoError(t, err)

	assert.Equal(t, geometry.Size{Width: 64, Height: 48}, size)
	assert.Equal(t, "image/png", mimeType)
}

func TestProbe_GIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 7, 9), color.Palette{color.Black, color.White}), nil))

	size, mimeType, err := editor.Probe(&buf)
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{Width: 7, Height: 9}, size)
	assert.Equal(t, "image/gif", mimeType)
}

func TestProbe_NotAnImage(t *testing.T) {
	_, _, err := editor.Probe(strings.NewReader("definitely not pixels"))
	assert.Error(t, err)
}

func TestMatcher_Supports(t *testing.T) {
	matcher := editor.NewMatcher("/wp-content/uploads/")

	tests := []struct {
		path string
		want bool
	}{
		{"wp-content/uploads/2020/05/photo.jpg", true},
		{"wp-content/uploads/photo.PNG", true},
		{"wp-content/uploads/2020/05/scan.tiff", true},
		{"wp-content/uploads/2020/05/photo.svg", false},
		{"wp-content/uploads/2020/05/photo.jp2", false},
		{"wp-content/uploads/2020/05/photo.jxr", false},
		{"wp-content/uploads/2020/photo.jpg", false},
		{"wp-content/uploads/a/b/c/photo.jpg", false},
		{"wp-content/themes/photo.jpg", false},
		{"uploads/2020/05/photo.jpg", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, matcher.Supports(tc.path))
		})
	}
}

func TestMimeTypes(t *testing.T) {
	assert.Equal(t, "image/jpeg", editor.MimeTypeOf("a/b/photo.JPG"))
	assert.Equal(t, "image/webp", editor.MimeTypeOf("photo.webp"))
	assert.Equal(t, "", editor.MimeTypeOf("notes.txt"))
	assert.Equal(t, "image/jp2", editor.MimeTypeOf("photo.jp2"), "still a save target")

	assert.True(t, editor.SupportsMimeType("image/png32"))
	assert.False(t, editor.SupportsMimeType("image/svg+xml"))
	assert.False(t, editor.SupportsMimeType("image/jp2"))
}
