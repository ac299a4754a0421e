// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package geometry_test

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/taibuivan/mediagate/internal/core/geometry"
)

/*
TestResizeDimensions covers the WordPress reference cases for the default sizes.
*/
func TestResizeDimensions(t *testing.T) {
	tests := []struct {
		name         string
		origW, origH int
		destW, destH int
		crop         geometry.Crop
		want         geometry.Dimensions
	}{
		{
			name: "thumbnail_center_crop", origW: 1200, origH: 800, destW: 150, destH: 150,
			crop: geometry.CenterCrop,
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 150, Height: 150},
				Source:      geometry.Rect{X: 200, Y: 0, Width: 800, Height: 800},
			},
		},
		{
			name: "medium_fit", origW: 1200, origH: 800, destW: 300, destH: 300,
			crop: geometry.NoCrop,
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 300, Height: 200},
				Source:      geometry.Rect{Width: 1200, Height: 800},
			},
		},
		{
			name: "medium_large_unbounded_height", origW: 1200, origH: 800, destW: 768, destH: 0,
			crop: geometry.NoCrop,
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 768, Height: 512},
				Source:      geometry.Rect{Width: 1200, Height: 800},
			},
		},
		{
			name: "large_rounds_half_up", origW: 1200, origH: 800, destW: 1024, destH: 1024,
			crop: geometry.NoCrop,
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 1024, Height: 683},
				Source:      geometry.Rect{Width: 1200, Height: 800},
			},
		},
		{
			name: "crop_left_top", origW: 1200, origH: 800, destW: 150, destH: 150,
			crop: geometry.CropAt(geometry.AnchorLeft, geometry.AnchorTop),
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 150, Height: 150},
				Source:      geometry.Rect{X: 0, Y: 0, Width: 800, Height: 800},
			},
		},
		{
			name: "crop_right_bottom", origW: 1200, origH: 800, destW: 150, destH: 150,
			crop: geometry.CropAt(geometry.AnchorRight, geometry.AnchorBottom),
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 150, Height: 150},
				Source:      geometry.Rect{X: 400, Y: 0, Width: 800, Height: 800},
			},
		},
		{
			name: "crop_wider_than_original", origW: 1200, origH: 800, destW: 1500, destH: 500,
			crop: geometry.CenterCrop,
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 1200, Height: 500},
				Source:      geometry.Rect{X: 0, Y: 150, Width: 1200, Height: 500},
			},
		},
		{
			name: "crop_odd_margin_floors", origW: 301, origH: 100, destW: 100, destH: 100,
			crop: geometry.CenterCrop,
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 100, Height: 100},
				Source:      geometry.Rect{X: 100, Y: 0, Width: 100, Height: 100},
			},
		},
		{
			name: "same_size_is_allowed", origW: 1200, origH: 800, destW: 1200, destH: 800,
			crop: geometry.NoCrop,
			want: geometry.Dimensions{
				Destination: geometry.Rect{Width: 1200, Height: 800},
				Source:      geometry.Rect{Width: 1200, Height: 800},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := geometry.ResizeDimensions(tt.origW, tt.origH, tt.destW, tt.destH, tt.crop)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestResizeDimensions_Refused verifies the cases where WordPress returns false.
*/
func TestResizeDimensions_Refused(t *testing.T) {
	tests := []struct {
		name                       string
		origW, origH, destW, destH int
		crop                       geometry.Crop
	}{
		{"upscale_fit", 1200, 800, 2000, 2000, geometry.NoCrop},
		{"upscale_crop", 100, 100, 200, 300, geometry.CenterCrop},
		{"zero_original", 0, 800, 100, 100, geometry.NoCrop},
		{"negative_original", 1200, -1, 100, 100, geometry.CenterCrop},
		{"no_destination", 1200, 800, 0, 0, geometry.NoCrop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := geometry.ResizeDimensions(tt.origW, tt.origH, tt.destW, tt.destH, tt.crop)
			assert.False(t, ok)
		})
	}
}

/*
TestConstrainDimensions checks the fit algorithm including the one-pixel bump.
*/
func TestConstrainDimensions(t *testing.T) {
	tests := []struct {
		name                   string
		curW, curH, maxW, maxH int
		want                   geometry.Size
	}{
		{"no_limits", 640, 480, 0, 0, geometry.Size{Width: 640, Height: 480}},
		{"already_fits", 640, 480, 1000, 1000, geometry.Size{Width: 640, Height: 480}},
		{"width_bound", 1000, 500, 200, 0, geometry.Size{Width: 200, Height: 100}},
		{"height_bound", 500, 1000, 0, 200, geometry.Size{Width: 100, Height: 200}},
		{"bump_height_to_box", 400, 297, 200, 150, geometry.Size{Width: 200, Height: 150}},
		{"minimum_one_pixel", 10000, 10, 100, 0, geometry.Size{Width: 100, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geometry.ConstrainDimensions(tt.curW, tt.curH, tt.maxW, tt.maxH))
		})
	}
}

/*
TestResizeDimensions_FitProperty walks a grid of sizes and checks that fitted
results stay inside the original and keep its aspect ratio.
*/
func TestResizeDimensions_FitProperty(t *testing.T) {
	for origW := 97; origW <= 2400; origW += 211 {
		for origH := 89; origH <= 2400; origH += 197 {
			for _, dest := range [][2]int{{150, 150}, {300, 300}, {768, 0}, {0, 400}, {1024, 1024}} {
				destW, destH := dest[0], dest[1]
				if destW > origW || destH > origH {
					continue
				}

				got, ok := geometry.ResizeDimensions(origW, origH, destW, destH, geometry.NoCrop)
				name := fmt.Sprintf("%dx%d->%dx%d", origW, origH, destW, destH)
				if !ok {
					continue
				}

				dst := got.Destination
				assert.LessOrEqual(t, dst.Width, origW, name)
				assert.LessOrEqual(t, dst.Height, origH, name)
				assert.Equal(t, geometry.Full(geometry.Size{Width: origW, Height: origH}), got.Source, name)

				// Compare against the longer side so one pixel of rounding on the
				// short side stays within tolerance (plus the bump-to-box pixel).
				if origW >= origH {
					expected := float64(dst.Width) * float64(origH) / float64(origW)
					assert.LessOrEqual(t, math.Abs(float64(dst.Height)-expected), 1.5, name)
				} else {
					expected := float64(dst.Height) * float64(origW) / float64(origH)
					assert.LessOrEqual(t, math.Abs(float64(dst.Width)-expected), 1.5, name)
				}
			}
		}
	}
}

/*
TestResizeDimensions_CropProperty checks that crops produce the requested size and
a source region with the requested aspect ratio.
*/
func TestResizeDimensions_CropProperty(t *testing.T) {
	for origW := 160; origW <= 2400; origW += 173 {
		for origH := 160; origH <= 2400; origH += 181 {
			for _, dest := range [][2]int{{150, 150}, {300, 120}, {120, 300}, {160, 90}} {
				destW, destH := dest[0], dest[1]
				if destW > origW || destH > origH {
					continue
				}
				name := fmt.Sprintf("%dx%d->%dx%d", origW, origH, destW, destH)

				got, ok := geometry.ResizeDimensions(origW, origH, destW, destH, geometry.CenterCrop)
				require.True(t, ok, name)

				assert.Equal(t, destW, got.Destination.Width, name)
				assert.Equal(t, destH, got.Destination.Height, name)

				src := got.Source
				assert.GreaterOrEqual(t, src.X, 0, name)
				assert.GreaterOrEqual(t, src.Y, 0, name)
				assert.LessOrEqual(t, src.X+src.Width, origW, name)
				assert.LessOrEqual(t, src.Y+src.Height, origH, name)

				skew := math.Abs(float64(src.Width*destH - src.Height*destW))
				assert.LessOrEqual(t, skew, float64(destW+destH)/2, name)
			}
		}
	}
}

/*
TestRound verifies PHP-compatible rounding.
*/
func TestRound(t *testing.T) {
	assert.Equal(t, 3, geometry.Round(2.5))
	assert.Equal(t, -3, geometry.Round(-2.5))
	assert.Equal(t, 2, geometry.Round(2.4999))
	assert.Equal(t, 683, geometry.Round(682.6667))
}

/*
TestCrop_Decoding checks the boolean and anchor-list forms in YAML and JSON.
*/
func TestCrop_Decoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want geometry.Crop
	}{
		{"false", "false", geometry.NoCrop},
		{"true", "true", geometry.CenterCrop},
		{"anchors", `["left", "top"]`, geometry.CropAt(geometry.AnchorLeft, geometry.AnchorTop)},
		{"malformed_anchors", `["left"]`, geometry.CenterCrop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromJSON geometry.Crop
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &fromJSON))
			assert.Equal(t, tt.want, fromJSON)

			var fromYAML geometry.Crop
			require.NoError(t, yaml.Unmarshal([]byte(tt.raw), &fromYAML))
			assert.Equal(t, tt.want, fromYAML)
		})
	}

	encoded, err := json.Marshal(geometry.CropAt(geometry.AnchorRight, geometry.AnchorBottom))
	require.NoError(t, err)
	assert.JSONEq(t, `["right","bottom"]`, string(encoded))
}
