// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package geometry reproduces the WordPress resize/crop bounding-box algorithm.

Given the pixel size of an original image and a requested size, it computes the
region of the original to read (the source rectangle) and the size to scale that
region to (the destination rectangle). The result must be identical to what
WordPress computes when it generates thumbnails, because the generated file names
(`photo-300x200.jpg`) are derived from these numbers.

Numeric rules:

  - Ratios are computed in float64.
  - Sizes are rounded half away from zero (PHP's round()).
  - Centered crop offsets are floored, as WordPress does.
*/
package geometry

import (
	"errors"
	"math"
)

// ErrNoDimensions reports that no resize is possible (upscale or degenerate input).
var ErrNoDimensions = errors.New("geometry: could not calculate resized image dimensions")

// # Value Types

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is an axis-aligned region in pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size returns the width/height of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Full returns the rectangle covering an entire image of the given size.
func Full(s Size) Rect {
	return Rect{Width: s.Width, Height: s.Height}
}

// Dimensions is the result of [ResizeDimensions].
//
// Destination always starts at the origin; it is kept as a rectangle to mirror
// the eight-value tuple WordPress returns.
type Dimensions struct {
	Destination Rect `json:"destination"`
	Source      Rect `json:"source"`
}

// # Resize

// ResizeDimensions computes source and destination rectangles for resizing an
// origW×origH image to destW×destH.
//
// A zero destW or destH means "unconstrained" in that direction. The second
// return value is false when WordPress would refuse the resize: non-positive
// original size, both destination sides zero, or a result that would be the
// same size or larger than the original.
func ResizeDimensions(origW, origH, destW, destH int, crop Crop) (Dimensions, bool) {
	if origW <= 0 || origH <= 0 {
		return Dimensions{}, false
	}
	if destW <= 0 && destH <= 0 {
		return Dimensions{}, false
	}

	var newW, newH, cropW, cropH, srcX, srcY int

	if crop.Enabled {
		// 1. Destination is the requested box, capped by the original.
		aspectRatio := float64(origW) / float64(origH)
		newW = min(destW, origW)
		newH = min(destH, origH)

		if newW <= 0 {
			newW = Round(float64(newH) * aspectRatio)
		}
		if newH <= 0 {
			newH = Round(float64(newW) / aspectRatio)
		}

		// 2. Largest region of the original with the destination aspect ratio.
		sizeRatio := math.Max(float64(newW)/float64(origW), float64(newH)/float64(origH))
		cropW = Round(float64(newW) / sizeRatio)
		cropH = Round(float64(newH) / sizeRatio)

		// 3. Anchor the region.
		srcX = crop.X.offset(origW, cropW)
		srcY = crop.Y.offset(origH, cropH)
	} else {
		cropW, cropH = origW, origH
		fitted := ConstrainDimensions(origW, origH, destW, destH)
		newW, newH = fitted.Width, fitted.Height
	}

	// WordPress does not upscale.
	if newW >= origW && newH >= origH && destW != origW && destH != origH {
		return Dimensions{}, false
	}

	return Dimensions{
		Destination: Rect{Width: newW, Height: newH},
		Source:      Rect{X: srcX, Y: srcY, Width: cropW, Height: cropH},
	}, true
}

// ConstrainDimensions scales curW×curH down to fit inside maxW×maxH while
// keeping the aspect ratio. A zero max means unconstrained.
func ConstrainDimensions(curW, curH, maxW, maxH int) Size {
	if maxW <= 0 && maxH <= 0 {
		return Size{Width: curW, Height: curH}
	}

	widthRatio, heightRatio := 1.0, 1.0
	didWidth, didHeight := false, false

	if maxW > 0 && curW > 0 && curW > maxW {
		widthRatio = float64(maxW) / float64(curW)
		didWidth = true
	}
	if maxH > 0 && curH > 0 && curH > maxH {
		heightRatio = float64(maxH) / float64(curH)
		didHeight = true
	}

	smallerRatio := math.Min(widthRatio, heightRatio)
	largerRatio := math.Max(widthRatio, heightRatio)

	// The larger ratio is the snug fit unless it overflows the box.
	ratio := largerRatio
	if (maxW > 0 && Round(float64(curW)*largerRatio) > maxW) ||
		(maxH > 0 && Round(float64(curH)*largerRatio) > maxH) {
		ratio = smallerRatio
	}

	w := max(1, Round(float64(curW)*ratio))
	h := max(1, Round(float64(curH)*ratio))

	// Bump results that are one pixel shy of the box, so constraining an already
	// constrained size is stable.
	if didWidth && w == maxW-1 {
		w = maxW
	}
	if didHeight && h == maxH-1 {
		h = maxH
	}

	return Size{Width: w, Height: h}
}

// Round rounds half away from zero and converts to int.
func Round(v float64) int {
	return int(math.Round(v))
}
