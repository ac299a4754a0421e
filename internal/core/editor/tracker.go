// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor

import (
	"errors"
	"math"
	"strconv"

	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/core/imgix"
)

// ErrCropOutOfBounds is returned for crop regions that leave the current output.
var ErrCropOutOfBounds = errors.New("editor: crop region exceeds the image")

// # Transform State

// RectF is a source rectangle before rounding. Repeated resizes scale it by
// fractional factors.
type RectF struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Round converts the rectangle to whole pixels.
func (r RectF) Round() geometry.Rect {
	return geometry.Rect{
		X:      geometry.Round(r.X),
		Y:      geometry.Round(r.Y),
		Width:  geometry.Round(r.Width),
		Height: geometry.Round(r.Height),
	}
}

func rectF(r geometry.Rect) RectF {
	return RectF{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// State is everything the editor has been asked to do to an image, without
// having done any of it.
//
// Rect and Canvas are expressed in the current canvas frame: after a quarter
// turn the canvas is the original with width and height swapped, and Rect has
// been rotated along with it.
type State struct {
	// Orientation is the counter-clockwise canvas rotation: 0, 90, 180 or 270.
	Orientation int `json:"orientation"`
	// Rotation is the residual rotation on the canvas, signed in [-45, 45)
	// rather than [0, 90), since Orientation snaps to the nearest quarter turn.
	Rotation float64 `json:"rotation"`
	// Rect is the source region inside Canvas.
	Rect RectF `json:"rect"`
	// Size is the output size.
	Size geometry.Size `json:"size"`
	// Canvas is the size of the rotated original.
	Canvas geometry.Size `json:"canvas"`
	// Flipped mirrors top and bottom; Flopped mirrors left and right.
	Flipped bool `json:"flip"`
	Flopped bool `json:"flop"`
}

// NewState is the state of an untouched image.
func NewState(size geometry.Size) State {
	return State{
		Rect:   rectF(geometry.Full(size)),
		Size:   size,
		Canvas: size,
	}
}

// mirrored reports whether exactly one of the flips is active.
func (s *State) mirrored() bool {
	return s.Flipped != s.Flopped
}

// # Operations

// Resize narrows the source rectangle the way WordPress resizes the current
// output. Resizing to the current size is a no-op. It fails with
// [geometry.ErrNoDimensions] when WordPress would refuse the resize.
func (s *State) Resize(maxW, maxH int, crop geometry.Crop) error {
	if s.Size.Width == maxW && s.Size.Height == maxH {
		return nil
	}

	dims, ok := geometry.ResizeDimensions(s.Size.Width, s.Size.Height, maxW, maxH, crop)
	if !ok {
		return geometry.ErrNoDimensions
	}

	s.narrow(rectF(dims.Source))
	s.Size = dims.Destination.Size()
	return nil
}

// Crop selects a region of the current output and scales it to dstW×dstH.
// A zero destination side means the region's own size. When absolute is set,
// srcW and srcH are the coordinates of the bottom-right corner. A region that
// is empty or leaves the current output fails with [ErrCropOutOfBounds] and
// leaves the state unchanged.
func (s *State) Crop(srcX, srcY, srcW, srcH float64, dstW, dstH int, absolute bool) error {
	if absolute {
		srcW -= srcX
		srcH -= srcY
	}
	if srcX < 0 || srcY < 0 || srcW <= 0 || srcH <= 0 ||
		srcX+srcW > float64(s.Size.Width)+cropTolerance ||
		srcY+srcH > float64(s.Size.Height)+cropTolerance {
		return ErrCropOutOfBounds
	}
	if dstW <= 0 {
		dstW = geometry.Round(srcW)
	}
	if dstH <= 0 {
		dstH = geometry.Round(srcH)
	}

	s.narrow(RectF{X: srcX, Y: srcY, Width: srcW, Height: srcH})
	s.Size = geometry.Size{Width: dstW, Height: dstH}
	return nil
}

// cropTolerance absorbs float noise in client-computed regions.
const cropTolerance = 1e-6

// narrow replaces Rect with region, given in output coordinates.
func (s *State) narrow(region RectF) {
	scaleX, scaleY := 1.0, 1.0
	if s.Size.Width > 0 {
		scaleX = s.Rect.Width / float64(s.Size.Width)
	}
	if s.Size.Height > 0 {
		scaleY = s.Rect.Height / float64(s.Size.Height)
	}

	s.Rect = RectF{
		X:      s.Rect.X + region.X*scaleX,
		Y:      s.Rect.Y + region.Y*scaleY,
		Width:  region.Width * scaleX,
		Height: region.Height * scaleY,
	}
}

// Rotate turns the image counter-clockwise by angle degrees.
//
// Imgix only turns the canvas in quarter turns, so the accumulated angle is
// split into the nearest quarter turn (exactly 45° rounds up) and a residual.
// When the quarter turn changes, Rect and Canvas are carried into the new
// canvas frame. A mirrored image turns the other way.
func (s *State) Rotate(angle float64) {
	if s.mirrored() {
		angle = -angle
	}

	total := normalizeAngle(angle + float64(s.Orientation) + s.Rotation)
	previous := s.Orientation

	s.Orientation = int(math.Floor(math.Mod(total+45, 360)/90)) * 90
	s.Rotation = total - float64(s.Orientation)
	if s.Rotation >= 180 {
		s.Rotation -= 360
	}

	turn := s.Orientation - previous
	if s.mirrored() {
		turn = -turn
	}
	s.turnCanvas(((turn % 360) + 360) % 360)
}

// turnCanvas rotates Rect and Canvas by a counter-clockwise quarter turn
// multiple.
func (s *State) turnCanvas(turn int) {
	r, canvas := s.Rect, s.Canvas

	switch turn {
	case 90:
		canvas = geometry.Size{Width: s.Canvas.Height, Height: s.Canvas.Width}
		s.Rect = RectF{
			X:      r.Y,
			Y:      float64(canvas.Height) - r.Width - r.X,
			Width:  r.Height,
			Height: r.Width,
		}
	case 180:
		s.Rect = RectF{
			X:      float64(canvas.Width) - r.Width - r.X,
			Y:      float64(canvas.Height) - r.Height - r.Y,
			Width:  r.Width,
			Height: r.Height,
		}
	case 270:
		canvas = geometry.Size{Width: s.Canvas.Height, Height: s.Canvas.Width}
		s.Rect = RectF{
			X:      float64(canvas.Width) - r.Height - r.Y,
			Y:      r.X,
			Width:  r.Height,
			Height: r.Width,
		}
	default:
		return
	}

	s.Canvas = canvas
	if turn != 180 {
		s.Size = geometry.Size{Width: s.Size.Height, Height: s.Size.Width}
	}
}

// Flip mirrors the image. horizontal swaps top and bottom (around the
// horizontal axis); vertical swaps left and right.
func (s *State) Flip(horizontal, vertical bool) {
	if horizontal {
		s.Flipped = !s.Flipped
		s.Rect.Y = float64(s.Canvas.Height) - s.Rect.Height - s.Rect.Y
	}
	if vertical {
		s.Flopped = !s.Flopped
		s.Rect.X = float64(s.Canvas.Width) - s.Rect.Width - s.Rect.X
	}
}

func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// # Flattening

// Transform is the flattened state: one set of Imgix parameters that renders
// the same image.
type Transform struct {
	// Orientation is the Imgix "or" value (clockwise).
	Orientation int `json:"or"`
	// Rotation is the Imgix "rot" value in [0, 360).
	Rotation float64 `json:"rot"`
	// Flip is the Imgix "flip" value: "", "h", "v" or "hv".
	Flip   string        `json:"flip"`
	Rect   geometry.Rect `json:"rect"`
	Width  int           `json:"w"`
	Height int           `json:"h"`
	// Quality is the Imgix "q" value.
	Quality int `json:"q"`
}

// Flatten converts the state into a [Transform].
//
// Imgix crops before it mirrors, while Rect is kept in mirrored coordinates,
// so the rectangle is mirrored back first.
func (s State) Flatten(quality int) Transform {
	rect := s.Rect
	if s.Flopped {
		rect.X = float64(s.Canvas.Width) - rect.Width - rect.X
	}
	if s.Flipped {
		rect.Y = float64(s.Canvas.Height) - rect.Height - rect.Y
	}

	flip := ""
	if s.Flopped {
		flip += "h"
	}
	if s.Flipped {
		flip += "v"
	}

	return Transform{
		Orientation: (360 - s.Orientation) % 360,
		Rotation:    normalizeAngle(s.Rotation),
		Flip:        flip,
		Rect:        rect.Round(),
		Width:       s.Size.Width,
		Height:      s.Size.Height,
		Quality:     quality,
	}
}

// Params renders the transform as Imgix parameters. Zero rotations and an
// empty flip are left out.
func (t Transform) Params() imgix.Params {
	params := imgix.Params{
		imgix.ParamFit:     imgix.FitScale,
		imgix.ParamQuality: strconv.Itoa(t.Quality),
	}.Dimensions(t.Width, t.Height).Rect(t.Rect)

	if t.Orientation != 0 {
		params[imgix.ParamOrientation] = strconv.Itoa(t.Orientation)
	}
	if t.Rotation != 0 {
		params[imgix.ParamRotation] = strconv.FormatFloat(t.Rotation, 'f', -1, 64)
	}
	if t.Flip != "" {
		params[imgix.ParamFlip] = t.Flip
	}
	return params
}
