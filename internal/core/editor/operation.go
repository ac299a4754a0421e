// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor

import (
	"fmt"
	"math"

	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/platform/apperr"
	"github.com/taibuivan/mediagate/internal/platform/validate"
	"github.com/taibuivan/mediagate/pkg/pointer"
)

// Operation kinds.
const (
	OpResize  = "resize"
	OpCrop    = "crop"
	OpRotate  = "rotate"
	OpFlip    = "flip"
	OpQuality = "quality"
)

// Operation is one editor call, as sent by the client.
//
//	{"op": "resize", "width": 300, "height": 200, "crop": true}
//	{"op": "crop", "x": 10, "y": 20, "src_width": 400, "src_height": 300, "width": 200}
//	{"op": "rotate", "angle": 90}
//	{"op": "flip", "horizontal": true}
//	{"op": "quality", "quality": 82}
type Operation struct {
	Op string `json:"op"`

	// Width and Height are the resize bounds, or the crop destination size.
	Width  *int          `json:"width,omitempty"`
	Height *int          `json:"height,omitempty"`
	Crop   geometry.Crop `json:"crop"`

	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	SrcWidth  float64 `json:"src_width"`
	SrcHeight float64 `json:"src_height"`
	Absolute  bool    `json:"absolute"`

	Angle float64 `json:"angle"`

	Horizontal bool `json:"horizontal"`
	Vertical   bool `json:"vertical"`

	Quality int `json:"quality"`
}

// validate records the problems of operation i.
func (op Operation) validate(i int, v *validate.Validator) {
	field := func(name string) string {
		return fmt.Sprintf("operations[%d].%s", i, name)
	}

	v.OneOf(field("op"), op.Op, OpResize, OpCrop, OpRotate, OpFlip, OpQuality)

	width, height := pointer.Val(op.Width), pointer.Val(op.Height)

	switch op.Op {
	case OpResize:
		v.NonNegative(field("width"), width).
			NonNegative(field("height"), height).
			Custom(field("width"), width == 0 && height == 0, "Width or height is required")

	case OpCrop:
		srcW, srcH := op.SrcWidth, op.SrcHeight
		if op.Absolute {
			srcW -= op.X
			srcH -= op.Y
		}
		v.Custom(field("x"), op.X < 0 || !finite(op.X), "Must be a non-negative number").
			Custom(field("y"), op.Y < 0 || !finite(op.Y), "Must be a non-negative number").
			Custom(field("src_width"), srcW <= 0 || !finite(srcW), "Must be positive").
			Custom(field("src_height"), srcH <= 0 || !finite(srcH), "Must be positive").
			NonNegative(field("width"), width).
			NonNegative(field("height"), height)

	case OpRotate:
		v.Custom(field("angle"), !finite(op.Angle), "Must be a number")

	case OpQuality:
		v.Range(field("quality"), op.Quality, 1, 100)
	}
}

// apply performs the operation on session.
func (op Operation) apply(session *Session) error {
	switch op.Op {
	case OpResize:
		if err := session.State.Resize(pointer.Val(op.Width), pointer.Val(op.Height), op.Crop); err != nil {
			return apperr.Unprocessable("Could not calculate resized image dimensions").WithCause(err)
		}
	case OpCrop:
		if err := session.State.Crop(op.X, op.Y, op.SrcWidth, op.SrcHeight, pointer.Val(op.Width), pointer.Val(op.Height), op.Absolute); err != nil {
			return apperr.Unprocessable("Crop region lies outside the image").WithCause(err)
		}
	case OpRotate:
		session.State.Rotate(op.Angle)
	case OpFlip:
		session.State.Flip(op.Horizontal, op.Vertical)
	case OpQuality:
		session.Quality = op.Quality
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
