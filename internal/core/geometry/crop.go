// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Anchor positions a crop region along one axis.
type Anchor string

const (
	AnchorLeft   Anchor = "left"
	AnchorCenter Anchor = "center"
	AnchorRight  Anchor = "right"
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// offset returns where a region of length part starts inside total.
func (a Anchor) offset(total, part int) int {
	switch a {
	case AnchorLeft, AnchorTop:
		return 0
	case AnchorRight, AnchorBottom:
		return total - part
	default:
		return int(math.Floor(float64(total-part) / 2))
	}
}

// Crop is the crop flag of an image size, optionally with an anchor.
//
// The zero value means "do not crop".
type Crop struct {
	Enabled bool
	X       Anchor
	Y       Anchor
}

// NoCrop scales without cropping.
var NoCrop = Crop{}

// CenterCrop crops around the center of the image.
var CenterCrop = Crop{Enabled: true, X: AnchorCenter, Y: AnchorCenter}

// CropAt returns an anchored crop. Unknown anchors fall back to center.
func CropAt(x, y Anchor) Crop {
	return Crop{Enabled: true, X: x, Y: y}
}

// String renders the crop the way it is written in configuration.
func (c Crop) String() string {
	if !c.Enabled {
		return "false"
	}
	if c.X == "" && c.Y == "" {
		return "true"
	}
	return fmt.Sprintf("[%s, %s]", c.X, c.Y)
}

// # Serialization

// UnmarshalYAML accepts either a boolean or a two-element [x, y] anchor list.
func (c *Crop) UnmarshalYAML(node *yaml.Node) error {
	var enabled bool
	if err := node.Decode(&enabled); err == nil {
		*c = Crop{}
		if enabled {
			*c = CenterCrop
		}
		return nil
	}

	var anchors []Anchor
	if err := node.Decode(&anchors); err != nil {
		return fmt.Errorf("geometry: crop must be a boolean or [x, y]: %w", err)
	}
	if len(anchors) != 2 {
		// WordPress treats malformed anchor lists as a centered crop.
		*c = CenterCrop
		return nil
	}

	*c = CropAt(anchors[0], anchors[1])
	return nil
}

// UnmarshalJSON accepts the same shapes as [Crop.UnmarshalYAML].
func (c *Crop) UnmarshalJSON(data []byte) error {
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err == nil {
		*c = Crop{}
		if enabled {
			*c = CenterCrop
		}
		return nil
	}

	var anchors []Anchor
	if err := json.Unmarshal(data, &anchors); err != nil {
		return fmt.Errorf("geometry: crop must be a boolean or [x, y]: %w", err)
	}
	if len(anchors) != 2 {
		*c = CenterCrop
		return nil
	}

	*c = CropAt(anchors[0], anchors[1])
	return nil
}

// MarshalJSON writes false, true, or the anchor pair.
func (c Crop) MarshalJSON() ([]byte, error) {
	if !c.Enabled {
		return []byte("false"), nil
	}
	if c == CenterCrop || (c.X == "" && c.Y == "") {
		return []byte("true"), nil
	}
	return json.Marshal([]Anchor{c.X, c.Y})
}
