// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "github.com/chewxy/math32"

// Rect is a scissor rectangle in physical pixels.
type Rect struct {
	X, Y, W, H uint32
}

// SurfaceRect returns the scissor covering the whole surface.
func (c *Context) SurfaceRect() Rect {
	return Rect{W: c.extent.Width, H: c.extent.Height}
}

// Scissor maps a clip section of the logical canvas to surface pixels:
// relative to the viewport section, scaled by the surface scale and
// intersected with the surface. It reports false when no pixel remains.
func (c *Context) Scissor(clip Section) (Rect, bool) {
	v := c.viewport.section
	s := c.scale
	x0 := math32.Max(math32.Floor((clip.X-v.X)*s), 0)
	y0 := math32.Max(math32.Floor((clip.Y-v.Y)*s), 0)
	x1 := math32.Min(math32.Ceil((clip.X+clip.W-v.X)*s), float32(c.extent.Width))
	y1 := math32.Min(math32.Ceil((clip.Y+clip.H-v.Y)*s), float32(c.extent.Height))
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{
		X: uint32(x0),
		Y: uint32(y0),
		W: uint32(x1 - x0),
		H: uint32(y1 - y0),
	}, true
}
