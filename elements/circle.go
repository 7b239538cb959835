// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/instance"
	"github.com/gogpu/foliage/render"
	"github.com/gogpu/foliage/world"
)

// Circle draws anti-aliased discs inscribed in the instance area. A
// Progress attribute limits the disc to an arc; without one the full disc
// is drawn.
//
// Attributes: Position, Area, Color, Elevation, Progress, Opacity, ClipSection.
type Circle struct {
	batch[world.Entity]

	position  *instance.Column[world.Entity, attr.Position]
	area      *instance.Column[world.Entity, attr.Area]
	color     *instance.Column[world.Entity, attr.Color]
	elevation *instance.Column[world.Entity, attr.Elevation]
	progress  *instance.Column[world.Entity, attr.Progress]
}

// NewCircle creates the Circle kind.
func NewCircle(opts ...Option) *Circle {
	cfg := newConfig(0, opts)
	return &Circle{batch: batch[world.Entity]{
		capacity: cfg.capacity,
		spec: pipelineSpec{
			label:    "circle",
			source:   circleShader,
			phase:    render.Alpha(0),
			geometry: unitQuad(),
		},
	}}
}

// Create builds the instance table and pipeline.
func (c *Circle) Create(ctx *gfx.Context) error {
	return c.create(ctx, func() (err error) {
		b := &c.batch
		if c.position, err = bind(b, "position", attr.Position{}); err != nil {
			return err
		}
		if c.area, err = bind(b, "area", attr.Area{}); err != nil {
			return err
		}
		if c.color, err = bindColor(b); err != nil {
			return err
		}
		if c.elevation, err = bindElevation(b); err != nil {
			return err
		}
		c.progress, err = bind(b, "progress", attr.Full)
		return err
	})
}

// PreparePackages applies the frame's removals and attribute packets.
// Circles without a Progress attribute are full discs.
func (c *Circle) PreparePackages(_ *gfx.Context, q *bus.Queue) error {
	return prepareEntities(&c.batch, q, nil)
}

// Destroy releases the kind's GPU resources.
func (c *Circle) Destroy() { c.destroy() }
