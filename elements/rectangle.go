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

// Rectangle draws solid, square-cornered rectangles.
//
// Attributes: Position, Area, Color, Elevation, Opacity, ClipSection.
type Rectangle struct {
	batch[world.Entity]

	position  *instance.Column[world.Entity, attr.Position]
	area      *instance.Column[world.Entity, attr.Area]
	color     *instance.Column[world.Entity, attr.Color]
	elevation *instance.Column[world.Entity, attr.Elevation]
}

// NewRectangle creates the Rectangle kind.
func NewRectangle(opts ...Option) *Rectangle {
	cfg := newConfig(0, opts)
	return &Rectangle{batch: batch[world.Entity]{
		capacity: cfg.capacity,
		spec: pipelineSpec{
			label:    "rectangle",
			source:   rectangleShader,
			phase:    render.Opaque,
			geometry: unitQuad(),
		},
	}}
}

// Create builds the instance table and pipeline.
func (r *Rectangle) Create(ctx *gfx.Context) error {
	return r.create(ctx, func() (err error) {
		b := &r.batch
		if r.position, err = bind(b, "position", attr.Position{}); err != nil {
			return err
		}
		if r.area, err = bind(b, "area", attr.Area{}); err != nil {
			return err
		}
		if r.color, err = bindColor(b); err != nil {
			return err
		}
		r.elevation, err = bindElevation(b)
		return err
	})
}

// PreparePackages applies the frame's removals and attribute packets.
func (r *Rectangle) PreparePackages(_ *gfx.Context, q *bus.Queue) error {
	return prepareEntities(&r.batch, q, nil)
}

// Destroy releases the kind's GPU resources.
func (r *Rectangle) Destroy() { r.destroy() }
