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

// defaultWeight is the stroke width of a line without a Weight attribute.
const defaultWeight attr.Weight = 1

// Shape draws straight line segments of a given weight.
//
// Attributes: Line, Weight, Color, Elevation, Opacity, ClipSection.
type Shape struct {
	batch[world.Entity]

	line      *instance.Column[world.Entity, attr.Line]
	weight    *instance.Column[world.Entity, attr.Weight]
	color     *instance.Column[world.Entity, attr.Color]
	elevation *instance.Column[world.Entity, attr.Elevation]
}

// NewShape creates the Shape kind.
func NewShape(opts ...Option) *Shape {
	cfg := newConfig(0, opts)
	return &Shape{batch: batch[world.Entity]{
		capacity: cfg.capacity,
		spec: pipelineSpec{
			label:    "shape",
			source:   shapeShader,
			phase:    render.Alpha(0),
			geometry: lineQuad(),
		},
	}}
}

// Create builds the instance table and pipeline.
func (s *Shape) Create(ctx *gfx.Context) error {
	return s.create(ctx, func() (err error) {
		b := &s.batch
		if s.line, err = bind(b, "line", attr.Line{}); err != nil {
			return err
		}
		if s.weight, err = bind(b, "weight", defaultWeight); err != nil {
			return err
		}
		if s.color, err = bindColor(b); err != nil {
			return err
		}
		s.elevation, err = bindElevation(b)
		return err
	})
}

// PreparePackages applies the frame's removals and attribute packets.
func (s *Shape) PreparePackages(_ *gfx.Context, q *bus.Queue) error {
	return prepareEntities(&s.batch, q, nil)
}

// Destroy releases the kind's GPU resources.
func (s *Shape) Destroy() { s.destroy() }
