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

// Panel draws rounded rectangles as a 54-vertex nine-slice grid. Fragments
// outside the rounded corners are discarded, so panels stay in the Opaque
// phase.
//
// Attributes: Position, Area, Color, Elevation, CornerRadius, Opacity, ClipSection.
type Panel struct {
	batch[world.Entity]

	position  *instance.Column[world.Entity, attr.Position]
	area      *instance.Column[world.Entity, attr.Area]
	color     *instance.Column[world.Entity, attr.Color]
	elevation *instance.Column[world.Entity, attr.Elevation]
	radius    *instance.Column[world.Entity, attr.CornerRadius]
}

// NewPanel creates the Panel kind.
func NewPanel(opts ...Option) *Panel {
	cfg := newConfig(0, opts)
	return &Panel{batch: batch[world.Entity]{
		capacity: cfg.capacity,
		spec: pipelineSpec{
			label:    "panel",
			source:   panelShader,
			phase:    render.Opaque,
			geometry: nineSlice(),
		},
	}}
}

// Create builds the instance table and pipeline.
func (p *Panel) Create(ctx *gfx.Context) error {
	return p.create(ctx, func() (err error) {
		b := &p.batch
		if p.position, err = bind(b, "position", attr.Position{}); err != nil {
			return err
		}
		if p.area, err = bind(b, "area", attr.Area{}); err != nil {
			return err
		}
		if p.color, err = bindColor(b); err != nil {
			return err
		}
		if p.elevation, err = bindElevation(b); err != nil {
			return err
		}
		p.radius, err = bind(b, "corner_radius", attr.CornerRadius(0))
		return err
	})
}

// PreparePackages applies the frame's removals and attribute packets.
func (p *Panel) PreparePackages(_ *gfx.Context, q *bus.Queue) error {
	return prepareEntities(&p.batch, q, nil)
}

// Destroy releases the kind's GPU resources.
func (p *Panel) Destroy() { p.destroy() }
