// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"image"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/instance"
	"github.com/gogpu/foliage/render"
	"github.com/gogpu/foliage/world"
)

// DefaultIconSlot is the default pixel size of an icon atlas slot.
const DefaultIconSlot = 64

// Icon draws tinted icons from an atlas. The icon's alpha channel is the
// coverage; the Color attribute supplies the tint. Icons are loaded into
// numbered slots with Load and selected per entity with a Slot attribute.
//
// Attributes: Position, Area, Color, Elevation, MipsLevel, Slot, Opacity, ClipSection.
type Icon struct {
	batch[world.Entity]
	atlas *atlas

	position  *instance.Column[world.Entity, attr.Position]
	area      *instance.Column[world.Entity, attr.Area]
	color     *instance.Column[world.Entity, attr.Color]
	elevation *instance.Column[world.Entity, attr.Elevation]
	mips      *instance.Column[world.Entity, attr.MipsLevel]
	coords    *instance.Column[world.Entity, attr.TexCoords]
}

// NewIcon creates the Icon kind.
func NewIcon(opts ...Option) *Icon {
	cfg := newConfig(DefaultIconSlot, opts)
	return &Icon{
		batch: batch[world.Entity]{
			capacity: cfg.capacity,
			spec: pipelineSpec{
				label:    "icon",
				source:   iconShader,
				phase:    render.Alpha(1),
				geometry: unitQuad(),
			},
		},
		atlas: newAtlas("icon", cfg.slotSize, cfg.grid, true),
	}
}

// Load scales img into atlas slot id. It may be called before or after
// Create; the atlas is uploaded during the next PrepareResources.
func (ic *Icon) Load(id attr.Slot, img image.Image) error {
	return ic.atlas.put(int(id), img)
}

// SlotSize returns the pixel size of one atlas slot.
func (ic *Icon) SlotSize() int { return ic.atlas.slotSize }

// Create builds the atlas, instance table and pipeline.
func (ic *Icon) Create(ctx *gfx.Context) error {
	if err := ic.atlas.create(ctx.Device()); err != nil {
		return err
	}
	ic.spec.groups = []hal.BindGroupLayout{ic.atlas.layout}
	ic.extra = []hal.BindGroup{ic.atlas.group}
	err := ic.create(ctx, func() (err error) {
		b := &ic.batch
		if ic.position, err = bind(b, "position", attr.Position{}); err != nil {
			return err
		}
		if ic.area, err = bind(b, "area", attr.Area{}); err != nil {
			return err
		}
		if ic.color, err = bindColor(b); err != nil {
			return err
		}
		if ic.elevation, err = bindElevation(b); err != nil {
			return err
		}
		if ic.mips, err = bind(b, "mips", attr.MipsLevel(0)); err != nil {
			return err
		}
		ic.coords, err = instance.AddColumn(b.coord, "tex_coords", attr.TexCoords{})
		return err
	})
	if err != nil {
		ic.atlas.destroy()
	}
	return err
}

// PreparePackages applies the frame's removals and attribute packets and
// resolves Slot attributes to atlas coordinates.
func (ic *Icon) PreparePackages(_ *gfx.Context, q *bus.Queue) error {
	return prepareEntities(&ic.batch, q, func(e world.Entity, p bus.Packet) error {
		return writeSlot(ic.atlas, ic.coords, e, p)
	})
}

// PrepareResources uploads the atlas and the staged instance writes.
func (ic *Icon) PrepareResources(ctx *gfx.Context) error {
	if err := ic.atlas.upload(ctx.Queue()); err != nil {
		return err
	}
	return ic.batch.PrepareResources(ctx)
}

// Destroy releases the kind's GPU resources.
func (ic *Icon) Destroy() {
	ic.destroy()
	ic.atlas.destroy()
}

// writeSlot stages the texture coordinates of the packet's Slot. An
// unknown slot is logged and drawn from slot 0.
func writeSlot(a *atlas, coords *instance.Column[world.Entity, attr.TexCoords], e world.Entity, p bus.Packet) error {
	slot, ok, err := bus.Get[attr.Slot](p)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	tc, err := a.slotCoords(int(slot))
	if err != nil {
		slogger().Warn("elements: bad slot", "entity", e, "err", err)
		tc, _ = a.slotCoords(0)
	}
	coords.Write(e, tc)
	return nil
}
