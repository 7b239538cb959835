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

// DefaultImageSlot is the default pixel size of an image atlas slot.
const DefaultImageSlot = 256

// Image draws full-color images from an atlas. Each Fill scales an image
// into a fixed-size slot; entities select it with a Slot attribute.
//
// Attributes: Position, Area, Elevation, MipsLevel, Slot, Opacity, ClipSection.
type Image struct {
	batch[world.Entity]
	atlas *atlas

	position  *instance.Column[world.Entity, attr.Position]
	area      *instance.Column[world.Entity, attr.Area]
	elevation *instance.Column[world.Entity, attr.Elevation]
	mips      *instance.Column[world.Entity, attr.MipsLevel]
	coords    *instance.Column[world.Entity, attr.TexCoords]
	opacity   *instance.Column[world.Entity, attr.Opacity]
}

// NewImage creates the Image kind.
func NewImage(opts ...Option) *Image {
	cfg := newConfig(DefaultImageSlot, opts)
	return &Image{
		batch: batch[world.Entity]{
			capacity: cfg.capacity,
			spec: pipelineSpec{
				label:    "image",
				source:   imageShader,
				phase:    render.Alpha(1),
				geometry: unitQuad(),
			},
		},
		atlas: newAtlas("image", cfg.slotSize, cfg.grid, true),
	}
}

// Fill scales img into atlas slot id.
func (im *Image) Fill(id attr.Slot, img image.Image) error {
	return im.atlas.put(int(id), img)
}

// SlotSize returns the pixel size of one atlas slot.
func (im *Image) SlotSize() int { return im.atlas.slotSize }

// Create builds the atlas, instance table and pipeline.
func (im *Image) Create(ctx *gfx.Context) error {
	if err := im.atlas.create(ctx.Device()); err != nil {
		return err
	}
	im.spec.groups = []hal.BindGroupLayout{im.atlas.layout}
	im.extra = []hal.BindGroup{im.atlas.group}
	err := im.create(ctx, func() (err error) {
		b := &im.batch
		if im.position, err = bind(b, "position", attr.Position{}); err != nil {
			return err
		}
		if im.area, err = bind(b, "area", attr.Area{}); err != nil {
			return err
		}
		if im.elevation, err = bindElevation(b); err != nil {
			return err
		}
		if im.mips, err = bind(b, "mips", attr.MipsLevel(0)); err != nil {
			return err
		}
		if im.coords, err = instance.AddColumn(b.coord, "tex_coords", attr.TexCoords{}); err != nil {
			return err
		}
		im.opacity, err = bind(b, "opacity", attr.Opacity(1))
		return err
	})
	if err != nil {
		im.atlas.destroy()
	}
	return err
}

// PreparePackages applies the frame's removals and attribute packets and
// resolves Slot attributes to atlas coordinates.
func (im *Image) PreparePackages(_ *gfx.Context, q *bus.Queue) error {
	return prepareEntities(&im.batch, q, func(e world.Entity, p bus.Packet) error {
		return writeSlot(im.atlas, im.coords, e, p)
	})
}

// PrepareResources uploads the atlas and the staged instance writes.
func (im *Image) PrepareResources(ctx *gfx.Context) error {
	if err := im.atlas.upload(ctx.Queue()); err != nil {
		return err
	}
	return im.batch.PrepareResources(ctx)
}

// Destroy releases the kind's GPU resources.
func (im *Image) Destroy() {
	im.destroy()
	im.atlas.destroy()
}
