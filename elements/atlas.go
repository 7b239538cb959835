// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"errors"
	"fmt"
	"image"
	"math/bits"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/foliage/attr"
)

// ErrSlotRange is returned when an atlas slot does not exist.
var ErrSlotRange = errors.New("elements: atlas slot out of range")

// atlas is a square grid of equal slots in one premultiplied RGBA texture.
// The CPU copy is authoritative; it is re-uploaded, mip chain included,
// when a slot changes.
type atlas struct {
	label    string
	slotSize int
	grid     int
	levels   int
	img      *image.RGBA
	dirty    bool
	uploads  int

	device  hal.Device
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
	layout  hal.BindGroupLayout
	group   hal.BindGroup
}

func newAtlas(label string, slotSize, grid int, mipmapped bool) *atlas {
	size := slotSize * grid
	levels := 1
	if mipmapped {
		levels = bits.Len(uint(slotSize)) //nolint:gosec // slot sizes are positive
	}
	return &atlas{
		label:    label,
		slotSize: slotSize,
		grid:     grid,
		levels:   levels,
		img:      image.NewRGBA(image.Rect(0, 0, size, size)),
		dirty:    true,
	}
}

// size returns the atlas edge length in texels.
func (a *atlas) size() int { return a.slotSize * a.grid }

// slots returns the number of slots.
func (a *atlas) slots() int { return a.grid * a.grid }

func (a *atlas) cell(id int) (image.Rectangle, error) {
	if id < 0 || id >= a.slots() {
		return image.Rectangle{}, fmt.Errorf("%w: %s slot %d of %d", ErrSlotRange, a.label, id, a.slots())
	}
	x := (id % a.grid) * a.slotSize
	y := (id / a.grid) * a.slotSize
	return image.Rect(x, y, x+a.slotSize, y+a.slotSize), nil
}

// put scales src into slot id.
func (a *atlas) put(id int, src image.Image) error {
	r, err := a.cell(id)
	if err != nil {
		return err
	}
	draw.Draw(a.img, r, image.Transparent, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(a.img, r, src, src.Bounds(), draw.Over, nil)
	a.dirty = true
	return nil
}

// coords returns the texture coordinates of r, inset by half a texel.
func (a *atlas) coords(r image.Rectangle) attr.TexCoords {
	size := float32(a.size())
	return attr.TexCoords{
		U0: (float32(r.Min.X) + 0.5) / size,
		V0: (float32(r.Min.Y) + 0.5) / size,
		U1: (float32(r.Max.X) - 0.5) / size,
		V1: (float32(r.Max.Y) - 0.5) / size,
	}
}

// slotCoords returns the texture coordinates of slot id.
func (a *atlas) slotCoords(id int) (attr.TexCoords, error) {
	r, err := a.cell(id)
	if err != nil {
		return attr.TexCoords{}, err
	}
	return a.coords(r), nil
}

// MipsLevelFor returns the mip level that samples a slotSize texel square
// drawn over area logical pixels at the given scale factor.
func MipsLevelFor(slotSize int, area attr.Area, scale float32) attr.MipsLevel {
	shown := math32.Max(area.W, area.H) * math32.Max(scale, 1e-3)
	if shown <= 0 {
		return 0
	}
	level := math32.Log2(float32(slotSize) / shown)
	return attr.MipsLevel(math32.Max(0, math32.Floor(level)))
}

func (a *atlas) create(device hal.Device) error {
	a.device = device
	size := uint32(a.size()) //nolint:gosec // bounded by the slot options
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         a.label + "_atlas",
		Size:          hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		MipLevelCount: uint32(a.levels), //nolint:gosec // at most 32
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s atlas: %w", a.label, err)
	}
	a.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           a.label + "_atlas_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   uint32(a.levels), //nolint:gosec // at most 32
		ArrayLayerCount: 1,
	})
	if err != nil {
		a.destroy()
		return fmt.Errorf("create %s atlas view: %w", a.label, err)
	}
	a.view = view

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        a.label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
		LodMaxClamp:  float32(a.levels),
	})
	if err != nil {
		a.destroy()
		return fmt.Errorf("create %s sampler: %w", a.label, err)
	}
	a.sampler = sampler

	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: a.label + "_atlas_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		a.destroy()
		return fmt.Errorf("create %s atlas layout: %w", a.label, err)
	}
	a.layout = layout

	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  a.label + "_atlas_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
		},
	})
	if err != nil {
		a.destroy()
		return fmt.Errorf("create %s atlas bind group: %w", a.label, err)
	}
	a.group = group
	a.dirty = true
	return nil
}

// upload writes every mip level when the atlas changed since the last
// upload.
func (a *atlas) upload(queue hal.Queue) error {
	if !a.dirty || a.tex == nil {
		return nil
	}
	level := a.img
	for l := 0; l < a.levels; l++ {
		if l > 0 {
			level = downsample(level)
		}
		b := level.Bounds()
		err := queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: a.tex, MipLevel: uint32(l), Aspect: gputypes.TextureAspectAll}, //nolint:gosec // at most 32
			level.Pix,
			&hal.ImageDataLayout{BytesPerRow: uint32(level.Stride), RowsPerImage: uint32(b.Dy())}, //nolint:gosec // atlas size
			&hal.Extent3D{Width: uint32(b.Dx()), Height: uint32(b.Dy()), DepthOrArrayLayers: 1},   //nolint:gosec // atlas size
		)
		if err != nil {
			return fmt.Errorf("upload %s atlas level %d: %w", a.label, l, err)
		}
	}
	a.dirty = false
	a.uploads++
	slogger().Debug("elements: atlas uploaded", "atlas", a.label, "levels", a.levels)
	return nil
}

// downsample halves src with bilinear filtering.
func downsample(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, max(b.Dx()/2, 1), max(b.Dy()/2, 1)))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func (a *atlas) destroy() {
	if a.device == nil {
		return
	}
	if a.group != nil {
		a.device.DestroyBindGroup(a.group)
		a.group = nil
	}
	if a.layout != nil {
		a.device.DestroyBindGroupLayout(a.layout)
		a.layout = nil
	}
	if a.sampler != nil {
		a.device.DestroySampler(a.sampler)
		a.sampler = nil
	}
	if a.view != nil {
		a.device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.tex != nil {
		a.device.DestroyTexture(a.tex)
		a.tex = nil
	}
}
