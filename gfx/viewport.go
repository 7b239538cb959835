// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// viewportUniformSize is the byte size of the viewport uniform:
// a mat4x4<f32> followed by vec4<f32>(width, height, scale, 0).
const viewportUniformSize = 80

// Section is the visible region of the logical canvas.
type Section struct {
	X, Y, W, H float32
}

// Projection returns the orthographic matrix for s. The origin is the
// top-left corner of s and y grows downward. Elevation maps to depth so
// that near lands on 1 and far on 0; higher elevations pass a LessEqual
// depth test against lower ones.
func Projection(s Section, near, far float32) mgl32.Mat4 {
	w := math32.Max(s.W, 1)
	h := math32.Max(s.H, 1)
	span := far - near
	if span == 0 {
		span = 1
	}
	return mgl32.Translate3D(-1, 1, far/span).
		Mul4(mgl32.Scale3D(2/w, -2/h, -1/span)).
		Mul4(mgl32.Translate3D(-s.X, -s.Y, 0))
}

// Viewport is the uniform every pipeline binds at group 0. It holds the
// projection of the current section and the surface scale factor.
type Viewport struct {
	device hal.Device
	queue  hal.Queue

	buffer hal.Buffer
	layout hal.BindGroupLayout
	group  hal.BindGroup

	section   Section
	near, far float32
	scale     float32
	matrix    mgl32.Mat4
	lastArea  [3]float32
	written   bool
	writes    int
}

func newViewport(device hal.Device, queue hal.Queue, section Section, near, far, scale float32) (*Viewport, error) {
	v := &Viewport{
		device:  device,
		queue:   queue,
		section: section,
		near:    near,
		far:     far,
		scale:   scale,
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "foliage_viewport",
		Size:  viewportUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create viewport buffer: %w", err)
	}
	v.buffer = buf

	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "foliage_viewport_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		v.destroy()
		return nil, fmt.Errorf("create viewport layout: %w", err)
	}
	v.layout = layout

	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "foliage_viewport_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
		},
	})
	if err != nil {
		v.destroy()
		return nil, fmt.Errorf("create viewport bind group: %w", err)
	}
	v.group = group

	if err := v.update(); err != nil {
		v.destroy()
		return nil, err
	}
	return v, nil
}

// SetPosition scrolls the viewport to x, y.
func (v *Viewport) SetPosition(x, y float32) error {
	v.section.X, v.section.Y = x, y
	return v.update()
}

// SetSize resizes the visible section.
func (v *Viewport) SetSize(w, h float32) error {
	v.section.W, v.section.H = w, h
	return v.update()
}

// SetDepth changes the elevation range.
func (v *Viewport) SetDepth(near, far float32) error {
	v.near, v.far = near, far
	return v.update()
}

func (v *Viewport) setScale(scale float32) error {
	v.scale = scale
	return v.update()
}

// Section returns the visible section.
func (v *Viewport) Section() Section { return v.section }

// Depth returns the elevation range.
func (v *Viewport) Depth() (near, far float32) { return v.near, v.far }

// Scale returns the surface scale factor.
func (v *Viewport) Scale() float32 { return v.scale }

// Matrix returns the current projection.
func (v *Viewport) Matrix() mgl32.Mat4 { return v.matrix }

// Project maps a logical point at an elevation to clip space.
func (v *Viewport) Project(x, y, elevation float32) mgl32.Vec3 {
	return v.matrix.Mul4x1(mgl32.Vec4{x, y, elevation, 1}).Vec3()
}

// Layout returns the bind group layout pipelines use at group 0.
func (v *Viewport) Layout() hal.BindGroupLayout { return v.layout }

// BindGroup returns the bind group for group 0.
func (v *Viewport) BindGroup() hal.BindGroup { return v.group }

// Buffer returns the uniform buffer.
func (v *Viewport) Buffer() hal.Buffer { return v.buffer }

// Writes returns how many times the uniform was uploaded.
func (v *Viewport) Writes() int { return v.writes }

// update recomputes the projection and uploads it if it changed.
func (v *Viewport) update() error {
	m := Projection(v.section, v.near, v.far)
	area := [3]float32{v.section.W, v.section.H, v.scale}
	if v.written && m == v.matrix && area == v.lastArea {
		return nil
	}
	data := encodeViewport(m, v.section, v.scale)
	if err := v.queue.WriteBuffer(v.buffer, 0, data); err != nil {
		return fmt.Errorf("write viewport: %w", err)
	}
	v.matrix = m
	v.written = true
	v.writes++
	v.lastArea = area
	return nil
}

func encodeViewport(m mgl32.Mat4, s Section, scale float32) []byte {
	buf := make([]byte, viewportUniformSize)
	for i, f := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(s.W))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(s.H))
	binary.LittleEndian.PutUint32(buf[72:], math.Float32bits(scale))
	// Bytes 76..79 are padding.
	return buf
}

func (v *Viewport) destroy() {
	if v.group != nil {
		v.device.DestroyBindGroup(v.group)
		v.group = nil
	}
	if v.layout != nil {
		v.device.DestroyBindGroupLayout(v.layout)
		v.layout = nil
	}
	if v.buffer != nil {
		v.device.DestroyBuffer(v.buffer)
		v.buffer = nil
	}
}
