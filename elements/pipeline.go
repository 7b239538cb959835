// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/render"
)

// pipelineSpec describes the fixed part of a kind's pipeline.
type pipelineSpec struct {
	label    string
	source   string
	phase    render.Phase
	geometry []vertex
	// groups are bind group layouts after the viewport at group 0.
	groups []hal.BindGroupLayout
}

// pipeline owns a kind's shader, layouts, render pipeline and fixed
// geometry buffer.
type pipeline struct {
	device hal.Device
	label  string

	shader      hal.ShaderModule
	layout      hal.PipelineLayout
	pipeline    hal.RenderPipeline
	geometry    hal.Buffer
	vertexCount uint32
	samples     uint32
	format      gputypes.TextureFormat
}

// newPipeline compiles spec's shader and creates its render pipeline. The
// instance layouts follow the geometry buffer at slot 0.
func newPipeline(ctx *gfx.Context, spec pipelineSpec, instances []gputypes.VertexBufferLayout) (*pipeline, error) {
	device := ctx.Device()
	p := &pipeline{
		device:      device,
		label:       spec.label,
		vertexCount: uint32(len(spec.geometry)), //nolint:gosec // fixed geometry
		samples:     ctx.SampleCount(),
		format:      ctx.Format(),
	}

	shader, err := createShader(device, spec.label, spec.source)
	if err != nil {
		return nil, err
	}
	p.shader = shader

	groups := append([]hal.BindGroupLayout{ctx.Viewport().Layout()}, spec.groups...)
	layout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.label + "_pipe_layout",
		BindGroupLayouts: groups,
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s pipeline layout: %w", spec.label, err)
	}
	p.layout = layout

	target := gputypes.ColorTargetState{
		Format:    p.format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	depthWrite := true
	if spec.phase.IsAlpha() {
		blend := gputypes.BlendStatePremultiplied()
		target.Blend = &blend
		depthWrite = false
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}

	buffers := append([]gputypes.VertexBufferLayout{geometryLayout()}, instances...)
	rp, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  spec.label + "_pipeline",
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            gfx.DepthFormat,
			DepthWriteEnabled: depthWrite,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0x00,
			StencilWriteMask:  0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.samples,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s render pipeline: %w", spec.label, err)
	}
	p.pipeline = rp

	data := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(spec.geometry))), len(spec.geometry)*vertexStride) //nolint:gosec // [4]float32 vertices
	geometry, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: spec.label + "_geometry",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s geometry: %w", spec.label, err)
	}
	p.geometry = geometry
	if err := ctx.Queue().WriteBuffer(geometry, 0, data); err != nil {
		p.destroy()
		return nil, fmt.Errorf("upload %s geometry: %w", spec.label, err)
	}
	return p, nil
}

// bundleEncoder opens a bundle encoder compatible with the frame pass.
func (p *pipeline) bundleEncoder() (hal.RenderBundleEncoder, error) {
	enc, err := p.device.CreateRenderBundleEncoder(&hal.RenderBundleEncoderDescriptor{
		Label:              p.label + "_bundle",
		ColorFormats:       []gputypes.TextureFormat{p.format},
		DepthStencilFormat: gfx.DepthFormat,
		SampleCount:        p.samples,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bundle encoder: %w", p.label, err)
	}
	return enc, nil
}

// begin binds the pipeline, the viewport and extra bind groups, and the
// geometry buffer.
func (p *pipeline) begin(enc hal.RenderBundleEncoder, viewport hal.BindGroup, groups ...hal.BindGroup) {
	enc.SetPipeline(p.pipeline)
	enc.SetBindGroup(0, viewport, nil)
	for i, g := range groups {
		enc.SetBindGroup(uint32(i+1), g, nil) //nolint:gosec // at most a few groups
	}
	enc.SetVertexBuffer(0, p.geometry, 0)
}

func (p *pipeline) destroy() {
	if p.geometry != nil {
		p.device.DestroyBuffer(p.geometry)
		p.geometry = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
