// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gputest provides recording hal fakes built on the noop backend.
//
// The noop backend keeps buffer contents in memory but cannot record render
// bundles and never fails surface acquisition. These wrappers add what the
// render core's tests need: bundle recording, per-buffer write logs, render
// pass capture, surface loss injection and configurable adapter features.
package gputest

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Device wraps a noop device with resource counters and bundle recording.
type Device struct {
	*noop.Device

	mu               sync.Mutex
	BuffersCreated   int
	BuffersDestroyed int
	Pipelines        []*hal.RenderPipelineDescriptor
	Shaders          []string
	BundleEncoders   []*BundleEncoder
	BundlesDestroyed int
	Encoders         []*CommandEncoder
	Textures         []*hal.TextureDescriptor
	// FailBuffers makes CreateBuffer fail with hal.ErrDeviceOutOfMemory.
	FailBuffers bool
}

// NewDevice returns a fake device and queue.
func NewDevice(t testing.TB) (*Device, *Queue) {
	t.Helper()
	return &Device{Device: &noop.Device{}}, &Queue{Queue: &noop.Queue{}}
}

// CreateBuffer counts and delegates to the noop device.
func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailBuffers {
		return nil, hal.ErrDeviceOutOfMemory
	}
	d.BuffersCreated++
	return d.Device.CreateBuffer(desc)
}

// DestroyBuffer counts destroyed buffers.
func (d *Device) DestroyBuffer(b hal.Buffer) {
	d.mu.Lock()
	d.BuffersDestroyed++
	d.mu.Unlock()
	d.Device.DestroyBuffer(b)
}

// CreateTexture records the descriptor.
func (d *Device) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.mu.Lock()
	cp := *desc
	d.Textures = append(d.Textures, &cp)
	d.mu.Unlock()
	return d.Device.CreateTexture(desc)
}

// CreateShaderModule records the WGSL source.
func (d *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.mu.Lock()
	d.Shaders = append(d.Shaders, desc.Source.WGSL)
	d.mu.Unlock()
	return d.Device.CreateShaderModule(desc)
}

// CreateRenderPipeline records the descriptor.
func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.mu.Lock()
	cp := *desc
	d.Pipelines = append(d.Pipelines, &cp)
	d.mu.Unlock()
	return d.Device.CreateRenderPipeline(desc)
}

// CreateRenderBundleEncoder returns a recording encoder.
func (d *Device) CreateRenderBundleEncoder(desc *hal.RenderBundleEncoderDescriptor) (hal.RenderBundleEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	enc := &BundleEncoder{Desc: *desc}
	d.BundleEncoders = append(d.BundleEncoders, enc)
	return enc, nil
}

// DestroyRenderBundle counts destroyed bundles.
func (d *Device) DestroyRenderBundle(hal.RenderBundle) {
	d.mu.Lock()
	d.BundlesDestroyed++
	d.mu.Unlock()
}

// CreateCommandEncoder returns a recording command encoder.
func (d *Device) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	enc := &CommandEncoder{CommandEncoder: &noop.CommandEncoder{}, Label: desc.Label}
	d.Encoders = append(d.Encoders, enc)
	return enc, nil
}

// BufferBytes returns the in-memory contents of a noop-backed buffer.
func (d *Device) BufferBytes(buf hal.Buffer, size uint64) ([]byte, error) {
	m, err := d.Device.MapBuffer(buf, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map buffer: %w", err)
	}
	return unsafe.Slice((*byte)(m.Ptr), size), nil //nolint:gosec // noop buffer memory
}

// Command is one call recorded into a bundle or render pass.
type Command struct {
	Op            string
	Pipeline      hal.RenderPipeline
	Index         uint32
	BindGroup     hal.BindGroup
	Buffer        hal.Buffer
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
	Bundle        hal.RenderBundle
}

// BundleEncoder records render bundle commands.
type BundleEncoder struct {
	Desc     hal.RenderBundleEncoderDescriptor
	Commands []Command
	Finished *Bundle
}

// SetPipeline records the call.
func (e *BundleEncoder) SetPipeline(p hal.RenderPipeline) {
	e.Commands = append(e.Commands, Command{Op: "SetPipeline", Pipeline: p})
}

// SetBindGroup records the call.
func (e *BundleEncoder) SetBindGroup(index uint32, g hal.BindGroup, _ []uint32) {
	e.Commands = append(e.Commands, Command{Op: "SetBindGroup", Index: index, BindGroup: g})
}

// SetVertexBuffer records the call.
func (e *BundleEncoder) SetVertexBuffer(slot uint32, b hal.Buffer, _ uint64) {
	e.Commands = append(e.Commands, Command{Op: "SetVertexBuffer", Index: slot, Buffer: b})
}

// SetIndexBuffer records the call.
func (e *BundleEncoder) SetIndexBuffer(b hal.Buffer, _ gputypes.IndexFormat, _ uint64) {
	e.Commands = append(e.Commands, Command{Op: "SetIndexBuffer", Buffer: b})
}

// Draw records the call.
func (e *BundleEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.Commands = append(e.Commands, Command{
		Op: "Draw", VertexCount: vertexCount, InstanceCount: instanceCount,
		FirstVertex: firstVertex, FirstInstance: firstInstance,
	})
}

// DrawIndexed records the call.
func (e *BundleEncoder) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, firstInstance uint32) {
	e.Commands = append(e.Commands, Command{
		Op: "DrawIndexed", VertexCount: indexCount, InstanceCount: instanceCount, FirstInstance: firstInstance,
	})
}

// Finish seals the bundle.
func (e *BundleEncoder) Finish() hal.RenderBundle {
	e.Finished = &Bundle{Label: e.Desc.Label, Commands: e.Commands}
	return e.Finished
}

// Bundle is a finished recorded bundle.
type Bundle struct {
	noop.Resource
	Label    string
	Commands []Command
}

// Draws returns the Draw commands of the bundle.
func (b *Bundle) Draws() []Command {
	var out []Command
	for _, c := range b.Commands {
		if c.Op == "Draw" || c.Op == "DrawIndexed" {
			out = append(out, c)
		}
	}
	return out
}

// CommandEncoder records render passes.
type CommandEncoder struct {
	*noop.CommandEncoder
	Label  string
	Passes []*RenderPass
	Ended  bool
}

// BeginRenderPass captures the descriptor and returns a recording pass.
func (c *CommandEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	rp := &RenderPass{RenderPassEncoder: &noop.RenderPassEncoder{}, Desc: *desc}
	c.Passes = append(c.Passes, rp)
	return rp
}

// EndEncoding marks the encoder finished.
func (c *CommandEncoder) EndEncoding() (hal.CommandBuffer, error) {
	c.Ended = true
	return c.CommandEncoder.EndEncoding()
}

// Scissor is one SetScissorRect call and the number of bundles executed
// before it.
type Scissor struct {
	X, Y, W, H uint32
	After      int
}

// RenderPass records executed bundles and scissor changes.
type RenderPass struct {
	*noop.RenderPassEncoder
	Desc     hal.RenderPassDescriptor
	Bundles  []hal.RenderBundle
	Scissors []Scissor
	Finished bool
}

// ExecuteBundle records the bundle.
func (r *RenderPass) ExecuteBundle(b hal.RenderBundle) {
	r.Bundles = append(r.Bundles, b)
}

// SetScissorRect records the rectangle.
func (r *RenderPass) SetScissorRect(x, y, w, h uint32) {
	r.Scissors = append(r.Scissors, Scissor{X: x, Y: y, W: w, H: h, After: len(r.Bundles)})
}

// End marks the pass finished.
func (r *RenderPass) End() { r.Finished = true }
