// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Window is the host window a Context presents to.
type Window struct {
	// Display and Handle are the native handles passed to
	// hal.Instance.CreateSurface.
	Display, Handle uintptr

	// Provider reports the logical size and scale factor of the window.
	// It may be nil when the host configures the context explicitly.
	Provider gpucontext.WindowProvider
}

// Context owns the device, queue and surface of the render core and the
// targets derived from the surface.
//
// Context is not safe for concurrent use; it belongs to the render
// goroutine.
type Context struct {
	adapter    hal.Adapter
	info       gputypes.AdapterInfo
	device     hal.Device
	queue      hal.Queue
	surface    hal.Surface
	ownsDevice bool

	opts        Options
	format      gputypes.TextureFormat
	alphaMode   gputypes.CompositeAlphaMode
	presentMode gputypes.PresentMode
	maxSamples  uint32
	samples     uint32

	extent     Extent
	scale      float32
	configured bool

	targets  targets
	viewport *Viewport
}

// Acquire creates a surface for win, selects the first adapter exposing
// opts.RequiredFeatures and opens a device on it. Every failure matches
// ErrGfxInit.
func Acquire(instance hal.Instance, win Window, opts Options) (*Context, error) {
	surface, err := instance.CreateSurface(win.Display, win.Handle)
	if err != nil {
		return nil, initError("create surface", err)
	}
	exposed, err := selectAdapter(instance.EnumerateAdapters(surface), opts.RequiredFeatures)
	if err != nil {
		surface.Destroy()
		return nil, err
	}

	limits := gputypes.DefaultLimits()
	if opts.Downlevel {
		limits = gputypes.DownlevelLimits()
	}
	open, err := exposed.Adapter.Open(opts.RequiredFeatures, limits)
	if err != nil {
		surface.Destroy()
		return nil, initError("open device", err)
	}

	c, err := newContext(open.Device, open.Queue, surface, exposed.Adapter, 0, opts)
	if err != nil {
		surface.Destroy()
		open.Device.Destroy()
		return nil, err
	}
	c.info = exposed.Info
	c.ownsDevice = true

	slogger().Info("gfx: adapter selected",
		"name", exposed.Info.Name,
		"backend", exposed.Info.Backend.String(),
		"format", c.format.String(),
		"msaa_max", c.maxSamples,
		"downlevel", opts.Downlevel)
	return c, nil
}

// New wraps an opened device and a surface. Without an adapter the
// multisample query assumes the usual maximum and the surface format is
// BGRA8Unorm.
func New(device hal.Device, queue hal.Queue, surface hal.Surface, opts Options) (*Context, error) {
	return newContext(device, queue, surface, nil, gputypes.TextureFormatBGRA8Unorm, opts)
}

// FromProvider shares the device of a host that exposes its HAL types
// through HalDevice() any and HalQueue() any.
func FromProvider(provider gpucontext.DeviceProvider, surface hal.Surface, opts Options) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, initError("provider does not expose HAL types", nil)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, initError("provider HalDevice is not hal.Device", nil)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, initError("provider HalQueue is not hal.Queue", nil)
	}
	adapter, _ := provider.Adapter().(hal.Adapter)
	return newContext(device, queue, surface, adapter, provider.SurfaceFormat(), opts)
}

func selectAdapter(adapters []hal.ExposedAdapter, required gputypes.Features) (hal.ExposedAdapter, error) {
	if len(adapters) == 0 {
		return hal.ExposedAdapter{}, initError("no compatible adapter", nil)
	}
	for _, a := range adapters {
		if a.Features.ContainsAll(required) {
			return a, nil
		}
	}
	return hal.ExposedAdapter{}, initError(fmt.Sprintf("required features %#x not available", uint64(required)), nil)
}

func newContext(device hal.Device, queue hal.Queue, surface hal.Surface, adapter hal.Adapter, format gputypes.TextureFormat, opts Options) (*Context, error) {
	if device == nil || queue == nil {
		return nil, initError("nil device or queue", nil)
	}
	if surface == nil {
		return nil, initError("nil surface", nil)
	}
	c := &Context{
		adapter:     adapter,
		device:      device,
		queue:       queue,
		surface:     surface,
		opts:        opts,
		format:      format,
		alphaMode:   gputypes.CompositeAlphaModeOpaque,
		presentMode: opts.PresentMode,
		scale:       1,
	}
	if adapter != nil {
		c.applySurfaceCapabilities(adapter.SurfaceCapabilities(surface))
	}
	if c.format == gputypes.TextureFormatUndefined {
		c.format = gputypes.TextureFormatBGRA8Unorm
	}
	c.maxSamples = maxSampleCount(adapter, c.format)
	c.samples = SelectSampleCount(opts.SampleCount, c.maxSamples)

	vp, err := newViewport(device, queue, Section{W: 1, H: 1}, opts.Near, opts.Far, 1)
	if err != nil {
		return nil, initError("viewport", err)
	}
	c.viewport = vp
	return c, nil
}

func (c *Context) applySurfaceCapabilities(caps *hal.SurfaceCapabilities) {
	if caps == nil {
		return
	}
	if c.format == gputypes.TextureFormatUndefined && len(caps.Formats) > 0 {
		c.format = caps.Formats[0]
	}
	if !slices.Contains(caps.AlphaModes, gputypes.CompositeAlphaModeOpaque) && len(caps.AlphaModes) > 0 {
		c.alphaMode = caps.AlphaModes[0]
	}
	if !slices.Contains(caps.PresentModes, c.presentMode) {
		c.presentMode = gputypes.PresentModeFifo
	}
}

// Configure builds the swapchain for extent (physical pixels), creates or
// reuses the depth and MSAA targets at the same size and updates the
// viewport to the logical size extent/scale.
func (c *Context) Configure(extent Extent, scale float32) error {
	if extent.Empty() {
		return fmt.Errorf("gfx: configure %dx%d: %w", extent.Width, extent.Height, hal.ErrZeroArea)
	}
	if scale <= 0 {
		scale = 1
	}
	err := c.surface.Configure(c.device, &hal.SurfaceConfiguration{
		Width:       extent.Width,
		Height:      extent.Height,
		Format:      c.format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: c.presentMode,
		AlphaMode:   c.alphaMode,
	})
	if err != nil {
		return fmt.Errorf("gfx: configure surface: %w", err)
	}
	if err := c.targets.ensure(c.device, extent, c.samples, c.format); err != nil {
		return fmt.Errorf("gfx: %w", err)
	}

	c.viewport.section.W = float32(extent.Width) / scale
	c.viewport.section.H = float32(extent.Height) / scale
	if err := c.viewport.setScale(scale); err != nil {
		return fmt.Errorf("gfx: %w", err)
	}
	c.extent = extent
	c.scale = scale
	c.configured = true

	slogger().Info("gfx: surface configured",
		"width", extent.Width,
		"height", extent.Height,
		"scale", scale,
		"msaa", c.samples)
	return nil
}

// ConfigureWindow configures the context from the window's logical size
// and scale factor.
func (c *Context) ConfigureWindow(w gpucontext.WindowProvider) error {
	width, height := w.Size()
	sf := w.ScaleFactor()
	if sf <= 0 {
		sf = 1
	}
	extent := Extent{
		Width:  uint32(float64(width) * sf),  //nolint:gosec // window sizes fit uint32
		Height: uint32(float64(height) * sf), //nolint:gosec // window sizes fit uint32
	}
	return c.Configure(extent, float32(sf))
}

// Resize rebuilds the swapchain, targets and viewport for extent. Resizing
// to the current extent is a no-op.
func (c *Context) Resize(extent Extent) error {
	if c.configured && extent == c.extent {
		return nil
	}
	return c.Configure(extent, c.scale)
}

// Reconfigure rebuilds the swapchain at the current extent after
// ErrSurfaceLost.
func (c *Context) Reconfigure() error {
	if !c.configured {
		return ErrNotConfigured
	}
	return c.Configure(c.extent, c.scale)
}

// Frame is an acquired swapchain texture and its view.
type Frame struct {
	Texture    hal.SurfaceTexture
	View       hal.TextureView
	Suboptimal bool
}

// SurfaceTexture acquires the next swapchain texture. A lost or outdated
// surface is reported as ErrSurfaceLost; the caller reconfigures and skips
// the frame.
func (c *Context) SurfaceTexture() (*Frame, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}
	acquired, err := c.surface.AcquireTexture(nil)
	if err != nil {
		if errors.Is(err, hal.ErrSurfaceLost) || errors.Is(err, hal.ErrSurfaceOutdated) {
			slogger().Warn("gfx: surface lost", "err", err)
			return nil, fmt.Errorf("%w: %w", ErrSurfaceLost, err)
		}
		return nil, fmt.Errorf("gfx: acquire surface texture: %w", err)
	}
	view, err := c.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:           "foliage_surface_view",
		Format:          c.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		c.surface.DiscardTexture(acquired.Texture)
		return nil, fmt.Errorf("gfx: create surface view: %w", err)
	}
	return &Frame{Texture: acquired.Texture, View: view, Suboptimal: acquired.Suboptimal}, nil
}

// Present queues f for presentation and releases its view.
func (c *Context) Present(f *Frame) error {
	defer c.device.DestroyTextureView(f.View)
	if err := c.queue.Present(c.surface, f.Texture, nil); err != nil {
		if errors.Is(err, hal.ErrSurfaceLost) || errors.Is(err, hal.ErrSurfaceOutdated) {
			return fmt.Errorf("%w: %w", ErrSurfaceLost, err)
		}
		return fmt.Errorf("gfx: present: %w", err)
	}
	if f.Suboptimal {
		slogger().Debug("gfx: suboptimal surface texture presented")
	}
	return nil
}

// Discard returns f to the swapchain without presenting it.
func (c *Context) Discard(f *Frame) {
	c.surface.DiscardTexture(f.Texture)
	c.device.DestroyTextureView(f.View)
}

// ColorAttachment returns the color attachment for a frame whose swapchain
// view is view. With MSAA the multisampled target is rendered and resolved
// into view, and its own contents are discarded.
func (c *Context) ColorAttachment(view hal.TextureView) hal.RenderPassColorAttachment {
	if c.samples > 1 && c.targets.msaaView != nil {
		return hal.RenderPassColorAttachment{
			View:          c.targets.msaaView,
			ResolveTarget: view,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpDiscard,
			ClearValue:    c.opts.ClearColor,
		}
	}
	return hal.RenderPassColorAttachment{
		View:       view,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: c.opts.ClearColor,
	}
}

// DepthStencilAttachment returns the depth stencil attachment, cleared to
// depth 1 and stencil 0.
func (c *Context) DepthStencilAttachment() *hal.RenderPassDepthStencilAttachment {
	return &hal.RenderPassDepthStencilAttachment{
		View:              c.targets.depthView,
		DepthLoadOp:       gputypes.LoadOpClear,
		DepthStoreOp:      gputypes.StoreOpDiscard,
		DepthClearValue:   1.0,
		StencilLoadOp:     gputypes.LoadOpClear,
		StencilStoreOp:    gputypes.StoreOpDiscard,
		StencilClearValue: 0,
	}
}

// Device returns the device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// Format returns the swapchain color format.
func (c *Context) Format() gputypes.TextureFormat { return c.format }

// SampleCount returns the effective MSAA level.
func (c *Context) SampleCount() uint32 { return c.samples }

// MaxSampleCount returns the highest MSAA level the adapter supports for
// the swapchain format.
func (c *Context) MaxSampleCount() uint32 { return c.maxSamples }

// Extent returns the configured surface size in physical pixels.
func (c *Context) Extent() Extent { return c.extent }

// Scale returns the configured scale factor.
func (c *Context) Scale() float32 { return c.scale }

// Configured reports whether Configure has succeeded.
func (c *Context) Configured() bool { return c.configured }

// Viewport returns the viewport uniform.
func (c *Context) Viewport() *Viewport { return c.viewport }

// AdapterInfo returns the adapter description, empty for New.
func (c *Context) AdapterInfo() gputypes.AdapterInfo { return c.info }

// Close releases the targets and the viewport, unconfigures the surface
// and, for contexts created by Acquire, destroys the surface and device.
func (c *Context) Close() {
	c.targets.destroy(c.device)
	if c.viewport != nil {
		c.viewport.destroy()
		c.viewport = nil
	}
	if c.configured {
		c.surface.Unconfigure(c.device)
		c.configured = false
	}
	if c.ownsDevice {
		c.surface.Destroy()
		c.device.Destroy()
	}
}
