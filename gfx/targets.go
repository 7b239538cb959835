// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targets holds the per-surface render targets: the depth stencil texture
// and, when multisampling, the MSAA color texture that resolves into the
// swapchain view.
type targets struct {
	depthTex  hal.Texture
	depthView hal.TextureView
	msaaTex   hal.Texture
	msaaView  hal.TextureView
	extent    Extent
	samples   uint32
	format    gputypes.TextureFormat
}

// ensure creates or recreates the targets if the extent, sample count or
// color format differs from the current set. Matching targets are reused.
func (t *targets) ensure(device hal.Device, extent Extent, samples uint32, format gputypes.TextureFormat) error {
	if t.depthTex != nil && t.extent == extent && t.samples == samples && t.format == format {
		return nil
	}
	t.destroy(device)

	size := hal.Extent3D{Width: extent.Width, Height: extent.Height, DepthOrArrayLayers: 1}

	depthTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "foliage_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	t.depthTex = depthTex

	depthView, err := device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label:     "foliage_depth_stencil_view",
		Format:    DepthFormat,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("create depth view: %w", err)
	}
	t.depthView = depthView

	if samples > 1 {
		msaaTex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         "foliage_msaa_color",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   samples,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			t.destroy(device)
			return fmt.Errorf("create MSAA color texture: %w", err)
		}
		t.msaaTex = msaaTex

		msaaView, err := device.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
			Label:     "foliage_msaa_color_view",
			Format:    format,
			Dimension: gputypes.TextureViewDimension2D,
			Aspect:    gputypes.TextureAspectAll,
		})
		if err != nil {
			t.destroy(device)
			return fmt.Errorf("create MSAA color view: %w", err)
		}
		t.msaaView = msaaView
	}

	t.extent = extent
	t.samples = samples
	t.format = format
	return nil
}

// destroy releases every target and resets the recorded extent.
func (t *targets) destroy(device hal.Device) {
	if t.msaaView != nil {
		device.DestroyTextureView(t.msaaView)
		t.msaaView = nil
	}
	if t.msaaTex != nil {
		device.DestroyTexture(t.msaaTex)
		t.msaaTex = nil
	}
	if t.depthView != nil {
		device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depthTex != nil {
		device.DestroyTexture(t.depthTex)
		t.depthTex = nil
	}
	t.extent = Extent{}
	t.samples = 0
}
