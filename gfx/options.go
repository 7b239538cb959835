// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import "github.com/gogpu/gputypes"

// DepthFormat is the format of the depth stencil target.
const DepthFormat = gputypes.TextureFormatDepth24PlusStencil8

// Options configures a Context.
type Options struct {
	// SampleCount is the requested MSAA level. The effective count is
	// clamped to what the adapter supports.
	SampleCount uint32

	// Near and Far bound the elevation range of the viewport projection.
	Near, Far float32

	// RequiredFeatures must all be exposed by the adapter.
	RequiredFeatures gputypes.Features

	// Downlevel opens the device with downlevel limits, for WebGL2-class
	// targets.
	Downlevel bool

	// PresentMode is the swapchain present mode.
	PresentMode gputypes.PresentMode

	// ClearColor is the color the frame is cleared to.
	ClearColor gputypes.Color
}

// DefaultOptions returns the options used when none are given: 4x MSAA,
// elevations in [0, 100], vsync presentation and a white clear color.
func DefaultOptions() Options {
	return Options{
		SampleCount:      4,
		Near:             0,
		Far:              100,
		RequiredFeatures: gputypes.Features(gputypes.FeatureTextureAdapterSpecificFormatFeatures),
		PresentMode:      gputypes.PresentModeFifo,
		ClearColor:       gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}
}

// Extent is a surface size in physical pixels.
type Extent struct {
	Width, Height uint32
}

// Empty reports whether either dimension is zero.
func (e Extent) Empty() bool { return e.Width == 0 || e.Height == 0 }
