// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// sampleCounts are the MSAA levels a context may select, highest first.
var sampleCounts = [...]uint32{16, 8, 4, 2, 1}

// assumedMaxSamples is the level assumed when a format reports multisample
// and resolve support. hal does not expose per-count flags.
const assumedMaxSamples = 4

// SelectSampleCount returns the highest supported level that does not
// exceed min(requested, supported).
func SelectSampleCount(requested, supported uint32) uint32 {
	limit := min(requested, supported)
	for _, n := range sampleCounts {
		if n <= limit {
			return n
		}
	}
	return 1
}

// maxSampleCount queries the adapter for multisample support of format.
// A nil adapter is treated as supporting the assumed maximum.
func maxSampleCount(adapter hal.Adapter, format gputypes.TextureFormat) uint32 {
	if adapter == nil {
		return assumedMaxSamples
	}
	const need = hal.TextureFormatCapabilityMultisample | hal.TextureFormatCapabilityMultisampleResolve
	caps := adapter.TextureFormatCapabilities(format)
	if caps.Flags&need != need {
		return 1
	}
	return assumedMaxSamples
}
