// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gputest

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Surface wraps a noop surface with failure injection.
type Surface struct {
	noop.Surface

	// FailNext is returned by the next AcquireTexture call, then cleared.
	FailNext  error
	Configs   []hal.SurfaceConfiguration
	Acquired  int
	Discarded int
	Unconfigs int
}

// Configure records the configuration.
func (s *Surface) Configure(d hal.Device, cfg *hal.SurfaceConfiguration) error {
	s.Configs = append(s.Configs, *cfg)
	return s.Surface.Configure(d, cfg)
}

// Unconfigure counts the call.
func (s *Surface) Unconfigure(d hal.Device) {
	s.Unconfigs++
	s.Surface.Unconfigure(d)
}

// AcquireTexture fails once with FailNext when set.
func (s *Surface) AcquireTexture(f hal.Fence) (*hal.AcquiredSurfaceTexture, error) {
	if err := s.FailNext; err != nil {
		s.FailNext = nil
		return nil, err
	}
	s.Acquired++
	return s.Surface.AcquireTexture(f)
}

// DiscardTexture counts the call.
func (s *Surface) DiscardTexture(t hal.SurfaceTexture) {
	s.Discarded++
	s.Surface.DiscardTexture(t)
}

// Adapter is a noop adapter whose features and multisample support are
// configurable, and whose devices are recording fakes.
type Adapter struct {
	noop.Adapter
	NoMultisample bool
	Device        *Device
	Queue         *Queue
	OpenFeatures  gputypes.Features
	OpenLimits    gputypes.Limits
}

// Open returns the adapter's fake device and queue.
func (a *Adapter) Open(features gputypes.Features, limits gputypes.Limits) (hal.OpenDevice, error) {
	a.OpenFeatures = features
	a.OpenLimits = limits
	if a.Device == nil {
		a.Device = &Device{Device: &noop.Device{}}
		a.Queue = &Queue{Queue: &noop.Queue{}}
	}
	return hal.OpenDevice{Device: a.Device, Queue: a.Queue}, nil
}

// TextureFormatCapabilities drops multisample flags when NoMultisample is set.
func (a *Adapter) TextureFormatCapabilities(f gputypes.TextureFormat) hal.TextureFormatCapabilities {
	caps := a.Adapter.TextureFormatCapabilities(f)
	if a.NoMultisample {
		caps.Flags &^= hal.TextureFormatCapabilityMultisample | hal.TextureFormatCapabilityMultisampleResolve
	}
	return caps
}

// Instance enumerates a single configurable adapter, or none.
type Instance struct {
	noop.Instance
	Adapter  *Adapter
	Features gputypes.Features
	Surface  *Surface
	// NoAdapters makes EnumerateAdapters return nothing.
	NoAdapters bool
}

// NewInstance returns an instance exposing one adapter with features.
func NewInstance(features gputypes.Features) *Instance {
	return &Instance{Adapter: &Adapter{}, Features: features}
}

// CreateSurface returns a fake surface.
func (i *Instance) CreateSurface(_, _ uintptr) (hal.Surface, error) {
	i.Surface = &Surface{}
	return i.Surface, nil
}

// EnumerateAdapters returns the configured adapter.
func (i *Instance) EnumerateAdapters(hint hal.Surface) []hal.ExposedAdapter {
	if i.NoAdapters {
		return nil
	}
	exposed := i.Instance.EnumerateAdapters(hint)
	for n := range exposed {
		exposed[n].Adapter = i.Adapter
		exposed[n].Features = i.Features
	}
	return exposed
}
