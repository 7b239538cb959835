// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/gfx"
)

// Instruction is one recorded bundle, the elevation used to order it
// against bundles of other kinds in the same phase, and the section of
// the canvas it is clipped to.
type Instruction struct {
	Bundle    hal.RenderBundle
	Elevation float32
	Clip      attr.ClipSection
}

// Renderer is the lifecycle contract of a renderer kind.
//
// Create runs once after registration. Every frame then calls
// PreparePackages with the kind's queue, PrepareResources and Record in
// that order. Instructions is read only after Record reported a change.
type Renderer interface {
	// Name identifies the kind in logs and errors.
	Name() string
	// Phase is constant for the lifetime of the kind.
	Phase() Phase

	// Create builds the pipeline, fixed geometry and per-kind resources.
	Create(ctx *gfx.Context) error
	// PreparePackages applies the queue's removals, then its packets.
	PreparePackages(ctx *gfx.Context, q *bus.Queue) error
	// PrepareResources flushes instance writes and per-kind uniforms.
	PrepareResources(ctx *gfx.Context) error
	// Record re-records bundles if the kind changed. It reports whether
	// the bundle set is different from the previous frame.
	Record(ctx *gfx.Context) (bool, error)
	// Instructions returns the current bundles.
	Instructions() []Instruction

	// Destroy releases every GPU resource of the kind.
	Destroy()
}
