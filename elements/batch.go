// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/instance"
	"github.com/gogpu/foliage/render"
	"github.com/gogpu/foliage/world"
)

// batch is the instanced draw shared by every element kind: one
// coordinator, one pipeline and one bundle per segment.
type batch[K comparable] struct {
	spec     pipelineSpec
	capacity int

	ctx   *gfx.Context
	coord *instance.Coordinator[K]
	binds []binding
	pipe  *pipeline
	// extra are bind groups after the viewport.
	extra []hal.BindGroup

	// clips holds the clip section of every clipped key.
	clips map[K]attr.ClipSection

	bundles      []hal.RenderBundle
	retired      []hal.RenderBundle
	instructions []render.Instruction
	segs         []segment
	scratch      []segment
	recorded     recordKey
	stale        bool
}

// segment is a run of consecutive indices sharing one clip section. Holes
// belong to the segment they sit in, or to the nearest one at either end.
type segment struct {
	first, count int
	clip         attr.ClipSection
	elevation    float32
}

// recordKey captures what a recorded bundle depends on: the instance
// count, the column buffers (replaced on growth) and the draw order.
type recordKey struct {
	count    int
	grows    int
	reorders int
}

// Name returns the kind name.
func (b *batch[K]) Name() string { return b.spec.label }

// Phase returns the kind's render phase.
func (b *batch[K]) Phase() render.Phase { return b.spec.phase }

// Instances returns the kind's instance table. It is nil before Create.
func (b *batch[K]) Instances() *instance.Coordinator[K] { return b.coord }

func (b *batch[K]) create(ctx *gfx.Context, columns func() error) error {
	coord, err := instance.New[K](ctx.Device(), ctx.Queue(), b.spec.label, b.capacity)
	if err != nil {
		return err
	}
	b.ctx = ctx
	b.coord = coord
	b.clips = make(map[K]attr.ClipSection)
	if err := columns(); err != nil {
		b.coord.Destroy()
		return err
	}
	pipe, err := newPipeline(ctx, b.spec, coord.Layouts(1))
	if err != nil {
		b.coord.Destroy()
		return err
	}
	b.pipe = pipe
	b.stale = true
	slogger().Debug("elements: kind ready",
		"kind", b.spec.label,
		"phase", b.spec.phase,
		"vertices", pipe.vertexCount,
		"msaa", pipe.samples)
	return nil
}

// PrepareResources uploads the staged instance writes.
func (b *batch[K]) PrepareResources(*gfx.Context) error {
	if err := b.coord.Flush(); err != nil {
		return fmt.Errorf("%s: %w", b.spec.label, err)
	}
	return nil
}

// Record re-records the kind's bundles when its instance count, column
// buffers, order, clip segments or bind groups changed. Value-only writes
// reuse the bundles; an elevation change that left the order intact only
// republishes the instructions.
func (b *batch[K]) Record(*gfx.Context) (bool, error) {
	b.destroyRetired()
	stats := b.coord.Stats()
	key := recordKey{count: b.coord.Count(), grows: stats.Grows, reorders: stats.Reorders}
	b.coord.ClearDirty()
	next := b.segments(b.scratch[:0])
	b.scratch = b.segs
	b.segs = next
	if key == b.recorded && !b.stale && sameSpans(b.scratch, next) {
		changed := false
		for i, sg := range next {
			if b.instructions[i].Elevation != sg.elevation {
				b.instructions[i].Elevation = sg.elevation
				changed = true
			}
		}
		return changed, nil
	}
	b.recorded = key
	b.stale = false

	had := len(b.bundles) > 0
	b.retired = append(b.retired, b.bundles...)
	b.bundles = b.bundles[:0]
	b.instructions = b.instructions[:0]

	for _, sg := range next {
		enc, err := b.pipe.bundleEncoder()
		if err != nil {
			b.stale = true
			return false, err
		}
		b.pipe.begin(enc, b.ctx.Viewport().BindGroup(), b.extra...)
		b.coord.Bind(enc, 1)
		enc.Draw(b.pipe.vertexCount, uint32(sg.count), 0, uint32(sg.first)) //nolint:gosec // instance indices fit uint32
		bundle := enc.Finish()
		b.bundles = append(b.bundles, bundle)
		b.instructions = append(b.instructions, render.Instruction{
			Bundle:    bundle,
			Elevation: sg.elevation,
			Clip:      sg.clip,
		})
	}
	if len(next) > 0 {
		slogger().Debug("elements: recorded",
			"kind", b.spec.label,
			"instances", key.count,
			"segments", len(next))
	}
	return had || len(next) > 0, nil
}

// Instructions returns the kind's current bundles.
func (b *batch[K]) Instructions() []render.Instruction { return b.instructions }

// segments splits the table into runs of equal clip section. A segment's
// elevation is the lowest order elevation among its keys.
func (b *batch[K]) segments(out []segment) []segment {
	lead := 0
	for i := range b.coord.Count() {
		k, ok := b.coord.KeyAt(i)
		if !ok {
			if len(out) == 0 {
				lead++
			} else {
				out[len(out)-1].count++
			}
			continue
		}
		clip := b.clips[k]
		o, _ := b.coord.Order(k)
		if n := len(out); n > 0 && out[n-1].clip == clip {
			out[n-1].count++
			out[n-1].elevation = min(out[n-1].elevation, o.Elevation)
			continue
		}
		out = append(out, segment{first: i - lead, count: lead + 1, clip: clip, elevation: o.Elevation})
		lead = 0
	}
	return out
}

func sameSpans(a, b []segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].first != b[i].first || a[i].count != b[i].count || a[i].clip != b[i].clip {
			return false
		}
	}
	return true
}

// setClip records k's clip section. The zero section forgets it.
func (b *batch[K]) setClip(k K, clip attr.ClipSection) {
	if clip.Clipped() {
		b.clips[k] = clip
		return
	}
	delete(b.clips, k)
}

func (b *batch[K]) destroyRetired() {
	for _, r := range b.retired {
		b.ctx.Device().DestroyRenderBundle(r)
	}
	b.retired = b.retired[:0]
}

func (b *batch[K]) destroy() {
	if b.ctx == nil {
		return
	}
	b.destroyRetired()
	for _, bundle := range b.bundles {
		b.ctx.Device().DestroyRenderBundle(bundle)
	}
	b.bundles = nil
	b.instructions = nil
	b.segs = nil
	if b.coord != nil {
		b.coord.Destroy()
	}
	if b.pipe != nil {
		b.pipe.destroy()
		b.pipe = nil
	}
}

// prepareEntities applies q to an entity-keyed kind: removals first, then
// packets in entity order. after runs for each packet once the bound
// columns are written.
func prepareEntities(b *batch[world.Entity], q *bus.Queue, after func(world.Entity, bus.Packet) error) error {
	for _, r := range q.RetrieveRemovals() {
		switch r.Reason {
		case bus.Despawn:
			b.coord.Remove(r.Entity)
			delete(b.clips, r.Entity)
			for _, bd := range b.binds {
				if f, ok := bd.(forgetter); ok {
					f.forget(r.Entity)
				}
			}
		default:
			b.coord.Blank(r.Entity)
		}
	}
	for _, e := range q.Entities() {
		p, _ := q.RetrievePacket(e)
		if _, fresh := b.coord.Allocate(e); !fresh && b.coord.State(e) == instance.Blanked {
			b.coord.Show(e)
		}
		if err := applyClip(b, e, p); err != nil {
			return fmt.Errorf("%s %v: %w", b.spec.label, e, err)
		}
		for _, bd := range b.binds {
			if err := bd.apply(e, p); err != nil {
				return fmt.Errorf("%s %v: %w", b.spec.label, e, err)
			}
		}
		if after != nil {
			if err := after(e, p); err != nil {
				return fmt.Errorf("%s %v: %w", b.spec.label, e, err)
			}
		}
	}
	return nil
}

// applyClip moves a ClipSection from p into the kind's clip table.
func applyClip(b *batch[world.Entity], e world.Entity, p bus.Packet) error {
	if bus.Removed[attr.ClipSection](p) {
		b.setClip(e, attr.ClipSection{})
		return nil
	}
	clip, ok, err := bus.Get[attr.ClipSection](p)
	if err != nil {
		return err
	}
	if ok {
		b.setClip(e, clip)
	}
	return nil
}
