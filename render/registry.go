// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/world"
)

// leaflet holds the lifecycle entry points of one registered kind. The
// method values are bound once at registration.
type leaflet struct {
	link     world.RenderLink
	name     string
	phase    Phase
	renderer Renderer
	created  bool

	prepareP func(*gfx.Context, *bus.Queue) error
	prepareR func(*gfx.Context) error
	record   func(*gfx.Context) (bool, error)
}

// Stats counts registry activity.
type Stats struct {
	Frames    int
	Recorded  int
	Unknown   int
	Destroyed int
}

// Registry dispatches frames to registered renderer kinds in registration
// order. It is not safe for concurrent use.
type Registry struct {
	leaflets []*leaflet
	byLink   map[world.RenderLink]*leaflet
	groups   *Groups
	created  bool
	stats    Stats
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLink: make(map[world.RenderLink]*leaflet),
		groups: NewGroups(),
	}
}

// Register adds r under link. It panics if r is nil or link is already
// registered. Registering after Create is allowed; the kind is created on
// the next Frame.
func (reg *Registry) Register(link world.RenderLink, r Renderer) {
	if r == nil {
		panic("render: Register renderer is nil")
	}
	if prev, dup := reg.byLink[link]; dup {
		panic(fmt.Sprintf("render: Register called twice for link %#x (%s, %s)", uint64(link), prev.name, r.Name()))
	}
	lf := &leaflet{
		link:     link,
		name:     r.Name(),
		phase:    r.Phase(),
		renderer: r,
		prepareP: r.PreparePackages,
		prepareR: r.PrepareResources,
		record:   r.Record,
	}
	reg.leaflets = append(reg.leaflets, lf)
	reg.byLink[link] = lf
	reg.groups.Add(link, lf.phase, len(reg.leaflets)-1)
	reg.created = false
}

// Create builds the resources of every registered kind not created yet.
func (reg *Registry) Create(ctx *gfx.Context) error {
	for _, lf := range reg.leaflets {
		if lf.created {
			continue
		}
		if err := lf.renderer.Create(ctx); err != nil {
			return fmt.Errorf("render: create %s: %w", lf.name, err)
		}
		lf.created = true
		slogger().Debug("render: kind created", "kind", lf.name, "phase", lf.phase)
	}
	reg.created = true
	return nil
}

// Frame hands each kind its queue from pkg, prepares and records it, and
// returns the ordered instructions for the composer. The returned slice is
// the same slice as the previous frame's when no kind re-recorded.
func (reg *Registry) Frame(ctx *gfx.Context, pkg *bus.Package) ([]Instruction, error) {
	if !reg.created {
		if err := reg.Create(ctx); err != nil {
			return nil, err
		}
	}
	for _, link := range pkg.Links() {
		if _, ok := reg.byLink[link]; ok {
			continue
		}
		q := pkg.Obtain(link)
		n := q.Len()
		q.RetrieveRemovals()
		for _, e := range q.Entities() {
			q.RetrievePacket(e)
		}
		reg.stats.Unknown += n
		slogger().Warn("render: dropping traffic", "link", uint64(link), "entries", n, "err", ErrUnknownKind)
	}

	for _, lf := range reg.leaflets {
		if err := lf.prepareP(ctx, pkg.Obtain(lf.link)); err != nil {
			return nil, fmt.Errorf("render: prepare packages %s: %w", lf.name, err)
		}
		if err := lf.prepareR(ctx); err != nil {
			return nil, fmt.Errorf("render: prepare resources %s: %w", lf.name, err)
		}
		changed, err := lf.record(ctx)
		if err != nil {
			return nil, fmt.Errorf("render: record %s: %w", lf.name, err)
		}
		if changed {
			reg.groups.Replace(lf.link, lf.renderer.Instructions())
			reg.stats.Recorded++
			slogger().Debug("render: kind re-recorded", "kind", lf.name)
		}
	}
	reg.stats.Frames++
	return reg.groups.Instructions(), nil
}

// Groups returns the instruction groups.
func (reg *Registry) Groups() *Groups { return reg.groups }

// Renderer returns the renderer registered under link.
func (reg *Registry) Renderer(link world.RenderLink) (Renderer, bool) {
	lf, ok := reg.byLink[link]
	if !ok {
		return nil, false
	}
	return lf.renderer, true
}

// Len returns the number of registered kinds.
func (reg *Registry) Len() int { return len(reg.leaflets) }

// Stats returns the registry counters.
func (reg *Registry) Stats() Stats { return reg.stats }

// Destroy releases every kind in reverse registration order.
func (reg *Registry) Destroy() {
	for i := len(reg.leaflets) - 1; i >= 0; i-- {
		lf := reg.leaflets[i]
		if !lf.created {
			continue
		}
		lf.renderer.Destroy()
		lf.created = false
		reg.stats.Destroyed++
	}
	reg.groups.Reset()
	reg.created = false
}
