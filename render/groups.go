// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"cmp"
	"slices"

	"github.com/gogpu/foliage/world"
)

type group struct {
	link         world.RenderLink
	phase        Phase
	order        int
	instructions []Instruction
}

type entry struct {
	Instruction
	phase Phase
	order int
	index int
}

// Groups caches each kind's instructions and the flat, ordered list built
// from them.
type Groups struct {
	groups   []*group
	byLink   map[world.RenderLink]*group
	flat     []Instruction
	dirty    bool
	rebuilds int
}

// NewGroups creates an empty set of groups.
func NewGroups() *Groups {
	return &Groups{byLink: make(map[world.RenderLink]*group)}
}

// Add declares a kind. order breaks ties between kinds with the same phase
// and elevation.
func (g *Groups) Add(link world.RenderLink, phase Phase, order int) {
	if _, ok := g.byLink[link]; ok {
		return
	}
	gr := &group{link: link, phase: phase, order: order}
	g.groups = append(g.groups, gr)
	g.byLink[link] = gr
}

// Replace swaps in fresh instructions for link and invalidates the flat
// list. Unknown links are ignored.
func (g *Groups) Replace(link world.RenderLink, instructions []Instruction) {
	gr, ok := g.byLink[link]
	if !ok {
		return
	}
	gr.instructions = slices.Clone(instructions)
	g.dirty = true
}

// Instructions returns the instructions of every kind: Opaque first, then Alpha
// by ascending priority, then by ascending elevation. The slice is rebuilt
// only after a Replace; otherwise the previous slice is returned as is.
// Callers must not modify it.
func (g *Groups) Instructions() []Instruction {
	if !g.dirty {
		return g.flat
	}
	var entries []entry
	for _, gr := range g.groups {
		for i, in := range gr.instructions {
			if in.Bundle == nil {
				continue
			}
			entries = append(entries, entry{Instruction: in, phase: gr.phase, order: gr.order, index: i})
		}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := a.phase.Compare(b.phase); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Elevation, b.Elevation); c != 0 {
			return c
		}
		if c := cmp.Compare(a.order, b.order); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	flat := make([]Instruction, len(entries))
	for i, e := range entries {
		flat[i] = e.Instruction
	}
	g.flat = flat
	g.dirty = false
	g.rebuilds++
	return g.flat
}

// Of returns the instructions cached for link.
func (g *Groups) Of(link world.RenderLink) []Instruction {
	if gr, ok := g.byLink[link]; ok {
		return gr.instructions
	}
	return nil
}

// Rebuilds returns how many times the flat list was rebuilt.
func (g *Groups) Rebuilds() int { return g.rebuilds }

// Reset drops all cached instructions.
func (g *Groups) Reset() {
	for _, gr := range g.groups {
		gr.instructions = nil
	}
	g.flat = nil
	g.dirty = false
}
