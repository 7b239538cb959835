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

// DefaultFontSize applies to text without a FontSize attribute.
const DefaultFontSize attr.FontSize = 16

// glyphKey is one glyph instance of a text entity.
type glyphKey struct {
	entity world.Entity
	index  int
}

type textState struct {
	position  attr.Position
	size      attr.FontSize
	color     attr.Color
	elevation attr.Elevation
	content   attr.Content
	opacity   attr.Opacity
	clip      attr.ClipSection
	glyphs    int
	hidden    bool
}

// Text draws single-style text as one instance per visible glyph. A text
// entity is laid out again whenever any of its attributes arrives.
//
// Attributes: Position, FontSize, Color, Elevation, Content, Opacity, ClipSection.
type Text struct {
	batch[glyphKey]
	atlas *glyphAtlas
	texts map[world.Entity]*textState
	place []placed

	position  *instance.Column[glyphKey, attr.Position]
	area      *instance.Column[glyphKey, attr.Area]
	color     *instance.Column[glyphKey, attr.Color]
	elevation *instance.Column[glyphKey, attr.Elevation]
	coords    *instance.Column[glyphKey, attr.TexCoords]
}

// NewText creates the Text kind.
func NewText(opts ...Option) *Text {
	cfg := newConfig(0, opts)
	return &Text{
		batch: batch[glyphKey]{
			capacity: cfg.capacity,
			spec: pipelineSpec{
				label:    "text",
				source:   textShader,
				phase:    render.Alpha(2),
				geometry: unitQuad(),
			},
		},
		texts: make(map[world.Entity]*textState),
	}
}

// Create loads the font, builds the glyph atlas, instance table and
// pipeline.
func (t *Text) Create(ctx *gfx.Context) error {
	ga, err := newGlyphAtlas()
	if err != nil {
		return fmt.Errorf("text: %w", err)
	}
	if err := ga.create(ctx.Device()); err != nil {
		return err
	}
	t.atlas = ga
	t.spec.groups = []hal.BindGroupLayout{ga.atlas.layout}
	t.extra = []hal.BindGroup{ga.group}
	err = t.create(ctx, func() (err error) {
		c := t.coord
		if t.position, err = instance.AddColumn(c, "position", attr.Position{}); err != nil {
			return err
		}
		if t.area, err = instance.AddColumn(c, "area", attr.Area{}); err != nil {
			return err
		}
		if t.color, err = instance.AddColumn(c, "color", attr.Color{}); err != nil {
			return err
		}
		if t.elevation, err = instance.AddColumn(c, "elevation", attr.Elevation(0)); err != nil {
			return err
		}
		t.coords, err = instance.AddColumn(c, "tex_coords", attr.TexCoords{})
		return err
	})
	if err != nil {
		ga.destroy()
	}
	return err
}

// PreparePackages applies removals to every glyph of the removed texts,
// then merges each packet into its text and lays it out again.
func (t *Text) PreparePackages(_ *gfx.Context, q *bus.Queue) error {
	for _, r := range q.RetrieveRemovals() {
		st, ok := t.texts[r.Entity]
		if !ok {
			continue
		}
		if r.Reason == bus.Despawn {
			t.truncate(r.Entity, st, 0)
			delete(t.texts, r.Entity)
			continue
		}
		for i := 0; i < st.glyphs; i++ {
			t.coord.Blank(glyphKey{entity: r.Entity, index: i})
		}
		st.hidden = true
	}

	for _, e := range q.Entities() {
		p, _ := q.RetrievePacket(e)
		st, ok := t.texts[e]
		if !ok {
			st = &textState{size: DefaultFontSize, color: attr.Black, opacity: 1}
			t.texts[e] = st
		}
		if err := st.merge(p); err != nil {
			return fmt.Errorf("text %v: %w", e, err)
		}
		st.hidden = false
		t.relayout(e, st)
	}
	return nil
}

func (st *textState) merge(p bus.Packet) error {
	if err := mergeAttr(p, &st.position, attr.Position{}); err != nil {
		return err
	}
	if err := mergeAttr(p, &st.size, DefaultFontSize); err != nil {
		return err
	}
	if err := mergeAttr(p, &st.color, attr.Black); err != nil {
		return err
	}
	if err := mergeAttr(p, &st.elevation, 0); err != nil {
		return err
	}
	if err := mergeAttr(p, &st.opacity, 1); err != nil {
		return err
	}
	if err := mergeAttr(p, &st.clip, attr.ClipSection{}); err != nil {
		return err
	}
	return mergeAttr(p, &st.content, "")
}

// mergeAttr copies attribute A from p into dst. A removed attribute
// restores def.
func mergeAttr[A any](p bus.Packet, dst *A, def A) error {
	if bus.Removed[A](p) {
		*dst = def
		return nil
	}
	v, ok, err := bus.Get[A](p)
	if err != nil {
		return err
	}
	if ok {
		*dst = v
	}
	return nil
}

func (t *Text) relayout(e world.Entity, st *textState) {
	t.place = t.atlas.typeset(string(st.content), st.position, st.size, t.place[:0])
	for i, g := range t.place {
		k := glyphKey{entity: e, index: i}
		if _, fresh := t.coord.Allocate(k); !fresh && t.coord.State(k) == instance.Blanked {
			t.coord.Show(k)
		}
		t.position.Write(k, g.position)
		t.area.Write(k, g.area)
		t.color.Write(k, st.color.Faded(st.opacity))
		t.elevation.Write(k, st.elevation)
		t.coords.Write(k, g.coords)
		t.coord.SetOrder(k, float32(st.elevation))
		t.setClip(k, st.clip)
	}
	t.truncate(e, st, len(t.place))
}

// truncate frees the glyph instances of e from index n on.
func (t *Text) truncate(e world.Entity, st *textState, n int) {
	for i := n; i < st.glyphs; i++ {
		k := glyphKey{entity: e, index: i}
		t.coord.Remove(k)
		delete(t.clips, k)
	}
	st.glyphs = n
}

// Glyphs returns the number of glyph instances of e.
func (t *Text) Glyphs(e world.Entity) int {
	if st, ok := t.texts[e]; ok {
		return st.glyphs
	}
	return 0
}

// PrepareResources uploads new glyphs and the staged instance writes.
func (t *Text) PrepareResources(ctx *gfx.Context) error {
	if err := t.atlas.upload(ctx.Queue()); err != nil {
		return err
	}
	return t.batch.PrepareResources(ctx)
}

// Destroy releases the kind's GPU resources.
func (t *Text) Destroy() {
	t.destroy()
	if t.atlas != nil {
		t.atlas.destroy()
	}
}
