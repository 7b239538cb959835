// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"bytes"
	"slices"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/instance"
	"github.com/gogpu/foliage/internal/gputest"
	"github.com/gogpu/foliage/render"
	"github.com/gogpu/foliage/world"
)

// harness drives registered kinds frame by frame over the recording fakes.
type harness struct {
	ctx   *gfx.Context
	dev   *gputest.Device
	queue *gputest.Queue
	reg   *render.Registry
	bus   *bus.Bus
}

func newHarness(t *testing.T, kinds map[world.RenderLink]render.Renderer) *harness {
	t.Helper()
	inst := gputest.NewInstance(gputypes.Features(gputypes.FeatureTextureAdapterSpecificFormatFeatures))
	ctx, err := gfx.Acquire(inst, gfx.Window{}, gfx.DefaultOptions())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := ctx.Configure(gfx.Extent{Width: 640, Height: 480}, 1); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	reg := render.NewRegistry()
	for _, link := range Links {
		if r, ok := kinds[link]; ok {
			reg.Register(link, r)
		}
	}
	t.Cleanup(func() {
		reg.Destroy()
		ctx.Close()
	})
	return &harness{ctx: ctx, dev: inst.Adapter.Device, queue: inst.Adapter.Queue, reg: reg, bus: bus.New()}
}

func (h *harness) frame(t *testing.T) []render.Instruction {
	t.Helper()
	ins, err := h.reg.Frame(h.ctx, h.bus.PackageForTransit())
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	return ins
}

func send[A any](t *testing.T, h *harness, link world.RenderLink, e world.Entity, a A) {
	t.Helper()
	if err := bus.Send(h.bus, link, e, a); err != nil {
		t.Fatalf("Send(%T): %v", a, err)
	}
}

func entity(i uint32) world.Entity { return world.EntityFromParts(i, 1) }

// gpuBytes returns the first n values of col's GPU buffer as raw bytes.
func gpuBytes[A attr.Value](t *testing.T, h *harness, col *instance.Column[world.Entity, A], n int) []byte {
	t.Helper()
	raw, err := h.dev.BufferBytes(col.Buffer(), attr.Size[A]()*uint64(n))
	if err != nil {
		t.Fatalf("BufferBytes(%s): %v", col.Name(), err)
	}
	return raw
}

func gpuValues[A attr.Value, K comparable](t *testing.T, h *harness, col *instance.Column[K, A], n int) []A {
	t.Helper()
	raw, err := h.dev.BufferBytes(col.Buffer(), attr.Size[A]()*uint64(n))
	if err != nil {
		t.Fatalf("BufferBytes(%s): %v", col.Name(), err)
	}
	return slices.Clone(unsafe.Slice((*A)(unsafe.Pointer(unsafe.SliceData(raw))), n))
}

func draws(t *testing.T, b hal.RenderBundle) []gputest.Command {
	t.Helper()
	rb, ok := b.(*gputest.Bundle)
	if !ok {
		t.Fatalf("bundle is %T, want *gputest.Bundle", b)
	}
	return rb.Draws()
}

func TestSingleOpaquePanel(t *testing.T) {
	p := NewPanel()
	h := newHarness(t, map[world.RenderLink]render.Renderer{PanelLink: p})
	e := entity(1)
	send(t, h, PanelLink, e, attr.Position{X: 10, Y: 10})
	send(t, h, PanelLink, e, attr.Area{W: 100, H: 50})
	send(t, h, PanelLink, e, attr.Red)
	send(t, h, PanelLink, e, attr.Elevation(0))

	bundles := h.frame(t)

	coord := p.Instances()
	if coord.Len() != 1 {
		t.Fatalf("Len = %d, want 1", coord.Len())
	}
	if i, ok := coord.Index(e); !ok || i != 0 {
		t.Fatalf("Index = %d, %v; want 0", i, ok)
	}
	checks := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"position", gpuBytes(t, h, p.position, 1), attr.Bytes([]attr.Position{{X: 10, Y: 10}})},
		{"area", gpuBytes(t, h, p.area, 1), attr.Bytes([]attr.Area{{W: 100, H: 50}})},
		{"color", gpuBytes(t, h, p.color, 1), attr.Bytes([]attr.Color{{R: 1, G: 0, B: 0, A: 1}})},
		{"elevation", gpuBytes(t, h, p.elevation, 1), attr.Bytes([]attr.Elevation{0})},
		{"null", gpuBytes(t, h, coord.Null(), 1), attr.Bytes([]attr.Null{attr.Live})},
	}
	for _, c := range checks {
		if !bytes.Equal(c.got, c.want) {
			t.Errorf("%s buffer = %v, want %v", c.name, c.got, c.want)
		}
	}

	if len(p.Instructions()) != 1 || len(bundles) != 1 {
		t.Fatalf("instructions = %d, bundles = %d; want 1, 1", len(p.Instructions()), len(bundles))
	}
	d := draws(t, bundles[0].Bundle)
	if len(d) != 1 {
		t.Fatalf("draws = %d, want 1", len(d))
	}
	if d[0].InstanceCount != 1 || d[0].VertexCount != 54 {
		t.Errorf("Draw(vertices=%d, instances=%d), want (54, 1)", d[0].VertexCount, d[0].InstanceCount)
	}
}

func TestAddThenRemoveSameFrame(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	e := entity(1)
	send(t, h, RectangleLink, e, attr.Position{X: 1, Y: 1})
	h.bus.Despawn(RectangleLink, e)

	bundles := h.frame(t)

	coord := r.Instances()
	if coord.Len() != 0 || len(coord.Free()) != 0 {
		t.Errorf("Len = %d, Free = %v; want empty", coord.Len(), coord.Free())
	}
	if len(r.Instructions()) != 0 || len(bundles) != 0 {
		t.Errorf("instructions = %d, bundles = %d; want none", len(r.Instructions()), len(bundles))
	}
}

func TestAllocateAndFreeSameFrame(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	h.frame(t)

	e := entity(1)
	q := bus.New()
	if err := bus.Send(q, RectangleLink, e, attr.Position{X: 3, Y: 4}); err != nil {
		t.Fatal(err)
	}
	if err := r.PreparePackages(h.ctx, q.PackageForTransit().Obtain(RectangleLink)); err != nil {
		t.Fatal(err)
	}
	q.Despawn(RectangleLink, e)
	if err := r.PreparePackages(h.ctx, q.PackageForTransit().Obtain(RectangleLink)); err != nil {
		t.Fatal(err)
	}
	if err := r.PrepareResources(h.ctx); err != nil {
		t.Fatal(err)
	}
	if r.Instances().Len() != 0 || len(r.Instances().Free()) != 0 {
		t.Errorf("Len = %d, Free = %v; want empty", r.Instances().Len(), r.Instances().Free())
	}
}

func TestElevationReorder(t *testing.T) {
	c := NewCircle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{CircleLink: c})
	e1, e2, e3 := entity(1), entity(2), entity(3)
	for i, e := range []world.Entity{e1, e2, e3} {
		send(t, h, CircleLink, e, attr.Position{X: float32(i + 1)})
		send(t, h, CircleLink, e, attr.Elevation(i))
	}
	h.frame(t)
	if got := c.Instances().Keys(); !slices.Equal(got, []world.Entity{e1, e2, e3}) {
		t.Fatalf("Keys = %v, want [e1 e2 e3]", got)
	}
	encoders := len(h.dev.BundleEncoders)

	send(t, h, CircleLink, e1, attr.Elevation(5))
	h.frame(t)

	if got := c.Instances().Keys(); !slices.Equal(got, []world.Entity{e2, e3, e1}) {
		t.Fatalf("Keys = %v, want [e2 e3 e1]", got)
	}
	pos := gpuValues(t, h, c.position, 3)
	if pos[0].X != 2 || pos[1].X != 3 || pos[2].X != 1 {
		t.Errorf("positions = %v, want x 2, 3, 1", pos)
	}
	elev := gpuValues(t, h, c.elevation, 3)
	if !slices.Equal(elev, []attr.Elevation{1, 2, 5}) {
		t.Errorf("elevations = %v, want [1 2 5]", elev)
	}
	if len(h.dev.BundleEncoders) != encoders+1 {
		t.Errorf("bundle encoders = %d, want one re-record", len(h.dev.BundleEncoders)-encoders)
	}
	if got := c.Instructions()[0].Elevation; got != 1 {
		t.Errorf("instruction elevation = %v, want 1", got)
	}
}

func TestVisibilityToggle(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	e := entity(1)
	emit := func() {
		send(t, h, RectangleLink, e, attr.Position{X: 5, Y: 6})
		send(t, h, RectangleLink, e, attr.Area{W: 7, H: 8})
		send(t, h, RectangleLink, e, attr.White)
	}
	emit()
	h.frame(t)

	h.bus.Remove(RectangleLink, e)
	h.frame(t)
	coord := r.Instances()
	if coord.State(e) != instance.Blanked {
		t.Fatalf("State after hide = %v, want Blanked", coord.State(e))
	}
	if null := gpuValues(t, h, coord.Null(), 1); null[0] != attr.Blank {
		t.Errorf("null after hide = %v, want Blank", null[0])
	}

	emit()
	h.frame(t)
	if coord.State(e) != instance.Live {
		t.Fatalf("State after show = %v, want Live", coord.State(e))
	}
	if null := gpuValues(t, h, coord.Null(), 1); null[0] != attr.Live {
		t.Errorf("null after show = %v, want Live", null[0])
	}
	if pos := gpuValues(t, h, r.position, 1); pos[0] != (attr.Position{X: 5, Y: 6}) {
		t.Errorf("position = %v", pos[0])
	}
}

func TestCapacityGrowth(t *testing.T) {
	r := NewRectangle(WithCapacity(1))
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	send(t, h, RectangleLink, entity(1), attr.Position{X: 1})
	send(t, h, RectangleLink, entity(2), attr.Position{X: 2})
	h.frame(t)

	coord := r.Instances()
	if coord.Capacity() < 2 || coord.Stats().Grows != 1 {
		t.Fatalf("Capacity = %d, Grows = %d", coord.Capacity(), coord.Stats().Grows)
	}
	writes := h.queue.WritesTo(r.position.Buffer())
	if len(writes) != 1 || writes[0].Offset != 0 || writes[0].Size != 2*8 {
		t.Fatalf("position writes = %+v, want one write of [0..=1]", writes)
	}
	pos := gpuValues(t, h, r.position, 2)
	if pos[0].X != 1 || pos[1].X != 2 {
		t.Errorf("positions = %v", pos)
	}
}

func TestUnchangedFrameReusesBundle(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	e := entity(1)
	send(t, h, RectangleLink, e, attr.Position{X: 1})
	first := h.frame(t)
	encoders := len(h.dev.BundleEncoders)

	second := h.frame(t)
	send(t, h, RectangleLink, e, attr.Position{X: 9})
	third := h.frame(t)

	if len(h.dev.BundleEncoders) != encoders {
		t.Errorf("re-recorded %d times, want 0", len(h.dev.BundleEncoders)-encoders)
	}
	if len(second) != 1 || second[0] != first[0] || third[0] != first[0] {
		t.Error("bundle replaced without a structural change")
	}
	if pos := gpuValues(t, h, r.position, 1); pos[0].X != 9 {
		t.Errorf("position = %v, want x 9", pos[0])
	}
}

func TestReRecordDestroysOldBundle(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	send(t, h, RectangleLink, entity(1), attr.Position{})
	h.frame(t)
	send(t, h, RectangleLink, entity(2), attr.Position{})
	h.frame(t)
	if h.dev.BundlesDestroyed != 0 {
		t.Fatalf("BundlesDestroyed = %d before the next record", h.dev.BundlesDestroyed)
	}
	h.frame(t)
	if h.dev.BundlesDestroyed != 1 {
		t.Errorf("BundlesDestroyed = %d, want 1", h.dev.BundlesDestroyed)
	}
}

func TestPipelineStatePerPhase(t *testing.T) {
	kinds := map[world.RenderLink]render.Renderer{
		RectangleLink: NewRectangle(),
		PanelLink:     NewPanel(),
		CircleLink:    NewCircle(),
		ShapeLink:     NewShape(),
		IconLink:      NewIcon(),
		ImageLink:     NewImage(),
		TextLink:      NewText(),
	}
	h := newHarness(t, kinds)
	if err := h.reg.Create(h.ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(h.dev.Pipelines) != len(kinds) {
		t.Fatalf("pipelines = %d, want %d", len(h.dev.Pipelines), len(kinds))
	}
	alpha := map[string]bool{}
	for _, r := range kinds {
		alpha[r.Name()+"_pipeline"] = r.Phase().IsAlpha()
	}
	for _, d := range h.dev.Pipelines {
		isAlpha, ok := alpha[d.Label]
		if !ok {
			t.Errorf("unexpected pipeline %q", d.Label)
			continue
		}
		ds := d.DepthStencil
		if ds == nil || ds.DepthCompare != gputypes.CompareFunctionLessEqual || ds.Format != gfx.DepthFormat {
			t.Errorf("%s: depth state = %+v", d.Label, ds)
			continue
		}
		if ds.DepthWriteEnabled == isAlpha {
			t.Errorf("%s: DepthWriteEnabled = %v for alpha=%v", d.Label, ds.DepthWriteEnabled, isAlpha)
		}
		if blended := d.Fragment.Targets[0].Blend != nil; blended != isAlpha {
			t.Errorf("%s: blend = %v for alpha=%v", d.Label, blended, isAlpha)
		}
		if d.Primitive.CullMode != gputypes.CullModeBack || d.Primitive.FrontFace != gputypes.FrontFaceCCW {
			t.Errorf("%s: primitive = %+v", d.Label, d.Primitive)
		}
		if d.Multisample.Count != h.ctx.SampleCount() {
			t.Errorf("%s: samples = %d, want %d", d.Label, d.Multisample.Count, h.ctx.SampleCount())
		}
	}
}

func TestBundleEncoderMatchesPass(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	send(t, h, RectangleLink, entity(1), attr.Position{})
	h.frame(t)
	enc := h.dev.BundleEncoders[len(h.dev.BundleEncoders)-1]
	if enc.Desc.DepthStencilFormat != gfx.DepthFormat || enc.Desc.SampleCount != h.ctx.SampleCount() {
		t.Errorf("bundle descriptor = %+v", enc.Desc)
	}
	if len(enc.Desc.ColorFormats) != 1 || enc.Desc.ColorFormats[0] != h.ctx.Format() {
		t.Errorf("color formats = %v, want [%v]", enc.Desc.ColorFormats, h.ctx.Format())
	}
	var vertexSlots []uint32
	for _, c := range enc.Commands {
		if c.Op == "SetVertexBuffer" {
			vertexSlots = append(vertexSlots, c.Index)
		}
	}
	// geometry, null, position, area, color, elevation
	if !slices.Equal(vertexSlots, []uint32{0, 1, 2, 3, 4, 5}) {
		t.Errorf("vertex slots = %v", vertexSlots)
	}
}

func TestGeometry(t *testing.T) {
	if n := len(unitQuad()); n != 6 {
		t.Errorf("unitQuad = %d vertices, want 6", n)
	}
	if n := len(nineSlice()); n != 54 {
		t.Errorf("nineSlice = %d vertices, want 54", n)
	}
	if n := len(lineQuad()); n != 6 {
		t.Errorf("lineQuad = %d vertices, want 6", n)
	}
	// The outer corners sit on the instance rectangle with no offset.
	ns := nineSlice()
	for _, corner := range []vertex{{0, 0, 0, 0}, {0, 1, 0, 0}, {1, 0, 0, 0}, {1, 1, 0, 0}} {
		if !slices.Contains(ns, corner) {
			t.Errorf("nineSlice lacks corner %v", corner)
		}
	}
}

func TestShapeDefaultsWeight(t *testing.T) {
	s := NewShape()
	h := newHarness(t, map[world.RenderLink]render.Renderer{ShapeLink: s})
	send(t, h, ShapeLink, entity(1), attr.Line{X0: 0, Y0: 0, X1: 10, Y1: 0})
	h.frame(t)
	if w := gpuValues(t, h, s.weight, 1); w[0] != defaultWeight {
		t.Errorf("weight = %v, want %v", w[0], defaultWeight)
	}
}

func TestCircleDefaultsToFullDisc(t *testing.T) {
	c := NewCircle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{CircleLink: c})
	send(t, h, CircleLink, entity(1), attr.Progress{Start: 0, End: 0.25})
	send(t, h, CircleLink, entity(2), attr.Area{W: 4, H: 4})
	h.frame(t)
	got := gpuValues(t, h, c.progress, 2)
	if got[0] != (attr.Progress{Start: 0, End: 0.25}) || got[1] != attr.Full {
		t.Errorf("progress = %v", got)
	}

	// A freed index is reused with column defaults, not the old values.
	h.bus.Despawn(CircleLink, entity(1))
	h.frame(t)
	send(t, h, CircleLink, entity(3), attr.Area{W: 4, H: 4})
	h.frame(t)
	i, ok := c.Instances().Index(entity(3))
	if !ok {
		t.Fatal("entity 3 has no index")
	}
	if got := gpuValues(t, h, c.progress, 2); got[i] != attr.Full {
		t.Errorf("reused progress = %v, want full", got[i])
	}
}

func TestElevationChangeAcrossKinds(t *testing.T) {
	c := NewCircle()
	s := NewShape()
	h := newHarness(t, map[world.RenderLink]render.Renderer{CircleLink: c, ShapeLink: s})
	send(t, h, CircleLink, entity(1), attr.Area{W: 4, H: 4})
	send(t, h, CircleLink, entity(1), attr.Elevation(5))
	send(t, h, ShapeLink, entity(2), attr.Line{X1: 10})
	send(t, h, ShapeLink, entity(2), attr.Elevation(1))

	ins := h.frame(t)
	if len(ins) != 2 || ins[0].Bundle != s.Instructions()[0].Bundle {
		t.Fatalf("frame = %+v, want shape first", ins)
	}
	encoders := len(h.dev.BundleEncoders)

	// One instance: the order key changes but nothing is permuted.
	send(t, h, CircleLink, entity(1), attr.Elevation(0))
	ins = h.frame(t)

	if len(h.dev.BundleEncoders) != encoders {
		t.Errorf("re-recorded %d times, want 0", len(h.dev.BundleEncoders)-encoders)
	}
	if got := c.Instructions()[0].Elevation; got != 0 {
		t.Errorf("circle instruction elevation = %v, want 0", got)
	}
	if len(ins) != 2 || ins[0].Bundle != c.Instructions()[0].Bundle {
		t.Errorf("frame = %+v, want circle first", ins)
	}
}

func TestClipSectionSplitsSegments(t *testing.T) {
	p := NewPanel()
	h := newHarness(t, map[world.RenderLink]render.Renderer{PanelLink: p})
	clip := attr.ClipSection{X: 0, Y: 0, W: 50, H: 50}
	for i := uint32(1); i <= 3; i++ {
		send(t, h, PanelLink, entity(i), attr.Area{W: 10, H: 10})
	}
	send(t, h, PanelLink, entity(2), clip)

	ins := h.frame(t)
	if len(ins) != 3 {
		t.Fatalf("instructions = %d, want 3", len(ins))
	}
	wantClips := []attr.ClipSection{{}, clip, {}}
	for i, in := range ins {
		d := draws(t, in.Bundle)
		if len(d) != 1 || d[0].FirstInstance != uint32(i) || d[0].InstanceCount != 1 {
			t.Errorf("segment %d draws = %+v, want first %d count 1", i, d, i)
		}
		if in.Clip != wantClips[i] {
			t.Errorf("segment %d clip = %+v, want %+v", i, in.Clip, wantClips[i])
		}
	}

	h.bus.ForwardRaw(PanelLink, entity(2), attr.IDOf[attr.ClipSection](), nil)
	ins = h.frame(t)
	if len(ins) != 1 || ins[0].Clip.Clipped() {
		t.Fatalf("instructions after unclip = %+v, want one unclipped", ins)
	}
	if d := draws(t, ins[0].Bundle); d[0].FirstInstance != 0 || d[0].InstanceCount != 3 {
		t.Errorf("draw = %+v, want instances 0..3", d[0])
	}
}

func TestClipSegmentAbsorbsHoles(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	clip := attr.ClipSection{X: 5, Y: 5, W: 20, H: 20}
	for i := uint32(1); i <= 4; i++ {
		send(t, h, RectangleLink, entity(i), attr.Area{W: 1, H: 1})
	}
	send(t, h, RectangleLink, entity(3), clip)
	send(t, h, RectangleLink, entity(4), clip)
	h.frame(t)

	// Index 0 and 1 become holes ahead of the first key.
	h.bus.Despawn(RectangleLink, entity(1))
	h.bus.Despawn(RectangleLink, entity(2))
	ins := h.frame(t)
	if len(ins) != 1 || ins[0].Clip != clip {
		t.Fatalf("instructions = %+v, want one clipped segment", ins)
	}
	if d := draws(t, ins[0].Bundle); d[0].FirstInstance != 0 || d[0].InstanceCount != 4 {
		t.Errorf("draw = %+v, want instances 0..4", d[0])
	}
}

func TestOpacityFadesColor(t *testing.T) {
	r := NewRectangle()
	h := newHarness(t, map[world.RenderLink]render.Renderer{RectangleLink: r})
	e := entity(1)
	send(t, h, RectangleLink, e, attr.White)
	send(t, h, RectangleLink, e, attr.Opacity(0.5))
	h.frame(t)
	if got := gpuValues(t, h, r.color, 1); got[0] != (attr.Color{R: 1, G: 1, B: 1, A: 0.5}) {
		t.Errorf("color = %+v, want white at half alpha", got[0])
	}

	send(t, h, RectangleLink, e, attr.Red)
	h.frame(t)
	if got := gpuValues(t, h, r.color, 1); got[0] != (attr.Color{R: 1, A: 0.5}) {
		t.Errorf("color = %+v, want red at half alpha", got[0])
	}

	h.bus.ForwardRaw(RectangleLink, e, attr.IDOf[attr.Opacity](), nil)
	h.frame(t)
	if got := gpuValues(t, h, r.color, 1); got[0] != attr.Red {
		t.Errorf("color = %+v, want opaque red", got[0])
	}
}

func TestImageOpacityDefaultsOpaque(t *testing.T) {
	im := NewImage()
	h := newHarness(t, map[world.RenderLink]render.Renderer{ImageLink: im})
	send(t, h, ImageLink, entity(1), attr.Area{W: 8, H: 8})
	send(t, h, ImageLink, entity(2), attr.Area{W: 8, H: 8})
	send(t, h, ImageLink, entity(2), attr.Opacity(0.25))
	h.frame(t)
	if got := gpuValues(t, h, im.opacity, 2); got[0] != 1 || got[1] != 0.25 {
		t.Errorf("opacity = %v, want [1 0.25]", got)
	}
}
