// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package instance

import (
	"errors"
	"slices"
	"testing"
	"unsafe"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/internal/gputest"
)

type fixture struct {
	dev   *gputest.Device
	queue *gputest.Queue
	c     *Coordinator[string]
	pos   *Column[string, attr.Position]
	color *Column[string, attr.Color]
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	dev, queue := gputest.NewDevice(t)
	c, err := New[string](dev, queue, "panel", capacity)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pos, err := AddColumn(c, "position", attr.Position{})
	if err != nil {
		t.Fatalf("AddColumn(position): %v", err)
	}
	color, err := AddColumn(c, "color", attr.Color{})
	if err != nil {
		t.Fatalf("AddColumn(color): %v", err)
	}
	return &fixture{dev: dev, queue: queue, c: c, pos: pos, color: color}
}

func (f *fixture) add(t *testing.T, k string, x float32) int {
	t.Helper()
	i, fresh := f.c.Allocate(k)
	if !fresh {
		t.Fatalf("Allocate(%q) reported existing index %d", k, i)
	}
	f.pos.Write(k, attr.Position{X: x, Y: x})
	f.color.Write(k, attr.Color{R: x, A: 1})
	return i
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	if err := f.c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func gpuValues[A attr.Value](t *testing.T, dev *gputest.Device, col interface{ Buffer() hal.Buffer }, n int) []A {
	t.Helper()
	size := attr.Size[A]() * uint64(n)
	raw, err := dev.BufferBytes(col.Buffer(), size)
	if err != nil {
		t.Fatalf("BufferBytes: %v", err)
	}
	return slices.Clone(unsafe.Slice((*A)(unsafe.Pointer(unsafe.SliceData(raw))), n))
}

func TestAllocateReusesLowestFreeIndex(t *testing.T) {
	f := newFixture(t, 4)
	for i, k := range []string{"a", "b", "c", "d"} {
		if got := f.add(t, k, float32(i)); got != i {
			t.Fatalf("index of %q = %d, want %d", k, got, i)
		}
	}
	f.flush(t)

	f.c.Remove("c")
	f.c.Remove("b")
	if got := f.c.Free(); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("free set = %v, want [1 2]", got)
	}
	if got := f.add(t, "e", 9); got != 1 {
		t.Errorf("reused index = %d, want 1", got)
	}
	if f.c.Count() != 4 || f.c.Len() != 3 {
		t.Errorf("count/len = %d/%d, want 4/3", f.c.Count(), f.c.Len())
	}
}

func TestAllocateExisting(t *testing.T) {
	f := newFixture(t, 1)
	f.add(t, "a", 1)
	i, fresh := f.c.Allocate("a")
	if fresh || i != 0 {
		t.Errorf("Allocate(existing) = %d, %v; want 0, false", i, fresh)
	}
}

func TestCapacityGrowthSingleWrite(t *testing.T) {
	f := newFixture(t, 1)
	f.queue.Reset()
	f.add(t, "e1", 1)
	f.add(t, "e2", 2)
	if f.c.Capacity() != 2 {
		t.Fatalf("capacity = %d, want 2", f.c.Capacity())
	}
	if f.c.Stats().Grows != 1 {
		t.Errorf("grows = %d, want 1", f.c.Stats().Grows)
	}
	f.flush(t)

	writes := f.queue.WritesTo(f.pos.Buffer())
	if len(writes) != 1 {
		t.Fatalf("position writes = %d, want 1", len(writes))
	}
	want := int(attr.Size[attr.Position]()) * 2
	if writes[0].Offset != 0 || writes[0].Size != want {
		t.Errorf("write = off %d size %d, want off 0 size %d", writes[0].Offset, writes[0].Size, want)
	}
	got := gpuValues[attr.Position](t, f.dev, f.pos, 2)
	if got[0] != (attr.Position{X: 1, Y: 1}) || got[1] != (attr.Position{X: 2, Y: 2}) {
		t.Errorf("gpu positions = %v", got)
	}
	null := gpuValues[attr.Null](t, f.dev, f.c.Null(), 2)
	if null[0] != attr.Live || null[1] != attr.Live {
		t.Errorf("gpu null = %v, want all live", null)
	}
}

func TestUnwrittenColumnUploadsFill(t *testing.T) {
	dev, queue := gputest.NewDevice(t)
	c, err := New[string](dev, queue, "circle", 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	progress, err := AddColumn(c, "progress", attr.Full)
	if err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	c.Allocate("a")
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	c.Allocate("b")
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if c.Capacity() != 4 {
		t.Fatalf("capacity = %d, want 4", c.Capacity())
	}
	got := gpuValues[attr.Progress](t, dev, progress, 2)
	for i, v := range got {
		if v != attr.Full || v != progress.At(i) {
			t.Errorf("index %d: gpu %v cpu %v, want %v", i, v, progress.At(i), attr.Full)
		}
	}
}

func TestKeyAtSkipsHoles(t *testing.T) {
	dev, queue := gputest.NewDevice(t)
	c, err := New[string](dev, queue, "panel", 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Allocate("a")
	c.Allocate("b")
	c.Allocate("c")
	c.Remove("b")
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := []struct {
		key string
		ok  bool
	}{{"a", true}, {"", false}, {"c", true}, {"", false}}
	for i, w := range want {
		if k, ok := c.KeyAt(i); k != w.key || ok != w.ok {
			t.Errorf("KeyAt(%d) = %q, %v; want %q, %v", i, k, ok, w.key, w.ok)
		}
	}
}

func TestAddThenRemoveSameFrame(t *testing.T) {
	f := newFixture(t, 1)
	f.add(t, "e", 1)
	f.c.Remove("e")
	f.flush(t)

	if f.c.Len() != 0 || f.c.Count() != 0 {
		t.Errorf("len/count = %d/%d, want 0/0", f.c.Len(), f.c.Count())
	}
	if len(f.c.Free()) != 0 {
		t.Errorf("free set = %v, want empty", f.c.Free())
	}
	if f.c.Stats().Dropped != 0 {
		t.Errorf("dropped = %d, want 0", f.c.Stats().Dropped)
	}
}

func TestWriteAfterRemoveIsDropped(t *testing.T) {
	f := newFixture(t, 2)
	f.add(t, "a", 1)
	f.add(t, "b", 2)
	f.flush(t)

	f.c.Remove("a")
	f.pos.Write("a", attr.Position{X: 42})
	f.flush(t)
	if f.c.Stats().Dropped != 1 {
		t.Errorf("dropped = %d, want 1", f.c.Stats().Dropped)
	}
	null := gpuValues[attr.Null](t, f.dev, f.c.Null(), 2)
	if null[0] != attr.Blank {
		t.Errorf("freed slot null = %v, want blank", null[0])
	}
	if f.c.StateAt(0) != Empty {
		t.Errorf("state of freed slot after flush = %v, want Empty", f.c.StateAt(0))
	}
}

func TestSecondFlushUploadsNothing(t *testing.T) {
	f := newFixture(t, 2)
	f.add(t, "a", 1)
	f.add(t, "b", 2)
	f.flush(t)

	before := f.c.Stats().Uploads
	f.flush(t)
	if got := f.c.Stats().Uploads - before; got != 0 {
		t.Errorf("uploads on idle flush = %d, want 0", got)
	}
}

func TestDirtyRangeCoalesced(t *testing.T) {
	f := newFixture(t, 4)
	for i, k := range []string{"a", "b", "c", "d"} {
		f.add(t, k, float32(i))
	}
	f.flush(t)
	f.queue.Reset()

	f.pos.Write("b", attr.Position{X: 10})
	f.pos.Write("c", attr.Position{X: 20})
	f.flush(t)

	writes := f.queue.WritesTo(f.pos.Buffer())
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	stride := attr.Size[attr.Position]()
	if writes[0].Offset != stride || writes[0].Size != int(2*stride) {
		t.Errorf("write = off %d size %d, want off %d size %d", writes[0].Offset, writes[0].Size, stride, 2*stride)
	}
	if got := f.queue.WritesTo(f.color.Buffer()); len(got) != 0 {
		t.Errorf("color writes = %d, want 0", len(got))
	}
}

func TestReorderPreservesValues(t *testing.T) {
	f := newFixture(t, 3)
	keys := []string{"e1", "e2", "e3"}
	for i, k := range keys {
		f.add(t, k, float32(i+1))
		f.c.SetOrder(k, float32(i))
	}
	f.flush(t)
	if got := f.c.Keys(); !slices.Equal(got, keys) {
		t.Fatalf("initial order = %v", got)
	}

	f.c.SetOrder("e1", 5)
	f.flush(t)

	want := []string{"e2", "e3", "e1"}
	if got := f.c.Keys(); !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if f.c.Stats().Reorders != 1 {
		t.Errorf("reorders = %d, want 1", f.c.Stats().Reorders)
	}
	pos := gpuValues[attr.Position](t, f.dev, f.pos, 3)
	colors := gpuValues[attr.Color](t, f.dev, f.color, 3)
	for i, k := range want {
		x := float32(slices.Index(keys, k) + 1)
		if pos[i].X != x || colors[i].R != x {
			t.Errorf("index %d (%s): pos %v color %v, want x=%v", i, k, pos[i], colors[i], x)
		}
	}
}

func TestArrangeSkipsWhenOrderUnchanged(t *testing.T) {
	f := newFixture(t, 2)
	f.add(t, "a", 1)
	f.add(t, "b", 2)
	f.c.SetOrder("b", 3)
	f.flush(t)
	if f.c.Stats().Reorders != 0 {
		t.Errorf("reorders = %d, want 0", f.c.Stats().Reorders)
	}
}

func TestReorderCompactsHoles(t *testing.T) {
	f := newFixture(t, 3)
	f.add(t, "a", 1)
	f.add(t, "b", 2)
	f.add(t, "c", 3)
	f.flush(t)
	f.c.Remove("a")
	if err := f.c.Reorder([]string{"c", "b"}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	f.flush(t)
	if f.c.Count() != 2 || len(f.c.Free()) != 0 {
		t.Errorf("count %d free %v, want 2 []", f.c.Count(), f.c.Free())
	}
	if i, _ := f.c.Index("c"); i != 0 {
		t.Errorf("index of c = %d, want 0", i)
	}
}

func TestReorderRejectsMismatch(t *testing.T) {
	f := newFixture(t, 2)
	f.add(t, "a", 1)
	f.add(t, "b", 2)
	for _, keys := range [][]string{{"a"}, {"a", "x"}, {"a", "a"}} {
		if err := f.c.Reorder(keys); !errors.Is(err, ErrReorder) {
			t.Errorf("Reorder(%v) = %v, want ErrReorder", keys, err)
		}
	}
}

func TestBlankKeepsIndex(t *testing.T) {
	f := newFixture(t, 1)
	f.add(t, "a", 1)
	f.flush(t)
	if f.c.State("a") != Live {
		t.Fatalf("state = %v, want Live", f.c.State("a"))
	}
	f.c.Blank("a")
	f.flush(t)
	if f.c.State("a") != Blanked {
		t.Errorf("state = %v, want Blanked", f.c.State("a"))
	}
	if null := gpuValues[attr.Null](t, f.dev, f.c.Null(), 1); null[0] != attr.Blank {
		t.Errorf("null = %v, want blank", null[0])
	}
	f.c.Show("a")
	f.flush(t)
	if f.c.State("a") != Live {
		t.Errorf("state after show = %v, want Live", f.c.State("a"))
	}
}

func TestFlushOutOfMemory(t *testing.T) {
	f := newFixture(t, 1)
	f.add(t, "a", 1)
	f.add(t, "b", 2)
	f.dev.FailBuffers = true
	if err := f.c.Flush(); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Flush = %v, want ErrOutOfMemory", err)
	}
}

func TestLayoutsAndBind(t *testing.T) {
	f := newFixture(t, 1)
	layouts := f.c.Layouts(1)
	if len(layouts) != 3 {
		t.Fatalf("layouts = %d, want 3", len(layouts))
	}
	for i, l := range layouts {
		if l.Attributes[0].ShaderLocation != uint32(i+1) {
			t.Errorf("layout %d location = %d", i, l.Attributes[0].ShaderLocation)
		}
	}
	if layouts[2].ArrayStride != 16 {
		t.Errorf("color stride = %d, want 16", layouts[2].ArrayStride)
	}

	enc := &gputest.BundleEncoder{}
	f.c.Bind(enc, 1)
	if len(enc.Commands) != 3 || enc.Commands[0].Index != 1 || enc.Commands[1].Buffer != f.pos.Buffer() {
		t.Errorf("bind commands = %+v", enc.Commands)
	}
}

func TestDestroyReleasesBuffers(t *testing.T) {
	f := newFixture(t, 1)
	f.c.Destroy()
	if f.dev.BuffersDestroyed != 3 {
		t.Errorf("destroyed = %d, want 3", f.dev.BuffersDestroyed)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Empty: "Empty", Live: "Live", Freed: "Freed", State(99): "Unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
