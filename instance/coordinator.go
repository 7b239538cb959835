// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package instance

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
)

// VertexBinder is the part of a render pass or bundle encoder that binds
// instance buffers. Both hal.RenderPassEncoder and hal.RenderBundleEncoder
// satisfy it.
type VertexBinder interface {
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
}

type slot[K comparable] struct {
	key   K
	state State
}

// Coordinator is a dense instance table for one renderer kind.
//
// Coordinator is not safe for concurrent use; the render core drives each
// kind from a single goroutine.
type Coordinator[K comparable] struct {
	label  string
	device hal.Device
	queue  hal.Queue

	slots    []slot[K]
	index    map[K]int
	order    map[K]OrderKey
	free     []int // ascending
	capacity int
	seq      uint64

	null    *Column[K, attr.Null]
	columns []column[K]

	orderDirty bool
	dirty      bool
	stats      Stats
}

// New creates a coordinator with the given initial capacity (at least 1)
// and its null column.
func New[K comparable](device hal.Device, queue hal.Queue, label string, capacity int) (*Coordinator[K], error) {
	c := &Coordinator[K]{
		label:    label,
		device:   device,
		queue:    queue,
		index:    make(map[K]int),
		order:    make(map[K]OrderKey),
		capacity: max(capacity, 1),
	}
	null, err := AddColumn(c, "null", attr.Blank)
	if err != nil {
		return nil, err
	}
	c.null = null
	return c, nil
}

// Allocate assigns k an index. The lowest free index is reused first;
// otherwise the table grows by one, and if that exceeds capacity the
// capacity grows to exactly the new count. It reports false if k already
// had an index.
func (c *Coordinator[K]) Allocate(k K) (int, bool) {
	if i, ok := c.index[k]; ok {
		return i, false
	}
	var i int
	if len(c.free) > 0 {
		i = c.free[0]
		c.free = c.free[1:]
		for _, col := range c.columns {
			col.reset(i)
		}
	} else {
		i = len(c.slots)
		c.slots = append(c.slots, slot[K]{})
		for _, col := range c.columns {
			col.extend(len(c.slots))
		}
		if len(c.slots) > c.capacity {
			c.capacity = len(c.slots)
			c.stats.Grows++
			slogger().Debug("instance: grow", "kind", c.label, "capacity", c.capacity)
		}
	}
	c.slots[i] = slot[K]{key: k, state: Allocated}
	c.index[k] = i
	c.order[k] = OrderKey{Seq: c.seq}
	c.seq++
	c.null.Write(k, attr.Live)
	c.orderDirty = true
	c.dirty = true
	return i, true
}

// Remove frees k's index. The slot is blanked and the index joins the free
// set; writes staged for k are discarded. It reports whether k had an
// index.
func (c *Coordinator[K]) Remove(k K) bool {
	i, ok := c.index[k]
	if !ok {
		return false
	}
	delete(c.index, k)
	delete(c.order, k)
	for _, col := range c.columns {
		col.forget(k)
	}
	c.slots[i] = slot[K]{state: Freed}
	c.null.setAt(i, attr.Blank)
	c.insertFree(i)
	c.dirty = true
	return true
}

// Blank hides k without releasing its index.
func (c *Coordinator[K]) Blank(k K) bool {
	i, ok := c.index[k]
	if !ok {
		return false
	}
	c.slots[i].state = Blanked
	c.null.Write(k, attr.Blank)
	return true
}

// Show undoes Blank.
func (c *Coordinator[K]) Show(k K) bool {
	i, ok := c.index[k]
	if !ok {
		return false
	}
	if c.slots[i].state == Blanked {
		c.slots[i].state = Live
	}
	c.null.Write(k, attr.Live)
	return true
}

// SetOrder sets the elevation k sorts by.
func (c *Coordinator[K]) SetOrder(k K, elevation float32) {
	o, ok := c.order[k]
	if !ok || o.Elevation == elevation {
		return
	}
	o.Elevation = elevation
	c.order[k] = o
	c.orderDirty = true
}

// Order returns k's order key.
func (c *Coordinator[K]) Order(k K) (OrderKey, bool) {
	o, ok := c.order[k]
	return o, ok
}

// Reorder permutes every column so that keys[i] ends up at index i. keys
// must name every occupied key exactly once. Holes are compacted away and
// the free set is emptied; every column is marked fully dirty.
func (c *Coordinator[K]) Reorder(keys []K) error {
	if len(keys) != len(c.index) {
		return fmt.Errorf("%w: %s: %d keys for %d entries", ErrReorder, c.label, len(keys), len(c.index))
	}
	perm := make([]int, len(keys))
	seen := make(map[K]struct{}, len(keys))
	for i, k := range keys {
		old, ok := c.index[k]
		if !ok {
			return fmt.Errorf("%w: %s: unknown key %v", ErrReorder, c.label, k)
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s: duplicate key %v", ErrReorder, c.label, k)
		}
		seen[k] = struct{}{}
		perm[i] = old
	}

	slots := make([]slot[K], len(keys))
	for i, old := range perm {
		slots[i] = c.slots[old]
		c.index[slots[i].key] = i
	}
	c.slots = slots
	c.free = c.free[:0]
	for _, col := range c.columns {
		col.permute(perm)
	}
	c.stats.Reorders++
	c.dirty = true
	return nil
}

// Arrange sorts the table by order key if the current layout differs. It
// reports whether a reorder was applied.
func (c *Coordinator[K]) Arrange() (bool, error) {
	if !c.orderDirty {
		return false, nil
	}
	c.orderDirty = false
	current := c.Keys()
	sorted := slices.Clone(current)
	slices.SortFunc(sorted, func(a, b K) int {
		return c.order[a].Compare(c.order[b])
	})
	if slices.Equal(current, sorted) {
		return false, nil
	}
	return true, c.Reorder(sorted)
}

// Flush arranges the table, resolves staged writes to indices and uploads
// each column's dirty range with a single queue write. Columns whose GPU
// buffer is smaller than capacity are recreated and re-uploaded in full.
// Trailing freed slots are trimmed.
func (c *Coordinator[K]) Flush() error {
	c.trim()
	if _, err := c.Arrange(); err != nil {
		return err
	}
	for _, col := range c.columns {
		dropped, err := col.flush(len(c.slots), c.capacity)
		c.stats.Dropped += dropped
		if err != nil {
			return err
		}
	}
	for i := range c.slots {
		switch c.slots[i].state {
		case Allocated:
			c.slots[i].state = Live
		case Freed:
			c.slots[i].state = Empty
		}
	}
	return nil
}

// trim drops freed slots at the end of the table.
func (c *Coordinator[K]) trim() {
	n := len(c.slots)
	for n > 0 && !c.slots[n-1].state.occupied() {
		n--
	}
	if n == len(c.slots) {
		return
	}
	c.slots = c.slots[:n]
	c.free = slices.DeleteFunc(c.free, func(i int) bool { return i >= n })
	for _, col := range c.columns {
		col.truncate(n)
	}
	c.dirty = true
}

func (c *Coordinator[K]) insertFree(i int) {
	at, found := slices.BinarySearch(c.free, i)
	if !found {
		c.free = slices.Insert(c.free, at, i)
	}
}

// Index returns k's index.
func (c *Coordinator[K]) Index(k K) (int, bool) {
	i, ok := c.index[k]
	return i, ok
}

// State returns the lifecycle state of k.
func (c *Coordinator[K]) State(k K) State {
	i, ok := c.index[k]
	if !ok {
		return Empty
	}
	return c.slots[i].state
}

// StateAt returns the lifecycle state of index i.
func (c *Coordinator[K]) StateAt(i int) State {
	if i < 0 || i >= len(c.slots) {
		return Empty
	}
	return c.slots[i].state
}

// KeyAt returns the key occupying index i.
func (c *Coordinator[K]) KeyAt(i int) (K, bool) {
	if i < 0 || i >= len(c.slots) || !c.slots[i].state.occupied() {
		var zero K
		return zero, false
	}
	return c.slots[i].key, true
}

// Keys returns the occupied keys in index order.
func (c *Coordinator[K]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	for _, s := range c.slots {
		if s.state.occupied() {
			keys = append(keys, s.key)
		}
	}
	return keys
}

// Free returns a copy of the free set in ascending order.
func (c *Coordinator[K]) Free() []int { return slices.Clone(c.free) }

// Len returns the number of occupied entries.
func (c *Coordinator[K]) Len() int { return len(c.index) }

// Count returns the number of instances to draw, holes included.
func (c *Coordinator[K]) Count() int { return len(c.slots) }

// Capacity returns the table capacity. It never shrinks.
func (c *Coordinator[K]) Capacity() int { return c.capacity }

// Stats returns the activity counters.
func (c *Coordinator[K]) Stats() Stats { return c.stats }

// Null returns the visibility column.
func (c *Coordinator[K]) Null() *Column[K, attr.Null] { return c.null }

// Dirty reports whether the table changed since ClearDirty.
func (c *Coordinator[K]) Dirty() bool { return c.dirty }

// ClearDirty resets the dirty flag after the owner re-recorded its draws.
func (c *Coordinator[K]) ClearDirty() { c.dirty = false }

// Layouts returns one instance-stepped vertex buffer layout per column,
// with shader locations starting at firstLocation.
func (c *Coordinator[K]) Layouts(firstLocation uint32) []gputypes.VertexBufferLayout {
	layouts := make([]gputypes.VertexBufferLayout, len(c.columns))
	for i, col := range c.columns {
		f := col.format()
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: f.Size(),
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{{
				Format:         f,
				ShaderLocation: firstLocation + uint32(i), //nolint:gosec // column count is small
			}},
		}
	}
	return layouts
}

// Bind sets every column buffer as a vertex buffer starting at firstSlot.
func (c *Coordinator[K]) Bind(enc VertexBinder, firstSlot uint32) {
	for i, col := range c.columns {
		enc.SetVertexBuffer(firstSlot+uint32(i), col.buffer(), 0) //nolint:gosec // column count is small
	}
}

// Destroy releases every GPU buffer.
func (c *Coordinator[K]) Destroy() {
	for _, col := range c.columns {
		col.destroy()
	}
}
