// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package instance

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
)

// column is the type-erased view of a Column used by the Coordinator.
type column[K comparable] interface {
	label() string
	forget(k K)
	extend(n int)
	truncate(n int)
	reset(i int)
	permute(perm []int)
	flush(count, capacity int) (int, error)
	buffer() hal.Buffer
	format() gputypes.VertexFormat
	destroy()
}

// Column is one per-instance attribute of a coordinator: a CPU slice and
// a GPU vertex buffer with the same layout.
type Column[K comparable, A attr.Value] struct {
	owner   *Coordinator[K]
	name    string
	cpu     []A
	fill    A
	pending map[K]A
	gpu     hal.Buffer
	gpuCap  int
	lo, hi  int
	full    bool
}

// AddColumn registers attribute A on c. The column's vertex slot and
// shader location follow registration order, after the null column.
// Unwritten slots hold fill.
func AddColumn[K comparable, A attr.Value](c *Coordinator[K], name string, fill A) (*Column[K, A], error) {
	col := &Column[K, A]{
		owner:   c,
		name:    name,
		fill:    fill,
		pending: make(map[K]A),
		lo:      -1,
		hi:      -1,
	}
	col.extend(len(c.slots))
	if err := col.ensureBuffer(c.capacity); err != nil {
		return nil, err
	}
	col.full = len(c.slots) > 0
	c.columns = append(c.columns, col)
	return col, nil
}

// Write stages v for key k. The write resolves to k's index at the next
// flush; if k has no index by then it is dropped.
func (col *Column[K, A]) Write(k K, v A) {
	col.pending[k] = v
	col.owner.dirty = true
}

// Value returns the value k will hold after the next flush.
func (col *Column[K, A]) Value(k K) (A, bool) {
	if v, ok := col.pending[k]; ok {
		return v, true
	}
	i, ok := col.owner.index[k]
	if !ok {
		var zero A
		return zero, false
	}
	return col.cpu[i], true
}

// At returns the CPU value at index i.
func (col *Column[K, A]) At(i int) A { return col.cpu[i] }

// CPU returns the CPU snapshot. The slice aliases the column.
func (col *Column[K, A]) CPU() []A { return col.cpu }

// Buffer returns the GPU buffer backing the column.
func (col *Column[K, A]) Buffer() hal.Buffer { return col.gpu }

// Name returns the column label.
func (col *Column[K, A]) Name() string { return col.name }

func (col *Column[K, A]) label() string                 { return col.owner.label + "_" + col.name }
func (col *Column[K, A]) buffer() hal.Buffer            { return col.gpu }
func (col *Column[K, A]) format() gputypes.VertexFormat { return col.fill.Format() }

func (col *Column[K, A]) forget(k K) { delete(col.pending, k) }

// extend appends fill up to n slots. New slots are dirty so the GPU
// buffer holds fill there too.
func (col *Column[K, A]) extend(n int) {
	for len(col.cpu) < n {
		col.cpu = append(col.cpu, col.fill)
		col.touch(len(col.cpu) - 1)
	}
}

func (col *Column[K, A]) truncate(n int) {
	if n < len(col.cpu) {
		col.cpu = col.cpu[:n]
	}
}

func (col *Column[K, A]) reset(i int) { col.setAt(i, col.fill) }

// setAt writes directly to the CPU slot and widens the dirty range.
func (col *Column[K, A]) setAt(i int, v A) {
	col.cpu[i] = v
	col.touch(i)
}

func (col *Column[K, A]) touch(i int) {
	if col.lo < 0 || i < col.lo {
		col.lo = i
	}
	if i > col.hi {
		col.hi = i
	}
}

// permute reorders the CPU slice so that new index i holds old index
// perm[i]. The result has len(perm) entries.
func (col *Column[K, A]) permute(perm []int) {
	next := make([]A, len(perm))
	for i, old := range perm {
		next[i] = col.cpu[old]
	}
	col.cpu = next
	col.full = true
}

func (col *Column[K, A]) ensureBuffer(capacity int) error {
	if col.gpu != nil && col.gpuCap >= capacity {
		return nil
	}
	c := col.owner
	size := attr.Size[A]() * uint64(max(capacity, 1)) //nolint:gosec // capacity is non-negative
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: col.label(),
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: %s (%d bytes): %w", ErrOutOfMemory, col.label(), size, err)
	}
	if col.gpu != nil {
		c.device.DestroyBuffer(col.gpu)
	}
	col.gpu = buf
	col.gpuCap = max(capacity, 1)
	col.full = true
	return nil
}

// flush resolves pending writes and uploads the dirty range. It returns
// the number of writes dropped for keys without an index.
func (col *Column[K, A]) flush(count, capacity int) (int, error) {
	dropped := 0
	for k, v := range col.pending {
		i, ok := col.owner.index[k]
		if !ok {
			dropped++
			continue
		}
		col.setAt(i, v)
	}
	clear(col.pending)

	if err := col.ensureBuffer(capacity); err != nil {
		return dropped, err
	}
	if col.full {
		col.lo, col.hi = 0, count-1
	}
	col.hi = min(col.hi, count-1)
	lo, hi := col.lo, col.hi
	col.lo, col.hi, col.full = -1, -1, false
	if lo < 0 || hi < lo {
		return dropped, nil
	}

	size := attr.Size[A]()
	if err := col.owner.queue.WriteBuffer(col.gpu, uint64(lo)*size, attr.Bytes(col.cpu[lo:hi+1])); err != nil { //nolint:gosec // lo is non-negative
		return dropped, fmt.Errorf("write %s [%d..%d]: %w", col.label(), lo, hi, err)
	}
	col.owner.stats.Uploads++
	return dropped, nil
}

func (col *Column[K, A]) destroy() {
	if col.gpu != nil {
		col.owner.device.DestroyBuffer(col.gpu)
		col.gpu = nil
		col.gpuCap = 0
	}
}
