// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package instance

import "cmp"

// State is the lifecycle state of an instance slot.
type State uint8

const (
	// Empty slots hold no instance.
	Empty State = iota
	// Allocated slots have an index but have not been flushed yet.
	Allocated
	// Live slots draw.
	Live
	// Blanked slots keep their index but draw nothing.
	Blanked
	// Freed slots were released this frame; they become Empty at flush.
	Freed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Allocated:
		return "Allocated"
	case Live:
		return "Live"
	case Blanked:
		return "Blanked"
	case Freed:
		return "Freed"
	default:
		return "Unknown"
	}
}

// occupied reports whether the slot holds an instance.
func (s State) occupied() bool {
	return s == Allocated || s == Live || s == Blanked
}

// OrderKey orders instances within a kind: ascending elevation, then
// insertion order.
type OrderKey struct {
	Elevation float32
	Seq       uint64
}

// Compare orders keys back to front.
func (k OrderKey) Compare(o OrderKey) int {
	if c := cmp.Compare(k.Elevation, o.Elevation); c != 0 {
		return c
	}
	return cmp.Compare(k.Seq, o.Seq)
}

// Stats counts coordinator activity.
type Stats struct {
	// Grows is the number of capacity increases.
	Grows int
	// Uploads is the number of queue.WriteBuffer calls issued.
	Uploads int
	// Dropped is the number of writes discarded because the key had no
	// index at flush time.
	Dropped int
	// Reorders is the number of permutations applied.
	Reorders int
}
