// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"cmp"
	"fmt"
)

// Phase is the render phase of a kind. The zero value is Opaque.
type Phase struct {
	alpha    bool
	priority int32
}

// Opaque draws front to back with depth writes enabled.
var Opaque = Phase{}

// Alpha returns the blended phase with the given priority. Lower priorities
// draw first.
func Alpha(priority int32) Phase {
	return Phase{alpha: true, priority: priority}
}

// IsAlpha reports whether p is blended.
func (p Phase) IsAlpha() bool { return p.alpha }

// Priority returns the alpha priority, zero for Opaque.
func (p Phase) Priority() int32 { return p.priority }

// Compare orders Opaque before every Alpha phase and Alpha phases by
// ascending priority.
func (p Phase) Compare(o Phase) int {
	if p.alpha != o.alpha {
		if p.alpha {
			return 1
		}
		return -1
	}
	return cmp.Compare(p.priority, o.priority)
}

// String returns "Opaque" or "Alpha(n)".
func (p Phase) String() string {
	if !p.alpha {
		return "Opaque"
	}
	return fmt.Sprintf("Alpha(%d)", p.priority)
}
