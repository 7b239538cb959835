// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package instance maintains the per-kind instance tables of the render
// core.
//
// A [Coordinator] maps keys (usually entities) to dense indices and owns
// one [Column] per instance attribute. Each column keeps a CPU copy of the
// attribute for every index and a GPU vertex buffer of the same layout.
// Writes are staged per key and resolved at [Coordinator.Flush], which
// issues at most one queue.WriteBuffer per column covering the lowest to
// the highest index written since the previous flush.
//
// Removed indices go to a free set and are reused before the table grows.
// Growth is exact: the table grows to the count it needs and the GPU
// buffers are recreated and re-uploaded in full at the next flush. Every
// coordinator carries an implicit [attr.Null] column; blanked and freed
// slots hold [attr.Blank] so the shaders collapse them.
//
// Slot lifecycle:
//
//	Empty -> Allocated -> Live <-> Blanked
//	                      Live | Blanked -> Freed -> Empty
package instance
