// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package instance

import "errors"

// ErrOutOfMemory is returned by Flush and AddColumn when a GPU buffer
// cannot be created at the required capacity. It is fatal for the frame.
var ErrOutOfMemory = errors.New("instance: out of memory")

// ErrReorder is returned by Reorder when the ordering does not name every
// occupied key exactly once.
var ErrReorder = errors.New("instance: ordering does not match table")
