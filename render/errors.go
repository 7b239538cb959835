// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// ErrUnknownKind is reported when a package carries traffic for a render
// link that has no registered renderer. The traffic is dropped.
var ErrUnknownKind = errors.New("render: unknown kind")
