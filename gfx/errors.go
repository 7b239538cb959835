// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"errors"
	"fmt"
)

var (
	// ErrGfxInit is matched by every initialization failure: no adapter,
	// missing features, or a device that cannot be opened.
	ErrGfxInit = errors.New("gfx: initialization failed")

	// ErrSurfaceLost reports that the surface must be reconfigured before
	// the next frame. The current frame is skipped.
	ErrSurfaceLost = errors.New("gfx: surface lost")

	// ErrNotConfigured is returned by frame operations before Configure.
	ErrNotConfigured = errors.New("gfx: context not configured")
)

// InitError describes why a Context could not be created.
type InitError struct {
	Reason string
	Err    error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return "gfx: " + e.Reason
	}
	return fmt.Sprintf("gfx: %s: %v", e.Reason, e.Err)
}

// Unwrap matches ErrGfxInit and the underlying cause.
func (e *InitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGfxInit}
	}
	return []error{ErrGfxInit, e.Err}
}

func initError(reason string, err error) error {
	return &InitError{Reason: reason, Err: err}
}
