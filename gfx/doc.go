// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gfx owns the GPU device, queue and presentation surface of the
// render core, together with the per-surface render targets: the depth
// stencil texture, the optional multisampled color target and the
// viewport uniform shared by every pipeline.
//
// A Context is created with [Acquire] from a hal.Instance and a native
// window, with [New] from an already opened device, or with
// [FromProvider] from a host that exposes its HAL device. It must be
// configured before the first frame:
//
//	ctx, err := gfx.Acquire(instance, win, gfx.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	if err := ctx.Configure(gfx.Extent{Width: 1280, Height: 720}, 1); err != nil {
//		return err
//	}
//
// Surface loss is reported as [ErrSurfaceLost]; the caller reconfigures
// and skips the frame.
package gfx
