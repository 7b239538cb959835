// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives renderer kinds through a frame and composes their
// recorded bundles into a render pass.
//
// A frame runs in three stages:
//
//	Registry.Frame   package -> PreparePackages -> PrepareResources -> Record
//	Groups           cached instructions, rebuilt only for kinds that re-recorded
//	Composer.Compose acquire -> begin pass -> execute bundles -> submit -> present
//
// Kinds are registered once against the render link that the scheduler
// side tags their entities with:
//
//	reg := render.NewRegistry()
//	reg.Register(elements.PanelLink, elements.NewPanel())
//	if err := reg.Create(ctx); err != nil { ... }
//
//	comp := render.NewComposer(ctx)
//	instructions, err := reg.Frame(ctx, b.PackageForTransit())
//	...
//	err = comp.Compose(instructions)
//
// Opaque kinds draw before Alpha kinds; Alpha kinds draw by ascending
// priority and then back to front by elevation.
package render
