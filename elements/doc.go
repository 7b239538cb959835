// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package elements implements the built-in renderer kinds: Rectangle,
// Panel, Circle, Shape, Icon, Image and Text.
//
// Every kind draws all of its instances with one instanced draw recorded
// into a render bundle. Per-instance attributes live in one vertex buffer
// per attribute, owned by an [instance.Coordinator]; the fixed geometry of
// the kind sits in vertex slot 0. Opaque kinds write depth and draw first;
// Alpha kinds blend premultiplied color back to front.
//
// Register the kinds with a [render.Registry] under their links:
//
//	reg := render.NewRegistry()
//	reg.Register(elements.PanelLink, elements.NewPanel())
//	reg.Register(elements.TextLink, elements.NewText())
//
// Icon and Image sample a square atlas of equal slots; fill slots with
// [Icon.Load] and [Image.Fill] and select one per entity with attr.Slot.
// Text rasterizes Go Regular glyphs on demand into its own atlas.
package elements
