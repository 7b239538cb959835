// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import "github.com/gogpu/foliage/world"

// Kind tokens. The render link of each element kind is derived from its
// token's type identity.
type (
	PanelKind     struct{}
	CircleKind    struct{}
	IconKind      struct{}
	TextKind      struct{}
	ShapeKind     struct{}
	ImageKind     struct{}
	RectangleKind struct{}
)

// Render links of the element kinds.
var (
	PanelLink     = world.LinkOf[PanelKind]()
	CircleLink    = world.LinkOf[CircleKind]()
	IconLink      = world.LinkOf[IconKind]()
	TextLink      = world.LinkOf[TextKind]()
	ShapeLink     = world.LinkOf[ShapeKind]()
	ImageLink     = world.LinkOf[ImageKind]()
	RectangleLink = world.LinkOf[RectangleKind]()
)

// Links lists every element link in registration order.
var Links = []world.RenderLink{
	RectangleLink,
	PanelLink,
	CircleLink,
	ShapeLink,
	IconLink,
	ImageLink,
	TextLink,
}
