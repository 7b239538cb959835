package world

import "github.com/gogpu/foliage/internal/typeid"

// RenderLink names the renderer kind that draws an entity. It is a stable
// hash of the kind's type identity.
type RenderLink uint64

// LinkOf returns the render link of renderer kind T.
func LinkOf[T any]() RenderLink {
	return RenderLink(typeid.Of[T]())
}

// Visibility controls whether an entity contributes to rendering.
type Visibility struct {
	Visible bool
}

// Shown is the visible state.
var Shown = Visibility{Visible: true}

// Hidden is the invisible state.
var Hidden = Visibility{Visible: false}
