package attr

import "github.com/gogpu/gputypes"

// Position is the top-left corner of an element in logical pixels.
type Position struct {
	X, Y float32
}

// Format implements Value.
func (Position) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32x2 }

// Add returns p offset by o.
func (p Position) Add(o Position) Position { return Position{X: p.X + o.X, Y: p.Y + o.Y} }

// Area is the width and height of an element in logical pixels.
type Area struct {
	W, H float32
}

// Format implements Value.
func (Area) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32x2 }

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Format implements Value.
func (Color) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32x4 }

// Premultiplied returns c with RGB scaled by alpha.
func (c Color) Premultiplied() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Common colors.
var (
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Red         = Color{R: 1, A: 1}
	Transparent = Color{}
)

// Elevation orders elements back to front. Larger values draw on top.
type Elevation float32

// Format implements Value.
func (Elevation) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32 }

// Null is the per-instance visibility multiplier. The shaders scale every
// instance by it, so a blanked slot draws nothing.
type Null float32

// Null values.
const (
	Blank Null = 0
	Live  Null = 1
)

// Format implements Value.
func (Null) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32 }

// Progress is the visible section of a circle, in turns.
type Progress struct {
	Start, End float32
}

// Format implements Value.
func (Progress) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32x2 }

// Full is a complete circle.
var Full = Progress{Start: 0, End: 1}

// CornerRadius rounds the corners of a panel, in logical pixels.
type CornerRadius float32

// Format implements Value.
func (CornerRadius) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32 }

// MipsLevel selects the level of detail sampled from an image.
type MipsLevel float32

// Format implements Value.
func (MipsLevel) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32 }

// TexCoords is a normalized region of an atlas texture.
type TexCoords struct {
	U0, V0, U1, V1 float32
}

// Format implements Value.
func (TexCoords) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32x4 }

// Line is a segment between two points in logical pixels.
type Line struct {
	X0, Y0, X1, Y1 float32
}

// Format implements Value.
func (Line) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32x4 }

// Weight is the stroke width of a shape in logical pixels.
type Weight float32

// Format implements Value.
func (Weight) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32 }

// Slot selects an entry in an icon or image atlas. It is resolved to
// TexCoords by the renderer and never uploaded directly.
type Slot uint32

// FontSize is the text size in logical pixels.
type FontSize float32

// Content is the text of a Text element.
type Content string

// ClipSection limits drawing to a rectangle of the logical canvas. The
// zero value does not clip. It selects the draw segment of an instance
// and is never uploaded.
type ClipSection struct {
	X, Y, W, H float32
}

// Clipped reports whether c restricts drawing.
func (c ClipSection) Clipped() bool { return c != ClipSection{} }

// Opacity scales the alpha of an element. 1 is opaque.
type Opacity float32

// Format implements Value.
func (Opacity) Format() gputypes.VertexFormat { return gputypes.VertexFormatFloat32 }

// Faded returns c with its alpha scaled by o.
func (c Color) Faded(o Opacity) Color {
	c.A *= float32(o)
	return c
}
