// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/foliage/attr"
)

// Glyphs are rasterized once at glyphBaseSize and scaled per text.
const (
	glyphBaseSize = 32
	glyphCell     = 48
	glyphGrid     = 16
)

// ErrGlyphAtlasFull is logged when a glyph no longer fits the atlas. The
// glyph is skipped.
var ErrGlyphAtlasFull = errors.New("elements: glyph atlas full")

type glyph struct {
	cell    int
	bounds  image.Rectangle
	advance float32
}

// glyphAtlas rasterizes Go Regular glyphs into atlas cells on first use.
// Texels are white with the glyph coverage as alpha.
type glyphAtlas struct {
	*atlas
	face       font.Face
	glyphs     map[rune]glyph
	next       int
	ascent     float32
	lineHeight float32
}

func newGlyphAtlas() (*glyphAtlas, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    glyphBaseSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	m := face.Metrics()
	return &glyphAtlas{
		atlas:      newAtlas("text", glyphCell, glyphGrid, false),
		face:       face,
		glyphs:     make(map[rune]glyph),
		ascent:     fromFixed(m.Ascent),
		lineHeight: fromFixed(m.Height),
	}, nil
}

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }

// lookup returns r's glyph, rasterizing it into the next free cell the
// first time. Glyphs with no ink get cell -1.
func (g *glyphAtlas) lookup(r rune) (glyph, error) {
	if gl, ok := g.glyphs[r]; ok {
		return gl, nil
	}
	dr, mask, maskp, advance, ok := g.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		if r == '?' {
			return glyph{cell: -1}, nil
		}
		return g.lookup('?')
	}
	gl := glyph{cell: -1, bounds: dr, advance: fromFixed(advance)}
	if !dr.Empty() {
		if g.next >= g.slots() {
			return gl, fmt.Errorf("%w: %q", ErrGlyphAtlasFull, r)
		}
		cell, err := g.cell(g.next)
		if err != nil {
			return gl, err
		}
		dst := image.Rectangle{Min: cell.Min, Max: cell.Min.Add(dr.Size())}.Intersect(cell)
		draw.DrawMask(g.img, dst, image.White, image.Point{}, mask, maskp, draw.Over)
		gl.cell = g.next
		g.next++
		g.dirty = true
	}
	g.glyphs[r] = gl
	return gl, nil
}

// coordsOf returns the texture coordinates of gl's ink.
func (g *glyphAtlas) coordsOf(gl glyph) attr.TexCoords {
	cell, _ := g.cell(gl.cell)
	ink := image.Rectangle{Min: cell.Min, Max: cell.Min.Add(gl.bounds.Size())}.Intersect(cell)
	return g.coords(ink)
}

// placed is one laid out glyph quad in logical pixels.
type placed struct {
	position attr.Position
	area     attr.Area
	coords   attr.TexCoords
}

// typeset places content at origin with the given font size. Lines break
// at '\n' only; wrapping belongs to the layout resolver.
func (g *glyphAtlas) typeset(content string, origin attr.Position, size attr.FontSize, out []placed) []placed {
	scale := float32(size) / glyphBaseSize
	penX, penY := float32(0), g.ascent*scale
	prev := rune(-1)
	for _, r := range content {
		if r == '\n' {
			penX = 0
			penY += math32.Ceil(g.lineHeight * scale)
			prev = -1
			continue
		}
		if prev >= 0 {
			penX += fromFixed(g.face.Kern(prev, r)) * scale
		}
		gl, err := g.lookup(r)
		if err != nil {
			slogger().Warn("elements: glyph skipped", "rune", string(r), "err", err)
		}
		if gl.cell >= 0 {
			x := origin.X + penX + float32(gl.bounds.Min.X)*scale
			y := origin.Y + penY + float32(gl.bounds.Min.Y)*scale
			out = append(out, placed{
				position: attr.Position{X: x, Y: y},
				area:     attr.Area{W: float32(gl.bounds.Dx()) * scale, H: float32(gl.bounds.Dy()) * scale},
				coords:   g.coordsOf(gl),
			})
		}
		penX += gl.advance * scale
		prev = r
	}
	return out
}
