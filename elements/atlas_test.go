// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/render"
	"github.com/gogpu/foliage/world"
)

func solid(c color.RGBA, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestAtlasCells(t *testing.T) {
	a := newAtlas("test", 16, 4, true)
	if a.levels != 5 {
		t.Errorf("levels = %d, want 5", a.levels)
	}
	tc, err := a.slotCoords(5)
	if err != nil {
		t.Fatal(err)
	}
	want := attr.TexCoords{U0: 16.5 / 64, V0: 16.5 / 64, U1: 31.5 / 64, V1: 31.5 / 64}
	if tc != want {
		t.Errorf("slotCoords(5) = %+v, want %+v", tc, want)
	}
	for _, id := range []int{-1, 16} {
		if _, err := a.slotCoords(id); !errors.Is(err, ErrSlotRange) {
			t.Errorf("slotCoords(%d) err = %v, want ErrSlotRange", id, err)
		}
	}
}

func TestAtlasPutScalesIntoCell(t *testing.T) {
	a := newAtlas("test", 16, 2, false)
	red := color.RGBA{R: 255, A: 255}
	if err := a.put(3, solid(red, 4)); err != nil {
		t.Fatal(err)
	}
	if got := a.img.RGBAAt(24, 24); got.R < 250 || got.A < 250 || got.G != 0 {
		t.Errorf("cell 3 center = %v, want about %v", got, red)
	}
	if got := a.img.RGBAAt(8, 8); got.A != 0 {
		t.Errorf("cell 0 touched: %v", got)
	}
	if err := a.put(4, solid(red, 4)); !errors.Is(err, ErrSlotRange) {
		t.Errorf("put(4) err = %v, want ErrSlotRange", err)
	}
}

func TestMipsLevelFor(t *testing.T) {
	tests := []struct {
		area  attr.Area
		scale float32
		want  attr.MipsLevel
	}{
		{attr.Area{W: 64, H: 64}, 1, 0},
		{attr.Area{W: 128, H: 32}, 1, 0},
		{attr.Area{W: 16, H: 16}, 1, 2},
		{attr.Area{W: 10, H: 10}, 1, 2},
		{attr.Area{W: 16, H: 16}, 2, 1},
		{attr.Area{}, 1, 0},
	}
	for _, tt := range tests {
		if got := MipsLevelFor(64, tt.area, tt.scale); got != tt.want {
			t.Errorf("MipsLevelFor(64, %v, %v) = %v, want %v", tt.area, tt.scale, got, tt.want)
		}
	}
}

func TestIconAtlasUpload(t *testing.T) {
	ic := NewIcon(WithSlotSize(16), WithAtlasGrid(2))
	h := newHarness(t, map[world.RenderLink]render.Renderer{IconLink: ic})
	if err := ic.Load(1, solid(color.RGBA{G: 255, A: 255}, 16)); err != nil {
		t.Fatal(err)
	}
	e := entity(1)
	send(t, h, IconLink, e, attr.Slot(1))
	send(t, h, IconLink, e, attr.Area{W: 16, H: 16})
	h.frame(t)

	if n := len(h.queue.TextureWrites); n != 5 {
		t.Fatalf("texture writes = %d, want one per mip level (5)", n)
	}
	for l, w := range h.queue.TextureWrites {
		if int(w.MipLevel) != l {
			t.Errorf("write %d targets level %d", l, w.MipLevel)
		}
	}
	want, _ := ic.atlas.slotCoords(1)
	if got, _ := ic.coords.Value(e); got != want {
		t.Errorf("tex coords = %+v, want %+v", got, want)
	}

	h.queue.Reset()
	h.frame(t)
	if n := len(h.queue.TextureWrites); n != 0 {
		t.Errorf("clean atlas uploaded %d levels", n)
	}
}

func TestIconUnknownSlotFallsBack(t *testing.T) {
	ic := NewIcon(WithSlotSize(8), WithAtlasGrid(2))
	h := newHarness(t, map[world.RenderLink]render.Renderer{IconLink: ic})
	e := entity(1)
	send(t, h, IconLink, e, attr.Slot(9))
	h.frame(t)
	want, _ := ic.atlas.slotCoords(0)
	if got, _ := ic.coords.Value(e); got != want {
		t.Errorf("tex coords = %+v, want slot 0 %+v", got, want)
	}
}

func TestImageFill(t *testing.T) {
	im := NewImage(WithSlotSize(32), WithAtlasGrid(2))
	h := newHarness(t, map[world.RenderLink]render.Renderer{ImageLink: im})
	if err := im.Fill(2, solid(color.RGBA{B: 255, A: 255}, 64)); err != nil {
		t.Fatal(err)
	}
	e := entity(1)
	send(t, h, ImageLink, e, attr.Slot(2))
	send(t, h, ImageLink, e, attr.Position{X: 4, Y: 4})
	bundles := h.frame(t)
	if len(bundles) != 1 {
		t.Fatalf("bundles = %d, want 1", len(bundles))
	}
	want, _ := im.atlas.slotCoords(2)
	if got := gpuValues(t, h, im.coords, 1); got[0] != want {
		t.Errorf("tex coords = %+v, want %+v", got[0], want)
	}
	if im.SlotSize() != 32 {
		t.Errorf("SlotSize = %d", im.SlotSize())
	}
}
