package attr

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"
)

func checkLayout[A Value](t *testing.T) {
	t.Helper()
	var zero A
	if got, want := uint64(unsafe.Sizeof(zero)), Size[A](); got != want {
		t.Errorf("%s: Go size %d != vertex format size %d", NameOf[A](), got, want)
	}
}

func TestLayoutsMatchVertexFormats(t *testing.T) {
	checkLayout[Position](t)
	checkLayout[Area](t)
	checkLayout[Color](t)
	checkLayout[Elevation](t)
	checkLayout[Null](t)
	checkLayout[Progress](t)
	checkLayout[CornerRadius](t)
	checkLayout[MipsLevel](t)
	checkLayout[TexCoords](t)
	checkLayout[Line](t)
	checkLayout[Weight](t)
}

func TestBytesAliasesSlice(t *testing.T) {
	s := []Position{{X: 10, Y: 20}, {X: 1.5, Y: -2}}
	b := Bytes(s)
	if len(b) != 16 {
		t.Fatalf("len = %d, want 16", len(b))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])); got != 1.5 {
		t.Errorf("second X = %v, want 1.5", got)
	}
	s[0].Y = 7
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])); got != 7 {
		t.Errorf("Bytes does not alias: got %v", got)
	}
	if Bytes([]Color(nil)) != nil {
		t.Error("Bytes(nil) should be nil")
	}
}

func TestIDsDistinct(t *testing.T) {
	ids := map[ID]string{}
	add := func(id ID, name string) {
		if prev, ok := ids[id]; ok {
			t.Fatalf("%s collides with %s", name, prev)
		}
		ids[id] = name
	}
	add(IDOf[Position](), "Position")
	add(IDOf[Area](), "Area")
	add(IDOf[Color](), "Color")
	add(IDOf[Elevation](), "Elevation")
	add(IDOf[Null](), "Null")
	add(IDOf[Content](), "Content")
	if IDOf[Position]() != IDOf[Position]() {
		t.Error("IDOf not stable")
	}
}

func TestPremultiplied(t *testing.T) {
	got := Color{R: 1, G: 0.5, B: 0, A: 0.5}.Premultiplied()
	want := Color{R: 0.5, G: 0.25, B: 0, A: 0.5}
	if got != want {
		t.Errorf("Premultiplied = %+v, want %+v", got, want)
	}
}
