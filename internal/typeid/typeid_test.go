package typeid

import "testing"

type markerA struct{}
type markerB struct{}

func TestOfStable(t *testing.T) {
	if Of[markerA]() != Of[markerA]() {
		t.Fatal("Of is not deterministic")
	}
	if Of[markerA]() == Of[markerB]() {
		t.Fatal("distinct types share an id")
	}
	if got, want := Name[markerA](), "github.com/gogpu/foliage/internal/typeid.markerA"; got != want {
		t.Errorf("Name = %q, want %q", got, want)
	}
	if got := Name[int](); got != "int" {
		t.Errorf("Name[int] = %q, want int", got)
	}
}

func TestHashKnownValue(t *testing.T) {
	// FNV-1a 64 offset basis for the empty string.
	if got := Hash(""); got != 0xcbf29ce484222325 {
		t.Errorf("Hash(\"\") = %#x", got)
	}
}
