// Package attr defines the attribute values carried from the scheduler to
// the renderers.
//
// Every attribute is a small comparable value. Types that are uploaded to
// the GPU as a per-instance vertex attribute also implement [Value]: their
// Go memory layout is exactly their vertex format, so a slice of them can
// be handed to queue.WriteBuffer without conversion.
package attr

import (
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/foliage/internal/typeid"
)

// ID identifies an attribute type on the bus. It is a stable hash of the
// type's identity.
type ID uint64

// IDOf returns the attribute id of A.
func IDOf[A any]() ID {
	return ID(typeid.Of[A]())
}

// NameOf returns the qualified type name A's id is derived from.
func NameOf[A any]() string {
	return typeid.Name[A]()
}

// Value is an attribute that can live in a GPU instance buffer.
type Value interface {
	comparable
	Format() gputypes.VertexFormat
}

// Size returns the byte size of one A in an instance buffer.
func Size[A Value]() uint64 {
	var zero A
	return zero.Format().Size()
}

// Bytes reinterprets s as its raw bytes. The result aliases s.
func Bytes[A Value](s []A) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero A
	n := int(unsafe.Sizeof(zero)) * len(s)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n) //nolint:gosec // POD attribute layout
}
