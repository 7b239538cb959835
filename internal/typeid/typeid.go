// Package typeid derives stable 64-bit identifiers from Go type identity.
//
// Attribute ids and render links are both "a stable hash of the type";
// the hash is FNV-1a over the fully qualified type name, so it is the same
// in every process built from the same source.
package typeid

import (
	"hash/fnv"
	"reflect"
)

// Of returns the identifier of T.
func Of[T any]() uint64 {
	return Hash(Name[T]())
}

// Name returns the fully qualified name of T, e.g. "github.com/x/attr.Position".
func Name[T any]() string {
	t := reflect.TypeFor[T]()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Hash computes FNV-1a of s.
func Hash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}
