package bus

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/foliage/attr"
)

// ErrSerialization is returned when an attribute cannot be encoded or
// decoded. For core attributes it indicates a programming error.
var ErrSerialization = errors.New("bus: attribute serialization failed")

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Encode serializes v in the bus encoding.
func Encode[A any](v A) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer) //nolint:forcetypeassert // pool holds *bytes.Buffer
	buf.Reset()
	defer bufPool.Put(buf)

	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(buf)
	enc.UseArrayEncodedStructs(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", ErrSerialization, attr.NameOf[A](), err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// Decode deserializes data produced by Encode.
func Decode[A any](data []byte) (A, error) {
	var v A
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: decode %s: %w", ErrSerialization, attr.NameOf[A](), err)
	}
	return v, nil
}
