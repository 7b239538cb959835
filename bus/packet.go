package bus

import "github.com/gogpu/foliage/attr"

// Packet maps attribute ids to encoded values for one entity. A nil value
// means the attribute was removed from the entity, which is distinct from
// the entity itself being removed.
type Packet map[attr.ID][]byte

// Put encodes a and stores it in p.
func Put[A any](p Packet, a A) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}
	p[attr.IDOf[A]()] = data
	return nil
}

// Clear marks attribute A as removed.
func Clear[A any](p Packet) {
	p[attr.IDOf[A]()] = nil
}

// Get decodes attribute A from p. It reports false when A is absent or
// marked removed.
func Get[A any](p Packet) (A, bool, error) {
	var zero A
	data, ok := p[attr.IDOf[A]()]
	if !ok || data == nil {
		return zero, false, nil
	}
	v, err := Decode[A](data)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Removed reports whether p marks attribute A as removed.
func Removed[A any](p Packet) bool {
	data, ok := p[attr.IDOf[A]()]
	return ok && data == nil
}

// merge copies every entry of src into p, replacing older values.
func (p Packet) merge(src Packet) {
	for id, data := range src {
		p[id] = data
	}
}
