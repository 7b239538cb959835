package world

// eraser is implemented by every Store so the World can drop a despawned
// entity's components without knowing their types.
type eraser interface {
	erase(e Entity)
}

// Store holds one component type. Lookup is by entity index; iteration
// visits entities in ascending index order so extraction is deterministic.
type Store[T any] struct {
	sparse   []int32
	dense    []T
	entities []Entity
}

// NewStore creates an empty component store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{}
}

// Insert attaches or replaces the component for e.
func (s *Store[T]) Insert(e Entity, v T) {
	if int(e.index) < len(s.sparse) && s.sparse[e.index] >= 0 {
		// Same index: either e itself or a stale generation it replaces.
		i := s.sparse[e.index]
		s.dense[i] = v
		s.entities[i] = e
		return
	}
	for int(e.index) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	s.sparse[e.index] = int32(len(s.dense)) //nolint:gosec // bounded by entity count
	s.dense = append(s.dense, v)
	s.entities = append(s.entities, e)
}

// Get returns the component for e.
func (s *Store[T]) Get(e Entity) (T, bool) {
	if i, ok := s.slot(e); ok {
		return s.dense[i], true
	}
	var zero T
	return zero, false
}

// Ref returns a pointer to the stored component for in-place mutation.
// The pointer is invalidated by the next Insert or Remove.
func (s *Store[T]) Ref(e Entity) *T {
	if i, ok := s.slot(e); ok {
		return &s.dense[i]
	}
	return nil
}

// Has reports whether e carries the component.
func (s *Store[T]) Has(e Entity) bool {
	_, ok := s.slot(e)
	return ok
}

// Remove detaches the component from e. It reports whether one was present.
func (s *Store[T]) Remove(e Entity) bool {
	i, ok := s.slot(e)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	if i != last {
		s.dense[i] = s.dense[last]
		s.entities[i] = s.entities[last]
		s.sparse[s.entities[i].index] = int32(i) //nolint:gosec // bounded by entity count
	}
	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	s.sparse[e.index] = -1
	return true
}

// Len returns the number of stored components.
func (s *Store[T]) Len() int { return len(s.dense) }

// Each calls fn for every entity carrying the component, in ascending
// entity index order. fn receives a pointer it may mutate; it must not
// insert into or remove from s.
func (s *Store[T]) Each(fn func(e Entity, v *T)) {
	for _, i := range s.sparse {
		if i < 0 {
			continue
		}
		fn(s.entities[i], &s.dense[i])
	}
}

func (s *Store[T]) erase(e Entity) { s.Remove(e) }

func (s *Store[T]) slot(e Entity) (int, bool) {
	if int(e.index) >= len(s.sparse) {
		return 0, false
	}
	i := s.sparse[e.index]
	if i < 0 || s.entities[i] != e {
		return 0, false
	}
	return int(i), true
}
