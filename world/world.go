package world

import "reflect"

// Despawned records an entity destroyed since the last drain, with the
// render link it carried at the time.
type Despawned struct {
	Entity Entity
	Link   RenderLink
	Linked bool
}

// World owns entities and their component stores.
type World struct {
	entities  Entities
	stores    map[reflect.Type]eraser
	despawned []Despawned
}

// New creates an empty world.
func New() *World {
	return &World{stores: make(map[reflect.Type]eraser)}
}

// StoreOf returns the store for component type T, creating it on first use.
func StoreOf[T any](w *World) *Store[T] {
	key := reflect.TypeFor[T]()
	if s, ok := w.stores[key]; ok {
		return s.(*Store[T]) //nolint:forcetypeassert // keyed by T
	}
	s := NewStore[T]()
	w.stores[key] = s
	return s
}

// Insert attaches component v to e.
func Insert[T any](w *World, e Entity, v T) {
	StoreOf[T](w).Insert(e, v)
}

// Get returns the component of type T on e.
func Get[T any](w *World, e Entity) (T, bool) {
	return StoreOf[T](w).Get(e)
}

// Remove detaches the component of type T from e.
func Remove[T any](w *World, e Entity) bool {
	return StoreOf[T](w).Remove(e)
}

// Spawn allocates a new entity.
func (w *World) Spawn() Entity { return w.entities.Spawn() }

// Alive reports whether e is live.
func (w *World) Alive(e Entity) bool { return w.entities.Alive(e) }

// Len returns the number of live entities.
func (w *World) Len() int { return w.entities.Len() }

// Despawn destroys e and drops all of its components. The entity and its
// render link are logged for [World.DrainDespawned].
func (w *World) Despawn(e Entity) bool {
	if !w.entities.Alive(e) {
		return false
	}
	link, linked := StoreOf[RenderLink](w).Get(e)
	w.despawned = append(w.despawned, Despawned{Entity: e, Link: link, Linked: linked})
	for _, s := range w.stores {
		s.erase(e)
	}
	return w.entities.Despawn(e)
}

// DrainDespawned returns and clears the despawn log.
func (w *World) DrainDespawned() []Despawned {
	out := w.despawned
	w.despawned = nil
	return out
}
