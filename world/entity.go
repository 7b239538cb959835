package world

import (
	"cmp"
	"fmt"
)

// Entity identifies a logical UI node. The generation detects stale
// handles after the index has been recycled.
type Entity struct {
	index      uint32
	generation uint32
}

// Index returns the backing index of the entity.
func (e Entity) Index() uint32 { return e.index }

// Generation returns the generation counter associated with the entity.
func (e Entity) Generation() uint32 { return e.generation }

// IsZero reports whether the entity is the zero value. Spawned entities
// never are.
func (e Entity) IsZero() bool { return e.generation == 0 }

// String renders the entity for debugging.
func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d:%d)", e.index, e.generation)
}

// Compare orders entities by index, then generation.
func (e Entity) Compare(o Entity) int {
	if c := cmp.Compare(e.index, o.index); c != 0 {
		return c
	}
	return cmp.Compare(e.generation, o.generation)
}

// EntityFromParts constructs an entity from raw components.
func EntityFromParts(index, generation uint32) Entity {
	return Entity{index: index, generation: generation}
}

// Entities allocates and recycles entity handles.
type Entities struct {
	generations []uint32
	alive       []bool
	free        []uint32
	count       int
}

// Spawn issues a new entity, recycling a freed index when possible.
func (r *Entities) Spawn() Entity {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.generations)) //nolint:gosec // entity counts stay far below 2^32
		r.generations = append(r.generations, 0)
		r.alive = append(r.alive, false)
	}
	r.generations[index]++
	r.alive[index] = true
	r.count++
	return Entity{index: index, generation: r.generations[index]}
}

// Despawn releases the entity. It reports false for stale or unknown handles.
func (r *Entities) Despawn(e Entity) bool {
	if !r.Alive(e) {
		return false
	}
	r.alive[e.index] = false
	r.free = append(r.free, e.index)
	r.count--
	return true
}

// Alive reports whether e refers to a live entity.
func (r *Entities) Alive(e Entity) bool {
	if e.IsZero() || int(e.index) >= len(r.generations) {
		return false
	}
	return r.alive[e.index] && r.generations[e.index] == e.generation
}

// Len returns the number of live entities.
func (r *Entities) Len() int { return r.count }
