package differential

import (
	"fmt"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/world"
)

// visibilityState is the visibility seen on the previous tick.
type visibilityState struct {
	visible bool
}

type system struct {
	name    string
	extract func(w *world.World, b *bus.Bus) error
	push    func(w *world.World, e world.Entity)
}

// Extractor runs the per-attribute extraction systems in registration
// order.
type Extractor struct {
	systems []system
}

// NewExtractor creates an extractor with no attribute systems.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Register adds the extraction system for attribute type D. Registering
// the same type twice is a no-op.
func Register[D comparable](x *Extractor) {
	name := attr.NameOf[D]()
	for _, s := range x.systems {
		if s.name == name {
			return
		}
	}
	x.systems = append(x.systems, system{
		name:    name,
		extract: Extract[D],
		push: func(w *world.World, e world.Entity) {
			if d := world.StoreOf[Differential[D]](w).Ref(e); d != nil {
				d.PushCached()
			}
		},
	})
}

// Len returns the number of registered attribute systems.
func (x *Extractor) Len() int { return len(x.systems) }

// Tick runs one extraction pass:
//   - visibility edges: falling edges queue a removal, rising edges mark
//     every tracked attribute for re-send
//   - every attribute system, in registration order
//   - despawned entities queue a removal for their link
func (x *Extractor) Tick(w *world.World, b *bus.Bus) error {
	x.visibility(w, b)
	for _, s := range x.systems {
		if err := s.extract(w, b); err != nil {
			return err
		}
	}
	Despawns(w, b)
	return nil
}

func (x *Extractor) visibility(w *world.World, b *bus.Bus) {
	links := world.StoreOf[world.RenderLink](w)
	states := world.StoreOf[visibilityState](w)
	world.StoreOf[world.Visibility](w).Each(func(e world.Entity, v *world.Visibility) {
		link, ok := links.Get(e)
		if !ok {
			return
		}
		prev, _ := states.Get(e)
		switch {
		case prev.visible && !v.Visible:
			b.Remove(link, e)
		case !prev.visible && v.Visible:
			for _, s := range x.systems {
				s.push(w, e)
			}
		}
		if prev.visible != v.Visible {
			states.Insert(e, visibilityState{visible: v.Visible})
		}
	})
}

// Extract forwards every changed D on visible, linked entities.
func Extract[D comparable](w *world.World, b *bus.Bus) error {
	links := world.StoreOf[world.RenderLink](w)
	vis := world.StoreOf[world.Visibility](w)
	id := attr.IDOf[D]()
	var err error
	world.StoreOf[Differential[D]](w).Each(func(e world.Entity, d *Differential[D]) {
		if err != nil {
			return
		}
		link, ok := links.Get(e)
		if !ok {
			return
		}
		if v, ok := vis.Get(e); !ok || !v.Visible {
			return
		}
		value, changed := d.Updated()
		if !changed {
			return
		}
		data, encErr := bus.Encode(value)
		if encErr != nil {
			err = fmt.Errorf("extract %s for %v: %w", attr.NameOf[D](), e, encErr)
			return
		}
		b.ForwardRaw(link, e, id, data)
	})
	return err
}

// Despawns forwards a Despawn removal for every linked entity destroyed
// since the last call.
func Despawns(w *world.World, b *bus.Bus) {
	for _, d := range w.DrainDespawned() {
		if d.Linked {
			b.Despawn(d.Link, d.Entity)
		}
	}
}

// Track attaches attribute v to e.
func Track[D comparable](w *world.World, e world.Entity, v D) {
	world.Insert(w, e, New(v))
}

// Set updates the tracked attribute D on e. It reports false when e does
// not track D.
func Set[D comparable](w *world.World, e world.Entity, v D) bool {
	d := world.StoreOf[Differential[D]](w).Ref(e)
	if d == nil {
		return false
	}
	d.Set(v)
	return true
}

// Untrack detaches attribute D from e and, if e is linked and visible,
// tells its renderer the attribute is gone.
func Untrack[D comparable](w *world.World, b *bus.Bus, e world.Entity) bool {
	if !world.Remove[Differential[D]](w, e) {
		return false
	}
	link, ok := world.Get[world.RenderLink](w, e)
	if v, _ := world.Get[world.Visibility](w, e); ok && v.Visible {
		b.ForwardRaw(link, e, attr.IDOf[D](), nil)
	}
	return true
}
