package bus

import (
	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/world"
)

// Reason tells a renderer what a removal means for the instance slot.
type Reason uint8

const (
	// Hide blanks the instance but keeps its slot for a cheap re-show.
	Hide Reason = iota + 1
	// Despawn frees the slot.
	Despawn
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case Hide:
		return "Hide"
	case Despawn:
		return "Despawn"
	default:
		return "Unknown"
	}
}

// Removal is one entity leaving a renderer.
type Removal struct {
	Entity world.Entity
	Reason Reason
}

type key struct {
	link   world.RenderLink
	entity world.Entity
}

// Bus accumulates packets and removals between frames. It is a
// single-owner structure and is not safe for concurrent use.
type Bus struct {
	packets  map[key]Packet
	removals map[world.RenderLink]map[world.Entity]Reason
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		packets:  make(map[key]Packet),
		removals: make(map[world.RenderLink]map[world.Entity]Reason),
	}
}

// Forward merges packet into the pending packet for (link, e) and cancels
// a Hide queued for it in this frame. Packets for an entity despawned in
// this frame are dropped.
func (b *Bus) Forward(link world.RenderLink, e world.Entity, packet Packet) {
	set := b.removals[link]
	if set != nil && set[e] == Despawn {
		return
	}
	k := key{link: link, entity: e}
	pending, ok := b.packets[k]
	if !ok {
		pending = make(Packet, len(packet))
		b.packets[k] = pending
	}
	pending.merge(packet)
	if set != nil {
		delete(set, e)
	}
}

// ForwardRaw forwards a single already-encoded attribute.
func (b *Bus) ForwardRaw(link world.RenderLink, e world.Entity, id attr.ID, data []byte) {
	b.Forward(link, e, Packet{id: data})
}

// Remove queues a visibility removal of e from link and discards any
// packet pending for it.
func (b *Bus) Remove(link world.RenderLink, e world.Entity) {
	b.queueRemoval(link, e, Hide)
}

// Despawn queues removal of a destroyed entity. It overrides a pending
// Hide for the same entity.
func (b *Bus) Despawn(link world.RenderLink, e world.Entity) {
	b.queueRemoval(link, e, Despawn)
}

func (b *Bus) queueRemoval(link world.RenderLink, e world.Entity, r Reason) {
	delete(b.packets, key{link: link, entity: e})
	set := b.removals[link]
	if set == nil {
		set = make(map[world.Entity]Reason)
		b.removals[link] = set
	}
	if set[e] < r {
		set[e] = r
	}
}

// Pending reports the number of queued packets and removals.
func (b *Bus) Pending() (packets, removals int) {
	for _, set := range b.removals {
		removals += len(set)
	}
	return len(b.packets), removals
}

// PackageForTransit moves everything queued into a Package and resets the
// bus.
func (b *Bus) PackageForTransit() *Package {
	pkg := &Package{queues: make(map[world.RenderLink]*Queue)}
	for k, p := range b.packets {
		pkg.queue(k.link).packets[k.entity] = p
	}
	for link, set := range b.removals {
		if len(set) == 0 {
			continue
		}
		q := pkg.queue(link)
		for e, r := range set {
			q.removals = append(q.removals, Removal{Entity: e, Reason: r})
		}
	}
	for _, q := range pkg.queues {
		q.sortRemovals()
	}
	b.packets = make(map[key]Packet)
	b.removals = make(map[world.RenderLink]map[world.Entity]Reason)
	return pkg
}

// Send encodes a and forwards it as a single-attribute packet.
func Send[A any](b *Bus, link world.RenderLink, e world.Entity, a A) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}
	b.ForwardRaw(link, e, attr.IDOf[A](), data)
	return nil
}
