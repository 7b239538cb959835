package bus

import (
	"slices"

	"github.com/gogpu/foliage/world"
)

// Package is one frame's worth of bus traffic, grouped by render link.
type Package struct {
	queues map[world.RenderLink]*Queue
}

func (p *Package) queue(link world.RenderLink) *Queue {
	q, ok := p.queues[link]
	if !ok {
		q = &Queue{packets: make(map[world.Entity]Packet)}
		p.queues[link] = q
	}
	return q
}

// Obtain returns the queue for link. A link with no traffic yields an
// empty queue.
func (p *Package) Obtain(link world.RenderLink) *Queue {
	if q, ok := p.queues[link]; ok {
		return q
	}
	return &Queue{packets: map[world.Entity]Packet{}}
}

// Links returns the links that carry traffic, in ascending order.
func (p *Package) Links() []world.RenderLink {
	links := make([]world.RenderLink, 0, len(p.queues))
	for l := range p.queues {
		links = append(links, l)
	}
	slices.Sort(links)
	return links
}

// Empty reports whether the package carries no traffic at all.
func (p *Package) Empty() bool {
	for _, q := range p.queues {
		if q.Len() > 0 {
			return false
		}
	}
	return true
}

// Queue is the traffic for one renderer kind.
type Queue struct {
	packets  map[world.Entity]Packet
	removals []Removal
}

// RetrieveRemovals returns the queued removals in entity order and clears
// them from the queue.
func (q *Queue) RetrieveRemovals() []Removal {
	out := q.removals
	q.removals = nil
	return out
}

// RetrievePacket takes the packet for e out of the queue.
func (q *Queue) RetrievePacket(e world.Entity) (Packet, bool) {
	p, ok := q.packets[e]
	if ok {
		delete(q.packets, e)
	}
	return p, ok
}

// Entities returns the entities that have a packet, in entity order.
func (q *Queue) Entities() []world.Entity {
	out := make([]world.Entity, 0, len(q.packets))
	for e := range q.packets {
		out = append(out, e)
	}
	slices.SortFunc(out, world.Entity.Compare)
	return out
}

// Len returns the number of packets and removals still in the queue.
func (q *Queue) Len() int { return len(q.packets) + len(q.removals) }

func (q *Queue) sortRemovals() {
	slices.SortFunc(q.removals, func(a, b Removal) int { return a.Entity.Compare(b.Entity) })
}
