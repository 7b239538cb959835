// Package bus carries per-frame attribute changes from the scheduler side
// to the renderers.
//
// The scheduler forwards encoded attribute values keyed by (render link,
// entity) and queues removals per link. Once per frame the render thread
// calls [Bus.PackageForTransit], which moves everything accumulated so far
// into a [Package] and leaves the bus empty. Each renderer then drains the
// [Queue] for its own link.
//
// Within a frame the bus is last-writer-wins for a given (link, entity):
// forwarding cancels a pending removal and removing discards a pending
// packet. Across frames, packages are delivered in order.
//
// Attribute values travel as MessagePack, with structs encoded as arrays.
package bus
