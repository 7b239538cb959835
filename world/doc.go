// Package world is the scheduler-side view of a foliage scene.
//
// A [World] allocates [Entity] handles and stores typed components in
// per-type [Store]s. The render core reads three things from it: the
// attribute components wrapped by the differential package, the
// [Visibility] of each entity, and the [RenderLink] naming the renderer
// kind that draws it. Despawned entities are logged so that the extraction
// pass can forward a removal for the link they were drawn under.
//
// A World is single-owner; systems that run in parallel must funnel writes
// through one goroutine before extraction.
package world
