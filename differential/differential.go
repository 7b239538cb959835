// Package differential extracts attribute changes from the world onto the
// bus.
//
// An attribute of type D is tracked by wrapping it in a [Differential]
// component. Each tick the [Extractor] compares every tracked value with
// the last value sent for it and forwards only what changed. Entities that
// become invisible are removed from their renderer; entities that become
// visible again have every tracked attribute re-sent, because the renderer
// blanked them in between.
package differential

// Differential wraps an attribute value with the cache of what was last
// sent to the renderer.
type Differential[D comparable] struct {
	value  D
	cache  D
	sent   bool
	resend bool
}

// New wraps v. The first extraction always sends it.
func New[D comparable](v D) Differential[D] {
	return Differential[D]{value: v}
}

// Value returns the current value.
func (d *Differential[D]) Value() D { return d.value }

// Set replaces the current value.
func (d *Differential[D]) Set(v D) { d.value = v }

// PushCached forces the next extraction to send the value even if it is
// unchanged.
func (d *Differential[D]) PushCached() { d.resend = true }

// Updated reports whether the value must be sent and, if so, records it
// as sent.
func (d *Differential[D]) Updated() (D, bool) {
	if d.sent && !d.resend && d.cache == d.value {
		return d.value, false
	}
	d.cache = d.value
	d.sent = true
	d.resend = false
	return d.value, true
}
