// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

// Option configures an element kind.
type Option func(*config)

type config struct {
	capacity int
	slotSize int
	grid     int
}

func newConfig(slotSize int, opts []Option) config {
	c := config{capacity: 1, slotSize: slotSize, grid: 8}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithCapacity sets the initial instance capacity. The table still grows
// past it on demand.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithSlotSize sets the pixel size of one atlas slot for Icon and Image.
func WithSlotSize(px int) Option {
	return func(c *config) {
		if px > 0 {
			c.slotSize = px
		}
	}
}

// WithAtlasGrid sets the number of atlas slots per row and column for Icon
// and Image.
func WithAtlasGrid(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.grid = n
		}
	}
}
