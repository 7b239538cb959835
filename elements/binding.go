// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import (
	"fmt"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/instance"
	"github.com/gogpu/foliage/world"
)

// binding moves one attribute from a packet into its instance column.
type binding interface {
	apply(e world.Entity, p bus.Packet) error
}

// forgetter is a binding that keeps per-entity state past the packet.
type forgetter interface {
	forget(e world.Entity)
}

type columnBinding[A attr.Value] struct {
	col  *instance.Column[world.Entity, A]
	fill A
}

func (b columnBinding[A]) apply(e world.Entity, p bus.Packet) error {
	if bus.Removed[A](p) {
		b.col.Write(e, b.fill)
		return nil
	}
	v, ok, err := bus.Get[A](p)
	if err != nil {
		return fmt.Errorf("%s: %w", b.col.Name(), err)
	}
	if ok {
		b.col.Write(e, v)
	}
	return nil
}

// elevationBinding also moves the entity in the kind's draw order.
type elevationBinding struct {
	col   *instance.Column[world.Entity, attr.Elevation]
	coord *instance.Coordinator[world.Entity]
}

func (b elevationBinding) apply(e world.Entity, p bus.Packet) error {
	v, ok, err := bus.Get[attr.Elevation](p)
	if err != nil {
		return fmt.Errorf("%s: %w", b.col.Name(), err)
	}
	if bus.Removed[attr.Elevation](p) {
		v, ok = 0, true
	}
	if ok {
		b.col.Write(e, v)
		b.coord.SetOrder(e, float32(v))
	}
	return nil
}

// colorBinding writes Color with its alpha scaled by Opacity. Both are
// kept per entity so either can change alone.
type colorBinding struct {
	col     *instance.Column[world.Entity, attr.Color]
	base    map[world.Entity]attr.Color
	opacity map[world.Entity]attr.Opacity
}

func (b colorBinding) apply(e world.Entity, p bus.Packet) error {
	touched := false
	switch c, ok, err := bus.Get[attr.Color](p); {
	case err != nil:
		return fmt.Errorf("%s: %w", b.col.Name(), err)
	case ok:
		b.base[e] = c
		touched = true
	case bus.Removed[attr.Color](p):
		delete(b.base, e)
		touched = true
	}
	switch o, ok, err := bus.Get[attr.Opacity](p); {
	case err != nil:
		return fmt.Errorf("opacity: %w", err)
	case ok:
		b.opacity[e] = o
		touched = true
	case bus.Removed[attr.Opacity](p):
		delete(b.opacity, e)
		touched = true
	}
	if touched {
		b.col.Write(e, b.resolve(e))
	}
	return nil
}

func (b colorBinding) resolve(e world.Entity) attr.Color {
	c := b.base[e]
	if o, ok := b.opacity[e]; ok {
		c = c.Faded(o)
	}
	return c
}

func (b colorBinding) forget(e world.Entity) {
	delete(b.base, e)
	delete(b.opacity, e)
}

// bind adds a column for A fed from packets.
func bind[A attr.Value](b *batch[world.Entity], name string, fill A) (*instance.Column[world.Entity, A], error) {
	col, err := instance.AddColumn(b.coord, name, fill)
	if err != nil {
		return nil, err
	}
	b.binds = append(b.binds, columnBinding[A]{col: col, fill: fill})
	return col, nil
}

// bindElevation adds the elevation column.
func bindElevation(b *batch[world.Entity]) (*instance.Column[world.Entity, attr.Elevation], error) {
	col, err := instance.AddColumn(b.coord, "elevation", attr.Elevation(0))
	if err != nil {
		return nil, err
	}
	b.binds = append(b.binds, elevationBinding{col: col, coord: b.coord})
	return col, nil
}

// bindColor adds the color column, faded by the entity's Opacity.
func bindColor(b *batch[world.Entity]) (*instance.Column[world.Entity, attr.Color], error) {
	col, err := instance.AddColumn(b.coord, "color", attr.Color{})
	if err != nil {
		return nil, err
	}
	b.binds = append(b.binds, colorBinding{
		col:     col,
		base:    make(map[world.Entity]attr.Color),
		opacity: make(map[world.Entity]attr.Opacity),
	})
	return col, nil
}
