// Package foliage is the render pipeline core of the foliage UI toolkit.
//
// # Overview
//
// A foliage host keeps its interface as entities in a [world.World]. Each
// drawable entity carries a render link naming its element kind, a
// visibility flag and tracked attributes (position, area, color,
// elevation and so on). Every frame the core moves what changed from the
// world to the GPU:
//
//	world ──Tick──▶ bus ──Frame──▶ instance tables ──▶ bundles ──▶ surface
//
// Only changed attributes travel. Each element kind keeps its instances in
// dense per-attribute vertex buffers and re-records its render bundle only
// when the instance count, buffers or draw order change.
//
// # Quick Start
//
//	eng, err := foliage.New(instance, gfx.Window{Display: d, Handle: h})
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//	if err := eng.Configure(gfx.Extent{Width: 1280, Height: 720}, 1); err != nil {
//	    return err
//	}
//
//	w := world.New()
//	e := w.Spawn()
//	world.Insert(w, e, elements.PanelLink)
//	world.Insert(w, e, world.Shown)
//	differential.Track(w, e, attr.Position{X: 10, Y: 10})
//	differential.Track(w, e, attr.Area{W: 100, H: 50})
//	differential.Track(w, e, attr.Red)
//
//	for running {
//	    if err := eng.Tick(w); err != nil {
//	        return err
//	    }
//	    if err := eng.Frame(); err != nil {
//	        return err
//	    }
//	}
//
// # Coordinate System
//
//   - Origin (0,0) at the top-left of the viewport, in logical pixels
//   - X increases right, Y increases down
//   - Elevation increases toward the viewer, within [near, far]
//
// # Phases
//
// Opaque kinds draw first with depth writes. Alpha kinds draw after them
// by ascending priority, then back to front by elevation.
package foliage
