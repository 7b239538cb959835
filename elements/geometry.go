// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package elements

import "github.com/gogpu/gputypes"

// A geometry vertex is a vec4: xy is an anchor scaled by the instance
// extent and zw an offset scaled by a per-kind length (corner radius,
// line weight). Triangles wind so that they face front after the
// viewport's y flip.
type vertex [4]float32

const vertexStride = 16

func geometryLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
		},
	}
}

// quad emits two triangles over the cell [x0,x1]x[y0,y1].
func quad(x0, y0, x1, y1 [2]float32) []vertex {
	v := func(x, y [2]float32) vertex { return vertex{x[0], y[0], x[1], y[1]} }
	return []vertex{
		v(x0, y0), v(x0, y1), v(x1, y1),
		v(x0, y0), v(x1, y1), v(x1, y0),
	}
}

// unitQuad covers [0,1]x[0,1] with no offsets.
func unitQuad() []vertex {
	return quad([2]float32{0, 0}, [2]float32{0, 0}, [2]float32{1, 0}, [2]float32{1, 0})
}

// nineSlice splits the instance rectangle into a 3x3 grid whose border
// cells are one corner radius wide.
func nineSlice() []vertex {
	stops := [4][2]float32{{0, 0}, {0, 1}, {1, -1}, {1, 0}}
	out := make([]vertex, 0, 54)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			out = append(out, quad(stops[i], stops[j], stops[i+1], stops[j+1])...)
		}
	}
	return out
}

// lineQuad spans the segment along x in [0,1] and across it in [-0.5,0.5].
func lineQuad() []vertex {
	return []vertex{
		{0, -0.5, 0, 0}, {0, 0.5, 0, 0}, {1, 0.5, 0, 0},
		{0, -0.5, 0, 0}, {1, 0.5, 0, 0}, {1, -0.5, 0, 0},
	}
}
