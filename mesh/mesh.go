// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mesh provides indexed triangle meshes and the two primitives the
// pipeline needs: the producer's cube and the compositor's window-sized quad.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// VertexStride is the size in bytes of one interleaved vertex:
// position (float32x3), normal (float32x3), uv (float32x2).
const VertexStride = 32

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	return m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]
}

// Bounds returns the axis-aligned bounding box of the positions.
// An empty mesh returns two zero vectors.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return lo, hi
	}
	inf := float32(math.Inf(1))
	lo = mgl32.Vec3{inf, inf, inf}
	hi = mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range m.Positions {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Extent returns the width and height of the XY bounding rectangle.
func (m *Mesh) Extent() (width, height float32) {
	lo, hi := m.Bounds()
	return hi[0] - lo[0], hi[1] - lo[1]
}

// Interleave packs the vertices as position, normal, uv float32 triples
// matching VertexLayout.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Positions)*VertexStride/4)
	for i, p := range m.Positions {
		var n mgl32.Vec3
		if i < len(m.Normals) {
			n = m.Normals[i]
		}
		var uv mgl32.Vec2
		if i < len(m.UVs) {
			uv = m.UVs[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// VertexLayout returns the vertex buffer layout of Interleave's output.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // normal
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2}, // uv
			},
		},
	}
}

// Quad returns a rectangle of the given size centered on the origin in the
// XY plane, facing +Z. UV (0,0) is the top-left corner.
func Quad(width, height float32) *Mesh {
	x, y := width/2, height/2
	return &Mesh{
		Positions: []mgl32.Vec3{{-x, -y, 0}, {-x, y, 0}, {x, y, 0}, {x, -y, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       []mgl32.Vec2{{0, 1}, {0, 0}, {1, 0}, {1, 1}},
		Indices:   []uint32{0, 2, 1, 0, 3, 2},
	}
}

// Cube returns an axis-aligned cube with the given edge length, centered on
// the origin. Each face has its own four vertices so normals are flat.
func Cube(size float32) *Mesh {
	h := size / 2
	faces := []struct {
		normal mgl32.Vec3
		corner [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},     // front
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{-h, h, -h}, {h, h, -h}, {h, -h, -h}, {-h, -h, -h}}}, // back
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{h, -h, -h}, {h, h, -h}, {h, h, h}, {h, -h, h}}},      // right
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-h, -h, h}, {-h, h, h}, {-h, h, -h}, {-h, -h, -h}}}, // left
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{h, h, -h}, {-h, h, -h}, {-h, h, h}, {h, h, h}}},      // top
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{h, -h, h}, {-h, -h, h}, {-h, -h, -h}, {h, -h, -h}}}, // bottom
	}

	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, 24),
		Normals:   make([]mgl32.Vec3, 0, 24),
		UVs:       make([]mgl32.Vec2, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(m.Positions)) //nolint:gosec // G115: at most 24 vertices
		m.Positions = append(m.Positions, f.corner[:]...)
		m.Normals = append(m.Normals, f.normal, f.normal, f.normal, f.normal)
		m.UVs = append(m.UVs, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, mgl32.Vec2{1, 1}, mgl32.Vec2{0, 1})
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return m
}
