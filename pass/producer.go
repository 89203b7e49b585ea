// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/camera"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/world"
)

// ErrNotHostTexture is returned when a software pass is handed a texture it
// cannot address.
var ErrNotHostTexture = errors.New("pass: target is not backed by a host texture")

// Ambient is the light every lit surface receives.
const Ambient = 0.15

// Producer draws scene objects into the camera's off-screen target.
type Producer struct {
	Meshes    *asset.Store[*mesh.Mesh]
	Materials *asset.Store[world.StandardMaterial]
	World     *world.World

	zbuf []float32
}

// Run clears the camera target to cam.ClearColor and draws every visible
// *world.Object with flat per-face lighting and a depth test.
func (p *Producer) Run(cam *camera.Camera, visible []camera.Drawable) (Record, error) {
	rt := cam.Target.Image
	if rt == nil {
		return Record{}, fmt.Errorf("pass: camera %q has no image target", cam.Name)
	}
	tex, ok := rt.Texture().(*render.HostTexture)
	if !ok {
		return Record{}, fmt.Errorf("%w: camera %q", ErrNotHostTexture, cam.Name)
	}

	w, h := rt.Size()
	tex.Clear(cam.ClearColor)
	p.resetDepth(int(w * h))

	fb := frame{tex: tex, zbuf: p.zbuf, width: int(w), height: int(h)}
	vp := cam.ViewProjection(w, h)
	lights := p.World.Lights()

	rec := Record{
		Camera:     cam.Name,
		Priority:   cam.Priority,
		Op:         OpWrite,
		TargetID:   rt.ID(),
		Generation: rt.Generation(),
		Width:      w,
		Height:     h,
	}
	for _, d := range visible {
		obj, ok := d.(*world.Object)
		if !ok {
			continue
		}
		m, ok := p.Meshes.Get(obj.Mesh)
		if !ok {
			return rec, fmt.Errorf("pass: object %q mesh %v: %w", obj.Name, obj.Mesh, asset.ErrInvalidHandle)
		}
		mat, ok := p.Materials.Get(obj.Material)
		if !ok {
			return rec, fmt.Errorf("pass: object %q material %v: %w", obj.Name, obj.Material, asset.ErrInvalidHandle)
		}
		drawMesh(&fb, m, obj.Transform.Matrix(), vp, mat, lights)
		rec.Drawables = append(rec.Drawables, obj.Name)
	}
	return rec, nil
}

func (p *Producer) resetDepth(n int) {
	if cap(p.zbuf) < n {
		p.zbuf = make([]float32, n)
	}
	p.zbuf = p.zbuf[:n]
	for i := range p.zbuf {
		p.zbuf[i] = math.MaxFloat32
	}
}

type frame struct {
	tex           *render.HostTexture
	zbuf          []float32
	width, height int
}

type screenVertex struct {
	x, y, z float32
}

func drawMesh(fb *frame, m *mesh.Mesh, model, vp mgl32.Mat4, mat world.StandardMaterial, lights []*world.Light) {
	mvp := vp.Mul4(model)
	for i := range m.TriangleCount() {
		a, b, c := m.Triangle(i)
		idx := [3]uint32{a, b, c}

		var sv [3]screenVertex
		var wp [3]mgl32.Vec3
		clipped := false
		for k, vi := range idx {
			p := m.Positions[vi]
			clip := mvp.Mul4x1(p.Vec4(1))
			if clip.W() <= 1e-6 {
				clipped = true
				break
			}
			ndc := clip.Vec3().Mul(1 / clip.W())
			sv[k] = screenVertex{
				x: (ndc.X() + 1) * 0.5 * float32(fb.width),
				y: (1 - ndc.Y()) * 0.5 * float32(fb.height),
				z: ndc.Z(),
			}
			wp[k] = model.Mul4x1(p.Vec4(1)).Vec3()
		}
		if clipped {
			continue
		}

		col := shade(wp, mat, lights)
		rasterize(fb, sv, col)
	}
}

// shade computes the flat color of a world-space triangle.
func shade(wp [3]mgl32.Vec3, mat world.StandardMaterial, lights []*world.Light) color.RGBA {
	if mat.Unlit {
		return mat.BaseColor
	}
	n := wp[1].Sub(wp[0]).Cross(wp[2].Sub(wp[0]))
	if n.Len() < 1e-8 {
		return color.RGBA{A: mat.BaseColor.A}
	}
	n = n.Normalize()
	center := wp[0].Add(wp[1]).Add(wp[2]).Mul(1.0 / 3)

	var r, g, b float32 = Ambient, Ambient, Ambient
	for _, l := range lights {
		var dir mgl32.Vec3
		switch l.Kind {
		case world.DirectionalLight:
			dir = l.Direction.Mul(-1)
		default:
			dir = l.Position.Sub(center)
		}
		if dir.Len() < 1e-8 {
			continue
		}
		// Faces are lit from either side; winding is not trusted.
		ndl := float32(math.Abs(float64(n.Dot(dir.Normalize())))) * l.Intensity
		r += ndl * float32(l.Color.R) / 255
		g += ndl * float32(l.Color.G) / 255
		b += ndl * float32(l.Color.B) / 255
	}

	return color.RGBA{
		R: scale(mat.BaseColor.R, r),
		G: scale(mat.BaseColor.G, g),
		B: scale(mat.BaseColor.B, b),
		A: mat.BaseColor.A,
	}
}

func scale(c uint8, f float32) uint8 {
	v := float32(c) * f
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v + 0.5)
}

// edgeEpsilon widens triangles slightly so samples on a shared edge are
// covered by at least one of them.
const edgeEpsilon = 0.001

// rasterize fills a screen-space triangle with a depth test. Smaller z is
// closer.
func rasterize(fb *frame, v [3]screenVertex, col color.RGBA) {
	x0, y0, z0 := v[0].x, v[0].y, v[0].z
	x1, y1, z1 := v[1].x, v[1].y, v[1].z
	x2, y2, z2 := v[2].x, v[2].y, v[2].z

	minX := max(int(math.Floor(float64(min(x0, x1, x2)))), 0)
	maxX := min(int(math.Ceil(float64(max(x0, x1, x2)))), fb.width-1)
	minY := max(int(math.Floor(float64(min(y0, y1, y2)))), 0)
	maxY := min(int(math.Ceil(float64(max(y0, y1, y2)))), fb.height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1 / det

	dy12, dx21 := y1-y2, x2-x1
	dy20, dx02 := y2-y0, x0-x2

	img := fb.tex.Image()
	for sy := minY; sy <= maxY; sy++ {
		py := float32(sy) + 0.5 - y2
		for sx := minX; sx <= maxX; sx++ {
			px := float32(sx) + 0.5 - x2
			w0 := (dy12*px + dx21*py) * invDet
			w1 := (dy20*px + dx02*py) * invDet
			w2 := 1 - w0 - w1
			if w0 < -edgeEpsilon || w1 < -edgeEpsilon || w2 < -edgeEpsilon {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			if z < -1 || z > 1 {
				continue
			}
			zi := sy*fb.width + sx
			if z >= fb.zbuf[zi] {
				continue
			}
			fb.zbuf[zi] = z
			img.SetRGBA(sx, sy, col)
		}
	}
}
