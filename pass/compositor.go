// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/camera"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/postprocess"
	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// Compositor draws the post-process quad into the window surface, sampling
// the material's source target and filtering the result with the material's
// effect.
type Compositor struct {
	Meshes    *asset.Store[*mesh.Mesh]
	Materials *asset.Store[*postprocess.Material]
	Effects   *shader.Effects
	Surface   *render.WindowSurface
}

// Run draws every visible *postprocess.Quad. It returns one read record per
// sampled target followed by the window write.
//
// A material bound to an outdated texture is a pipeline defect: Run returns
// *render.BindingStaleError without touching the surface.
func (c *Compositor) Run(cam *camera.Camera, visible []camera.Drawable) ([]Record, error) {
	sw, sh := c.Surface.Width(), c.Surface.Height()
	dst := c.Surface.Image()
	vp := cam.ViewProjection(sw, sh)

	type job struct {
		quad *postprocess.Quad
		mat  *postprocess.Material
		src  *render.HostTexture
		rect image.Rectangle
	}
	var jobs []job
	for _, d := range visible {
		q, ok := d.(*postprocess.Quad)
		if !ok {
			continue
		}
		mat, ok := c.Materials.Get(q.Material)
		if !ok {
			return nil, fmt.Errorf("pass: quad material %v: %w", q.Material, asset.ErrInvalidHandle)
		}
		if err := mat.Check(); err != nil {
			return nil, err
		}
		src, ok := mat.Source().Texture().(*render.HostTexture)
		if !ok {
			return nil, fmt.Errorf("%w: material source %d", ErrNotHostTexture, mat.Source().ID())
		}
		m, ok := c.Meshes.Get(q.Mesh)
		if !ok {
			return nil, fmt.Errorf("pass: quad mesh %v: %w", q.Mesh, asset.ErrInvalidHandle)
		}
		jobs = append(jobs, job{quad: q, mat: mat, src: src, rect: screenRect(m, vp, sw, sh)})
	}

	draw.Draw(dst, dst.Bounds(), image.NewUniform(opaque(cam.ClearColor)), image.Point{}, draw.Src)

	records := make([]Record, 0, len(jobs)+1)
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		rt := j.mat.Source()
		w, h := rt.Size()
		records = append(records, Record{
			Camera:     cam.Name,
			Priority:   cam.Priority,
			Op:         OpRead,
			TargetID:   rt.ID(),
			Generation: rt.Generation(),
			Width:      w,
			Height:     h,
			Drawables:  []string{j.quad.DrawableName()},
		})

		draw.BiLinear.Scale(dst, j.rect, j.src.Image(), j.src.Image().Bounds(), draw.Src, nil)
		if c.Effects != nil {
			if sub, ok := dst.SubImage(j.rect).(*image.RGBA); ok {
				c.Effects.Resolve(j.mat.ShaderRef()).Apply(sub)
			}
		}
		names = append(names, j.quad.DrawableName())
	}

	records = append(records, Record{
		Camera:    cam.Name,
		Priority:  cam.Priority,
		Op:        OpWrite,
		TargetID:  WindowTargetID,
		Width:     sw,
		Height:    sh,
		Drawables: names,
	})
	return records, nil
}

// screenRect projects the XY bounds of m to surface pixels.
func screenRect(m *mesh.Mesh, vp mgl32.Mat4, width, height uint32) image.Rectangle {
	lo, hi := m.Bounds()
	toPixel := func(p mgl32.Vec3) (int, int) {
		clip := vp.Mul4x1(p.Vec4(1))
		if w := clip.W(); w != 0 {
			clip = clip.Mul(1 / w)
		}
		x := (clip.X() + 1) * 0.5 * float32(width)
		y := (1 - clip.Y()) * 0.5 * float32(height)
		return int(math.Round(float64(x))), int(math.Round(float64(y)))
	}
	x0, y0 := toPixel(lo)
	x1, y1 := toPixel(hi)
	return image.Rect(x0, y0, x1, y1)
}

func opaque(c color.RGBA) color.RGBA {
	if c == (color.RGBA{}) {
		return color.RGBA{A: 255}
	}
	return c
}
