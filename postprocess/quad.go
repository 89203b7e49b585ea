// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package postprocess

import (
	"fmt"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/render"
)

// QuadName is the drawable name of the full-screen quad.
const QuadName = "PostProcessQuad"

// Quad is the full-screen rectangle drawn by the compositor camera.
//
// The quad keeps its mesh handle for its whole life; Regenerate replaces the
// mesh behind the handle.
type Quad struct {
	Mesh     asset.Handle[*mesh.Mesh]
	Material asset.Handle[*Material]
	Layers   render.Layers

	width  uint32
	height uint32
}

// NewQuad adds a width×height quad mesh to meshes and returns a quad on the
// post-process layer using material.
func NewQuad(meshes *asset.Store[*mesh.Mesh], material asset.Handle[*Material], width, height uint32) *Quad {
	return &Quad{
		Mesh:     meshes.Add(mesh.Quad(float32(width), float32(height))),
		Material: material,
		Layers:   render.Layer(render.PostProcessLayer),
		width:    width,
		height:   height,
	}
}

// Size returns the rectangle dimensions.
func (q *Quad) Size() (width, height uint32) {
	return q.width, q.height
}

// Regenerate replaces the quad mesh with a width×height rectangle.
func (q *Quad) Regenerate(meshes *asset.Store[*mesh.Mesh], width, height uint32) error {
	if err := meshes.Set(q.Mesh, mesh.Quad(float32(width), float32(height))); err != nil {
		return fmt.Errorf("postprocess: regenerate quad: %w", err)
	}
	q.width = width
	q.height = height
	return nil
}

// DrawableName returns QuadName.
func (q *Quad) DrawableName() string { return QuadName }

// RenderLayers returns the quad's layers.
func (q *Quad) RenderLayers() render.Layers { return q.Layers }
