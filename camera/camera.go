// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package camera describes the two cameras of the pipeline and the schedule
// that orders their passes.
//
// The producer camera renders the 3D scene layer into the off-screen
// RenderTarget; the compositor camera renders the post-process layer into the
// window surface. Order is decided by Priority alone: Schedule sorts by it
// and Validate rejects any setup where the compositor would not run strictly
// after the producer.
package camera

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/render"
)

// TargetKind says where a camera's output goes.
type TargetKind uint8

const (
	// TargetWindow renders to the window surface.
	TargetWindow TargetKind = iota
	// TargetImage renders to an off-screen RenderTarget.
	TargetImage
)

func (k TargetKind) String() string {
	if k == TargetImage {
		return "image"
	}
	return "window"
}

// Target is a camera output destination.
type Target struct {
	Kind  TargetKind
	Image *render.RenderTarget
}

// WindowTarget returns a target for the window surface.
func WindowTarget() Target {
	return Target{Kind: TargetWindow}
}

// ImageTarget returns a target for an off-screen buffer.
func ImageTarget(rt *render.RenderTarget) Target {
	return Target{Kind: TargetImage, Image: rt}
}

// ProjectionKind selects the projection model.
type ProjectionKind uint8

const (
	// Perspective is a 3D perspective projection.
	Perspective ProjectionKind = iota
	// Orthographic is a 2D projection in pixel units centered on the origin.
	Orthographic
)

// Projection parameters.
type Projection struct {
	Kind ProjectionKind
	FovY float32 // radians, perspective only
	Near float32
	Far  float32
}

// DefaultPerspective returns a 45° perspective projection.
func DefaultPerspective() Projection {
	return Projection{Kind: Perspective, FovY: mgl32.DegToRad(45), Near: 0.1, Far: 1000}
}

// DefaultOrthographic returns the 2D projection used by the compositor:
// one unit per pixel, origin at the window center.
func DefaultOrthographic() Projection {
	return Projection{Kind: Orthographic, Near: -1000, Far: 1000}
}

// Drawable is anything a camera can select by layer.
type Drawable interface {
	DrawableName() string
	RenderLayers() render.Layers
}

// Camera is one draw pass: what it sees, where it writes and when it runs.
type Camera struct {
	Name       string
	Target     Target
	Priority   int
	Layers     render.Layers
	Projection Projection
	ClearColor color.RGBA

	// Eye, Center and Up position a perspective camera.
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3
}

// View returns the world-to-view matrix.
func (c *Camera) View() mgl32.Mat4 {
	if c.Projection.Kind == Orthographic {
		return mgl32.Ident4()
	}
	up := c.Up
	if up == (mgl32.Vec3{}) {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Eye, c.Center, up)
}

// ProjectionMatrix returns the view-to-clip matrix for a viewport size.
func (c *Camera) ProjectionMatrix(width, height uint32) mgl32.Mat4 {
	w, h := float32(width), float32(height)
	if h == 0 {
		h = 1
	}
	if c.Projection.Kind == Orthographic {
		return mgl32.Ortho(-w/2, w/2, -h/2, h/2, c.Projection.Near, c.Projection.Far)
	}
	return mgl32.Perspective(c.Projection.FovY, w/h, c.Projection.Near, c.Projection.Far)
}

// ViewProjection returns ProjectionMatrix * View.
func (c *Camera) ViewProjection(width, height uint32) mgl32.Mat4 {
	return c.ProjectionMatrix(width, height).Mul4(c.View())
}

// Sees reports whether d is on one of the camera's layers.
func (c *Camera) Sees(d Drawable) bool {
	return c.Layers.Intersects(d.RenderLayers())
}

// Visible filters ds down to what the camera draws, keeping order.
func (c *Camera) Visible(ds []Drawable) []Drawable {
	var out []Drawable
	for _, d := range ds {
		if c.Sees(d) {
			out = append(out, d)
		}
	}
	return out
}
