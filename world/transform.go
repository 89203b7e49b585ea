// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package world

import "github.com/go-gl/mathgl/mgl32"

// Axis unit vectors.
var (
	AxisX = mgl32.Vec3{1, 0, 0}
	AxisY = mgl32.Vec3{0, 1, 0}
	AxisZ = mgl32.Vec3{0, 0, 1}
)

// Transform is a translation, rotation and scale applied in scale, rotate,
// translate order.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// FromTranslation returns an identity transform moved to t.
func FromTranslation(t mgl32.Vec3) Transform {
	tr := Identity()
	tr.Translation = t
	return tr
}

// WithScale returns a copy of tr with the given scale.
func (tr Transform) WithScale(s mgl32.Vec3) Transform {
	tr.Scale = s
	return tr
}

// RotateAxis rotates the transform by angle radians around a world-space axis.
func (tr *Transform) RotateAxis(axis mgl32.Vec3, angle float32) {
	tr.Rotation = mgl32.QuatRotate(angle, axis).Mul(tr.Rotation).Normalize()
}

// RotateX rotates around the world X axis.
func (tr *Transform) RotateX(angle float32) {
	tr.RotateAxis(AxisX, angle)
}

// RotateZ rotates around the world Z axis.
func (tr *Transform) RotateZ(angle float32) {
	tr.RotateAxis(AxisZ, angle)
}

// Matrix returns the model matrix T * R * S.
func (tr Transform) Matrix() mgl32.Mat4 {
	t := mgl32.Translate3D(tr.Translation.X(), tr.Translation.Y(), tr.Translation.Z())
	r := tr.Rotation.Mat4()
	s := mgl32.Scale3D(tr.Scale.X(), tr.Scale.Y(), tr.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// NormalMatrix returns the rotation part used to transform normals.
// Scale is uniform in this pipeline, so the rotation alone suffices.
func (tr Transform) NormalMatrix() mgl32.Mat3 {
	return tr.Rotation.Mat4().Mat3()
}
