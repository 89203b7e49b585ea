// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package world

// Spin rotates a transform around the world X and Z axes at constant angular
// rates. Rotation accumulates with elapsed time, never per frame, so the
// result depends only on the sequence of deltas.
type Spin struct {
	// RateX is the angular velocity around X in radians per second.
	RateX float64

	// RateZ is the angular velocity around Z in radians per second.
	RateZ float64

	angleX float64
	angleZ float64
}

// NewSpin creates a Spin with the given rates in radians per second.
func NewSpin(rateX, rateZ float64) *Spin {
	return &Spin{RateX: rateX, RateZ: rateZ}
}

// Advance rotates t by RateX*dt around X, then RateZ*dt around Z, and adds
// the same amounts to the accumulated angles. dt is in seconds; negative
// deltas are treated as zero.
func (s *Spin) Advance(t *Transform, dt float64) {
	if dt <= 0 {
		return
	}
	dx := s.RateX * dt
	dz := s.RateZ * dt
	s.angleX += dx
	s.angleZ += dz
	t.RotateX(float32(dx))
	t.RotateZ(float32(dz))
}

// Angles returns the accumulated rotation around X and Z in radians.
func (s *Spin) Angles() (x, z float64) {
	return s.angleX, s.angleZ
}

// Reset clears the accumulated angles. The transform is not touched.
func (s *Spin) Reset() {
	s.angleX, s.angleZ = 0, 0
}
