// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package camera

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/postfx/render"
)

// Schedule validation errors.
var (
	ErrCameraCount    = errors.New("camera: schedule needs exactly one producer and one compositor")
	ErrPriorityOrder  = errors.New("camera: compositor priority must be greater than producer priority")
	ErrLayerOverlap   = errors.New("camera: producer and compositor layers overlap")
	ErrProducerTarget = errors.New("camera: producer must render to the off-screen target")
)

// Schedule orders camera passes by priority.
type Schedule struct {
	cameras []*Camera
}

// NewSchedule creates a schedule from cameras in any order.
func NewSchedule(cameras ...*Camera) *Schedule {
	s := &Schedule{}
	for _, c := range cameras {
		s.Add(c)
	}
	return s
}

// Add registers a camera. Registration order has no effect on draw order.
func (s *Schedule) Add(c *Camera) {
	s.cameras = append(s.cameras, c)
}

// Len returns the number of cameras.
func (s *Schedule) Len() int {
	return len(s.cameras)
}

// Ordered returns the cameras sorted by ascending priority. Cameras with
// equal priority keep registration order.
func (s *Schedule) Ordered() []*Camera {
	out := slices.Clone(s.cameras)
	slices.SortStableFunc(out, func(a, b *Camera) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return out
}

// Producer returns the image-target camera, or nil.
func (s *Schedule) Producer() *Camera {
	return s.find(TargetImage)
}

// Compositor returns the window-target camera, or nil.
func (s *Schedule) Compositor() *Camera {
	return s.find(TargetWindow)
}

func (s *Schedule) find(kind TargetKind) *Camera {
	for _, c := range s.cameras {
		if c.Target.Kind == kind {
			return c
		}
	}
	return nil
}

// Validate checks the two-pass invariants: one producer targeting rt, one
// compositor targeting the window, compositor priority strictly greater, and
// disjoint layer sets.
func (s *Schedule) Validate(rt *render.RenderTarget) error {
	var producers, compositors int
	for _, c := range s.cameras {
		switch c.Target.Kind {
		case TargetImage:
			producers++
		case TargetWindow:
			compositors++
		}
	}
	if producers != 1 || compositors != 1 || len(s.cameras) != 2 {
		return fmt.Errorf("%w: %d producers, %d compositors", ErrCameraCount, producers, compositors)
	}

	p, c := s.Producer(), s.Compositor()
	if p.Target.Image == nil || p.Target.Image != rt {
		return fmt.Errorf("%w: camera %q", ErrProducerTarget, p.Name)
	}
	if c.Priority <= p.Priority {
		return fmt.Errorf("%w: %q=%d, %q=%d", ErrPriorityOrder, p.Name, p.Priority, c.Name, c.Priority)
	}
	if p.Layers.Intersects(c.Layers) {
		return fmt.Errorf("%w: %v and %v", ErrLayerOverlap, p.Layers, c.Layers)
	}
	return nil
}
