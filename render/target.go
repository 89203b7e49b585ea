// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// nextTargetID hands out stable target identities. 0 is invalid.
var nextTargetID atomic.Uint64

// RenderTarget is an owned off-screen color buffer that one pass draws into
// and another pass samples.
//
// The target keeps its identity (ID) across resizes so dependents never
// re-bind the target itself; only the texture behind it is replaced.
// Every successful reallocation increments Generation, which is what
// dependents compare to detect a stale texture binding.
//
// Example:
//
//	target, err := render.NewRenderTarget(render.NewHostAllocator(),
//	    render.DefaultDeviceLimits(), 800, 600, gputypes.TextureFormatRGBA8Unorm)
//	...
//	err = target.Resize(1024, 768) // same ID, new generation
type RenderTarget struct {
	id         uint64
	alloc      Allocator
	limits     DeviceLimits
	desc       TextureDescriptor
	tex        Texture
	generation uint64
	destroyed  bool
}

// NewRenderTarget allocates a target usable both as a render attachment and
// as a shader-readable texture.
//
// Returns *AllocationError if either dimension is zero or exceeds
// limits.MaxTextureDimension2D, or if the allocator fails.
func NewRenderTarget(alloc Allocator, limits DeviceLimits, width, height uint32, format gputypes.TextureFormat) (*RenderTarget, error) {
	t := &RenderTarget{
		id:     nextTargetID.Add(1),
		alloc:  alloc,
		limits: limits,
		desc:   DefaultTextureDescriptor(width, height, format),
	}
	t.desc.Label = fmt.Sprintf("render-target-%d", t.id)

	tex, err := t.allocate(width, height)
	if err != nil {
		return nil, err
	}
	t.tex = tex
	t.generation = 1
	return t, nil
}

// ID returns the stable identity of the target.
func (t *RenderTarget) ID() uint64 {
	return t.id
}

// Generation returns the number of successful allocations so far.
func (t *RenderTarget) Generation() uint64 {
	return t.generation
}

// Width returns the target width in pixels.
func (t *RenderTarget) Width() uint32 {
	return t.desc.Width
}

// Height returns the target height in pixels.
func (t *RenderTarget) Height() uint32 {
	return t.desc.Height
}

// Size returns width and height as a convenience.
func (t *RenderTarget) Size() (width, height uint32) {
	return t.desc.Width, t.desc.Height
}

// Format returns the pixel format of the target.
func (t *RenderTarget) Format() gputypes.TextureFormat {
	return t.desc.Format
}

// Usage returns the texture usage flags of the target.
func (t *RenderTarget) Usage() gputypes.TextureUsage {
	return t.desc.Usage
}

// Texture returns the live texture. Callers must not retain it across a
// Resize; compare Generation instead.
func (t *RenderTarget) Texture() Texture {
	return t.tex
}

// Resize reallocates the target in place.
//
// The replacement is allocated before the old texture is released, so on
// failure the previous texture, size and generation are left untouched and
// an *AllocationError is returned. Contents are not preserved.
// Resizing to the current size is a no-op.
func (t *RenderTarget) Resize(width, height uint32) error {
	if t.destroyed {
		return &AllocationError{Width: width, Height: height, Err: ErrTargetDestroyed}
	}
	if width == t.desc.Width && height == t.desc.Height {
		return nil
	}

	tex, err := t.allocate(width, height)
	if err != nil {
		return err
	}

	old := t.tex
	t.tex = tex
	t.desc.Width = width
	t.desc.Height = height
	t.generation++

	if old != nil {
		old.Destroy()
	}
	return nil
}

// Destroy releases the texture. Destroy is idempotent.
func (t *RenderTarget) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	if t.tex != nil {
		t.tex.Destroy()
		t.tex = nil
	}
}

func (t *RenderTarget) allocate(width, height uint32) (Texture, error) {
	if width == 0 || height == 0 {
		return nil, &AllocationError{Width: width, Height: height, Err: ErrZeroSize}
	}
	if limit := t.limits.MaxTextureDimension2D; limit > 0 && (width > limit || height > limit) {
		return nil, &AllocationError{Width: width, Height: height, Limit: limit, Err: ErrExceedsLimit}
	}

	desc := t.desc
	desc.Width = width
	desc.Height = height
	tex, err := t.alloc.Allocate(desc)
	if err != nil {
		return nil, &AllocationError{Width: width, Height: height, Err: err}
	}
	return tex, nil
}

// WindowSurface is the host-memory color buffer the compositor pass draws
// into. It always matches the window client size; the host presents it.
type WindowSurface struct {
	img *image.RGBA
}

// NewWindowSurface creates a surface of the given client size.
func NewWindowSurface(width, height uint32) *WindowSurface {
	return &WindowSurface{img: image.NewRGBA(image.Rect(0, 0, int(width), int(height)))}
}

// Width returns the surface width in pixels.
func (s *WindowSurface) Width() uint32 {
	return uint32(s.img.Bounds().Dx()) //nolint:gosec // G115: image bounds are non-negative
}

// Height returns the surface height in pixels.
func (s *WindowSurface) Height() uint32 {
	return uint32(s.img.Bounds().Dy()) //nolint:gosec // G115: image bounds are non-negative
}

// Image returns the underlying *image.RGBA.
func (s *WindowSurface) Image() *image.RGBA {
	return s.img
}

// Resize reallocates the surface. Contents are not preserved.
func (s *WindowSurface) Resize(width, height uint32) {
	if s.Width() == width && s.Height() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
}
