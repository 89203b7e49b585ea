// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// ErrUnsupportedFormat is returned by HostAllocator for formats other than RGBA8.
var ErrUnsupportedFormat = errors.New("render: unsupported host texture format")

// HostAllocator allocates textures in host memory.
//
// Host textures back the software passes and make every pipeline invariant
// observable in tests without a GPU.
type HostAllocator struct {
	allocations int
}

// NewHostAllocator creates a host-memory allocator.
func NewHostAllocator() *HostAllocator {
	return &HostAllocator{}
}

// Allocate creates a zero-filled RGBA texture.
func (a *HostAllocator) Allocate(desc TextureDescriptor) (Texture, error) {
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}
	a.allocations++
	return &HostTexture{
		img:    image.NewRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height))),
		format: desc.Format,
		label:  desc.Label,
	}, nil
}

// Allocations returns how many textures have been allocated.
func (a *HostAllocator) Allocations() int {
	return a.allocations
}

// HostTexture is a texture backed by *image.RGBA.
type HostTexture struct {
	img       *image.RGBA
	format    gputypes.TextureFormat
	label     string
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *HostTexture) Width() uint32 {
	return uint32(t.img.Bounds().Dx()) //nolint:gosec // G115: image bounds are non-negative
}

// Height returns the texture height in pixels.
func (t *HostTexture) Height() uint32 {
	return uint32(t.img.Bounds().Dy()) //nolint:gosec // G115: image bounds are non-negative
}

// Format returns the pixel format (RGBA8).
func (t *HostTexture) Format() gputypes.TextureFormat {
	return t.format
}

// Label returns the debug label.
func (t *HostTexture) Label() string {
	return t.label
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the texture.
func (t *HostTexture) Image() *image.RGBA {
	return t.img
}

// Clear fills the entire texture with the given color.
func (t *HostTexture) Clear(c color.RGBA) {
	pix := t.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

// Destroy releases the pixel memory.
func (t *HostTexture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.img = image.NewRGBA(image.Rectangle{})
}

// IsDestroyed reports whether Destroy has been called.
func (t *HostTexture) IsDestroyed() bool {
	return t.destroyed
}

var (
	_ Allocator = (*HostAllocator)(nil)
	_ Texture   = (*HostTexture)(nil)
)
