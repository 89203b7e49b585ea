// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilHALDevice is returned when a HALAllocator has no device.
var ErrNilHALDevice = errors.New("render: nil HAL device")

// HALAllocator allocates GPU textures through a gogpu/wgpu HAL device.
type HALAllocator struct {
	device hal.Device
}

// NewHALAllocator wraps a HAL device provided by the host.
func NewHALAllocator(device hal.Device) *HALAllocator {
	return &HALAllocator{device: device}
}

// Allocate creates a 2D texture and its default view.
func (a *HALAllocator) Allocate(desc TextureDescriptor) (Texture, error) {
	if a.device == nil {
		return nil, ErrNilHALDevice
	}

	halTex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("HAL texture creation failed: %w", err)
	}

	view, err := a.device.CreateTextureView(halTex, &hal.TextureViewDescriptor{
		Label:     desc.Label + " (default view)",
		Format:    gputypes.TextureFormatUndefined, // Inherit from texture
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		a.device.DestroyTexture(halTex)
		return nil, fmt.Errorf("HAL texture view creation failed: %w", err)
	}

	return &HALTexture{
		device: a.device,
		tex:    halTex,
		view:   view,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
	}, nil
}

// HALTexture is a GPU texture with its default view.
type HALTexture struct {
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	format gputypes.TextureFormat
}

// Width returns the texture width in pixels.
func (t *HALTexture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *HALTexture) Height() uint32 { return t.height }

// Format returns the texture pixel format.
func (t *HALTexture) Format() gputypes.TextureFormat { return t.format }

// View returns the default view used for bind groups and render passes.
// Returns nil after Destroy.
func (t *HALTexture) View() hal.TextureView { return t.view }

// Destroy releases the view, then the texture.
func (t *HALTexture) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

var (
	_ Allocator = (*HALAllocator)(nil)
	_ Texture   = (*HALTexture)(nil)
)
