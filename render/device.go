// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"
)

// TextureDescriptor describes parameters for creating a texture.
// This mirrors the WebGPU GPUTextureDescriptor specification.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// MipLevelCount is the number of mipmap levels.
	// Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// TargetUsage is the usage set of an off-screen color target: it is drawn
// into by one pass, sampled by another and may be cleared by a copy.
const TargetUsage = gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageRenderAttachment

// DefaultTextureDescriptor returns a 2D, single-sample, single-mip
// descriptor usable as both render attachment and sampled texture.
func DefaultTextureDescriptor(width, height uint32, format gputypes.TextureFormat) TextureDescriptor {
	return TextureDescriptor{
		Width:         width,
		Height:        height,
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        format,
		Usage:         TargetUsage,
	}
}

// Texture represents an allocated color buffer.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases resources associated with this texture.
	// Destroy is idempotent.
	Destroy()
}

// Allocator creates textures. The pipeline never touches raw GPU memory;
// all allocations go through an Allocator supplied by the host.
type Allocator interface {
	Allocate(desc TextureDescriptor) (Texture, error)
}

// DeviceLimits describes the limits that constrain target allocation.
type DeviceLimits struct {
	// MaxTextureDimension2D is the largest width or height of a 2D texture.
	MaxTextureDimension2D uint32
}

// DefaultDeviceLimits returns the WebGPU default limits.
func DefaultDeviceLimits() DeviceLimits {
	return DeviceLimitsFromGPU(gputypes.DefaultLimits())
}

// DeviceLimitsFromGPU extracts the limits relevant to render targets.
func DeviceLimitsFromGPU(l gputypes.Limits) DeviceLimits {
	return DeviceLimits{MaxTextureDimension2D: l.MaxTextureDimension2D}
}
