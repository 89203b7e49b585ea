// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package postprocess

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
)

// Fixed binding slots of the post-process shader contract.
const (
	// TextureSlot is the @binding of the source texture.
	TextureSlot uint32 = 0

	// SamplerSlot is the @binding of the source sampler.
	SamplerSlot uint32 = 1
)

// Binding records which texture of the source target a material is bound to.
type Binding struct {
	TargetID   uint64
	Generation uint64
	Width      uint32
	Height     uint32
}

// Material binds a post-process shader to exactly one input: the producer's
// RenderTarget.
//
// The material holds the target itself, never a texture, so a resize does
// not require re-pointing it. What does change on resize is the texture
// behind the target; Refresh records the new one and Check reports a binding
// that lags behind.
type Material struct {
	shaderRef string
	source    *render.RenderTarget
	binding   Binding
}

// NewMaterial creates a material sampling source through the shader
// identified by shaderRef, bound to the source's current texture.
func NewMaterial(shaderRef string, source *render.RenderTarget) *Material {
	m := &Material{shaderRef: shaderRef, source: source}
	m.Refresh()
	return m
}

// ShaderRef returns the shader program reference.
func (m *Material) ShaderRef() string {
	return m.shaderRef
}

// SetShader swaps the effect. The texture binding is unaffected.
func (m *Material) SetShader(ref string) {
	m.shaderRef = ref
}

// Source returns the sampled target.
func (m *Material) Source() *render.RenderTarget {
	return m.source
}

// Binding returns the texture binding as last refreshed.
func (m *Material) Binding() Binding {
	return m.binding
}

// Refresh rebinds the material to the source's live texture. It must be
// called in the same update as every source reallocation.
func (m *Material) Refresh() {
	w, h := m.source.Size()
	m.binding = Binding{
		TargetID:   m.source.ID(),
		Generation: m.source.Generation(),
		Width:      w,
		Height:     h,
	}
}

// Check returns *render.BindingStaleError if the binding does not match the
// live texture of the source.
func (m *Material) Check() error {
	if m.binding.TargetID != m.source.ID() || m.binding.Generation != m.source.Generation() {
		return &render.BindingStaleError{
			TargetID: m.source.ID(),
			Bound:    m.binding.Generation,
			Live:     m.source.Generation(),
		}
	}
	return nil
}

// BindGroupLayoutEntries returns the layout of the material's bind group:
// a filterable 2D texture at TextureSlot and a filtering sampler at
// SamplerSlot, both visible to the fragment stage.
func BindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	return []gputypes.BindGroupLayoutEntry{
		{
			Binding:    TextureSlot,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    SamplerSlot,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
	}
}
