// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package postprocess

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/render"
)

func newTarget(t *testing.T, w, h uint32) *render.RenderTarget {
	t.Helper()
	rt, err := render.NewRenderTarget(render.NewHostAllocator(), render.DefaultDeviceLimits(), w, h, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	return rt
}

func TestMaterialBindsLiveTexture(t *testing.T) {
	rt := newTarget(t, 800, 600)
	m := NewMaterial("shaders/fxaa.wgsl", rt)

	want := Binding{TargetID: rt.ID(), Generation: rt.Generation(), Width: 800, Height: 600}
	if m.Binding() != want {
		t.Errorf("Binding() = %+v, want %+v", m.Binding(), want)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestMaterialStaleAfterResize(t *testing.T) {
	rt := newTarget(t, 800, 600)
	m := NewMaterial("shaders/fxaa.wgsl", rt)

	if err := rt.Resize(1024, 768); err != nil {
		t.Fatal(err)
	}

	var stale *render.BindingStaleError
	if err := m.Check(); !errors.As(err, &stale) {
		t.Fatalf("Check() error = %v, want *render.BindingStaleError", err)
	}
	if stale.Bound != 1 || stale.Live != 2 {
		t.Errorf("stale = %+v, want Bound 1, Live 2", stale)
	}

	m.Refresh()
	if err := m.Check(); err != nil {
		t.Errorf("Check() after Refresh error = %v", err)
	}
	if b := m.Binding(); b.Width != 1024 || b.Height != 768 {
		t.Errorf("Binding() = %+v, want 1024x768", b)
	}
}

func TestMaterialSetShaderKeepsBinding(t *testing.T) {
	rt := newTarget(t, 64, 64)
	m := NewMaterial("shaders/fxaa.wgsl", rt)
	before := m.Binding()

	m.SetShader("shaders/passthrough.wgsl")
	if m.ShaderRef() != "shaders/passthrough.wgsl" {
		t.Errorf("ShaderRef() = %q", m.ShaderRef())
	}
	if m.Binding() != before || m.Source() != rt {
		t.Error("SetShader changed the texture binding")
	}
}

func TestBindGroupLayoutEntries(t *testing.T) {
	entries := BindGroupLayoutEntries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Binding != TextureSlot || entries[0].Texture == nil {
		t.Errorf("entry 0 = %+v, want texture at slot %d", entries[0], TextureSlot)
	}
	if entries[1].Binding != SamplerSlot || entries[1].Sampler == nil {
		t.Errorf("entry 1 = %+v, want sampler at slot %d", entries[1], SamplerSlot)
	}
}

func TestQuadRegenerateKeepsHandle(t *testing.T) {
	meshes := asset.NewStore[*mesh.Mesh]("mesh")
	materials := asset.NewStore[*Material]("material")
	mat := materials.Add(NewMaterial("shaders/fxaa.wgsl", newTarget(t, 800, 600)))

	q := NewQuad(meshes, mat, 800, 600)
	if q.DrawableName() != QuadName {
		t.Errorf("DrawableName() = %q, want %q", q.DrawableName(), QuadName)
	}
	if !q.RenderLayers().Has(render.PostProcessLayer) || q.RenderLayers().Has(render.SceneLayer) {
		t.Errorf("RenderLayers() = %v, want post-process only", q.RenderLayers())
	}

	h := q.Mesh
	if err := q.Regenerate(meshes, 1024, 768); err != nil {
		t.Fatal(err)
	}
	if q.Mesh != h {
		t.Error("Regenerate changed the mesh handle")
	}
	if meshes.Len() != 1 {
		t.Errorf("meshes.Len() = %d, want 1", meshes.Len())
	}
	if w, hh := meshes.MustGet(h).Extent(); w != 1024 || hh != 768 {
		t.Errorf("mesh extent = %vx%v, want 1024x768", w, hh)
	}
}

func TestQuadRegenerateInvalidHandle(t *testing.T) {
	meshes := asset.NewStore[*mesh.Mesh]("mesh")
	q := &Quad{}
	if err := q.Regenerate(meshes, 10, 10); !errors.Is(err, asset.ErrInvalidHandle) {
		t.Errorf("Regenerate() error = %v, want ErrInvalidHandle", err)
	}
}
