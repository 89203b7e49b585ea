// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the resources shared by the producer and
// compositor passes: the off-screen RenderTarget, the WindowSurface,
// texture allocation and render layers.
//
// # Key Principle
//
// The pipeline RECEIVES a GPU device from the host application, it does NOT
// create its own. Textures are created through an Allocator:
//
//   - HostAllocator: host-memory RGBA textures (software passes, tests)
//   - HALAllocator: GPU textures on a gogpu/wgpu hal.Device
//
// # Target lifetime
//
// A RenderTarget is created once, resized in place and destroyed at exit.
// Resize allocates the replacement before releasing the old texture so a
// failed resize leaves the previous texture bound. Dependents keep the
// *RenderTarget and compare Generation to detect a texture change:
//
//	target, _ := render.NewRenderTarget(alloc, limits, 800, 600, format)
//	gen := target.Generation()
//	_ = target.Resize(1024, 768)
//	stale := gen != target.Generation() // true: rebind required
//
// # Thread Safety
//
// Targets and surfaces are NOT thread-safe. They are mutated only by the
// resize coordinator at the start of a frame.
package render
