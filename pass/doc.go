// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pass executes camera passes in software.
//
// Producer rasterizes scene objects into an off-screen render target.
// Compositor samples that target through the post-process quad into the
// window surface. Both work on host textures, which makes the output of
// every frame inspectable without a GPU.
//
// Each pass reports the targets it touched as Records; a frame's Trace
// proves that the compositor only reads what the producer wrote earlier in
// the same frame.
package pass
