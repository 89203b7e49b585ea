// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader loads post-process programs by stable reference.
//
// A program is WGSL text addressed by a slash-separated path such as
// "shaders/fxaa.wgsl". Library reads it from an fs.FS, validates and
// compiles it to SPIR-V with naga, and caches the result. Watcher reports
// programs edited on disk so the pipeline can reload them between frames.
//
// Every program follows the same binding contract: the source texture at
// @group(0) @binding(0) and its sampler at @group(0) @binding(1).
//
// The software compositor cannot execute WGSL, so each program also has a
// CPU Effect registered under its base name. Effects are looked up with the
// same reference the material carries.
package shader
