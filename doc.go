// Package postfx renders a scene through a full-screen post-processing pass.
//
// # Overview
//
// A Pipeline runs two camera passes every frame. The producer camera draws a
// rotating cube into an off-screen RenderTarget. The compositor camera draws
// a full-screen quad whose material samples that target through a swappable
// shader effect into the window surface.
//
// The pipeline keeps three things the same size as the window: the render
// target, the quad geometry and the window surface. Window resizes are
// recorded with Resize, coalesced, and applied in one step at the start of
// the next frame, so the compositor never samples a texture that was
// replaced underneath it.
//
// # Quick Start
//
//	p, err := postfx.New(postfx.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	for range 60 {
//	    if _, err := p.Frame(1.0 / 60); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	p.Resize(1024, 768) // applied by the next Frame
//
// # Configuration
//
// Config holds the initial size, the shader reference, the zero-size resize
// policy and the camera priorities and layers. LoadConfig reads it from YAML.
// Options inject collaborators such as the texture allocator, the shader
// file system and the logger.
//
// # Architecture
//
// The library is organized into:
//   - render: render targets, window surface, allocators, layers
//   - asset: typed handle stores with change events
//   - mesh, world, camera: scene geometry, entities and cameras
//   - postprocess: material, quad and resize coordinator
//   - shader: program loading, hot reload, CPU effects
//   - pass: software execution of the two camera passes
//   - present: upload to a host window and snapshots
//
// # Logging
//
// postfx is silent by default. Use SetLogger to enable log/slog output.
package postfx
