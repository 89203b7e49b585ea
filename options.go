package postfx

import (
	"io/fs"
	"log/slog"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// Option configures a Pipeline during creation.
//
// Example:
//
//	// Host-memory rendering with built-in shaders
//	p, err := postfx.New(postfx.DefaultConfig())
//
//	// GPU-backed render target (dependency injection)
//	p, err := postfx.New(cfg, postfx.WithAllocator(render.NewHALAllocator(device)))
type Option func(*options)

// options holds optional configuration for Pipeline creation.
type options struct {
	allocator render.Allocator
	limits    render.DeviceLimits
	shaderFS  fs.FS
	compiler  shader.Compiler
	effects   *shader.Effects
	logger    *slog.Logger
}

// defaultOptions returns the default pipeline options.
func defaultOptions() options {
	return options{
		allocator: nil, // Will be set to a HostAllocator if nil
		limits:    render.DefaultDeviceLimits(),
		shaderFS:  nil, // Will be resolved from Config.ShaderDir or shader.Builtin
	}
}

// WithAllocator sets the texture allocator of the RenderTarget.
// The software passes require host textures; a HAL allocator is for hosts
// that run their own GPU passes on the same target.
func WithAllocator(a render.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithLimits sets the device limits resizes are checked against.
func WithLimits(l render.DeviceLimits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithShaderFS sets the file system shader references resolve in.
// It takes precedence over Config.ShaderDir and cannot be combined with
// Config.HotReload; New returns ErrHotReloadFS in that case.
func WithShaderFS(fsys fs.FS) Option {
	return func(o *options) {
		o.shaderFS = fsys
	}
}

// WithShaderCompiler replaces the naga WGSL compiler.
func WithShaderCompiler(c shader.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithEffects sets the CPU effect registry used by the compositor.
func WithEffects(e *shader.Effects) Option {
	return func(o *options) {
		o.effects = e
	}
}

// WithLogger sets the pipeline logger. Without it the pipeline uses Logger()
// as of New.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
