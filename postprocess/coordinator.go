// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package postprocess

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/render"
)

// ErrSizeMismatch is returned by Coordinator.Check when the target, quad and
// surface disagree on size.
var ErrSizeMismatch = errors.New("postprocess: target, quad and surface sizes differ")

// ZeroSizePolicy decides what a resize to a zero dimension does.
type ZeroSizePolicy uint8

const (
	// ZeroSizeIgnore drops the event; everything keeps its last valid size.
	ZeroSizeIgnore ZeroSizePolicy = iota

	// ZeroSizeClamp raises zero dimensions to 1.
	ZeroSizeClamp
)

func (p ZeroSizePolicy) String() string {
	switch p {
	case ZeroSizeIgnore:
		return "ignore"
	case ZeroSizeClamp:
		return "clamp"
	default:
		return fmt.Sprintf("ZeroSizePolicy(%d)", uint8(p))
	}
}

// ParseZeroSizePolicy parses "ignore" or "clamp".
func ParseZeroSizePolicy(s string) (ZeroSizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return ZeroSizeIgnore, nil
	case "clamp":
		return ZeroSizeClamp, nil
	default:
		return 0, fmt.Errorf("postprocess: unknown zero-size policy %q", s)
	}
}

// State is the coordinator's resize state.
type State uint8

const (
	// Stable means quad, target and surface have the same size.
	Stable State = iota

	// Resizing is held only inside Apply.
	Resizing
)

func (s State) String() string {
	if s == Resizing {
		return "resizing"
	}
	return "stable"
}

// ResizeEvent is a window-resize notification.
type ResizeEvent struct {
	Width  uint32
	Height uint32
}

// Result describes what one Apply did.
type Result struct {
	// Applied is true if a reallocation happened.
	Applied bool

	// Width and Height are the dimensions after Apply.
	Width  uint32
	Height uint32

	// Coalesced is the number of notifications drained by this Apply.
	Coalesced int

	// Ignored is true if the drained event was dropped by ZeroSizeIgnore.
	Ignored bool
}

// CoordinatorConfig wires a Coordinator to the resources it owns.
type CoordinatorConfig struct {
	Target    *render.RenderTarget
	Surface   *render.WindowSurface
	Materials *asset.Store[*Material]
	Material  asset.Handle[*Material]
	Meshes    *asset.Store[*mesh.Mesh]
	Quad      *Quad
	Policy    ZeroSizePolicy
}

// Coordinator keeps the RenderTarget, the material binding, the quad mesh and
// the window surface in lockstep with the window size.
//
// Notify may be called from any goroutine. Everything else runs on the frame
// goroutine: Apply is called exactly once at the start of each frame.
type Coordinator struct {
	mu       sync.Mutex
	pending  ResizeEvent
	notified int

	target    *render.RenderTarget
	surface   *render.WindowSurface
	materials *asset.Store[*Material]
	material  asset.Handle[*Material]
	meshes    *asset.Store[*mesh.Mesh]
	quad      *Quad
	policy    ZeroSizePolicy

	state         State
	reallocations int
	logger        *slog.Logger
}

// NewCoordinator validates cfg and returns a coordinator in the Stable state.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Target == nil || cfg.Surface == nil || cfg.Quad == nil ||
		cfg.Materials == nil || cfg.Meshes == nil {
		return nil, errors.New("postprocess: incomplete coordinator config")
	}
	mat, ok := cfg.Materials.Get(cfg.Material)
	if !ok {
		return nil, fmt.Errorf("postprocess: material %v: %w", cfg.Material, asset.ErrInvalidHandle)
	}
	if mat.Source() != cfg.Target {
		return nil, errors.New("postprocess: material does not sample the coordinated target")
	}
	if _, ok := cfg.Meshes.Get(cfg.Quad.Mesh); !ok {
		return nil, fmt.Errorf("postprocess: quad mesh %v: %w", cfg.Quad.Mesh, asset.ErrInvalidHandle)
	}

	c := &Coordinator{
		target:    cfg.Target,
		surface:   cfg.Surface,
		materials: cfg.Materials,
		material:  cfg.Material,
		meshes:    cfg.Meshes,
		quad:      cfg.Quad,
		policy:    cfg.Policy,
		logger:    slog.New(slog.DiscardHandler),
	}
	return c, nil
}

// SetLogger sets the logger for resize diagnostics.
func (c *Coordinator) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.logger = l
}

// Notify records a resize notification. Only the most recent notification
// before the next Apply is honored.
func (c *Coordinator) Notify(width, height uint32) {
	c.mu.Lock()
	c.pending = ResizeEvent{Width: width, Height: height}
	c.notified++
	c.mu.Unlock()
}

// Pending returns the notification Apply would process, if any.
func (c *Coordinator) Pending() (ResizeEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.notified > 0
}

// State returns the current state.
func (c *Coordinator) State() State {
	return c.state
}

// Policy returns the zero-size policy.
func (c *Coordinator) Policy() ZeroSizePolicy {
	return c.policy
}

// Reallocations returns how many resizes reallocated the target.
func (c *Coordinator) Reallocations() int {
	return c.reallocations
}

// Apply drains the pending notification and, if it changes the size,
// resizes the target, refreshes the material binding and regenerates the
// quad mesh as one update.
//
// If the target cannot be reallocated the error is returned and nothing is
// changed: the previous target stays bound and the quad keeps its size.
func (c *Coordinator) Apply() (Result, error) {
	c.mu.Lock()
	ev, n := c.pending, c.notified
	c.pending, c.notified = ResizeEvent{}, 0
	c.mu.Unlock()

	w, h := c.target.Size()
	res := Result{Width: w, Height: h, Coalesced: n}
	if n == 0 {
		return res, nil
	}

	if ev.Width == 0 || ev.Height == 0 {
		if c.policy == ZeroSizeIgnore {
			c.logger.Debug("postprocess: zero-size resize ignored",
				"width", ev.Width, "height", ev.Height, "kept_width", w, "kept_height", h)
			res.Ignored = true
			return res, nil
		}
		ev.Width = max(ev.Width, 1)
		ev.Height = max(ev.Height, 1)
	}

	qw, qh := c.quad.Size()
	if ev.Width == w && ev.Height == h && qw == w && qh == h &&
		c.surface.Width() == w && c.surface.Height() == h {
		return res, nil
	}

	// Every dependent must exist before the target changes.
	mat, ok := c.materials.Get(c.material)
	if !ok {
		return res, fmt.Errorf("postprocess: resize: %w: material %v", asset.ErrInvalidHandle, c.material)
	}
	if _, ok := c.meshes.Get(c.quad.Mesh); !ok {
		return res, fmt.Errorf("postprocess: resize: %w: quad mesh %v", asset.ErrInvalidHandle, c.quad.Mesh)
	}

	c.state = Resizing
	defer func() { c.state = Stable }()

	if err := c.target.Resize(ev.Width, ev.Height); err != nil {
		c.logger.Warn("postprocess: target resize failed, keeping previous target",
			"width", ev.Width, "height", ev.Height, "kept_width", w, "kept_height", h, "err", err)
		return res, err
	}
	mat.Refresh()

	if err := c.quad.Regenerate(c.meshes, ev.Width, ev.Height); err != nil {
		c.rollback(mat, w, h, err)
		return res, err
	}
	if err := c.materials.Touch(c.material); err != nil {
		c.rollback(mat, w, h, err)
		return res, err
	}
	c.surface.Resize(ev.Width, ev.Height)
	c.reallocations++

	c.logger.Debug("postprocess: resized",
		"width", ev.Width, "height", ev.Height, "coalesced", n, "generation", c.target.Generation())

	res.Applied = true
	res.Width, res.Height = ev.Width, ev.Height
	return res, nil
}

// rollback returns the target to w×h after a dependent failed to follow a
// resize, so target, quad and surface keep agreeing on the previous size.
func (c *Coordinator) rollback(mat *Material, w, h uint32, cause error) {
	if err := c.target.Resize(w, h); err != nil {
		c.logger.Error("postprocess: resize rollback failed",
			"width", w, "height", h, "cause", cause, "err", err)
	}
	mat.Refresh()
	if qw, qh := c.quad.Size(); qw != w || qh != h {
		_ = c.quad.Regenerate(c.meshes, w, h)
	}
}

// Check verifies the lockstep invariant: target, quad and surface have the
// same size and the material is bound to the live texture.
func (c *Coordinator) Check() error {
	w, h := c.target.Size()
	qw, qh := c.quad.Size()
	if qw != w || qh != h || c.surface.Width() != w || c.surface.Height() != h {
		return fmt.Errorf("%w: target %dx%d, quad %dx%d, surface %dx%d",
			ErrSizeMismatch, w, h, qw, qh, c.surface.Width(), c.surface.Height())
	}
	return c.materials.MustGet(c.material).Check()
}
