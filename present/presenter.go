// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/postfx/render"
)

// Presentation errors.
var (
	// ErrClosed is returned by Present after Close.
	ErrClosed = errors.New("present: presenter is closed")

	// ErrNoTextureCreator is returned when the draw context cannot create
	// textures.
	ErrNoTextureCreator = errors.New("present: draw context has no texture creator")

	// ErrNotDrawable is returned when a created texture cannot be drawn.
	ErrNotDrawable = errors.New("present: texture is not a gpucontext.Texture")
)

// Uploader moves pixels to the host's display.
type Uploader interface {
	// Create makes a texture initialized with RGBA data.
	Create(width, height int, data []byte) (any, error)

	// Draw draws a texture made by Create at (x, y).
	Draw(tex any, x, y float32) error
}

type textureDestroyer interface {
	Destroy()
}

// Presenter uploads the window surface to a display texture every frame.
//
// The display texture is created lazily and updated in place while the
// surface size is unchanged. After a resize the old texture is kept alive
// until its replacement exists, because in-flight GPU work may still sample
// it.
type Presenter struct {
	up Uploader

	texture    any
	oldTexture any
	width      int
	height     int
	closed     bool

	creates int
	updates int
}

// New creates a presenter drawing through up.
func New(up Uploader) *Presenter {
	return &Presenter{up: up}
}

// Present uploads surface and draws it at the origin.
func (p *Presenter) Present(surface *render.WindowSurface) error {
	if p.closed {
		return ErrClosed
	}

	w, h := int(surface.Width()), int(surface.Height())
	if p.texture != nil && (w != p.width || h != p.height) {
		destroy(p.oldTexture)
		p.oldTexture = p.texture
		p.texture = nil
	}
	p.width, p.height = w, h
	data := surface.Image().Pix

	switch {
	case p.texture == nil:
		tex, err := p.up.Create(w, h, data)
		if err != nil {
			return fmt.Errorf("present: create %dx%d texture: %w", w, h, err)
		}
		p.texture = tex
		p.creates++

		destroy(p.oldTexture)
		p.oldTexture = nil

	default:
		updater, ok := p.texture.(gpucontext.TextureUpdater)
		if !ok {
			break
		}
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("present: texture update failed: %w", err)
		}
		p.updates++
	}

	return p.up.Draw(p.texture, 0, 0)
}

// Stats returns how many textures were created and updated in place.
func (p *Presenter) Stats() (creates, updates int) {
	return p.creates, p.updates
}

// Close destroys the display textures. Close is idempotent.
func (p *Presenter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	destroy(p.oldTexture)
	destroy(p.texture)
	p.oldTexture, p.texture = nil, nil
	return nil
}

func destroy(tex any) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

// DrawerUploader adapts a gpucontext.TextureDrawer, as handed out by the host
// window each frame, to Uploader.
func DrawerUploader(dc gpucontext.TextureDrawer) Uploader {
	return drawerUploader{dc: dc}
}

type drawerUploader struct {
	dc gpucontext.TextureDrawer
}

func (u drawerUploader) Create(width, height int, data []byte) (any, error) {
	creator := u.dc.TextureCreator()
	if creator == nil {
		return nil, ErrNoTextureCreator
	}
	tex, err := creator.NewTextureFromRGBA(width, height, data)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (u drawerUploader) Draw(tex any, x, y float32) error {
	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrNotDrawable
	}
	return u.dc.DrawTexture(gpuTex, x, y)
}
