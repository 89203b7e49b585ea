// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"image"
	"path"
	"slices"
	"strings"
	"sync"
)

// Effect is the CPU rendition of a post-process program. Apply filters img
// in place.
type Effect interface {
	Apply(img *image.RGBA)
}

// EffectFunc adapts a function to Effect.
type EffectFunc func(img *image.RGBA)

// Apply calls f(img).
func (f EffectFunc) Apply(img *image.RGBA) { f(img) }

// Passthrough leaves the image unchanged.
var Passthrough Effect = EffectFunc(func(*image.RGBA) {})

// Effects maps program references to CPU effects by base name, so
// "shaders/fxaa.wgsl" and "fxaa" resolve to the same effect.
type Effects struct {
	mu      sync.RWMutex
	effects map[string]Effect
}

// NewEffects returns a registry holding "passthrough" and "fxaa".
func NewEffects() *Effects {
	e := &Effects{effects: make(map[string]Effect)}
	e.Register("passthrough", Passthrough)
	e.Register("fxaa", FXAA{})
	return e
}

// Register adds or replaces the effect for name.
func (e *Effects) Register(name string, eff Effect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.effects[EffectName(name)] = eff
}

// Lookup returns the effect registered for ref.
func (e *Effects) Lookup(ref string) (Effect, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	eff, ok := e.effects[EffectName(ref)]
	return eff, ok
}

// Resolve is like Lookup but falls back to Passthrough.
func (e *Effects) Resolve(ref string) Effect {
	if eff, ok := e.Lookup(ref); ok {
		return eff
	}
	return Passthrough
}

// Names returns the registered names, sorted.
func (e *Effects) Names() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.effects))
	for n := range e.effects {
		names = append(names, n)
	}
	e.mu.RUnlock()
	slices.Sort(names)
	return names
}

// EffectName strips directory and extension from ref.
func EffectName(ref string) string {
	base := path.Base(ref)
	return strings.TrimSuffix(base, path.Ext(base))
}

// FXAA thresholds, shared with shaders/fxaa.wgsl.
const (
	EdgeThresholdMin = 0.0312
	EdgeThresholdMax = 0.125
)

// FXAA smooths pixels whose 4-neighborhood luma contrast exceeds the edge
// threshold by blending them halfway toward the neighborhood average.
type FXAA struct{}

// Apply filters img in place. Border pixels are left as they are.
func (FXAA) Apply(img *image.RGBA) {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return
	}
	src := slices.Clone(img.Pix)
	stride := img.Stride

	at := func(x, y int) int {
		return (y-b.Min.Y)*stride + (x-b.Min.X)*4
	}
	luma := func(i int) float64 {
		return (0.299*float64(src[i]) + 0.587*float64(src[i+1]) + 0.114*float64(src[i+2])) / 255
	}

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			c := at(x, y)
			n, s, e, w := at(x, y-1), at(x, y+1), at(x+1, y), at(x-1, y)

			lc, ln, ls, le, lw := luma(c), luma(n), luma(s), luma(e), luma(w)
			lo := min(lc, ln, ls, le, lw)
			hi := max(lc, ln, ls, le, lw)
			if hi-lo < max(EdgeThresholdMin, hi*EdgeThresholdMax) {
				continue
			}

			for k := range 3 {
				avg := (int(src[n+k]) + int(src[s+k]) + int(src[e+k]) + int(src[w+k])) / 4
				img.Pix[c+k] = uint8((int(src[c+k]) + avg) / 2)
			}
		}
	}
}
