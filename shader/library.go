// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"sync"
)

// Builtin holds the shader programs shipped with the module, addressable as
// "shaders/passthrough.wgsl" and "shaders/fxaa.wgsl".
//
//go:embed shaders/*.wgsl
var Builtin embed.FS

// Well-known program references.
const (
	RefPassthrough = "shaders/passthrough.wgsl"
	RefFXAA        = "shaders/fxaa.wgsl"
)

// ErrNotFound is returned when a reference does not name a file.
var ErrNotFound = errors.New("shader: program not found")

// CleanRef normalizes a program reference, so "./shaders//fxaa.wgsl" and
// "shaders/fxaa.wgsl" name the same program.
func CleanRef(ref string) string {
	return path.Clean(ref)
}

// Program is a loaded, validated shader program.
type Program struct {
	// Ref is the stable reference the program was loaded by.
	Ref string

	// Source is the WGSL text.
	Source string

	// SPIRV is the compiled module, little-endian 32-bit words.
	SPIRV []uint32
}

// Compiler turns WGSL source into SPIR-V words.
type Compiler func(source string) ([]uint32, error)

// Library loads programs by reference from a file system and caches them.
//
// Library is safe for concurrent use.
type Library struct {
	fsys    fs.FS
	compile Compiler

	mu       sync.RWMutex
	programs map[string]*Program
	logger   *slog.Logger
}

// NewLibrary creates a library reading from fsys and compiling with naga.
func NewLibrary(fsys fs.FS) *Library {
	return &Library{
		fsys:     fsys,
		compile:  CompileWGSL,
		programs: make(map[string]*Program),
		logger:   slog.New(slog.DiscardHandler),
	}
}

// SetCompiler replaces the compiler. Cached programs are kept.
func (l *Library) SetCompiler(c Compiler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.compile = c
}

// SetLogger sets the logger for load diagnostics.
func (l *Library) SetLogger(lg *slog.Logger) {
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	l.mu.Lock()
	l.logger = lg
	l.mu.Unlock()
}

// Load returns the program for ref, loading and compiling it on first use.
func (l *Library) Load(ref string) (*Program, error) {
	if p, ok := l.Cached(ref); ok {
		return p, nil
	}
	return l.Reload(ref)
}

// Reload reads and compiles ref again, replacing the cached program only if
// compilation succeeds. A failed reload leaves the previous program in place.
func (l *Library) Reload(ref string) (*Program, error) {
	ref = CleanRef(ref)
	src, err := fs.ReadFile(l.fsys, ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("shader: read %s: %w", ref, err)
	}

	l.mu.RLock()
	compile, logger := l.compile, l.logger
	l.mu.RUnlock()

	spirv, err := compile(string(src))
	if err != nil {
		logger.Warn("shader: compile failed", "ref", ref, "err", err)
		return nil, fmt.Errorf("shader: compile %s: %w", ref, err)
	}

	p := &Program{Ref: ref, Source: string(src), SPIRV: spirv}
	l.mu.Lock()
	l.programs[ref] = p
	l.mu.Unlock()

	logger.Debug("shader: loaded", "ref", ref, "words", len(spirv))
	return p, nil
}

// Cached returns the cached program for ref without loading it.
func (l *Library) Cached(ref string) (*Program, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.programs[CleanRef(ref)]
	return p, ok
}

// Refs returns the references of all cached programs, sorted.
func (l *Library) Refs() []string {
	l.mu.RLock()
	refs := make([]string, 0, len(l.programs))
	for ref := range l.programs {
		refs = append(refs, ref)
	}
	l.mu.RUnlock()
	slices.Sort(refs)
	return refs
}
