// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher records shader files that change on disk.
//
// Changes arrive on the fsnotify goroutine and are collected in a pending
// set; the frame calls Drain once to pick them up, so a file saved several
// times between two frames is reported once.
type Watcher struct {
	fsw  *fsnotify.Watcher
	root string

	mu      sync.Mutex
	pending map[string]struct{}

	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewWatcher watches root and every directory below it. Reported references
// are slash-separated paths relative to root, matching a Library opened on
// os.DirFS(root).
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader: create watcher: %w", err)
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("shader: watch %s: %w", root, err)
	}

	w := &Watcher{
		fsw:     fsw,
		root:    root,
		pending: make(map[string]struct{}),
		done:    make(chan struct{}),
		logger:  slog.New(slog.DiscardHandler),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// SetLogger sets the logger for watch errors. Call it before the first
// change is expected.
func (w *Watcher) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	w.mu.Lock()
	w.logger = l
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			w.Mark(filepath.ToSlash(rel))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			l := w.logger
			w.mu.Unlock()
			l.Warn("shader: watch error", "err", err)
		}
	}
}

// Mark records ref as changed.
func (w *Watcher) Mark(ref string) {
	w.mu.Lock()
	w.pending[ref] = struct{}{}
	w.mu.Unlock()
}

// Drain returns the changed references, sorted, and clears the set.
func (w *Watcher) Drain() []string {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return nil
	}
	refs := make([]string, 0, len(w.pending))
	for ref := range w.pending {
		refs = append(refs, ref)
	}
	clear(w.pending)
	w.mu.Unlock()

	slices.Sort(refs)
	return refs
}

// Close stops watching. Close is not idempotent.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
