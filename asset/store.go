// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package asset provides typed handle registries for meshes, materials and
// other resources shared between the pipeline's passes.
//
// A Store owns its entries; callers hold Handles. Replacing the value behind a
// handle (Set) keeps the handle valid for every holder, which is how the quad
// mesh is regenerated on resize without re-binding the quad itself.
//
// Changes are reported through an explicit event queue drained by the
// consumer (Drain), not through callbacks.
package asset

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidHandle is returned for handles that are zero or were removed.
var ErrInvalidHandle = errors.New("asset: invalid handle")

// Handle identifies an entry in a Store[T]. The zero Handle is invalid.
type Handle[T any] struct {
	id uint64
}

// ID returns the numeric identifier of the handle.
func (h Handle[T]) ID() uint64 {
	return h.id
}

// IsZero reports whether h is the invalid zero handle.
func (h Handle[T]) IsZero() bool {
	return h.id == 0
}

// String returns a debug representation, e.g. "#3".
func (h Handle[T]) String() string {
	return fmt.Sprintf("#%d", h.id)
}

// EventKind describes what happened to an entry.
type EventKind uint8

const (
	// Added is emitted when an entry is created.
	Added EventKind = iota + 1

	// Modified is emitted when an entry is replaced or explicitly touched.
	Modified

	// Removed is emitted when an entry is deleted.
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event records a change to a Store entry.
type Event[T any] struct {
	Kind   EventKind
	Handle Handle[T]
}

// Store is a registry of T values indexed by Handle[T].
//
// Store is safe for concurrent use.
type Store[T any] struct {
	mu      sync.RWMutex
	name    string
	entries map[uint64]T
	nextID  uint64
	events  []Event[T]
}

// NewStore creates an empty store. The name is used in error messages.
func NewStore[T any](name string) *Store[T] {
	return &Store[T]{
		name:    name,
		entries: make(map[uint64]T),
	}
}

// Add inserts v and returns its handle. Handles are never reused.
func (s *Store[T]) Add(v T) Handle[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	h := Handle[T]{id: s.nextID}
	s.entries[h.id] = v
	s.events = append(s.events, Event[T]{Kind: Added, Handle: h})
	return h
}

// Get returns the value behind h.
func (s *Store[T]) Get(h Handle[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[h.id]
	return v, ok
}

// MustGet is like Get but panics if h is invalid.
// Use only where a missing entry is a programming error.
func (s *Store[T]) MustGet(h Handle[T]) T {
	v, ok := s.Get(h)
	if !ok {
		panic(fmt.Sprintf("asset: %s %v not found", s.name, h))
	}
	return v
}

// Set replaces the value behind h and emits Modified.
// Returns ErrInvalidHandle if h does not exist.
func (s *Store[T]) Set(h Handle[T], v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[h.id]; !ok {
		return fmt.Errorf("%w: %s %v", ErrInvalidHandle, s.name, h)
	}
	s.entries[h.id] = v
	s.events = append(s.events, Event[T]{Kind: Modified, Handle: h})
	return nil
}

// Touch emits Modified for h without replacing the value. Use it after
// mutating a value that dependents cache derived state for.
func (s *Store[T]) Touch(h Handle[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[h.id]; !ok {
		return fmt.Errorf("%w: %s %v", ErrInvalidHandle, s.name, h)
	}
	s.events = append(s.events, Event[T]{Kind: Modified, Handle: h})
	return nil
}

// Remove deletes the entry behind h and emits Removed.
func (s *Store[T]) Remove(h Handle[T]) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[h.id]
	if !ok {
		return v, false
	}
	delete(s.entries, h.id)
	s.events = append(s.events, Event[T]{Kind: Removed, Handle: h})
	return v, true
}

// Len returns the number of entries.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Handles returns all live handles in ascending creation order.
func (s *Store[T]) Handles() []Handle[T] {
	s.mu.RLock()
	ids := make([]uint64, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	handles := make([]Handle[T], len(ids))
	for i, id := range ids {
		handles[i] = Handle[T]{id: id}
	}
	return handles
}

// Pending returns the number of queued events.
func (s *Store[T]) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Drain returns the pending events in emission order and clears the queue.
func (s *Store[T]) Drain() []Event[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.events
	s.events = nil
	return events
}
