// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
)

// Allocation failure causes.
var (
	// ErrZeroSize is returned when a target is requested with a zero dimension.
	ErrZeroSize = errors.New("render: zero-sized target")

	// ErrExceedsLimit is returned when a dimension exceeds the device limit.
	ErrExceedsLimit = errors.New("render: target exceeds device limit")

	// ErrTargetDestroyed is returned when resizing a destroyed target.
	ErrTargetDestroyed = errors.New("render: target has been destroyed")
)

// AllocationError reports a failed target creation or resize.
// The previous target, if any, is left in place.
type AllocationError struct {
	Width  uint32
	Height uint32
	Limit  uint32
	Err    error
}

func (e *AllocationError) Error() string {
	if e.Limit > 0 && errors.Is(e.Err, ErrExceedsLimit) {
		return fmt.Sprintf("render: allocate %dx%d (limit %d): %v", e.Width, e.Height, e.Limit, e.Err)
	}
	return fmt.Sprintf("render: allocate %dx%d: %v", e.Width, e.Height, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// BindingStaleError reports a material bound to a texture that is not the
// live texture of its target. It indicates a broken resize path, never a
// recoverable runtime condition.
type BindingStaleError struct {
	TargetID uint64
	Bound    uint64 // generation recorded in the binding
	Live     uint64 // generation of the target
}

func (e *BindingStaleError) Error() string {
	return fmt.Sprintf("render: stale binding for target %d: bound generation %d, live generation %d",
		e.TargetID, e.Bound, e.Live)
}
