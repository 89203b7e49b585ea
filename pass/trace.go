// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import (
	"errors"
	"fmt"
)

// ErrReadBeforeWrite is returned by Trace.Validate when a pass samples a
// target generation that no earlier pass in the frame wrote.
var ErrReadBeforeWrite = errors.New("pass: target read before it was written")

// WindowTargetID is the TargetID recorded for writes to the window surface.
const WindowTargetID uint64 = 0

// Op is the kind of access a pass makes to a target.
type Op uint8

const (
	// OpWrite renders into a target.
	OpWrite Op = iota
	// OpRead samples a target.
	OpRead
)

func (o Op) String() string {
	if o == OpRead {
		return "read"
	}
	return "write"
}

// Record is one target access made by a camera pass.
type Record struct {
	Frame      uint64
	Camera     string
	Priority   int
	Op         Op
	TargetID   uint64
	Generation uint64
	Width      uint32
	Height     uint32
	Drawables  []string
}

func (r Record) String() string {
	return fmt.Sprintf("frame %d %s %s target %d gen %d (%dx%d) %v",
		r.Frame, r.Camera, r.Op, r.TargetID, r.Generation, r.Width, r.Height, r.Drawables)
}

// Trace is the ordered list of accesses of one frame.
type Trace struct {
	Records []Record
}

// Add appends r.
func (t *Trace) Add(r Record) {
	t.Records = append(t.Records, r)
}

// Cameras returns the camera names in execution order, one per record.
func (t *Trace) Cameras() []string {
	out := make([]string, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Camera
	}
	return out
}

// Passes returns the camera names in execution order, one per pass:
// consecutive records of the same camera are reported once.
func (t *Trace) Passes() []string {
	var out []string
	for _, r := range t.Records {
		if len(out) == 0 || out[len(out)-1] != r.Camera {
			out = append(out, r.Camera)
		}
	}
	return out
}

// Find returns the first record matching op and targetID.
func (t *Trace) Find(op Op, targetID uint64) (Record, bool) {
	for _, r := range t.Records {
		if r.Op == op && r.TargetID == targetID {
			return r, true
		}
	}
	return Record{}, false
}

// Validate checks that every read of an off-screen target follows a write of
// the same target generation with the same size.
func (t *Trace) Validate() error {
	for i, r := range t.Records {
		if r.Op != OpRead || r.TargetID == WindowTargetID {
			continue
		}
		written := false
		for _, w := range t.Records[:i] {
			if w.Op == OpWrite && w.TargetID == r.TargetID && w.Generation == r.Generation &&
				w.Width == r.Width && w.Height == r.Height {
				written = true
				break
			}
		}
		if !written {
			return fmt.Errorf("%w: %s", ErrReadBeforeWrite, r)
		}
	}
	return nil
}
