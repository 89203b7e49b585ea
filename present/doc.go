// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package present hands finished frames to the outside world: to a host
// window through gpucontext, or to image files as snapshots.
package present
