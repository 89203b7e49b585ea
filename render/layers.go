// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math/bits"
	"strconv"
	"strings"
)

// TotalLayers is the number of distinct render layers.
const TotalLayers = 32

// Layer indices used by the two-pass pipeline.
const (
	// SceneLayer holds the 3D objects drawn by the producer camera.
	SceneLayer uint8 = 0

	// PostProcessLayer holds the full-screen quad drawn by the compositor
	// camera. It is the last layer so user scenes can use everything below.
	PostProcessLayer uint8 = TotalLayers - 1
)

// Layers is a set of render layers. A camera draws an object only when their
// layer sets intersect.
type Layers uint32

// Layer returns a set containing only layer n. Layers outside the valid
// range are ignored.
func Layer(n uint8) Layers {
	if n >= TotalLayers {
		return 0
	}
	return Layers(1) << n
}

// With returns a copy of l that also contains layer n.
func (l Layers) With(n uint8) Layers {
	return l | Layer(n)
}

// Without returns a copy of l without layer n.
func (l Layers) Without(n uint8) Layers {
	return l &^ Layer(n)
}

// Has reports whether layer n is in the set.
func (l Layers) Has(n uint8) bool {
	return l&Layer(n) != 0
}

// Intersects reports whether l and other share at least one layer.
func (l Layers) Intersects(other Layers) bool {
	return l&other != 0
}

// Len returns the number of layers in the set.
func (l Layers) Len() int {
	return bits.OnesCount32(uint32(l))
}

// String returns the layer indices, e.g. "{0,31}".
func (l Layers) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for n := uint8(0); n < TotalLayers; n++ {
		if !l.Has(n) {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.Itoa(int(n)))
	}
	b.WriteByte('}')
	return b.String()
}
