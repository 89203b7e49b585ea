// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package world holds the producer scene: explicit entity structs kept in a
// small registry indexed by stable IDs, and the animation rule that runs on
// them once per frame.
package world

import (
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/render"
)

// ID identifies an entity. IDs are never reused; 0 is invalid.
type ID uint64

// Tag marks an entity for a system.
type Tag string

// TagMainCube marks the object rotated by the animation system.
const TagMainCube Tag = "main-cube"

// StandardMaterial is the lit surface description used by scene objects.
type StandardMaterial struct {
	BaseColor   color.RGBA
	Reflectance float32
	Unlit       bool
}

// Object is a drawable scene entity.
type Object struct {
	ID        ID
	Name      string
	Transform Transform
	Mesh      asset.Handle[*mesh.Mesh]
	Material  asset.Handle[StandardMaterial]
	Layers    render.Layers
	Tags      []Tag

	// Spin, if set, is advanced by World.Animate.
	Spin *Spin
}

// HasTag reports whether the object carries tag.
func (o *Object) HasTag(tag Tag) bool {
	return slices.Contains(o.Tags, tag)
}

// DrawableName returns the object name for draw traces.
func (o *Object) DrawableName() string { return o.Name }

// RenderLayers returns the layers the object is drawn on.
func (o *Object) RenderLayers() render.Layers { return o.Layers }

// LightKind distinguishes light sources.
type LightKind uint8

const (
	// PointLight emits from Position in all directions.
	PointLight LightKind = iota
	// DirectionalLight emits along Direction from infinitely far away.
	DirectionalLight
)

// Light illuminates the producer pass. Lights carry no layers: they affect
// every object drawn by the producer regardless of tagging.
type Light struct {
	ID        ID
	Kind      LightKind
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     color.RGBA
	Intensity float32
}

// World is the registry of scene entities.
//
// World is NOT safe for concurrent use; it is mutated only inside the frame.
type World struct {
	nextID  ID
	objects map[ID]*Object
	lights  map[ID]*Light
}

// New creates an empty world.
func New() *World {
	return &World{
		objects: make(map[ID]*Object),
		lights:  make(map[ID]*Light),
	}
}

// Spawn registers obj, assigns its ID and returns it.
func (w *World) Spawn(obj *Object) ID {
	w.nextID++
	obj.ID = w.nextID
	w.objects[obj.ID] = obj
	return obj.ID
}

// SpawnLight registers l, assigns its ID and returns it.
func (w *World) SpawnLight(l *Light) ID {
	w.nextID++
	l.ID = w.nextID
	w.lights[l.ID] = l
	return l.ID
}

// Despawn removes the entity with the given ID.
func (w *World) Despawn(id ID) bool {
	if _, ok := w.objects[id]; ok {
		delete(w.objects, id)
		return true
	}
	if _, ok := w.lights[id]; ok {
		delete(w.lights, id)
		return true
	}
	return false
}

// Object returns the object with the given ID, or nil.
func (w *World) Object(id ID) *Object {
	return w.objects[id]
}

// Objects returns all objects in ascending ID order.
func (w *World) Objects() []*Object {
	return sortedByID(w.objects, func(o *Object) ID { return o.ID })
}

// Lights returns all lights in ascending ID order.
func (w *World) Lights() []*Light {
	return sortedByID(w.lights, func(l *Light) ID { return l.ID })
}

// Tagged returns the objects carrying tag in ascending ID order.
func (w *World) Tagged(tag Tag) []*Object {
	var out []*Object
	for _, o := range w.Objects() {
		if o.HasTag(tag) {
			out = append(out, o)
		}
	}
	return out
}

// Animate advances every object's Spin by dt seconds, in ID order.
func (w *World) Animate(dt float64) {
	for _, o := range w.Objects() {
		if o.Spin != nil {
			o.Spin.Advance(&o.Transform, dt)
		}
	}
}

func sortedByID[T any](m map[ID]T, id func(T) ID) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int {
		ia, ib := id(a), id(b)
		switch {
		case ia < ib:
			return -1
		case ia > ib:
			return 1
		}
		return 0
	})
	return out
}
