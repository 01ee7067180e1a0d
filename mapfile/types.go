// SPDX-License-Identifier: GPL-2.0-or-later

// Package mapfile holds the nested representation of a .map document and
// reads it from text.
package mapfile

import (
	"qmap/math/vec"
)

// Map is a whole document: entities in source order.
type Map struct {
	Entities []Entity
}

type Entity struct {
	Properties Properties
	Brushes    []Brush
}

type Property struct {
	Key   string
	Value string
}

// Properties keeps the "key" "value" pairs of an entity in source order.
// Duplicate keys are kept.
type Properties []Property

// Get returns the value of the first property with the given key.
func (p Properties) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

func (p Properties) Classname() (string, bool) {
	return p.Get("classname")
}

type Brush struct {
	Planes []BrushPlane
}

// BrushPlane is one face line of a brush:
//
//	( x y z ) ( x y z ) ( x y z ) TEXTURE offset angle scaleX scaleY [ext]
type BrushPlane struct {
	Plane     Triangle
	Texture   string
	Offset    TextureOffset
	Angle     float32
	ScaleX    float32
	ScaleY    float32
	Extension Extension
}

// Triangle holds the three points defining a plane.
type Triangle struct {
	V0, V1, V2 vec.Vec3
}

// Plane returns the plane through the three points.
func (t Triangle) Plane() vec.Plane {
	return vec.PlaneFromPoints(t.V0, t.V1, t.V2)
}

type OffsetKind int

const (
	StandardOffset OffsetKind = iota // "u v"
	ValveOffset                      // "[ ux uy uz uoff ] [ vx vy vz voff ]" (Valve 220)
)

func (k OffsetKind) String() string {
	switch k {
	case ValveOffset:
		return "valve"
	default:
		return "standard"
	}
}

type TextureAxis struct {
	Axis   vec.Vec3
	Offset float32
}

// TextureOffset is either a plain u/v shift or a pair of texture axes.
// Only the fields matching Kind are set.
type TextureOffset struct {
	Kind  OffsetKind
	U, V  float32
	UAxis TextureAxis
	VAxis TextureAxis
}

type ExtensionKind int

const (
	StandardExtension  ExtensionKind = iota // nothing after the scale
	Quake2Extension                         // content flags value
	DaikatanaExtension                      // content flags value r g b
)

func (k ExtensionKind) String() string {
	switch k {
	case Quake2Extension:
		return "quake2"
	case DaikatanaExtension:
		return "daikatana"
	default:
		return "standard"
	}
}

// Extension holds the dialect specific data trailing a face line.
type Extension struct {
	Kind    ExtensionKind
	Content uint32
	Flags   uint32
	Value   float32
	Color   [3]uint8
}
