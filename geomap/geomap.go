// SPDX-License-Identifier: GPL-2.0-or-later

// Package geomap flattens a parsed map into struct-of-arrays form: every
// entity, brush, face and texture gets an integer id and the nesting is
// replaced by tables keyed by those ids.
package geomap

import (
	"slices"

	"qmap/mapfile"
	"qmap/math/vec"
)

type EntityID int
type BrushID int
type FaceID int
type TextureID int

// GeoMap is the flattened form of a mapfile.Map. Ids of each kind are dense,
// start at 0 and follow source order. A GeoMap is never modified after New
// returns.
type GeoMap struct {
	entities []EntityID
	brushes  []BrushID
	faces    []FaceID

	// indexed by TextureID
	textures      []string
	textureByName map[string]TextureID

	// indexed by EntityID, entityBrushes[e] is nil for point entities
	entityProperties []mapfile.Properties
	entityBrushes    [][]BrushID
	pointEntities    []EntityID

	// indexed by BrushID
	brushFaces [][]FaceID

	// indexed by FaceID
	facePlanes     []mapfile.Triangle
	faceTextures   []TextureID
	faceOffsets    []mapfile.TextureOffset
	faceAngles     []float32
	faceScales     []vec.Vec2
	faceExtensions []mapfile.Extension
}

// textureTable interns texture names during a single New call.
type textureTable struct {
	ids   map[string]TextureID
	names []string
}

func (t *textureTable) intern(name string) TextureID {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := TextureID(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	return id
}

// New builds the flattened form of m. It never fails; an empty map gives an
// empty GeoMap.
func New(m mapfile.Map, opts ...Option) *GeoMap {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var entityHead, brushHead, faceHead int
	tt := textureTable{ids: make(map[string]TextureID)}
	g := &GeoMap{}

	for _, e := range m.Entities {
		entityID := EntityID(entityHead)
		entityHead++

		g.entities = append(g.entities, entityID)
		g.entityProperties = append(g.entityProperties, slices.Clone(e.Properties))
		g.entityBrushes = append(g.entityBrushes, nil)

		for _, b := range e.Brushes {
			brushID := BrushID(brushHead)
			brushHead++

			g.brushes = append(g.brushes, brushID)
			g.entityBrushes[entityID] = append(g.entityBrushes[entityID], brushID)
			g.brushFaces = append(g.brushFaces, nil)

			for _, p := range b.Planes {
				faceID := FaceID(faceHead)
				faceHead++

				g.faces = append(g.faces, faceID)
				g.facePlanes = append(g.facePlanes, p.Plane)
				g.faceTextures = append(g.faceTextures, tt.intern(p.Texture))
				g.faceOffsets = append(g.faceOffsets, p.Offset)
				g.faceAngles = append(g.faceAngles, p.Angle)
				g.faceScales = append(g.faceScales, vec.Vec2{X: p.ScaleX, Y: p.ScaleY})
				g.faceExtensions = append(g.faceExtensions, p.Extension)

				g.brushFaces[brushID] = append(g.brushFaces[brushID], faceID)
			}
		}
	}

	g.textures = tt.names
	g.textureByName = tt.ids

	for _, id := range g.entities {
		if len(g.entityBrushes[id]) == 0 {
			g.pointEntities = append(g.pointEntities, id)
		}
	}

	for _, f := range o.observers {
		for _, id := range g.pointEntities {
			f(id, slices.Clone(g.entityProperties[id]))
		}
	}
	return g
}

func (g *GeoMap) Entities() []EntityID {
	return slices.Clone(g.entities)
}

func (g *GeoMap) Brushes() []BrushID {
	return slices.Clone(g.brushes)
}

func (g *GeoMap) Faces() []FaceID {
	return slices.Clone(g.faces)
}

// PointEntities returns the entities without brushes, in id order.
func (g *GeoMap) PointEntities() []EntityID {
	return slices.Clone(g.pointEntities)
}

func (g *GeoMap) EntityProperties(id EntityID) (mapfile.Properties, bool) {
	if !g.hasEntity(id) {
		return nil, false
	}
	return slices.Clone(g.entityProperties[id]), true
}

// EntityBrushes returns the brushes owned by the entity in source order. It
// reports false for point entities and unknown ids.
func (g *GeoMap) EntityBrushes(id EntityID) ([]BrushID, bool) {
	if !g.hasEntity(id) || len(g.entityBrushes[id]) == 0 {
		return nil, false
	}
	return slices.Clone(g.entityBrushes[id]), true
}

// BrushFaces returns the faces of the brush in source order. It reports
// false for brushes without faces and unknown ids.
func (g *GeoMap) BrushFaces(id BrushID) ([]FaceID, bool) {
	if id < 0 || int(id) >= len(g.brushFaces) || len(g.brushFaces[id]) == 0 {
		return nil, false
	}
	return slices.Clone(g.brushFaces[id]), true
}

func (g *GeoMap) FacePlane(id FaceID) (mapfile.Triangle, bool) {
	if !g.hasFace(id) {
		return mapfile.Triangle{}, false
	}
	return g.facePlanes[id], true
}

func (g *GeoMap) FaceTexture(id FaceID) (TextureID, bool) {
	if !g.hasFace(id) {
		return 0, false
	}
	return g.faceTextures[id], true
}

func (g *GeoMap) FaceOffset(id FaceID) (mapfile.TextureOffset, bool) {
	if !g.hasFace(id) {
		return mapfile.TextureOffset{}, false
	}
	return g.faceOffsets[id], true
}

func (g *GeoMap) FaceAngle(id FaceID) (float32, bool) {
	if !g.hasFace(id) {
		return 0, false
	}
	return g.faceAngles[id], true
}

func (g *GeoMap) FaceScale(id FaceID) (vec.Vec2, bool) {
	if !g.hasFace(id) {
		return vec.Vec2{}, false
	}
	return g.faceScales[id], true
}

func (g *GeoMap) FaceExtension(id FaceID) (mapfile.Extension, bool) {
	if !g.hasFace(id) {
		return mapfile.Extension{}, false
	}
	return g.faceExtensions[id], true
}

// FaceNormal returns the plane of the face as normal and distance.
func (g *GeoMap) FaceNormal(id FaceID) (vec.Plane, bool) {
	if !g.hasFace(id) {
		return vec.Plane{}, false
	}
	return g.facePlanes[id].Plane(), true
}

// Textures returns the texture registry, the name of TextureID i is at
// index i.
func (g *GeoMap) Textures() []string {
	return slices.Clone(g.textures)
}

func (g *GeoMap) TextureName(id TextureID) (string, bool) {
	if id < 0 || int(id) >= len(g.textures) {
		return "", false
	}
	return g.textures[id], true
}

func (g *GeoMap) TextureByName(name string) (TextureID, bool) {
	id, ok := g.textureByName[name]
	return id, ok
}

// EntitiesByClassname returns all entities with the given classname in id
// order.
func (g *GeoMap) EntitiesByClassname(name string) []EntityID {
	var r []EntityID
	for _, id := range g.entities {
		if c, ok := g.entityProperties[id].Classname(); ok && c == name {
			r = append(r, id)
		}
	}
	return r
}

type Stats struct {
	Entities      int
	PointEntities int
	Brushes       int
	Faces         int
	Textures      int
}

func (g *GeoMap) Stats() Stats {
	return Stats{
		Entities:      len(g.entities),
		PointEntities: len(g.pointEntities),
		Brushes:       len(g.brushes),
		Faces:         len(g.faces),
		Textures:      len(g.textures),
	}
}

func (g *GeoMap) hasEntity(id EntityID) bool {
	return id >= 0 && int(id) < len(g.entities)
}

func (g *GeoMap) hasFace(id FaceID) bool {
	return id >= 0 && int(id) < len(g.faces)
}
