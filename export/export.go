// SPDX-License-Identifier: GPL-2.0-or-later

// Package export serializes a GeoMap as a protobuf Struct document, written
// as binary protobuf, JSON or YAML.
package export

import (
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"qmap/geomap"
	"qmap/mapfile"
	"qmap/math/vec"
)

type Format string

const (
	Proto Format = "proto"
	JSON  Format = "json"
	YAML  Format = "yaml"
)

// ParseFormat accepts the names used in config files and on the command
// line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Proto, JSON, YAML:
		return f, nil
	case "pb":
		return Proto, nil
	case "yml":
		return YAML, nil
	}
	return "", errors.Errorf("unknown export format %q", s)
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case Proto:
		return ".pb"
	case JSON:
		return ".json"
	default:
		return ".yaml"
	}
}

// Meta identifies one export and carries data resolved outside the map.
type Meta struct {
	ID     uuid.UUID
	Source string
	// TextureSizes maps texture names to width and height, if known.
	TextureSizes map[string][2]int
}

func NewMeta(source string) (Meta, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Meta{}, errors.Wrap(err, "export id")
	}
	return Meta{ID: id, Source: source}, nil
}

// ToStruct converts g into a document. The position of an element in the
// entities, brushes, faces and textures lists is its id.
func ToStruct(g *geomap.GeoMap, meta Meta) (*structpb.Struct, error) {
	entities := []interface{}{}
	for _, id := range g.Entities() {
		props, _ := g.EntityProperties(id)
		ps := make([]interface{}, 0, len(props))
		for _, p := range props {
			ps = append(ps, map[string]interface{}{"key": p.Key, "value": p.Value})
		}
		e := map[string]interface{}{"properties": ps}
		if bs, ok := g.EntityBrushes(id); ok {
			e["brushes"] = ints(bs)
		}
		entities = append(entities, e)
	}

	brushes := []interface{}{}
	for _, id := range g.Brushes() {
		fs, _ := g.BrushFaces(id)
		brushes = append(brushes, map[string]interface{}{"faces": ints(fs)})
	}

	faces := []interface{}{}
	for _, id := range g.Faces() {
		plane, _ := g.FacePlane(id)
		tex, _ := g.FaceTexture(id)
		offset, _ := g.FaceOffset(id)
		angle, _ := g.FaceAngle(id)
		scale, _ := g.FaceScale(id)
		ext, _ := g.FaceExtension(id)
		faces = append(faces, map[string]interface{}{
			"plane":     []interface{}{point(plane.V0), point(plane.V1), point(plane.V2)},
			"texture":   int(tex),
			"offset":    offsetValue(offset),
			"angle":     angle,
			"scale":     []interface{}{scale.X, scale.Y},
			"extension": extensionValue(ext),
		})
	}

	textures := []interface{}{}
	for _, name := range g.Textures() {
		textures = append(textures, name)
	}

	doc := map[string]interface{}{
		"id":             meta.ID.String(),
		"source":         meta.Source,
		"entities":       entities,
		"point_entities": ints(g.PointEntities()),
		"brushes":        brushes,
		"faces":          faces,
		"textures":       textures,
	}
	if len(meta.TextureSizes) > 0 {
		sizes := map[string]interface{}{}
		for name, wh := range meta.TextureSizes {
			sizes[name] = []interface{}{wh[0], wh[1]}
		}
		doc["texture_sizes"] = sizes
	}
	s, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, errors.Wrap(err, "build export document")
	}
	return s, nil
}

// Write converts g and writes it to w in format f.
func Write(w io.Writer, g *geomap.GeoMap, meta Meta, f Format) error {
	s, err := ToStruct(g, meta)
	if err != nil {
		return err
	}
	var out []byte
	switch f {
	case Proto:
		out, err = proto.Marshal(s)
	case JSON:
		out, err = protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	case YAML:
		out, err = yaml.Marshal(s.AsMap())
	default:
		return errors.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return errors.Wrapf(err, "encode %s", f)
	}
	_, err = w.Write(out)
	return err
}

// Decode reads a document written by Write.
func Decode(data []byte, f Format) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	var err error
	switch f {
	case Proto:
		err = proto.Unmarshal(data, s)
	case JSON:
		err = protojson.Unmarshal(data, s)
	case YAML:
		var m map[string]interface{}
		if err = yaml.Unmarshal(data, &m); err == nil {
			s, err = structpb.NewStruct(m)
		}
	default:
		return nil, errors.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", f)
	}
	return s, nil
}

func ints[T ~int](ids []T) []interface{} {
	r := make([]interface{}, len(ids))
	for i, id := range ids {
		r[i] = int(id)
	}
	return r
}

func point(v vec.Vec3) []interface{} {
	return []interface{}{v.X, v.Y, v.Z}
}

func offsetValue(o mapfile.TextureOffset) map[string]interface{} {
	if o.Kind == mapfile.ValveOffset {
		return map[string]interface{}{
			"kind": o.Kind.String(),
			"u":    append(point(o.UAxis.Axis), o.UAxis.Offset),
			"v":    append(point(o.VAxis.Axis), o.VAxis.Offset),
		}
	}
	return map[string]interface{}{
		"kind": o.Kind.String(),
		"u":    o.U,
		"v":    o.V,
	}
}

func extensionValue(e mapfile.Extension) map[string]interface{} {
	m := map[string]interface{}{"kind": e.Kind.String()}
	switch e.Kind {
	case mapfile.DaikatanaExtension:
		m["color"] = []interface{}{int(e.Color[0]), int(e.Color[1]), int(e.Color[2])}
		fallthrough
	case mapfile.Quake2Extension:
		m["content"] = e.Content
		m["flags"] = e.Flags
		m["value"] = e.Value
	}
	return m
}
