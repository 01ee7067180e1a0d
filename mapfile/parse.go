// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"qmap/math/vec"
)

// SyntaxError reports malformed map text.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Read parses a whole map document from r.
func Read(r io.Reader) (Map, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Map{}, errors.Wrap(err, "read map")
	}
	return Parse(string(b))
}

// Parse parses map text. Entities, brushes and faces keep the order they
// have in src; ids handed out later depend on that.
func Parse(src string) (Map, error) {
	p := &parser{l: lex(src)}
	var m Map
	for {
		i := p.next()
		switch {
		case i.typ == itemEOF:
			return m, nil
		case i.typ == itemError:
			return Map{}, p.errorf(i, "%s", i.val)
		case isChar(i, "{"):
			e, err := p.entity()
			if err != nil {
				return Map{}, err
			}
			m.Entities = append(m.Entities, e)
		default:
			return Map{}, p.unexpected(i, "'{'")
		}
	}
}

type parser struct {
	l      *lexer
	peeked *item
}

func (p *parser) next() item {
	if p.peeked != nil {
		i := *p.peeked
		p.peeked = nil
		return i
	}
	return p.l.nextItem()
}

func (p *parser) peek() item {
	if p.peeked == nil {
		i := p.l.nextItem()
		p.peeked = &i
	}
	return *p.peeked
}

func (p *parser) errorf(i item, format string, args ...interface{}) error {
	return errors.WithStack(&SyntaxError{Line: i.line, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) unexpected(i item, want string) error {
	if i.typ == itemError {
		return p.errorf(i, "%s", i.val)
	}
	return p.errorf(i, "unexpected %v, want %s", i, want)
}

func isChar(i item, c string) bool {
	return i.typ == itemChar && i.val == c
}

func (p *parser) expect(c string) error {
	if i := p.next(); !isChar(i, c) {
		return p.unexpected(i, fmt.Sprintf("'%s'", c))
	}
	return nil
}

// entity parses the body of an entity, the opening brace is consumed.
func (p *parser) entity() (Entity, error) {
	var e Entity
	for {
		i := p.next()
		switch {
		case i.typ == itemString:
			v := p.next()
			if v.typ != itemString {
				return Entity{}, p.unexpected(v, "property value")
			}
			e.Properties = append(e.Properties, Property{
				Key:   unquote(i.val),
				Value: unquote(v.val),
			})
		case isChar(i, "{"):
			b, err := p.brush()
			if err != nil {
				return Entity{}, err
			}
			e.Brushes = append(e.Brushes, b)
		case isChar(i, "}"):
			return e, nil
		default:
			return Entity{}, p.unexpected(i, "property, brush or '}'")
		}
	}
}

func (p *parser) brush() (Brush, error) {
	var b Brush
	for {
		i := p.peek()
		switch {
		case isChar(i, "("):
			bp, err := p.plane()
			if err != nil {
				return Brush{}, err
			}
			b.Planes = append(b.Planes, bp)
		case isChar(i, "}"):
			p.next()
			return b, nil
		case i.typ == itemWord && (i.val == "brushDef" || i.val == "patchDef2"):
			return Brush{}, p.errorf(i, "unsupported brush format %s", i.val)
		default:
			return Brush{}, p.unexpected(p.next(), "'(' or '}'")
		}
	}
}

func (p *parser) plane() (BrushPlane, error) {
	var bp BrushPlane
	var err error
	for _, v := range []*vec.Vec3{&bp.Plane.V0, &bp.Plane.V1, &bp.Plane.V2} {
		if *v, err = p.point(); err != nil {
			return BrushPlane{}, err
		}
	}
	t := p.next()
	switch t.typ {
	case itemWord:
		bp.Texture = t.val
	case itemString:
		bp.Texture = unquote(t.val)
	default:
		return BrushPlane{}, p.unexpected(t, "texture name")
	}
	if bp.Offset, err = p.offset(); err != nil {
		return BrushPlane{}, err
	}
	for _, f := range []*float32{&bp.Angle, &bp.ScaleX, &bp.ScaleY} {
		if *f, err = p.float(); err != nil {
			return BrushPlane{}, err
		}
	}
	if bp.Extension, err = p.extension(); err != nil {
		return BrushPlane{}, err
	}
	return bp, nil
}

func (p *parser) point() (vec.Vec3, error) {
	var v vec.Vec3
	if err := p.expect("("); err != nil {
		return v, err
	}
	for _, f := range []*float32{&v.X, &v.Y, &v.Z} {
		var err error
		if *f, err = p.float(); err != nil {
			return v, err
		}
	}
	return v, p.expect(")")
}

func (p *parser) offset() (TextureOffset, error) {
	var o TextureOffset
	if !isChar(p.peek(), "[") {
		var err error
		if o.U, err = p.float(); err != nil {
			return o, err
		}
		o.V, err = p.float()
		return o, err
	}
	o.Kind = ValveOffset
	for _, a := range []*TextureAxis{&o.UAxis, &o.VAxis} {
		if err := p.expect("["); err != nil {
			return o, err
		}
		for _, f := range []*float32{&a.Axis.X, &a.Axis.Y, &a.Axis.Z, &a.Offset} {
			var err error
			if *f, err = p.float(); err != nil {
				return o, err
			}
		}
		if err := p.expect("]"); err != nil {
			return o, err
		}
	}
	return o, nil
}

// extension reads the optional numbers after the scale.
func (p *parser) extension() (Extension, error) {
	var e Extension
	if p.peek().typ != itemWord {
		return e, nil
	}
	var err error
	e.Kind = Quake2Extension
	if e.Content, err = p.uint32(); err != nil {
		return e, err
	}
	if e.Flags, err = p.uint32(); err != nil {
		return e, err
	}
	if e.Value, err = p.float(); err != nil {
		return e, err
	}
	if p.peek().typ != itemWord {
		return e, nil
	}
	e.Kind = DaikatanaExtension
	for i := range e.Color {
		w := p.next()
		c, err := strconv.ParseUint(w.val, 10, 8)
		if err != nil {
			return e, p.errorf(w, "bad color component %v", w)
		}
		e.Color[i] = uint8(c)
	}
	return e, nil
}

func (p *parser) float() (float32, error) {
	i := p.next()
	if i.typ != itemWord {
		return 0, p.unexpected(i, "number")
	}
	f, err := strconv.ParseFloat(i.val, 32)
	if err != nil {
		return 0, p.errorf(i, "bad number %v", i)
	}
	return float32(f), nil
}

// uint32 accepts negative values as written by some editors and keeps their
// bit pattern.
func (p *parser) uint32() (uint32, error) {
	i := p.next()
	if i.typ != itemWord {
		return 0, p.unexpected(i, "integer")
	}
	v, err := strconv.ParseInt(i.val, 10, 64)
	if err != nil {
		return 0, p.errorf(i, "bad integer %v", i)
	}
	if v < math.MinInt32 || v > math.MaxUint32 {
		return 0, p.errorf(i, "integer %v out of range", i)
	}
	return uint32(v), nil
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
