// SPDX-License-Identifier: GPL-2.0-or-later

// Package wad reads the mip texture directory of WAD2 files.
package wad

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"
)

var magic = [4]byte{'W', 'A', 'D', '2'}

const (
	typMipTex = 0x44
	lumpSize  = 32
)

type header struct {
	M          [4]byte
	EntryCount uint32
	DirOffset  uint32
}

type lump struct {
	Offset      int32
	Dsize       int32
	Size        int32
	Typ         byte
	Compression byte
	Dummy       int16
	Name        [16]byte
}

type mipHeader struct {
	Name   [16]byte
	Width  uint32
	Height uint32
	Offset [4]uint32
}

// MipTex describes one texture of a wad.
type MipTex struct {
	Name   string
	Width  int
	Height int
}

// Wad indexes the mip textures of a WAD2 file. Names are case insensitive.
type Wad struct {
	textures map[string]MipTex
}

func lumpName(b [16]byte) string {
	if n := bytes.IndexByte(b[:], 0); n != -1 {
		return string(b[:n])
	}
	return string(b[:])
}

func getLumps(data []byte) ([]lump, error) {
	buf := bytes.NewReader(data)
	h := header{}
	if err := binary.Read(buf, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "read wad header")
	}
	if h.M != magic {
		return nil, errors.New("wad file doesn't have WAD2 id")
	}
	if uint64(h.DirOffset)+uint64(h.EntryCount)*lumpSize > uint64(len(data)) {
		return nil, errors.Errorf("wad directory out of range")
	}
	if _, err := buf.Seek(int64(h.DirOffset), io.SeekStart); err != nil {
		return nil, err
	}
	lumps := make([]lump, h.EntryCount)
	if err := binary.Read(buf, binary.LittleEndian, &lumps); err != nil {
		return nil, errors.Wrap(err, "read wad directory")
	}
	return lumps, nil
}

// Parse reads the directory of a WAD2 file and the headers of its mip
// textures. Other lump types are skipped.
func Parse(data []byte) (*Wad, error) {
	lumps, err := getLumps(data)
	if err != nil {
		return nil, err
	}
	w := &Wad{textures: make(map[string]MipTex)}
	for _, l := range lumps {
		if l.Typ != typMipTex {
			continue
		}
		if l.Offset < 0 || int(l.Offset) > len(data) {
			return nil, errors.Errorf("mip texture %s out of range", lumpName(l.Name))
		}
		var mh mipHeader
		if err := binary.Read(bytes.NewReader(data[l.Offset:]), binary.LittleEndian, &mh); err != nil {
			return nil, errors.Wrapf(err, "read mip texture %s", lumpName(l.Name))
		}
		name := lumpName(l.Name)
		w.textures[strings.ToLower(name)] = MipTex{
			Name:   name,
			Width:  int(mh.Width),
			Height: int(mh.Height),
		}
	}
	return w, nil
}

// MipTex returns the texture with the given name.
func (w *Wad) MipTex(name string) (MipTex, bool) {
	t, ok := w.textures[strings.ToLower(name)]
	return t, ok
}

func (w *Wad) Len() int {
	return len(w.textures)
}

// Paths splits the worldspawn "wad" value, a ';' separated list, into
// paths relative to the game directory.
func Paths(value string) []string {
	var r []string
	for _, p := range strings.Split(value, ";") {
		p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
		if p == "" {
			continue
		}
		// editors often write absolute paths like /quake/id1/gfx/base.wad
		if i := strings.LastIndex(p, "/gfx/"); i != -1 {
			p = p[i+1:]
		}
		r = append(r, strings.TrimPrefix(p, "/"))
	}
	return r
}

// Write writes a WAD2 file containing mip texture headers without pixel
// data, enough for Parse.
func Write(w io.Writer, textures []MipTex) error {
	const mipSize = 40
	h := header{
		M:          magic,
		EntryCount: uint32(len(textures)),
		DirOffset:  uint32(12 + mipSize*len(textures)),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, t := range textures {
		mh := mipHeader{Width: uint32(t.Width), Height: uint32(t.Height)}
		copy(mh.Name[:], t.Name)
		if err := binary.Write(w, binary.LittleEndian, &mh); err != nil {
			return err
		}
	}
	for i, t := range textures {
		l := lump{
			Offset: int32(12 + mipSize*i),
			Dsize:  mipSize,
			Size:   mipSize,
			Typ:    typMipTex,
		}
		copy(l.Name[:], t.Name)
		if err := binary.Write(w, binary.LittleEndian, &l); err != nil {
			return err
		}
	}
	return nil
}
