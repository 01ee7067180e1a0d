// SPDX-License-Identifier: GPL-2.0-or-later

// Package pack reads and writes PACK archives, the container map sources
// and game data ship in.
package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

const (
	headerSize = 12
	entrySize  = 64
)

var magic = [4]byte{'P', 'A', 'C', 'K'}

type Pack struct {
	f     *os.File
	files map[string]*qfile
	name  string
}

type qfile struct {
	offset int64
	size   int64
}

// Open returns a io.SectionReader for the named entry or os.ErrNotExist.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}

	return io.NewSectionReader(p.f, q.offset, q.size), nil
}

// Names returns the entry names in sorted order.
func (p *Pack) Names() []string {
	n := make([]string, 0, len(p.files))
	for k := range p.files {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	return p.f.Close()
}

func newPack(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &Pack{f: f, name: name}, nil
}

func (p *Pack) init() error {
	var h header
	if err := binary.Read(p.f, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "read header")
	}
	if h.ID != magic {
		return errors.New("not a pack")
	}
	r, err := p.f.Seek(int64(h.Offset), io.SeekStart)
	if err != nil {
		return err
	}
	if r != int64(h.Offset) {
		return errors.New("not long enough")
	}
	filenum := h.Size / entrySize
	p.files = make(map[string]*qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := binary.Read(p.f, binary.LittleEndian, &e); err != nil {
			return errors.Wrapf(err, "read directory entry %d", i)
		}
		n := bytes.IndexByte(e.Name[:], 0)
		if n == -1 {
			n = len(e.Name)
		}
		name := string(e.Name[:n])
		if p.files[name] != nil {
			return errors.Errorf("files in pack are not unique: %s", name)
		}
		p.files[name] = &qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

func NewPackReader(name string) (*Pack, error) {
	p, err := newPack(name)
	if err != nil {
		return nil, err
	}
	if err := p.init(); err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "open pack %s", name)
	}
	return p, nil
}

// File is one entry to be written into a pack.
type File struct {
	Name string
	Data []byte
}

// Write writes files as a pack: header, file data, then the directory.
func Write(w io.Writer, files []File) error {
	var size int
	for _, f := range files {
		if len(f.Name) >= len(entry{}.Name) {
			return errors.Errorf("name too long for pack: %s", f.Name)
		}
		size += len(f.Data)
	}
	h := header{
		ID:     magic,
		Offset: int32(headerSize + size),
		Size:   int32(entrySize * len(files)),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, f := range files {
		if _, err := w.Write(f.Data); err != nil {
			return err
		}
	}
	offset := int32(headerSize)
	for _, f := range files {
		e := entry{Offset: offset, Size: int32(len(f.Data))}
		copy(e.Name[:], f.Name)
		if err := binary.Write(w, binary.LittleEndian, &e); err != nil {
			return err
		}
		offset += e.Size
	}
	return nil
}
