// SPDX-License-Identifier: GPL-2.0-or-later

// Package vfs defines types for abstract file system access, an
// implementation accessing the file system of the underlying OS and a union
// of file systems searched in order.
package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
)

// The FileSystem interface specifies the methods used to look up map
// sources. Paths are slash separated and relative to the file system root.
type FileSystem interface {
	Open(name string) (io.ReadSeekCloser, error)
	Stat(path string) (os.FileInfo, error)
	String() string
}

// OS returns a FileSystem rooted at the directory root.
func OS(root string) FileSystem {
	return osFS(root)
}

type osFS string

func (root osFS) resolve(path string) string {
	path = pathpkg.Clean("/" + path)
	return filepath.Join(string(root), filepath.FromSlash(path))
}

func (root osFS) Open(path string) (io.ReadSeekCloser, error) {
	f, err := os.Open(root.resolve(path))
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.IsDir() {
		f.Close()
		return nil, &fs.PathError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}
	return f, nil
}

func (root osFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(root.resolve(path))
}

func (root osFS) String() string {
	return "os(" + string(root) + ")"
}

type BindMode int

const (
	BindReplace BindMode = iota
	BindBefore
	BindAfter
)

// Layers is a union of file systems. Earlier layers shadow later ones.
type Layers []FileSystem

// Bind adds f to the union according to mode.
func (l *Layers) Bind(f FileSystem, mode BindMode) {
	switch mode {
	case BindReplace:
		*l = Layers{f}
	case BindBefore:
		*l = append(Layers{f}, *l...)
	case BindAfter:
		*l = append(*l, f)
	}
}

// Open opens path in the first layer that has it. A layer failing with
// anything but a not-exist error stops the search.
func (l Layers) Open(path string) (io.ReadSeekCloser, error) {
	for _, f := range l {
		r, err := f.Open(path)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
}

func (l Layers) Stat(path string) (os.FileInfo, error) {
	for _, f := range l {
		fi, err := f.Stat(path)
		if err == nil {
			return fi, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

func (l Layers) String() string {
	s := make([]string, len(l))
	for i, f := range l {
		s[i] = f.String()
	}
	return strings.Join(s, ":")
}
