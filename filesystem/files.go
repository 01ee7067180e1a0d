// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem resolves game relative paths like maps/e1m1.map through
// the game directories and the pak files inside them.
package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"qmap/conlog"
	"qmap/filesystem/vfs"
	"qmap/pack"
)

const baseGame = "id1"

type packFileSystem struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

type fileInfo struct {
	name string // base name of the file
	size int64  // length in bytes for regular files; system-dependent for others
}

func (f *fileInfo) Name() string {
	return f.name
}
func (f *fileInfo) Size() int64 {
	return f.size
}
func (f *fileInfo) Mode() fs.FileMode {
	return 0
}
func (f *fileInfo) ModTime() time.Time {
	return time.Time{}
}
func (f *fileInfo) IsDir() bool {
	return false
}
func (f *fileInfo) Sys() any {
	return nil
}

func (p packFileSystem) Open(path string) (io.ReadSeekCloser, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	path = strings.TrimPrefix(path, "/")
	f, err := p.p.Open(path)
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packFileSystem) Stat(path string) (os.FileInfo, error) {
	path = strings.TrimPrefix(path, "/")
	f, err := p.p.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileInfo{
		name: filepath.Base(path),
		size: f.Size(),
	}, nil
}

func (p packFileSystem) String() string {
	return p.p.String()
}

// SearchPath is the set of directories and paks a name is looked up in.
type SearchPath struct {
	mutex   sync.RWMutex
	baseDir string
	gameDir string
	ns      vfs.Layers
	paks    []*pack.Pack
}

// UseBaseDir resets the search path to base/id1 and its paks.
func (s *SearchPath) UseBaseDir(base string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closePaks()
	s.baseDir = base
	s.gameDir = filepath.Join(base, baseGame)
	s.ns = vfs.Layers{}
	s.ns.Bind(vfs.OS(s.gameDir), vfs.BindReplace)
	s.useDir(s.gameDir)
}

// UseGameDir layers base/game on top of base/id1. An empty game or id1
// itself only uses the base game.
func (s *SearchPath) UseGameDir(base, game string) {
	s.UseBaseDir(base)
	if game == "" || game == baseGame {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.gameDir = filepath.Join(base, game)
	s.ns.Bind(vfs.OS(s.gameDir), vfs.BindBefore)
	s.useDir(s.gameDir)
}

// useDir adds pak0.pak, pak1.pak, ... of dir to the front of the search
// path, higher numbers shadow lower ones.
func (s *SearchPath) useDir(dir string) {
	for i := 0; ; i++ {
		pfp := filepath.Join(dir, fmt.Sprintf("pak%d.pak", i))
		p, err := pack.NewPackReader(pfp)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				conlog.Printf("skipping %s: %v", pfp, err)
			}
			break
		}
		conlog.Debugf("added pack %s (%d files)", pfp, len(p.Names()))
		s.paks = append(s.paks, p)
		s.ns.Bind(packFileSystem{p}, vfs.BindBefore)
	}
}

func (s *SearchPath) closePaks() {
	for _, p := range s.paks {
		p.Close()
	}
	s.paks = nil
}

// Close releases the open paks.
func (s *SearchPath) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closePaks()
	s.ns = nil
	return nil
}

func (s *SearchPath) GameDir() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.gameDir
}

func (s *SearchPath) BaseDir() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.baseDir
}

func (s *SearchPath) String() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.ns.String()
}

func (s *SearchPath) Stat(path string) (os.FileInfo, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.ns.Stat(path)
}

func (s *SearchPath) Open(name string) (io.ReadSeekCloser, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.ns.Open(filepath.ToSlash(name))
}

func (s *SearchPath) ReadFile(name string) ([]byte, error) {
	file, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	b, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return b, nil
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
