// SPDX-License-Identifier: GPL-2.0-or-later

package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func dir(t *testing.T, files map[string]string) string {
	t.Helper()
	d := t.TempDir()
	for n, c := range files {
		p := filepath.Join(d, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(p), 0770); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(c), 0660); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func read(t *testing.T, l Layers, name string) string {
	t.Helper()
	f, err := l.Open(name)
	if err != nil {
		t.Fatalf("Open(%q): %v", name, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestBind(t *testing.T) {
	a := OS(dir(t, map[string]string{"x.txt": "a", "maps/only_a.map": "a"}))
	b := OS(dir(t, map[string]string{"x.txt": "b"}))
	c := OS(dir(t, map[string]string{"x.txt": "c", "y.txt": "c"}))

	var l Layers
	l.Bind(a, BindReplace)
	l.Bind(b, BindBefore)
	l.Bind(c, BindAfter)
	if len(l) != 3 || l[0] != b || l[1] != a || l[2] != c {
		t.Fatalf("layers = %v", l)
	}
	if got := read(t, l, "x.txt"); got != "b" {
		t.Errorf("x.txt = %q, want b", got)
	}
	if got := read(t, l, "/y.txt"); got != "c" {
		t.Errorf("y.txt = %q, want c", got)
	}
	if got := read(t, l, "maps/only_a.map"); got != "a" {
		t.Errorf("maps/only_a.map = %q, want a", got)
	}
	if _, err := l.Stat("y.txt"); err != nil {
		t.Errorf("Stat(y.txt): %v", err)
	}

	l.Bind(c, BindReplace)
	if len(l) != 1 {
		t.Errorf("BindReplace left %d layers", len(l))
	}
}

func TestOpenMissing(t *testing.T) {
	l := Layers{OS(dir(t, map[string]string{"maps/a.map": ""}))}
	if _, err := l.Open("b.map"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(b.map) = %v, want not exist", err)
	}
	if _, err := l.Stat("b.map"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat(b.map) = %v, want not exist", err)
	}
	// a directory is no file and stops the search
	if _, err := l.Open("maps"); err == nil || errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(maps) = %v, want a non not-exist error", err)
	}
	var empty Layers
	if _, err := empty.Open("a.map"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("empty Open = %v, want not exist", err)
	}
}
