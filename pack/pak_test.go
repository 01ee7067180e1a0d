// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writePack(t *testing.T, files []File) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "pak0.pak")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("could not create %s: %v", name, err)
	}
	defer f.Close()
	if err := Write(f, files); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return name
}

func TestPak(t *testing.T) {
	pakFile := writePack(t, []File{
		{Name: "maps/start.map", Data: []byte("{\n\"classname\" \"worldspawn\"\n}\n")},
		{Name: "doc1.txt", Data: []byte("this is the first doc 2. version\r\n")},
		{Name: "empty.txt"},
	})
	p, err := NewPackReader(pakFile)
	if err != nil {
		t.Fatalf("could not open %s: %v", pakFile, err)
	}
	defer p.Close()
	if p.String() != pakFile {
		t.Errorf("pack String error: want %v got %v", pakFile, p.String())
	}
	want := []string{"doc1.txt", "empty.txt", "maps/start.map"}
	got := p.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	for name, contents := range map[string]string{
		"doc1.txt":       "this is the first doc 2. version\r\n",
		"empty.txt":      "",
		"maps/start.map": "{\n\"classname\" \"worldspawn\"\n}\n",
	} {
		f, err := p.Open(name)
		if err != nil {
			t.Fatalf("Open(%q): %v", name, err)
		}
		b, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("Could not read %s: %v", name, err)
		}
		if string(b) != contents {
			t.Errorf("%s contents is %q, want %q", name, b, contents)
		}
	}

	if _, err := p.Open("missing.txt"); err != os.ErrNotExist {
		t.Errorf("Open(missing.txt) = %v, want %v", err, os.ErrNotExist)
	}
}

func TestNotAPak(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.pak")
	if err := os.WriteFile(name, []byte("PAKCxxxxxxxxxxxx"), 0660); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPackReader(name); err == nil {
		t.Errorf("NewPackReader(%s) succeeded on a broken file", name)
	}
}

func TestDuplicateEntries(t *testing.T) {
	name := writePack(t, []File{
		{Name: "a.txt", Data: []byte("a")},
		{Name: "a.txt", Data: []byte("b")},
	})
	if _, err := NewPackReader(name); err == nil {
		t.Errorf("NewPackReader accepted duplicate entries")
	}
}

func TestWriteLongName(t *testing.T) {
	long := make([]byte, 56)
	for i := range long {
		long[i] = 'a'
	}
	if err := Write(io.Discard, []File{{Name: string(long)}}); err == nil {
		t.Errorf("Write accepted a %d byte name", len(long))
	}
}
