// Package archive provides the containers a WLD document and its textures
// are read from. Names are case-insensitive.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

// ErrNotFound is returned by Get for names the source does not hold.
var ErrNotFound = errors.New("archive: not found")

// Source is a named blob container.
type Source interface {
	Get(name string) ([]byte, error)
	Names() []string
}

// Key normalises a name the way sources index it: lower case, forward
// slashes, no leading slash.
func Key(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(strings.ToLower(name), "/")
}

// Dir is a Source over a directory tree.
type Dir struct {
	fsys    fs.FS
	entries map[string]string // key → path within fsys
}

// OpenDir indexes every regular file below root.
func OpenDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive: %s is not a directory", root)
	}
	return NewDir(os.DirFS(root))
}

// NewDir indexes every regular file of fsys. When two paths differ only in
// case the first in walk order wins.
func NewDir(fsys fs.FS) (*Dir, error) {
	d := &Dir{fsys: fsys, entries: make(map[string]string)}
	err := fs.WalkDir(fsys, ".", func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			return nil
		}
		if _, dup := d.entries[Key(p)]; !dup {
			d.entries[Key(p)] = p
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive: walk: %w", err)
	}
	return d, nil
}

func (d *Dir) Get(name string) ([]byte, error) {
	p, ok := d.entries[Key(name)]
	if !ok {
		return nil, fmt.Errorf("archive: %s: %w", name, ErrNotFound)
	}
	data, err := fs.ReadFile(d.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", p, err)
	}
	return data, nil
}

// Names returns the keys of every file, sorted.
func (d *Dir) Names() []string {
	names := make([]string, 0, len(d.entries))
	for k := range d.entries {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of indexed files.
func (d *Dir) Len() int {
	return len(d.entries)
}

// Map is an in-memory Source.
type Map map[string][]byte

// NewMap copies files into a Map keyed by Key.
func NewMap(files map[string][]byte) Map {
	m := make(Map, len(files))
	for name, data := range files {
		m[Key(name)] = data
	}
	return m
}

func (m Map) Get(name string) ([]byte, error) {
	if data, ok := m[Key(name)]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("archive: %s: %w", name, ErrNotFound)
}

func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Base returns the final element of a key, as materials name textures
// without their directory.
func Base(name string) string {
	return path.Base(Key(name))
}
