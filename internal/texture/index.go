package texture

import (
	"path"
	"strings"

	"eq-wld-decoder/internal/archive"
)

// Index maps lowercase texture stems to archive names.
// TGA files take priority over BMP for the same stem (alpha channel).
type Index struct {
	entries map[string]string // stem → archive key
}

// BuildIndex scans the names of src for BMP and TGA files.
func BuildIndex(src archive.Source) *Index {
	idx := &Index{entries: make(map[string]string)}
	for _, name := range src.Names() {
		key := archive.Key(name)
		ext := path.Ext(key)
		if ext != ".bmp" && ext != ".tga" {
			continue
		}
		stem := strings.TrimSuffix(path.Base(key), ext)

		existing, exists := idx.entries[stem]
		if !exists {
			idx.entries[stem] = key
		} else if ext == ".tga" && path.Ext(existing) == ".bmp" {
			idx.entries[stem] = key
		}
	}
	return idx
}

// ResolvePath returns the archive name for a texture name, or ("", false).
// Directory prefixes and the extension of texName are ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	base := archive.Base(texName)
	stem := strings.TrimSuffix(base, path.Ext(base))

	name, ok := idx.entries[stem]
	return name, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
