package texture

import (
	"fmt"
	"sync"

	"eq-wld-decoder/internal/archive"
)

// Resolver resolves a texture name to a decoded bitmap.
type Resolver interface {
	Resolve(texName string) (*Texture, error)
}

// Cache is a concurrency-safe texture cache over an archive.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
	src   archive.Source
}

type cacheEntry struct {
	tex *Texture
	err error
}

// NewCache creates a texture cache over the bitmaps of src.
func NewCache(src archive.Source) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: BuildIndex(src),
		src:   src,
	}
}

// Index returns the index the cache resolves names with.
func (c *Cache) Index() *Index { return c.index }

// Resolve loads and caches a texture by name. Failed loads are cached too.
func (c *Cache) Resolve(texName string) (*Texture, error) {
	name, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil, fmt.Errorf("texture: %s: %w", texName, archive.ErrNotFound)
	}

	c.mu.RLock()
	if entry, exists := c.items[name]; exists {
		c.mu.RUnlock()
		return entry.tex, entry.err
	}
	c.mu.RUnlock()

	entry := &cacheEntry{}
	data, err := c.src.Get(name)
	if err != nil {
		entry.err = fmt.Errorf("texture: %w", err)
	} else {
		entry.tex, entry.err = Decode(name, data)
	}

	c.mu.Lock()
	if existing, exists := c.items[name]; exists {
		c.mu.Unlock()
		return existing.tex, existing.err
	}
	c.items[name] = entry
	c.mu.Unlock()

	return entry.tex, entry.err
}
