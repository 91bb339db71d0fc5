// Package embedcache is the persistent embedding cache: a flat JSON file
// mapping sha256(text) to the vector the provider returned for that text.
// Identical text always maps to the same key, so entries are shared across
// documents and chunks with duplicate content.
//
// The key is a digest of the exact text. A whitespace or formatting change
// upstream (for example after retuning the chunker) silently invalidates
// entries and causes a burst of cache misses on the next ingest; that is
// the intended behavior, not corruption.
package embedcache

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kataras/golog"

	"github.com/Chenthemanl/corpusrag/internal/contenthash"
	"github.com/Chenthemanl/corpusrag/internal/jsonfile"
)

// Stats summarizes the cache for status reporting.
type Stats struct {
	TotalEmbeddings int     `json:"total_embeddings"`
	CacheFile       string  `json:"cache_file"`
	SizeMB          float64 `json:"cache_size_mb"`
}

// Cache is an in-memory digest->vector map mirrored to a JSON file.
// Entries are never mutated and never individually evicted; only Clear
// empties the cache. Not safe for concurrent use.
type Cache struct {
	path    string
	entries map[string][]float32
}

// New loads the cache from its backing file. A missing or corrupt file
// degrades to an empty cache with a logged warning.
func New(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string][]float32),
	}
	c.load()
	return c
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			golog.Warnf("embedcache: could not read %s, starting empty: %v", c.path, err)
		}
		return
	}

	var stored map[string][]float32
	if err := json.Unmarshal(data, &stored); err != nil {
		golog.Warnf("embedcache: corrupt cache file %s, starting empty: %v", c.path, err)
		return
	}
	if stored != nil {
		c.entries = stored
	}
}

// Get returns the cached vector for text, if one exists. Lookup is O(1)
// on the digest of the exact text.
func (c *Cache) Get(text string) ([]float32, bool) {
	vec, ok := c.entries[contenthash.Text(text)]
	return vec, ok
}

// Add stores the vector under the digest of text. Adding the same text
// twice is last-write-wins; embeddings for identical text are assumed
// deterministic, so in practice this is idempotent.
func (c *Cache) Add(text string, vector []float32) {
	c.entries[contenthash.Text(text)] = vector
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Save rewrites the backing file with the full map. On failure the
// in-memory cache is untouched but unsaved entries are lost on crash.
func (c *Cache) Save() error {
	encoded, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("embedcache: encode cache: %w", err)
	}
	if err := jsonfile.WriteAtomic(c.path, encoded); err != nil {
		return fmt.Errorf("embedcache: write %s: %w", c.path, err)
	}
	return nil
}

// Clear empties the cache and persists the empty state immediately.
func (c *Cache) Clear() error {
	c.entries = make(map[string][]float32)
	return c.Save()
}

// Stats reports entry count and the approximate serialized size.
func (c *Cache) Stats() Stats {
	sizeMB := 0.0
	if encoded, err := json.Marshal(c.entries); err == nil {
		sizeMB = float64(len(encoded)) / (1024 * 1024)
	}
	return Stats{
		TotalEmbeddings: len(c.entries),
		CacheFile:       c.path,
		SizeMB:          sizeMB,
	}
}
