package embedder

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Chenthemanl/corpusrag/internal/contenthash"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnsupportedModel  = errors.New("unsupported model")
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedding is a vector embedding with its provenance metadata.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string // digest of the embedded text, shared with the persistent cache
}

// Embedder generates vector embeddings for text.
type Embedder interface {
	// EmbedOne embeds a single text.
	EmbedOne(ctx context.Context, text string) (*Embedding, error)

	// EmbedBatch embeds multiple texts in one provider call where the
	// backend supports it. The result has one embedding per input text,
	// in input order.
	EmbedBatch(ctx context.Context, texts []string) ([]*Embedding, error)

	// Dimension returns the vector dimensionality of this provider/model.
	Dimension() int

	// Provider returns the provider name.
	Provider() string

	// Model returns the model name.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// HotCache is an in-process LRU of recent embeddings keyed by text digest.
// It sits inside the providers, in front of the persistent flat-file cache,
// and evicts on its own; the flat-file cache never does.
type HotCache struct {
	cache *lru.Cache[string, *Embedding]
}

// NewHotCache creates an LRU hot cache holding up to maxLen embeddings.
func NewHotCache(maxLen int) *HotCache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, *Embedding](maxLen)
	if err != nil {
		// Cannot happen with a positive size.
		panic(fmt.Sprintf("embedder: create hot cache: %v", err))
	}
	return &HotCache{cache: cache}
}

// Get returns a deep copy of the cached embedding for the given digest.
// Copying keeps caller mutations out of the cache.
func (c *HotCache) Get(hash string) (*Embedding, bool) {
	emb, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	vector := make([]float32, len(emb.Vector))
	copy(vector, emb.Vector)

	return &Embedding{
		Vector:    vector,
		Dimension: emb.Dimension,
		Provider:  emb.Provider,
		Model:     emb.Model,
		Hash:      emb.Hash,
	}, true
}

// Set stores an embedding under its digest, evicting LRU entries at
// capacity.
func (c *HotCache) Set(hash string, emb *Embedding) {
	c.cache.Add(hash, emb)
}

// Len returns the current number of cached embeddings.
func (c *HotCache) Len() int {
	return c.cache.Len()
}

// Purge empties the hot cache.
func (c *HotCache) Purge() {
	c.cache.Purge()
}

// TextHash returns the cache key for a text: the digest of the exact
// string, shared with the persistent embedding cache.
func TextHash(text string) string {
	return contenthash.Text(text)
}

func validateText(text string) error {
	if text == "" {
		return ErrEmptyText
	}
	return nil
}

func validateBatch(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
