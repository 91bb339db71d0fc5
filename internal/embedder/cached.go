package embedder

import (
	"context"
	"fmt"
)

// PersistentCache is the read-through store CachedEmbedder consults before
// calling the provider. The flat-file cache in internal/embedcache is the
// production implementation.
type PersistentCache interface {
	Get(text string) ([]float32, bool)
	Add(text string, vector []float32)
}

// CachedEmbedder wraps a provider with the persistent embedding cache.
// Every embed request reads through the cache; only misses reach the
// provider, and new vectors are backfilled so the next run skips them.
//
// Not safe for concurrent use: the cache map is mutated without locking,
// which is fine under the sequential ingestion this pipeline runs.
type CachedEmbedder struct {
	provider  Embedder
	cache     PersistentCache
	batchSize int

	hits   int64
	misses int64
}

// NewCachedEmbedder wraps provider with cache. Provider calls are capped
// at MaxBatchSize texts each; SetBatchSize lowers the cap.
func NewCachedEmbedder(provider Embedder, cache PersistentCache) *CachedEmbedder {
	return &CachedEmbedder{
		provider:  provider,
		cache:     cache,
		batchSize: MaxBatchSize,
	}
}

// SetBatchSize caps the number of texts sent to the provider per call.
// Values outside (0, MaxBatchSize] are clamped to MaxBatchSize.
func (e *CachedEmbedder) SetBatchSize(n int) {
	if n <= 0 || n > MaxBatchSize {
		n = MaxBatchSize
	}
	e.batchSize = n
}

// EmbedBatch returns one vector per input text, in input order. Cached
// texts are served from the cache; provider calls cover only the
// deduplicated uncached subset, split into groups of at most the
// configured batch size, and their results are backfilled. A document
// with more uncached chunks than the provider accepts per call embeds
// across several calls instead of failing.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))

	// Partition while preserving order. pending maps an uncached text to
	// every position it occupies, so duplicate inputs cost one provider
	// slot, not two.
	var uncached []string
	pending := make(map[string][]int)

	for i, text := range texts {
		if vec, ok := e.cache.Get(text); ok {
			out[i] = vec
			e.hits++
			continue
		}
		e.misses++
		if _, seen := pending[text]; !seen {
			uncached = append(uncached, text)
		}
		pending[text] = append(pending[text], i)
	}

	if len(uncached) == 0 {
		return out, nil
	}

	// Batched provider calls for the misses, each within the provider's
	// per-call limit. Provider errors propagate unchanged; there is no
	// retry at this layer.
	for start := 0; start < len(uncached); start += e.batchSize {
		end := min(start+e.batchSize, len(uncached))
		group := uncached[start:end]

		fresh, err := e.provider.EmbedBatch(ctx, group)
		if err != nil {
			return nil, err
		}
		if len(fresh) != len(group) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrProviderFailed, len(fresh), len(group))
		}

		for i, text := range group {
			vec := fresh[i].Vector
			e.cache.Add(text, vec)
			for _, pos := range pending[text] {
				out[pos] = vec
			}
		}
	}

	return out, nil
}

// EmbedOne is the single-text path: cache check, provider on miss,
// backfill.
func (e *CachedEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	if vec, ok := e.cache.Get(text); ok {
		e.hits++
		return vec, nil
	}
	e.misses++

	emb, err := e.provider.EmbedOne(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Add(text, emb.Vector)
	return emb.Vector, nil
}

// Counters returns the cache hit/miss totals accumulated so far.
func (e *CachedEmbedder) Counters() (hits, misses int64) {
	return e.hits, e.misses
}

// Dimension reports the wrapped provider's vector dimensionality.
func (e *CachedEmbedder) Dimension() int { return e.provider.Dimension() }

// Provider reports the wrapped provider's name.
func (e *CachedEmbedder) Provider() string { return e.provider.Provider() }

// Model reports the wrapped provider's model.
func (e *CachedEmbedder) Model() string { return e.provider.Model() }
