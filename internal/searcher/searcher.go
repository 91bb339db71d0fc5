// Package searcher answers semantic queries over the ingested corpus. The
// query is embedded through the same cached embedder the pipeline uses, so
// repeated queries cost nothing after the first, then ranked against the
// stored chunk vectors by cosine similarity.
package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Chenthemanl/corpusrag/internal/embedder"
	"github.com/Chenthemanl/corpusrag/internal/vectorstore"
)

const (
	// DefaultLimit is the result count when the request leaves it unset.
	DefaultLimit = 10

	// MaxLimit caps the result count per query.
	MaxLimit = 100

	// DefaultCacheTTL is how long a cached response stays valid.
	DefaultCacheTTL = 5 * time.Minute

	queryCacheSize = 500
)

// Request contains parameters for a search operation.
type Request struct {
	Query    string
	Limit    int
	UseCache bool
	CacheTTL time.Duration
}

// Result is one scored chunk with its source document resolved.
type Result struct {
	ChunkID      int64   `json:"chunk_id"`
	DocumentPath string  `json:"document_path"`
	ChunkIndex   int     `json:"chunk_index"`
	Content      string  `json:"content"`
	Similarity   float64 `json:"similarity"`
}

// Response contains search results and metadata.
type Response struct {
	Results      []Result      `json:"results"`
	TotalResults int           `json:"total_results"`
	Duration     time.Duration `json:"duration"`
	CacheHit     bool          `json:"cache_hit"`
}

// cacheEntry is a cached response with its expiration time.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Searcher runs vector queries against the store.
type Searcher struct {
	store    vectorstore.Store
	embedder *embedder.CachedEmbedder
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
}

// New creates a Searcher instance.
func New(store vectorstore.Store, emb *embedder.CachedEmbedder) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](queryCacheSize)
	if err != nil {
		// Only possible with a non-positive size
		panic(fmt.Sprintf("failed to create query cache: %v", err))
	}

	return &Searcher{
		store:    store,
		embedder: emb,
		cache:    cache,
	}
}

// Search embeds the query and returns the most similar chunks, best first.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	startTime := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if req.CacheTTL <= 0 {
		req.CacheTTL = DefaultCacheTTL
	}

	key := cacheKey(req)
	if req.UseCache {
		if cached := s.checkCache(key); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	queryVector, err := s.embedder.EmbedOne(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.store.SearchVector(ctx, queryVector, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results, err := s.hydrate(ctx, hits)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Results:      results,
		TotalResults: len(results),
		Duration:     time.Since(startTime),
	}

	if req.UseCache && len(results) > 0 {
		s.storeInCache(key, response, req.CacheTTL)
	}
	return response, nil
}

// hydrate resolves chunk IDs into full results with document paths.
func (s *Searcher) hydrate(ctx context.Context, hits []vectorstore.VectorResult) ([]Result, error) {
	results := make([]Result, 0, len(hits))
	docPaths := make(map[int64]string)

	for _, hit := range hits {
		chunk, err := s.store.GetChunk(ctx, hit.ChunkID)
		if err == vectorstore.ErrNotFound {
			// Chunk deleted between ranking and hydration; drop it
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load chunk %d: %w", hit.ChunkID, err)
		}

		path, ok := docPaths[chunk.DocumentID]
		if !ok {
			doc, err := s.store.GetDocumentByID(ctx, chunk.DocumentID)
			if err != nil {
				return nil, fmt.Errorf("failed to load document %d: %w", chunk.DocumentID, err)
			}
			path = doc.Path
			docPaths[chunk.DocumentID] = path
		}

		results = append(results, Result{
			ChunkID:      chunk.ID,
			DocumentPath: path,
			ChunkIndex:   chunk.ChunkIndex,
			Content:      chunk.Content,
			Similarity:   hit.Similarity,
		})
	}
	return results, nil
}

func cacheKey(req Request) [32]byte {
	return sha256.Sum256(fmt.Appendf(nil, "%s|%d", req.Query, req.Limit))
}

func (s *Searcher) checkCache(key [32]byte) *Response {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	entry, ok := s.cache.Get(key)
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}

	// Copy so the caller can't mutate the cached results
	cp := *entry.response
	cp.Results = append([]Result(nil), entry.response.Results...)
	return &cp
}

func (s *Searcher) storeInCache(key [32]byte, response *Response, ttl time.Duration) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache.Add(key, &cacheEntry{
		response:  response,
		expiresAt: time.Now().Add(ttl),
	})
}
