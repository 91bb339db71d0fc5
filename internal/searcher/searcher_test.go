package searcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chenthemanl/corpusrag/internal/contenthash"
	"github.com/Chenthemanl/corpusrag/internal/embedcache"
	"github.com/Chenthemanl/corpusrag/internal/embedder"
	"github.com/Chenthemanl/corpusrag/internal/vectorstore"
)

func setupSearcher(t *testing.T) (*Searcher, *embedder.CachedEmbedder, vectorstore.Store) {
	store, err := vectorstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	local, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)
	cache := embedcache.New(filepath.Join(t.TempDir(), "cache.json"))
	cached := embedder.NewCachedEmbedder(local, cache)

	return New(store, cached), cached, store
}

// seedChunk stores one document with a single embedded chunk.
func seedChunk(t *testing.T, store vectorstore.Store, emb *embedder.CachedEmbedder, path, content string) int64 {
	ctx := context.Background()

	doc := &vectorstore.Document{
		Path:        path,
		ContentHash: contenthash.Text(content),
		ChunkCount:  1,
	}
	require.NoError(t, store.UpsertDocument(ctx, doc))

	chunks := []*vectorstore.Chunk{
		{ChunkIndex: 0, Content: content, ContentHash: contenthash.Text(content)},
	}
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, chunks))

	vec, err := emb.EmbedOne(ctx, content)
	require.NoError(t, err)
	require.NoError(t, store.InsertEmbedding(ctx, &vectorstore.Embedding{
		ChunkID:   chunks[0].ID,
		Vector:    vec,
		Dimension: len(vec),
		Provider:  emb.Provider(),
		Model:     emb.Model(),
	}))

	return chunks[0].ID
}

func TestSearch_ExactMatchRanksFirst(t *testing.T) {
	s, emb, store := setupSearcher(t)

	target := seedChunk(t, store, emb, "/corpus/a.md", "caching embeddings for retrieval")
	seedChunk(t, store, emb, "/corpus/b.md", "an unrelated passage about sailing")

	resp, err := s.Search(context.Background(), Request{
		Query: "caching embeddings for retrieval",
		Limit: 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	// Identical text embeds identically under the deterministic provider
	assert.Equal(t, target, resp.Results[0].ChunkID)
	assert.InDelta(t, 1.0, resp.Results[0].Similarity, 1e-6)
	assert.Equal(t, "/corpus/a.md", resp.Results[0].DocumentPath)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s, _, _ := setupSearcher(t)

	_, err := s.Search(context.Background(), Request{Query: "   "})
	assert.Error(t, err)
}

func TestSearch_LimitDefaultsAndCaps(t *testing.T) {
	s, emb, store := setupSearcher(t)
	seedChunk(t, store, emb, "/corpus/a.md", "some content")

	resp, err := s.Search(context.Background(), Request{Query: "some content"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalResults)

	// A huge limit is capped, not rejected
	resp, err = s.Search(context.Background(), Request{Query: "some content", Limit: 10000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalResults)
}

func TestSearch_EmptyIndex(t *testing.T) {
	s, _, _ := setupSearcher(t)

	resp, err := s.Search(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalResults)
}

func TestSearch_QueryCache(t *testing.T) {
	s, emb, store := setupSearcher(t)
	seedChunk(t, store, emb, "/corpus/a.md", "cached query content")

	req := Request{Query: "cached query content", UseCache: true, CacheTTL: time.Minute}

	first, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.TotalResults, second.TotalResults)
}

func TestSearch_QueryCacheExpires(t *testing.T) {
	s, emb, store := setupSearcher(t)
	seedChunk(t, store, emb, "/corpus/a.md", "expiring entry")

	req := Request{Query: "expiring entry", UseCache: true, CacheTTL: time.Nanosecond}

	_, err := s.Search(context.Background(), req)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	resp, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}

func TestSearch_QueryEmbeddingReused(t *testing.T) {
	s, emb, store := setupSearcher(t)
	seedChunk(t, store, emb, "/corpus/a.md", "some indexed content")

	_, err := s.Search(context.Background(), Request{Query: "novel query"})
	require.NoError(t, err)
	_, misses1 := emb.Counters()

	_, err = s.Search(context.Background(), Request{Query: "novel query"})
	require.NoError(t, err)
	_, misses2 := emb.Counters()

	// Second search hits the persistent embedding cache for the query
	assert.Equal(t, misses1, misses2)
}
