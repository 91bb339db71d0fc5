// Package embedder generates vector embeddings for document chunks.
//
// It provides the provider abstraction (OpenAI, Gemini, or a deterministic
// local fallback), retry with exponential backoff for the HTTP providers,
// an in-process LRU hot cache, and CachedEmbedder, which layers the
// persistent flat-file cache from internal/embedcache over any provider.
//
// # Basic Usage
//
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	cached := embedder.NewCachedEmbedder(emb, persistentCache)
//	vectors, err := cached.EmbedBatch(ctx, chunkTexts)
//
// # Provider Selection
//
// NewFromEnv picks a provider from the environment:
//
//  1. CORPUSRAG_EMBEDDING_PROVIDER if set (openai, gemini, local)
//  2. GEMINI_API_KEY present: Gemini (the corpus was originally embedded
//     with Gemini embedding-001, so cached vectors line up)
//  3. OPENAI_API_KEY present: OpenAI text-embedding-3-small
//  4. Otherwise the local hash-based provider (offline mode)
//
// # Caching Layers
//
// Two caches with different lifetimes sit in front of the providers. The
// hot cache is a bounded in-memory LRU inside each provider; it absorbs
// repeated lookups within one run and evicts under pressure. The
// persistent cache consulted by CachedEmbedder is the durable flat-file
// map keyed by text digest; it is what makes reingesting an unchanged
// corpus free. Both key off the digest of the exact text, so identical
// chunks share entries across documents.
//
// # Error Handling
//
// HTTP provider calls retry up to three times with exponential backoff;
// what still fails wraps ErrProviderFailed. CachedEmbedder adds no retry
// of its own: provider errors propagate unchanged to the ingestion driver.
package embedder
