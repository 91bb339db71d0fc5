package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Chenthemanl/corpusrag/internal/chunker"
	"github.com/Chenthemanl/corpusrag/internal/embedcache"
	"github.com/Chenthemanl/corpusrag/internal/embedder"
	"github.com/Chenthemanl/corpusrag/internal/ingest"
	"github.com/Chenthemanl/corpusrag/internal/tracker"
	"github.com/Chenthemanl/corpusrag/internal/vectorstore"
)

// embedprobe exercises the full ingest path against a throwaway corpus.
// It is a diagnostic, not part of the server: run it to verify that the
// configured provider produces vectors and that they land in the store
// and the embedding cache.
func main() {
	fmt.Println("Probing embedding integration...")

	tmpDir, err := os.MkdirTemp("", "corpusrag-probe-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	corpus := filepath.Join(tmpDir, "corpus")
	if err := os.MkdirAll(corpus, 0o755); err != nil {
		log.Fatalf("Failed to create corpus dir: %v", err)
	}

	sample := `Retrieval-augmented generation grounds model answers in a document
corpus. The ingest pipeline splits each document into overlapping chunks,
embeds the chunks, and stores the vectors for similarity search.

Chunks are cached by content digest, so re-ingesting an unchanged corpus
performs no embedding work at all.
`
	if err := os.WriteFile(filepath.Join(corpus, "sample.md"), []byte(sample), 0o644); err != nil {
		log.Fatalf("Failed to write sample document: %v", err)
	}

	store, err := vectorstore.NewSQLiteStore(":memory:")
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	provider, err := embedder.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	fmt.Printf("Provider: %s (%s, %d dimensions)\n",
		provider.Provider(), provider.Model(), provider.Dimension())

	tr := tracker.New(filepath.Join(tmpDir, "tracking.json"))
	cache := embedcache.New(filepath.Join(tmpDir, "cache.json"))
	cached := embedder.NewCachedEmbedder(provider, cache)

	pipe := ingest.New(tr, cache, cached, chunker.New(chunker.Config{}), store, nil)

	ctx := context.Background()
	stats, err := pipe.Run(ctx, corpus, false)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}

	fmt.Printf("\nIngest Statistics:\n")
	fmt.Printf("  Files Ingested: %d\n", stats.FilesIngested)
	fmt.Printf("  Files Failed: %d\n", stats.FilesFailed)
	fmt.Printf("  Chunks Created: %d\n", stats.ChunksCreated)
	fmt.Printf("  Cache Hits: %d\n", stats.CacheHits)
	fmt.Printf("  Cache Misses: %d\n", stats.CacheMisses)
	fmt.Printf("  Duration: %v\n", stats.Duration)

	for _, msg := range stats.Errors {
		fmt.Printf("  error: %s\n", msg)
	}

	status, err := store.Status(ctx)
	if err != nil {
		log.Fatalf("Failed to read status: %v", err)
	}

	fmt.Printf("\nVerification:\n")
	fmt.Printf("  Embeddings in DB: %d\n", status.TotalEmbeddings)
	fmt.Printf("  Embeddings in cache: %d\n", cache.Len())

	if status.TotalEmbeddings == 0 {
		fmt.Println("\nFAILURE: no embeddings were stored")
		os.Exit(1)
	}

	// A second run over the unchanged corpus must do no embedding work
	stats2, err := pipe.Run(ctx, corpus, false)
	if err != nil {
		log.Fatalf("Second ingest failed: %v", err)
	}
	if stats2.FilesIngested != 0 {
		fmt.Println("\nFAILURE: unchanged corpus was reprocessed")
		os.Exit(1)
	}

	fmt.Println("\nSUCCESS: embeddings generated, stored and cached")
}
