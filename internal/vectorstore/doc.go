// Package vectorstore provides SQLite-based persistence for the chunk index.
//
// The store manages:
//   - Document metadata (path, content hash, size, chunk count)
//   - Chunk text and per-chunk content hashes
//   - Vector embeddings
//
// # Database Schema
//
// Tables:
//   - documents: One row per ingested corpus file
//   - chunks: Document splits, unique per (document_id, chunk_index)
//   - embeddings: One vector BLOB per chunk
//   - schema_version: Applied migration versions
//
// # Basic Usage
//
//	store, err := vectorstore.NewSQLiteStore("~/.corpusrag/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	doc := &vectorstore.Document{Path: path, ContentHash: hash}
//	err = store.UpsertDocument(ctx, doc)
//
//	err = store.ReplaceChunks(ctx, doc.ID, chunks)
//	for _, ch := range chunks {
//	    store.InsertEmbedding(ctx, &vectorstore.Embedding{
//	        ChunkID: ch.ID,
//	        Vector:  vectors[ch.ChunkIndex],
//	    })
//	}
//
// # Vector Search
//
//	results, err := store.SearchVector(ctx, queryVector, 10)
//	for _, r := range results {
//	    fmt.Printf("chunk %d: %.3f\n", r.ChunkID, r.Similarity)
//	}
//
// Vector search uses cosine similarity via the sqlite-vec extension (CGO
// build) or a pure Go implementation (purego build).
//
// # Build Tags
//
// CGO Build (sqlite_vec tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Includes sqlite-vec extension for fast vector operations
//
//   - Requires C compiler
//
//     CGO_ENABLED=1 go build -tags "sqlite_vec"
//
// Pure Go Build (purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - Pure Go vector operations (slower)
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
//
// # Incremental Updates
//
// ReplaceChunks swaps a document's chunks atomically inside a transaction;
// the old chunks' embeddings are removed via ON DELETE CASCADE, so a
// re-ingested document never leaves stale vectors behind.
package vectorstore
