// Package ingest coordinates the corpus ingestion pipeline.
//
// A run walks the corpus root for text documents, filters out files whose
// content hash already matches the tracking state, then processes each
// remaining file in sequence: read, chunk, embed (through the persistent
// embedding cache), and store the document, chunks and vectors.
//
// # Phases
//
// The change scan is read-only and runs concurrently; hashing dominates
// its cost. The mutating phase is sequential because the tracker and the
// embedding cache are single-writer structures. An atomic run lock rejects
// overlapping runs with ErrIngestInProgress instead of queueing them.
//
// # Durability
//
// Tracking state and the embedding cache are saved once at the end of a
// successful run, and again on context cancellation so files completed
// before a shutdown are not rescanned. A crash mid-run loses only
// bookkeeping: the affected files simply reprocess on the next run.
//
// # Usage
//
//	pipe := ingest.New(tracker, cache, cachedEmbedder, chunker, store, nil)
//	stats, err := pipe.Run(ctx, "/corpus", false)
//	if err != nil {
//	    return err
//	}
//	golog.Infof("ingested %d files, %d chunks", stats.FilesIngested, stats.ChunksCreated)
package ingest
