package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"golang.org/x/sync/errgroup"

	"github.com/Chenthemanl/corpusrag/internal/chunker"
	"github.com/Chenthemanl/corpusrag/internal/contenthash"
	"github.com/Chenthemanl/corpusrag/internal/embedder"
	"github.com/Chenthemanl/corpusrag/internal/tracker"
	"github.com/Chenthemanl/corpusrag/internal/vectorstore"
)

// ErrIngestInProgress is returned when a run is requested while another
// run holds the pipeline.
var ErrIngestInProgress = errors.New("ingest already in progress")

// corpusExtensions are the file types picked up by a corpus scan.
var corpusExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".rst":      true,
}

// Saver is implemented by the tracker and the embedding cache; the
// pipeline persists both once per run, not per file.
type Saver interface {
	Save() error
}

// Pipeline coordinates the ingestion flow: scan -> chunk -> embed -> store.
type Pipeline struct {
	tracker  *tracker.Tracker
	cache    Saver
	embedder *embedder.CachedEmbedder
	chunker  *chunker.Chunker
	store    vectorstore.Store

	workers int
	lock    runLock
}

// Config contains configuration for the pipeline.
type Config struct {
	Workers int // Concurrent workers for the change scan (default: runtime.NumCPU())
}

// Stats summarizes one ingest run.
type Stats struct {
	RunID              string        `json:"run_id"`
	FilesScanned       int           `json:"files_scanned"`
	FilesIngested      int           `json:"files_ingested"`
	FilesSkipped       int           `json:"files_skipped"`
	FilesFailed        int           `json:"files_failed"`
	ChunksCreated      int           `json:"chunks_created"`
	EmbeddingsComputed int           `json:"embeddings_computed"`
	CacheHits          int64         `json:"cache_hits"`
	CacheMisses        int64         `json:"cache_misses"`
	Duration           time.Duration `json:"duration"`
	Errors             []string      `json:"errors,omitempty"`
}

// New creates a Pipeline over the given components.
func New(tr *tracker.Tracker, cache Saver, emb *embedder.CachedEmbedder, ch *chunker.Chunker, store vectorstore.Store, cfg *Config) *Pipeline {
	workers := runtime.NumCPU()
	if cfg != nil && cfg.Workers > 0 {
		workers = cfg.Workers
	}
	return &Pipeline{
		tracker:  tr,
		cache:    cache,
		embedder: emb,
		chunker:  ch,
		store:    store,
		workers:  workers,
	}
}

// Run ingests every new or changed corpus file under root. With force set,
// tracking state is ignored and every discovered file is reprocessed.
//
// Only one run may execute at a time; concurrent calls fail fast with
// ErrIngestInProgress rather than corrupting the single-writer caches.
func (p *Pipeline) Run(ctx context.Context, root string, force bool) (*Stats, error) {
	if !p.lock.TryAcquire() {
		return nil, ErrIngestInProgress
	}
	defer p.lock.Release()

	startTime := time.Now()
	stats := &Stats{
		RunID:  uuid.NewString(),
		Errors: make([]string, 0),
	}

	files, err := discoverFiles(root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	stats.FilesScanned = len(files)

	candidates, err := p.scanForChanges(ctx, files, force)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for changes: %w", err)
	}
	stats.FilesSkipped = len(files) - len(candidates)

	hitsBefore, missesBefore := p.embedder.Counters()

	// Mutating phase is strictly sequential: the tracker, the embedding
	// cache and the store all assume a single writer.
	for _, path := range candidates {
		select {
		case <-ctx.Done():
			// Files ingested before the cancellation are already in the
			// store; persist their bookkeeping so the next run skips them.
			p.saveState()
			return nil, ctx.Err()
		default:
		}

		chunkCount, err := p.ingestFile(ctx, path)
		if err != nil {
			stats.FilesFailed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", path, err))
			golog.Errorf("ingest: %s: %v", path, err)
			continue
		}

		stats.FilesIngested++
		stats.ChunksCreated += chunkCount
		golog.Debugf("ingest: %s (%d chunks)", filepath.Base(path), chunkCount)
	}

	hitsAfter, missesAfter := p.embedder.Counters()
	stats.CacheHits = hitsAfter - hitsBefore
	stats.CacheMisses = missesAfter - missesBefore
	stats.EmbeddingsComputed = int(stats.CacheMisses)

	// One save per run keeps progress durable without rewriting the JSON
	// files after every document.
	if err := p.tracker.Save(); err != nil {
		return nil, fmt.Errorf("failed to save tracking state: %w", err)
	}
	if err := p.cache.Save(); err != nil {
		return nil, fmt.Errorf("failed to save embedding cache: %w", err)
	}

	stats.Duration = time.Since(startTime)
	golog.Infof("ingest run %s: %d ingested, %d skipped, %d failed in %s",
		stats.RunID, stats.FilesIngested, stats.FilesSkipped, stats.FilesFailed, stats.Duration)
	return stats, nil
}

// saveState persists the tracker and the embedding cache, logging rather
// than failing; it covers exits where the run error already decided the
// outcome.
func (p *Pipeline) saveState() {
	if err := p.tracker.Save(); err != nil {
		golog.Warnf("ingest: save tracking state: %v", err)
	}
	if err := p.cache.Save(); err != nil {
		golog.Warnf("ingest: save embedding cache: %v", err)
	}
}

// discoverFiles finds all corpus files under root, skipping hidden
// directories.
func discoverFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if corpusExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// scanForChanges filters files down to those needing ingestion. Hashing is
// the expensive part of the check, so it runs concurrently; the tracker is
// only read here.
func (p *Pipeline) scanForChanges(ctx context.Context, files []string, force bool) ([]string, error) {
	if force {
		return files, nil
	}

	needed := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			needed[i] = !p.tracker.IsProcessed(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(files))
	for i, path := range files {
		if needed[i] {
			candidates = append(candidates, path)
		}
	}
	return candidates, nil
}

// ingestFile processes one file end to end and returns its chunk count.
func (p *Pipeline) ingestFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	chunks, err := p.chunker.Split(string(content))
	if err != nil {
		return 0, fmt.Errorf("chunk file: %w", err)
	}

	// An empty or whitespace-only file is still marked processed so it is
	// not rescanned every run.
	if len(chunks) == 0 {
		p.tracker.MarkProcessed(path, 0)
		return 0, nil
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunker.Texts(chunks))
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	doc := &vectorstore.Document{
		Path:        path,
		ContentHash: contenthash.Text(string(content)),
		SizeBytes:   int64(len(content)),
		ChunkCount:  len(chunks),
	}
	if err := p.store.UpsertDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("store document: %w", err)
	}

	storeChunks := make([]*vectorstore.Chunk, len(chunks))
	for i, ch := range chunks {
		storeChunks[i] = &vectorstore.Chunk{
			ChunkIndex:    ch.Index,
			Content:       ch.Content,
			ContentHash:   ch.ContentHash,
			TokenEstimate: ch.TokenEstimate,
		}
	}
	if err := p.store.ReplaceChunks(ctx, doc.ID, storeChunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	for i, ch := range storeChunks {
		emb := &vectorstore.Embedding{
			ChunkID:   ch.ID,
			Vector:    vectors[i],
			Dimension: len(vectors[i]),
			Provider:  p.embedder.Provider(),
			Model:     p.embedder.Model(),
		}
		if err := p.store.InsertEmbedding(ctx, emb); err != nil {
			return 0, fmt.Errorf("store embedding for chunk %d: %w", ch.ChunkIndex, err)
		}
	}

	p.tracker.MarkProcessed(path, len(chunks))
	return len(chunks), nil
}
