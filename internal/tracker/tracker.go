// Package tracker records which corpus files have been ingested so
// unchanged files are not chunked and embedded again. Entries are keyed by
// file path and validated against the file's current content hash, so a
// stale mtime or a touched-but-identical file never forces a reingest,
// while any byte change does.
//
// The backing store is a single JSON file rewritten whole on Save. The
// tracker is not safe for concurrent use; one ingest run owns it at a time.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kataras/golog"

	"github.com/Chenthemanl/corpusrag/internal/contenthash"
	"github.com/Chenthemanl/corpusrag/internal/jsonfile"
)

// Record describes one ingested file at the time it was last processed.
type Record struct {
	Hash        string    `json:"hash"`
	ProcessedAt time.Time `json:"processed_at"`
	Chunks      int       `json:"chunks"`
	FileSize    int64     `json:"file_size"`
}

// Stats summarizes the tracker contents for status reporting.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	TotalChunks    int    `json:"total_chunks"`
	TrackingFile   string `json:"tracking_file"`
}

// trackingData is the on-disk layout of the backing file.
type trackingData struct {
	Documents   map[string]Record `json:"documents"`
	LastUpdated time.Time         `json:"last_updated"`
}

// Tracker is an in-memory map of processed files mirrored to a JSON file.
type Tracker struct {
	path string
	docs map[string]Record
}

// New loads the tracker from its backing file. A missing or corrupt file
// degrades to an empty tracker with a logged warning; construction never
// fails on load problems.
func New(path string) *Tracker {
	t := &Tracker{
		path: path,
		docs: make(map[string]Record),
	}
	t.load()
	return t
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			golog.Warnf("tracker: could not read %s, starting empty: %v", t.path, err)
		}
		return
	}

	var stored trackingData
	if err := json.Unmarshal(data, &stored); err != nil {
		golog.Warnf("tracker: corrupt tracking file %s, starting empty: %v", t.path, err)
		return
	}
	if stored.Documents != nil {
		t.docs = stored.Documents
	}
}

// IsProcessed reports whether the file at path has already been ingested
// with its current contents. It recomputes the file's hash on every call,
// so the cost is O(file size), not O(1).
//
// An unreadable file always reports false: reprocessing is the fail-open
// direction, silently skipping is not.
func (t *Tracker) IsProcessed(path string) bool {
	rec, ok := t.docs[path]
	if !ok {
		return false
	}

	current, _, err := contenthash.File(path)
	if err != nil {
		golog.Warnf("tracker: could not hash %s, treating as unprocessed: %v", path, err)
		return false
	}
	if current != rec.Hash {
		golog.Debugf("tracker: %s changed since last ingest", filepath.Base(path))
		return false
	}
	return true
}

// MarkProcessed records the file's current hash, size and the current time
// under path, overwriting any prior entry. It does not persist; call Save
// after a batch of marks to make progress durable.
func (t *Tracker) MarkProcessed(path string, chunkCount int) {
	hash, size, err := contenthash.File(path)
	if err != nil {
		// The entry is still written so the ingest run's bookkeeping is
		// complete, but with an empty hash it can never validate and the
		// file will be reprocessed next run.
		golog.Warnf("tracker: could not hash %s while marking processed: %v", path, err)
	}

	t.docs[path] = Record{
		Hash:        hash,
		ProcessedAt: time.Now(),
		Chunks:      chunkCount,
		FileSize:    size,
	}
}

// Save rewrites the backing file with the full map and a fresh
// last_updated stamp. On failure the in-memory state is untouched; the
// caller keeps an accurate view, it is just not durable yet.
func (t *Tracker) Save() error {
	data := trackingData{
		Documents:   t.docs,
		LastUpdated: time.Now(),
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("tracker: encode tracking data: %w", err)
	}
	if err := jsonfile.WriteAtomic(t.path, encoded); err != nil {
		return fmt.Errorf("tracker: write %s: %w", t.path, err)
	}
	return nil
}

// Stats returns the document and chunk totals currently tracked.
func (t *Tracker) Stats() Stats {
	totalChunks := 0
	for _, rec := range t.docs {
		totalChunks += rec.Chunks
	}
	return Stats{
		TotalDocuments: len(t.docs),
		TotalChunks:    totalChunks,
		TrackingFile:   t.path,
	}
}

// Clear empties the tracker and persists the empty state immediately.
func (t *Tracker) Clear() error {
	t.docs = make(map[string]Record)
	return t.Save()
}
