package vectorstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("not found")
)

// Document is one corpus file whose chunks live in the index.
type Document struct {
	ID          int64
	Path        string
	ContentHash string
	SizeBytes   int64
	ChunkCount  int
	IngestedAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Chunk is one stored split of a document.
type Chunk struct {
	ID            int64
	DocumentID    int64
	ChunkIndex    int
	Content       string
	ContentHash   string
	TokenEstimate int
}

// Embedding is the stored vector for one chunk.
type Embedding struct {
	ChunkID   int64
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
}

// VectorResult is one similarity hit, best first.
type VectorResult struct {
	ChunkID    int64
	Similarity float64
}

// Status summarizes the index for reporting.
type Status struct {
	TotalDocuments  int    `json:"total_documents"`
	TotalChunks     int    `json:"total_chunks"`
	TotalEmbeddings int    `json:"total_embeddings"`
	DBPath          string `json:"db_path"`
}

// Store persists documents, chunks and their embeddings and answers
// similarity queries over them.
type Store interface {
	// UpsertDocument inserts or refreshes the record for doc.Path and
	// sets doc.ID.
	UpsertDocument(ctx context.Context, doc *Document) error

	// GetDocument looks a document up by path.
	GetDocument(ctx context.Context, path string) (*Document, error)

	// GetDocumentByID looks a document up by ID.
	GetDocumentByID(ctx context.Context, id int64) (*Document, error)

	// ReplaceChunks atomically swaps the stored chunks for a document:
	// old chunks (and their embeddings, via cascade) are deleted and the
	// new ones inserted. Chunk IDs are set on the passed slice.
	ReplaceChunks(ctx context.Context, documentID int64, chunks []*Chunk) error

	// GetChunk returns one chunk by ID.
	GetChunk(ctx context.Context, id int64) (*Chunk, error)

	// ListChunks returns a document's chunks in chunk order.
	ListChunks(ctx context.Context, documentID int64) ([]*Chunk, error)

	// InsertEmbedding stores the vector for a chunk, replacing any prior
	// vector.
	InsertEmbedding(ctx context.Context, emb *Embedding) error

	// SearchVector returns up to limit chunks ranked by cosine
	// similarity to the query vector.
	SearchVector(ctx context.Context, vector []float32, limit int) ([]VectorResult, error)

	// Status reports index totals.
	Status(ctx context.Context) (*Status, error)

	// Close releases the underlying database.
	Close() error
}
