package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore implements Store on SQLite. Which driver backs it depends on
// the build tags; see build_cgo.go and build_purego.go.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// openDatabase opens a SQLite database with appropriate settings.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for better read concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens (creating if needed) the index database at dbPath
// and brings its schema up to date.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Document operations

func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc *Document) error {
	now := time.Now()
	query := `
		INSERT INTO documents (path, content_hash, size_bytes, chunk_count, ingested_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		doc.Path, doc.ContentHash, doc.SizeBytes, doc.ChunkCount, now, now, now); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	// The upsert path doesn't report the row ID on conflict; read it back.
	var id int64
	if err := s.db.QueryRowContext(ctx, "SELECT id FROM documents WHERE path = ?", doc.Path).Scan(&id); err != nil {
		return fmt.Errorf("failed to read back document id: %w", err)
	}
	doc.ID = id
	doc.IngestedAt = now
	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, path string) (*Document, error) {
	return s.getDocument(ctx, "path = ?", path)
}

func (s *SQLiteStore) GetDocumentByID(ctx context.Context, id int64) (*Document, error) {
	return s.getDocument(ctx, "id = ?", id)
}

func (s *SQLiteStore) getDocument(ctx context.Context, where string, arg interface{}) (*Document, error) {
	query := `
		SELECT id, path, content_hash, size_bytes, chunk_count, ingested_at, created_at, updated_at
		FROM documents
		WHERE ` + where
	var doc Document
	var ingestedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&doc.ID, &doc.Path, &doc.ContentHash, &doc.SizeBytes, &doc.ChunkCount,
		&ingestedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ingestedAt.Valid {
		doc.IngestedAt = ingestedAt.Time
	}
	return &doc, nil
}

// Chunk operations

func (s *SQLiteStore) ReplaceChunks(ctx context.Context, documentID int64, chunks []*Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Embeddings go with the chunks via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}

	insert := `
		INSERT INTO chunks (document_id, chunk_index, content, content_hash, token_estimate)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, ch := range chunks {
		result, err := tx.ExecContext(ctx, insert,
			documentID, ch.ChunkIndex, ch.Content, ch.ContentHash, ch.TokenEstimate)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", ch.ChunkIndex, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		ch.ID = id
		ch.DocumentID = documentID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetChunk(ctx context.Context, id int64) (*Chunk, error) {
	query := `
		SELECT id, document_id, chunk_index, content, content_hash, token_estimate
		FROM chunks
		WHERE id = ?
	`
	var ch Chunk
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ch.ID, &ch.DocumentID, &ch.ChunkIndex, &ch.Content, &ch.ContentHash, &ch.TokenEstimate,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *SQLiteStore) ListChunks(ctx context.Context, documentID int64) ([]*Chunk, error) {
	query := `
		SELECT id, document_id, chunk_index, content, content_hash, token_estimate
		FROM chunks
		WHERE document_id = ?
		ORDER BY chunk_index
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []*Chunk
	for rows.Next() {
		var ch Chunk
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.ChunkIndex, &ch.Content, &ch.ContentHash, &ch.TokenEstimate); err != nil {
			return nil, err
		}
		chunks = append(chunks, &ch)
	}
	return chunks, rows.Err()
}

// Embedding operations

func (s *SQLiteStore) InsertEmbedding(ctx context.Context, emb *Embedding) error {
	query := `
		INSERT INTO embeddings (chunk_id, vector, dimension, provider, model)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model
	`
	if _, err := s.db.ExecContext(ctx, query,
		emb.ChunkID, serializeVector(emb.Vector), emb.Dimension, emb.Provider, emb.Model); err != nil {
		return fmt.Errorf("failed to insert embedding: %w", err)
	}
	return nil
}

// Search operations

func (s *SQLiteStore) SearchVector(ctx context.Context, vector []float32, limit int) ([]VectorResult, error) {
	return searchVector(ctx, s.db, vector, limit)
}

// Status operations

func (s *SQLiteStore) Status(ctx context.Context) (*Status, error) {
	status := &Status{DBPath: s.dbPath}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&status.TotalDocuments); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&status.TotalChunks); err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&status.TotalEmbeddings); err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return status, nil
}
