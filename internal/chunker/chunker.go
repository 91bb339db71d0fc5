// Package chunker splits document text into overlapping chunks sized for
// the embedding providers. Splitting is delegated to the langchaingo
// recursive-character splitter, which prefers paragraph and sentence
// boundaries before falling back to hard cuts.
package chunker

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/Chenthemanl/corpusrag/internal/contenthash"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters shared between
	// adjacent chunks.
	DefaultChunkOverlap = 200

	// tokensPerChar is the heuristic for estimating tokens (chars/4).
	tokensPerChar = 4
)

// Chunk is one split of a document, with the digest used as its
// embedding-cache key. The digest is over the exact chunk text, so a
// change in chunking parameters changes the digests and invalidates the
// cached embeddings for re-split documents.
type Chunk struct {
	Index         int
	Content       string
	ContentHash   string
	TokenEstimate int
}

// Config controls chunk sizing.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// Chunker splits text into chunks.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// New creates a Chunker. Zero config fields fall back to defaults.
func New(cfg Config) *Chunker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = DefaultChunkOverlap
		if cfg.ChunkOverlap >= cfg.ChunkSize {
			cfg.ChunkOverlap = cfg.ChunkSize / 5
		}
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
	}
}

// Split breaks text into chunks. Blank input yields no chunks and no
// error.
func (c *Chunker) Split(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Index:         len(chunks),
			Content:       part,
			ContentHash:   contenthash.Text(part),
			TokenEstimate: len(part) / tokensPerChar,
		})
	}
	return chunks, nil
}

// Texts returns just the chunk contents, in order, for batch embedding.
func Texts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	return texts
}
