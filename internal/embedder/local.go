package embedder

import (
	"context"
	"crypto/sha256"
	"fmt"
)

// LocalProvider embeds without any external service by deriving a
// deterministic pseudo-vector from the text's hash. It keeps the pipeline
// runnable offline and gives tests embeddings that are stable across runs.
type LocalProvider struct {
	model string
	hot   *HotCache
}

// NewLocalProvider creates a local deterministic embedder.
func NewLocalProvider(hot *HotCache) (*LocalProvider, error) {
	return &LocalProvider{
		model: "local-hash-embeddings",
		hot:   hot,
	}, nil
}

func (l *LocalProvider) EmbedOne(ctx context.Context, text string) (*Embedding, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	hash := TextHash(text)
	if l.hot != nil {
		if emb, ok := l.hot.Get(hash); ok {
			return emb, nil
		}
	}

	// Stretch the 32 hash bytes across the vector, normalized to [0, 1].
	sum := sha256.Sum256([]byte(text))
	vector := make([]float32, LocalDimension)
	for i := 0; i < LocalDimension; i++ {
		vector[i] = float32(sum[i%len(sum)]) / 255.0
	}

	emb := &Embedding{
		Vector:    NormalizeVector(vector),
		Dimension: LocalDimension,
		Provider:  ProviderLocal,
		Model:     l.model,
		Hash:      hash,
	}

	if l.hot != nil {
		l.hot.Set(hash, emb)
	}
	return emb, nil
}

func (l *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([]*Embedding, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}

	embeddings := make([]*Embedding, len(texts))
	for i, text := range texts {
		emb, err := l.EmbedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

func (l *LocalProvider) Dimension() int   { return LocalDimension }
func (l *LocalProvider) Provider() string { return ProviderLocal }
func (l *LocalProvider) Model() string    { return l.model }
func (l *LocalProvider) Close() error     { return nil }
