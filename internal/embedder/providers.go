package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Provider configuration
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderLocal  = "local"

	// Environment variables consulted by the factory
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	// Default models
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultGeminiModel = "embedding-001"

	// Dimensions
	OpenAIDimension = 1536
	GeminiDimension = 768
	LocalDimension  = 384

	// Batch limits
	MaxBatchSize = 100

	// Retry configuration
	maxRetries        = 3
	initialBackoff    = 100 * time.Millisecond
	maxBackoff        = 5 * time.Second
	backoffMultiplier = 2.0
)

// OpenAIProvider implements Embedder on the OpenAI embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	hot    *HotCache
}

// NewOpenAIProvider creates an OpenAI embedder. The key falls back to the
// OPENAI_API_KEY environment variable.
func NewOpenAIProvider(apiKey string, hot *HotCache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}

	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  DefaultOpenAIModel,
		hot:    hot,
	}, nil
}

func (o *OpenAIProvider) EmbedOne(ctx context.Context, text string) (*Embedding, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	if o.hot != nil {
		if emb, ok := o.hot.Get(TextHash(text)); ok {
			return emb, nil
		}
	}

	batch, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}
	return batch[0], nil
}

func (o *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([]*Embedding, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	cfg := DefaultRetryConfig()
	embeddings, err := retryWithBackoff(ctx, cfg, func() ([]*Embedding, error) {
		return o.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrProviderFailed, cfg.MaxAttempts, err)
	}

	if o.hot != nil {
		for i, emb := range embeddings {
			emb.Hash = TextHash(texts[i])
			o.hot.Set(emb.Hash, emb)
		}
	}

	return embeddings, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([]*Embedding, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	embeddings := make([]*Embedding, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = &Embedding{
			Vector:    data.Embedding,
			Dimension: len(data.Embedding),
			Provider:  ProviderOpenAI,
			Model:     o.model,
		}
	}
	return embeddings, nil
}

func (o *OpenAIProvider) Dimension() int   { return OpenAIDimension }
func (o *OpenAIProvider) Provider() string { return ProviderOpenAI }
func (o *OpenAIProvider) Model() string    { return o.model }
func (o *OpenAIProvider) Close() error     { return nil }

// GeminiProvider implements Embedder on the Google Generative Language
// API's batchEmbedContents endpoint.
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	hot        *HotCache
}

// NewGeminiProvider creates a Gemini embedder. The key falls back to the
// GEMINI_API_KEY environment variable.
func NewGeminiProvider(apiKey string, hot *HotCache) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvGeminiAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvGeminiAPIKey)
	}

	return &GeminiProvider{
		apiKey:  apiKey,
		model:   DefaultGeminiModel,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		hot: hot,
	}, nil
}

func (g *GeminiProvider) EmbedOne(ctx context.Context, text string) (*Embedding, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	if g.hot != nil {
		if emb, ok := g.hot.Get(TextHash(text)); ok {
			return emb, nil
		}
	}

	batch, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}
	return batch[0], nil
}

func (g *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([]*Embedding, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	cfg := DefaultRetryConfig()
	embeddings, err := retryWithBackoff(ctx, cfg, func() ([]*Embedding, error) {
		return g.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrProviderFailed, cfg.MaxAttempts, err)
	}

	if g.hot != nil {
		for i, emb := range embeddings {
			emb.Hash = TextHash(texts[i])
			g.hot.Set(emb.Hash, emb)
		}
	}

	return embeddings, nil
}

func (g *GeminiProvider) callAPI(ctx context.Context, texts []string) ([]*Embedding, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Parts []part `json:"parts"`
	}
	type embedRequest struct {
		Model   string  `json:"model"`
		Content content `json:"content"`
	}

	reqBody := struct {
		Requests []embedRequest `json:"requests"`
	}{Requests: make([]embedRequest, len(texts))}

	for i, text := range texts {
		reqBody.Requests[i] = embedRequest{
			Model:   "models/" + g.model,
			Content: content{Parts: []part{{Text: text}}},
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(apiResp.Embeddings), len(texts))
	}

	embeddings := make([]*Embedding, len(apiResp.Embeddings))
	for i, data := range apiResp.Embeddings {
		embeddings[i] = &Embedding{
			Vector:    data.Values,
			Dimension: len(data.Values),
			Provider:  ProviderGemini,
			Model:     g.model,
		}
	}
	return embeddings, nil
}

func (g *GeminiProvider) Dimension() int   { return GeminiDimension }
func (g *GeminiProvider) Provider() string { return ProviderGemini }
func (g *GeminiProvider) Model() string    { return g.model }

func (g *GeminiProvider) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

// NormalizeVector scales a vector to unit length for cosine similarity.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}
