package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds provider configuration.
type Config struct {
	Provider     string
	APIKey       string
	HotCacheSize int
}

// New creates an embedder with explicit configuration.
func New(cfg Config) (Embedder, error) {
	var hot *HotCache
	if cfg.HotCacheSize > 0 {
		hot = NewHotCache(cfg.HotCacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, hot)
	case ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, hot)
	case ProviderLocal:
		return NewLocalProvider(hot)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUnsupportedModel, cfg.Provider)
	}
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. CORPUSRAG_EMBEDDING_PROVIDER (openai, gemini, local)
//  2. Available API keys: GEMINI_API_KEY, then OPENAI_API_KEY
//  3. The local provider if nothing is configured
func NewFromEnv() (Embedder, error) {
	provider := os.Getenv("CORPUSRAG_EMBEDDING_PROVIDER")
	geminiKey := os.Getenv(EnvGeminiAPIKey)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)

	hot := NewHotCache(10000)

	if provider != "" {
		switch strings.ToLower(provider) {
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey, hot)
		case ProviderGemini:
			return NewGeminiProvider(geminiKey, hot)
		case ProviderLocal:
			return NewLocalProvider(hot)
		default:
			return nil, fmt.Errorf("%w: unknown provider %q", ErrUnsupportedModel, provider)
		}
	}

	if geminiKey != "" {
		return NewGeminiProvider(geminiKey, hot)
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, hot)
	}
	return NewLocalProvider(hot)
}

// DetectProvider returns the provider NewFromEnv would select with the
// current environment.
func DetectProvider() string {
	if provider := os.Getenv("CORPUSRAG_EMBEDDING_PROVIDER"); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvGeminiAPIKey) != "" {
		return ProviderGemini
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ProviderLocal
}
