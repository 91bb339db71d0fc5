package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kataras/golog"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Chenthemanl/corpusrag/internal/chunker"
	"github.com/Chenthemanl/corpusrag/internal/config"
	"github.com/Chenthemanl/corpusrag/internal/embedcache"
	"github.com/Chenthemanl/corpusrag/internal/embedder"
	"github.com/Chenthemanl/corpusrag/internal/ingest"
	"github.com/Chenthemanl/corpusrag/internal/searcher"
	"github.com/Chenthemanl/corpusrag/internal/tracker"
	"github.com/Chenthemanl/corpusrag/internal/vectorstore"
)

const (
	// ServerName is the MCP server name
	ServerName = "corpusrag"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	tracker  *tracker.Tracker
	cache    *embedcache.Cache
	embedder *embedder.CachedEmbedder
	store    vectorstore.Store
	pipeline *ingest.Pipeline
	searcher *searcher.Searcher
}

// NewServer creates a new MCP server instance with all components wired
// from the given configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := vectorstore.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	tr := tracker.New(cfg.TrackingFile())
	cache := embedcache.New(cfg.CacheFile())
	cached := embedder.NewCachedEmbedder(provider, cache)
	cached.SetBatchSize(cfg.BatchSize)

	ch := chunker.New(chunker.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})

	pipe := ingest.New(tr, cache, cached, ch, store, &ingest.Config{
		Workers: cfg.ScanWorkers,
	})

	srch := searcher.New(store, cached)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		cfg:      cfg,
		tracker:  tr,
		cache:    cache,
		embedder: cached,
		store:    store,
		pipeline: pipe,
		searcher: srch,
	}

	s.registerTools()
	golog.Infof("server initialized: provider=%s model=%s data=%s",
		cached.Provider(), cached.Model(), cfg.DataDir)
	return s, nil
}

// newProvider selects the embedding provider from configuration. An
// explicit provider setting wins; otherwise the available API keys decide,
// falling back to the offline local provider.
func newProvider(cfg *config.Config) (embedder.Embedder, error) {
	hotSize := cfg.HotCacheSize

	if cfg.Provider != "" {
		key := ""
		switch strings.ToLower(cfg.Provider) {
		case embedder.ProviderOpenAI:
			key = cfg.OpenAIAPIKey
		case embedder.ProviderGemini:
			key = cfg.GeminiAPIKey
		}
		return embedder.New(embedder.Config{
			Provider:     cfg.Provider,
			APIKey:       key,
			HotCacheSize: hotSize,
		})
	}

	if cfg.HasGemini() {
		return embedder.New(embedder.Config{
			Provider:     embedder.ProviderGemini,
			APIKey:       cfg.GeminiAPIKey,
			HotCacheSize: hotSize,
		})
	}
	if cfg.HasOpenAI() {
		return embedder.New(embedder.Config{
			Provider:     embedder.ProviderOpenAI,
			APIKey:       cfg.OpenAIAPIKey,
			HotCacheSize: hotSize,
		})
	}
	return embedder.New(embedder.Config{
		Provider:     embedder.ProviderLocal,
		HotCacheSize: hotSize,
	})
}

// Serve starts the MCP server on stdio and blocks until the context is
// canceled or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestCorpusTool(), s.handleIngestCorpus)
	s.mcp.AddTool(searchCorpusTool(), s.handleSearchCorpus)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(clearCachesTool(), s.handleClearCaches)
}
