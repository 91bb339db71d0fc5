package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Chenthemanl/corpusrag/internal/ingest"
	"github.com/Chenthemanl/corpusrag/internal/searcher"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeIngestInProgress = -32001 // Another ingest run is already executing
	ErrorCodeEmptyQuery       = -32002 // Query parameter is empty
	ErrorCodeCorpusNotFound   = -32003 // Specified path is not a readable directory
)

// handleIngestCorpus handles the ingest_corpus tool invocation
func (s *Server) handleIngestCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeCorpusNotFound, "invalid corpus path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	force, _ := args["force"].(bool)

	stats, err := s.pipeline.Run(ctx, path, force)
	if errors.Is(err, ingest.ErrIngestInProgress) {
		return nil, newMCPError(ErrorCodeIngestInProgress, "an ingest run is already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "ingest failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"run_id":              stats.RunID,
		"files_scanned":       stats.FilesScanned,
		"files_ingested":      stats.FilesIngested,
		"files_skipped":       stats.FilesSkipped,
		"files_failed":        stats.FilesFailed,
		"chunks_created":      stats.ChunksCreated,
		"embeddings_computed": stats.EmbeddingsComputed,
		"cache_hits":          stats.CacheHits,
		"cache_misses":        stats.CacheMisses,
		"duration_ms":         stats.Duration.Milliseconds(),
	}

	if len(stats.Errors) > 0 {
		// Include first few errors
		errorCount := len(stats.Errors)
		if errorCount > 5 {
			response["errors"] = stats.Errors[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.Errors
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchCorpus handles the search_corpus tool invocation
func (s *Server) handleSearchCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.Request{
		Query:    query,
		Limit:    limit,
		UseCache: true,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = map[string]interface{}{
			"document":    r.DocumentPath,
			"chunk_index": r.ChunkIndex,
			"content":     r.Content,
			"similarity":  fmt.Sprintf("%.4f", r.Similarity),
		}
	}

	response := map[string]interface{}{
		"query":         query,
		"total_results": resp.TotalResults,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
		"results":       results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read index status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	trackerStats := s.tracker.Stats()
	cacheStats := s.cache.Stats()
	hits, misses := s.embedder.Counters()

	response := map[string]interface{}{
		"index": map[string]interface{}{
			"total_documents":  status.TotalDocuments,
			"total_chunks":     status.TotalChunks,
			"total_embeddings": status.TotalEmbeddings,
			"db_path":          status.DBPath,
		},
		"tracking": map[string]interface{}{
			"total_documents": trackerStats.TotalDocuments,
			"total_chunks":    trackerStats.TotalChunks,
			"tracking_file":   trackerStats.TrackingFile,
		},
		"embedding_cache": map[string]interface{}{
			"total_embeddings": cacheStats.TotalEmbeddings,
			"cache_file":       cacheStats.CacheFile,
			"size_mb":          fmt.Sprintf("%.2f", cacheStats.SizeMB),
			"session_hits":     hits,
			"session_misses":   misses,
		},
		"embedder": map[string]interface{}{
			"provider":  s.embedder.Provider(),
			"model":     s.embedder.Model(),
			"dimension": s.embedder.Dimension(),
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearCaches handles the clear_caches tool invocation
func (s *Server) handleClearCaches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.tracker.Clear(); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to clear tracking state", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := s.cache.Clear(); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to clear embedding cache", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"cleared": true,
		"message": "Tracking state and embedding cache cleared. The next ingest will reprocess all documents.",
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path is an absolute, readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
