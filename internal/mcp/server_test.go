package mcp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chenthemanl/corpusrag/internal/config"
)

func setupTestServer(t *testing.T) *Server {
	cfg := &config.Config{
		DataDir:      t.TempDir(),
		Provider:     "local",
		ChunkSize:    100,
		ChunkOverlap: 20,
		HotCacheSize: 100,
		ScanWorkers:  2,
	}

	server, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.store.Close() })
	return server
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	server := setupTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.serve(ctx, strings.NewReader(""), io.Discard)
	}()

	select {
	case err := <-done:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after context cancellation")
	}
}

func TestNewServer_Components(t *testing.T) {
	server := setupTestServer(t)

	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.tracker)
	assert.NotNil(t, server.cache)
	assert.NotNil(t, server.embedder)
	assert.NotNil(t, server.store)
	assert.NotNil(t, server.pipeline)
	assert.NotNil(t, server.searcher)

	// Pipeline and searcher share the same embedder, so vectors cached
	// during ingest serve query embedding lookups too
	assert.Equal(t, "local", server.embedder.Provider())
}

func TestHandleIngestCorpus(t *testing.T) {
	server := setupTestServer(t)
	corpus := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(corpus, "doc.md"),
		[]byte("A document about semantic retrieval over text corpora."),
		0o644,
	))

	result, err := server.handleIngestCorpus(context.Background(), toolRequest(map[string]interface{}{
		"path": corpus,
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"files_ingested": 1`)
	assert.Contains(t, text, `"files_failed": 0`)
	assert.Contains(t, text, "run_id")
}

func TestHandleIngestCorpus_InvalidPath(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"empty path", map[string]interface{}{"path": ""}},
		{"relative path", map[string]interface{}{"path": "relative/corpus"}},
		{"nonexistent path", map[string]interface{}{"path": "/does/not/exist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.handleIngestCorpus(context.Background(), toolRequest(tt.args))
			assert.Error(t, err)
		})
	}
}

func TestHandleSearchCorpus(t *testing.T) {
	server := setupTestServer(t)
	corpus := t.TempDir()

	content := "Embedding caches avoid paying for the same vector twice."
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "doc.md"), []byte(content), 0o644))

	_, err := server.handleIngestCorpus(context.Background(), toolRequest(map[string]interface{}{
		"path": corpus,
	}))
	require.NoError(t, err)

	result, err := server.handleSearchCorpus(context.Background(), toolRequest(map[string]interface{}{
		"query": content,
		"limit": float64(5),
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"total_results": 1`)
	assert.Contains(t, text, "doc.md")
}

func TestHandleSearchCorpus_Validation(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleSearchCorpus(context.Background(), toolRequest(map[string]interface{}{}))
	assert.Error(t, err)

	_, err = server.handleSearchCorpus(context.Background(), toolRequest(map[string]interface{}{
		"query": "",
	}))
	assert.Error(t, err)

	_, err = server.handleSearchCorpus(context.Background(), toolRequest(map[string]interface{}{
		"query": "ok",
		"limit": float64(500),
	}))
	assert.Error(t, err)
}

func TestHandleGetStatus(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleGetStatus(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"total_documents": 0`)
	assert.Contains(t, text, `"provider": "local"`)
}

func TestHandleClearCaches(t *testing.T) {
	server := setupTestServer(t)
	corpus := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(corpus, "doc.md"),
		[]byte("Some document content to populate the caches."),
		0o644,
	))

	_, err := server.handleIngestCorpus(context.Background(), toolRequest(map[string]interface{}{
		"path": corpus,
	}))
	require.NoError(t, err)
	assert.Greater(t, server.cache.Len(), 0)

	result, err := server.handleClearCaches(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"cleared": true`)
	assert.Equal(t, 0, server.cache.Len())

	// With tracking cleared, the same corpus ingests again
	second, err := server.handleIngestCorpus(context.Background(), toolRequest(map[string]interface{}{
		"path": corpus,
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, second), `"files_ingested": 1`)
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeInvalidParams, "bad input", nil)
	assert.Contains(t, err.Error(), "-32602")
	assert.Contains(t, err.Error(), "bad input")
}
