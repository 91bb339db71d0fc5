package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kataras/golog"

	"github.com/Chenthemanl/corpusrag/internal/config"
	"github.com/Chenthemanl/corpusrag/internal/mcp"
	"github.com/Chenthemanl/corpusrag/internal/vectorstore"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("CorpusRAG MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", vectorstore.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", vectorstore.DriverName)
		fmt.Printf("Vector Extension: %v\n", vectorstore.VectorExtensionAvailable)
		os.Exit(0)
	}

	// Log to stderr (stdout reserved for MCP protocol)
	golog.SetOutput(os.Stderr)

	cfg := config.MustLoad()
	if cfg.Debug {
		golog.SetLevel("debug")
	}

	golog.Infof("CorpusRAG MCP Server v%s starting...", version)
	golog.Infof("Build Mode: %s, Driver: %s, Vector Extension: %v",
		vectorstore.BuildMode, vectorstore.DriverName, vectorstore.VectorExtensionAvailable)

	server, err := mcp.NewServer(cfg)
	if err != nil {
		golog.Fatalf("Failed to create MCP server: %v", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		golog.Info("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		golog.Infof("Received signal %v, shutting down gracefully...", sig)
		cancel()
		<-errChan
	case err := <-errChan:
		if err != nil {
			golog.Fatalf("Server error: %v", err)
		}
	}

	golog.Info("Server stopped")
}
