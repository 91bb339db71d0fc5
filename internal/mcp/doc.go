// Package mcp implements the Model Context Protocol server exposing the
// corpus pipeline to MCP clients over stdio.
//
// # Tools
//
// The server registers four tools:
//
// ingest_corpus ingests a directory of text documents:
//
//	{
//	  "path": "/abs/path/to/corpus",   // required
//	  "force": false                   // optional: full rebuild
//	}
//
// Response summarizes the run: files scanned/ingested/skipped/failed,
// chunks created, embedding cache hits and misses, duration.
//
// search_corpus runs a semantic query over the ingested chunks:
//
//	{
//	  "query": "how does the cache invalidate?",  // required
//	  "limit": 10                                 // optional, 1-100
//	}
//
// Results carry the source document path, chunk index, chunk content and
// cosine similarity, best first.
//
// get_status takes no arguments and reports index totals, tracking state,
// embedding cache size and the active provider/model.
//
// clear_caches takes no arguments and resets the tracking state and the
// embedding cache; the next ingest reprocesses every document.
//
// # Error Codes
//
// Tool failures use JSON-RPC style codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  ingest already in progress
//	-32002  empty query
//	-32003  corpus path missing or unreadable
//
// # Transport
//
// The server speaks MCP over stdio via mark3labs/mcp-go. Stdout carries
// the protocol; all logging goes to stderr.
package mcp
