// Package mcp provides an MCP (Model Context Protocol) server adapter for askdocs.
// It lets AI assistants ask questions against ingested namespaces and
// ingest new directories.
package mcp

import "errors"

var (
	// ErrMissingConversationService is returned when the conversation service is not provided.
	ErrMissingConversationService = errors.New("mcp: conversation service is required")

	// ErrMissingLoader is returned when ingestion is enabled without a document loader.
	ErrMissingLoader = errors.New("mcp: document loader is required for ingestion")

	// ErrIngestDisabled is returned by the ingest tool when no ingest service is wired.
	ErrIngestDisabled = errors.New("mcp: ingestion is not configured")
)
