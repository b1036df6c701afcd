package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Namespace string `json:"namespace" jsonschema:"the namespace to answer from"`
	Question  string `json:"question" jsonschema:"the question to answer"`
	ChatID    string `json:"chat_id,omitempty" jsonschema:"continue an earlier conversation"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	ChatID  string         `json:"chat_id"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one retrieved passage backing an answer.
type SourceOutput struct {
	ID     string  `json:"id"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Namespace string `json:"namespace" jsonschema:"the namespace to write into"`
	Path      string `json:"path" jsonschema:"a directory or file on the server's filesystem"`
	ChunkSize *int   `json:"chunk_size,omitempty" jsonschema:"maximum chunk length in characters (default 1000)"`
	Overlap   *int   `json:"overlap,omitempty" jsonschema:"characters shared by consecutive chunks (default 200)"`
}

// NamespacesOutput is the output schema for the list_namespaces tool.
type NamespacesOutput struct {
	Namespaces []string `json:"namespaces"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the documents ingested into a namespace",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Load, chunk and embed a directory into a namespace",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_namespaces",
		Description: "List the namespaces that can be asked",
	}, s.handleListNamespaces)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	resp, err := s.ports.Conversation.Send(ctx, domain.ChatRequest{
		ChatID:    input.ChatID,
		Namespace: input.Namespace,
		UserEmail: s.ports.userEmail(),
		Question:  input.Question,
	})
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{
		Answer:  resp.Text,
		ChatID:  resp.ChatID,
		Sources: make([]SourceOutput, len(resp.SourceDocuments)),
	}
	for i, m := range resp.SourceDocuments {
		output.Sources[i] = SourceOutput{
			ID:     m.ID,
			Source: m.Metadata.Source,
			Score:  m.Score,
			Text:   m.Metadata.Text,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	if s.ports.Ingest == nil {
		return nil, domain.IngestResult{}, ErrIngestDisabled
	}

	docs, err := s.ports.Loader.Load(ctx, input.Path)
	if err != nil {
		return nil, domain.IngestResult{}, toolError(err)
	}
	logger.Debug("MCP ingest: %d documents from %s", len(docs), input.Path)

	result, err := s.ports.Ingest.Ingest(ctx, domain.IngestRequest{
		Namespace: input.Namespace,
		UserEmail: s.ports.userEmail(),
		ChunkSize: input.ChunkSize,
		Overlap:   input.Overlap,
	}, docs)
	if err != nil {
		return nil, domain.IngestResult{}, toolError(err)
	}

	return nil, *result, nil
}

// handleListNamespaces handles the list_namespaces tool invocation.
func (s *Server) handleListNamespaces(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, NamespacesOutput, error) {
	names, err := s.namespaceNames(ctx)
	if err != nil {
		return nil, NamespacesOutput{}, toolError(err)
	}
	return nil, NamespacesOutput{Namespaces: names}, nil
}

func (s *Server) namespaceNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if s.ports.Namespace == nil {
		return names, nil
	}

	records, err := s.ports.Namespace.List(ctx, s.ports.userEmail())
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		names = append(names, r.Name)
	}
	return names, nil
}

// toolError prefixes err with its stable kind so clients can branch on it.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", domain.ErrorKind(err), err)
}
