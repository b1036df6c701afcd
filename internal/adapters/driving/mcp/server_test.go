package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
	})

	t.Run("nil conversation service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingConversationService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Conversation: &mockConversationService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("conversation only is valid", func(t *testing.T) {
		ports := &Ports{Conversation: &mockConversationService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("ingest without loader returns error", func(t *testing.T) {
		ports := &Ports{
			Conversation: &mockConversationService{},
			Ingest:       &mockIngestService{},
		}
		assert.ErrorIs(t, ports.Validate(), ErrMissingLoader)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Conversation: &mockConversationService{},
			Ingest:       &mockIngestService{},
			Loader:       &mockLoader{},
			Namespace:    &mockNamespaceService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestPorts_UserEmailDefault(t *testing.T) {
	assert.Equal(t, domain.DefaultUserEmail, (&Ports{}).userEmail())
	assert.Equal(t, "me@example.com", (&Ports{UserEmail: "me@example.com"}).userEmail())
}

// connect runs server over in-memory transports and returns a client session.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return cs
}

func TestServer_ListsTools(t *testing.T) {
	server, err := NewServer(&Ports{Conversation: &mockConversationService{}})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"ask", "ingest", "list_namespaces"}, names)
}

func TestServer_CallAsk(t *testing.T) {
	conv := &mockConversationService{resp: &domain.ChatResponse{ChatID: "c-1", Text: "Paris"}}
	server, err := NewServer(&Ports{Conversation: conv})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "ask",
		Arguments: map[string]any{"namespace": "docs", "question": "capital?"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Paris")
	assert.Equal(t, "capital?", conv.lastReq.Question)
}

func TestServer_CallAskReportsToolError(t *testing.T) {
	conv := &mockConversationService{err: domain.ErrNotFound}
	server, err := NewServer(&Ports{Conversation: conv})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "ask",
		Arguments: map[string]any{"namespace": "missing", "question": "q"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "not_found")
}
