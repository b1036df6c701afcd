package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func TestChatCmd_Use(t *testing.T) {
	assert.Equal(t, "chat", chatCmd.Use)
	assert.NotNil(t, chatCmd.Flags().Lookup("namespace"))
	assert.NotNil(t, chatCmd.Flags().Lookup("chat-id"))
}

func TestChatCmd_NotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := executeCommand("chat", "-n", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation service not configured")
}

func TestChatCmd_LineModeKeepsChatID(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommandWithInput("first question\n\nfollow up\nexit\nignored\n", "chat", "-n", "docs")

	require.NoError(t, err)
	assert.Contains(t, out, `Chatting with "docs"`)
	assert.Contains(t, out, "Bot: answer to first question")
	assert.Contains(t, out, "Bot: answer to follow up")
	assert.Contains(t, out, "Chat ID: chat-1")

	require.Len(t, ts.Conversation.Requests, 2)
	assert.Empty(t, ts.Conversation.Requests[0].ChatID)
	assert.Equal(t, "chat-1", ts.Conversation.Requests[1].ChatID)
}

func TestChatCmd_LineModeResumes(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommandWithInput("again\n", "chat", "-n", "docs", "--chat-id", "chat-9")

	require.NoError(t, err)
	require.Len(t, ts.Conversation.Requests, 1)
	assert.Equal(t, "chat-9", ts.Conversation.Requests[0].ChatID)
}

func TestChatCmd_LineModeContinuesAfterError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	calls := 0
	ts.Conversation.SendFunc = func(req domain.ChatRequest) (*domain.ChatResponse, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("provider timeout")
		}
		return &domain.ChatResponse{ChatID: "chat-2", Text: "ok"}, nil
	}

	out, err := executeCommandWithInput("one\ntwo\n", "chat", "-n", "docs")

	require.NoError(t, err)
	assert.Contains(t, out, "Error: provider timeout")
	assert.Contains(t, out, "Bot: ok")
	assert.Equal(t, 2, calls)
}

func TestIsTerminal_FalseForBuffers(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(new(bytes.Buffer))
	cmd.SetOut(new(bytes.Buffer))

	assert.False(t, isTerminal(cmd))
}
