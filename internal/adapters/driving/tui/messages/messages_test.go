package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewChat, "chat"},
		{ViewHelp, "help"},
		{ViewType(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestAnswerReceived(t *testing.T) {
	t.Run("with response", func(t *testing.T) {
		msg := AnswerReceived{
			Question: "what is x?",
			Response: &domain.ChatResponse{ChatID: "c1", Text: "x is y"},
		}
		assert.Equal(t, "c1", msg.Response.ChatID)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		err := errors.New("provider down")
		msg := AnswerReceived{Question: "q", Err: err}
		assert.Nil(t, msg.Response)
		assert.ErrorIs(t, msg.Err, err)
	})
}

func TestHistoryLoaded(t *testing.T) {
	msg := HistoryLoaded{
		ChatID:   "c1",
		Messages: []domain.Message{{Sender: domain.SenderUser, Content: "hi"}},
	}
	assert.Len(t, msg.Messages, 1)
	assert.Equal(t, domain.SenderUser, msg.Messages[0].Sender)
}
