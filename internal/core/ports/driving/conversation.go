package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// ConversationService runs the chain against a persisted transcript.
type ConversationService interface {
	// Send answers req.Question and records both sides of the exchange.
	Send(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}
