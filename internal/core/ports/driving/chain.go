package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// ChainService answers a question in the context of a conversation.
type ChainService interface {
	// Ask condenses, retrieves and generates an answer.
	// Failures are returned as *services.ChainError carrying the failed state.
	Ask(ctx context.Context, query domain.Query) (*domain.Answer, error)
}
