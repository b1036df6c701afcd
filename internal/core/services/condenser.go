package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure Condenser accepts custom prompts.
var _ driven.PromptStoreAware = (*Condenser)(nil)

// Condenser rewrites a follow-up question into a standalone question.
type Condenser struct {
	llm    driven.TextGenerator
	prompt promptTemplate
}

// NewCondenser creates a condenser using the built-in template.
func NewCondenser(llm driven.TextGenerator) *Condenser {
	return &Condenser{
		llm: llm,
		prompt: promptTemplate{
			name:     driven.PromptCondense,
			fallback: domain.DefaultCondenseTemplate,
		},
	}
}

// SetPromptStore sets the prompt store for loading the condense template.
func (c *Condenser) SetPromptStore(store driven.PromptStore) {
	c.prompt.store = store
}

// Condense asks the model for a standalone version of question.
// The model is called even when history is empty.
func (c *Condenser) Condense(ctx context.Context, question string, history []domain.ConversationTurn) (string, error) {
	if c.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	prompt := c.prompt.render(
		domain.PlaceholderChatHistory, domain.RenderHistory(history),
		domain.PlaceholderQuestion, question,
	)

	out, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return "", domain.AsProviderError("llm", "condense", err)
	}

	standalone := strings.TrimSpace(out)
	if standalone == "" {
		return "", domain.NewProviderError("llm", "condense", errors.New("model returned an empty question"))
	}
	logger.Debug("Standalone question: %q", standalone)
	return standalone, nil
}
