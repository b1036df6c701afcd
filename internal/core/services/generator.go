package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure Generator accepts custom prompts.
var _ driven.PromptStoreAware = (*Generator)(nil)

// Generator produces the final answer from question, context and history.
type Generator struct {
	llm    driven.TextGenerator
	prompt promptTemplate
}

// NewGenerator creates a generator using the built-in template.
func NewGenerator(llm driven.TextGenerator) *Generator {
	return &Generator{
		llm: llm,
		prompt: promptTemplate{
			name:     driven.PromptAnswer,
			fallback: domain.DefaultAnswerTemplate,
		},
	}
}

// SetPromptStore sets the prompt store for loading the answer template.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompt.store = store
}

// Generate answers question using only retrievedContext and history.
func (g *Generator) Generate(
	ctx context.Context, question, retrievedContext string, history []domain.ConversationTurn,
) (string, error) {
	if g.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	prompt := g.prompt.render(
		domain.PlaceholderContext, retrievedContext,
		domain.PlaceholderChatHistory, domain.RenderHistory(history),
		domain.PlaceholderQuestion, question,
	)

	out, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return "", domain.AsProviderError("llm", "generate", err)
	}

	answer := strings.TrimSpace(out)
	if answer == "" {
		return "", domain.NewProviderError("llm", "generate", errors.New("model returned an empty answer"))
	}
	return answer, nil
}
