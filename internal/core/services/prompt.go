package services

import (
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// promptTemplate resolves a named template, preferring the user's copy.
type promptTemplate struct {
	name     string
	fallback string
	store    driven.PromptStore
}

func (p *promptTemplate) load() string {
	if p.store == nil {
		return p.fallback
	}
	tmpl, err := p.store.Load(p.name)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		logger.Warn("Using built-in %s prompt: %v", p.name, err)
		return p.fallback
	}
	return tmpl
}

// render substitutes every placeholder in a single pass, so values that
// contain placeholder text are left untouched.
func (p *promptTemplate) render(pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(p.load())
}
