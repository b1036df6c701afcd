package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure ChainService implements the interface.
var _ driving.ChainService = (*ChainService)(nil)

// Ensure ChainService accepts custom prompts.
var _ driven.PromptStoreAware = (*ChainService)(nil)

// ChainError reports the state in which the chain failed.
type ChainError struct {
	State domain.ChainState
	Err   error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain failed while %s: %v", e.State, e.Err)
}

// Unwrap returns the cause.
func (e *ChainError) Unwrap() error {
	return e.Err
}

// ChainService runs Condensing, Retrieving and Generating for one question.
type ChainService struct {
	embedder  driven.Embedder
	condenser *Condenser
	retriever *Retriever
	generator *Generator
}

// NewChainService creates a conversational chain.
func NewChainService(
	llm driven.TextGenerator,
	embedder driven.Embedder,
	index driven.VectorIndex,
	retrieval domain.RetrievalSettings,
) *ChainService {
	return &ChainService{
		embedder:  embedder,
		condenser: NewCondenser(llm),
		retriever: NewRetriever(index, retrieval),
		generator: NewGenerator(llm),
	}
}

// SetPromptStore sets the prompt store for the condense and answer templates.
func (s *ChainService) SetPromptStore(store driven.PromptStore) {
	s.condenser.SetPromptStore(store)
	s.generator.SetPromptStore(store)
}

// chainRun tracks the states visited by one Ask call.
type chainRun struct {
	ctx   context.Context
	state domain.ChainState
	trace []domain.ChainState
}

// enter moves to the next state unless the context is done.
func (r *chainRun) enter(next domain.ChainState) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	logger.Debug("Chain: %s -> %s", r.state, next)
	r.state = next
	r.trace = append(r.trace, next)
	return nil
}

func (r *chainRun) fail(err error) error {
	failedIn := r.state
	r.trace = append(r.trace, domain.StateFailed)
	logger.Warn("Chain failed in %s: %v", failedIn, err)
	return &ChainError{State: failedIn, Err: err}
}

// Ask answers query.Question. The history is read, never modified, and no
// answer is produced unless every state succeeds.
func (s *ChainService) Ask(ctx context.Context, query domain.Query) (*domain.Answer, error) {
	logger.Section("Chain")

	run := &chainRun{ctx: ctx, state: domain.StateStart, trace: []domain.ChainState{domain.StateStart}}

	question := domain.SanitizeQuestion(query.Question)
	if question == "" {
		return nil, run.fail(fmt.Errorf("%w: question is empty", domain.ErrInvalidInput))
	}
	namespace := domain.NormalizeNamespace(query.Namespace)
	if s.embedder == nil {
		return nil, run.fail(domain.ErrEmbeddingUnavailable)
	}

	if err := run.enter(domain.StateCondensing); err != nil {
		return nil, run.fail(err)
	}
	standalone, err := s.condenser.Condense(ctx, question, query.History)
	if err != nil {
		return nil, run.fail(fmt.Errorf("condense question: %w", err))
	}

	if err := run.enter(domain.StateRetrieving); err != nil {
		return nil, run.fail(err)
	}
	vectors, err := s.embedder.Embed(ctx, []string{standalone})
	if err != nil {
		return nil, run.fail(fmt.Errorf("embed question: %w", domain.AsProviderError("embedding", "embed", err)))
	}
	if len(vectors) != 1 {
		return nil, run.fail(&domain.EmbeddingCountMismatchError{Expected: 1, Got: len(vectors)})
	}
	retrieval, err := s.retriever.Retrieve(ctx, namespace, vectors[0])
	if err != nil {
		return nil, run.fail(fmt.Errorf("retrieve context: %w", err))
	}

	if err := run.enter(domain.StateGenerating); err != nil {
		return nil, run.fail(err)
	}
	text, err := s.generator.Generate(ctx, standalone, retrieval.Context, query.History)
	if err != nil {
		return nil, run.fail(fmt.Errorf("generate answer: %w", err))
	}

	run.state = domain.StateDone
	run.trace = append(run.trace, domain.StateDone)

	return &domain.Answer{
		Text:               text,
		StandaloneQuestion: standalone,
		Context:            retrieval.Context,
		Matches:            retrieval.Matches,
		Trace:              run.trace,
	}, nil
}
