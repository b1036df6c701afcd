package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// ConversationService runs the chain and records the transcript.
type ConversationService struct {
	chain driving.ChainService
	store driven.ConversationStore
	now   func() time.Time
	newID func() string
}

// NewConversationService creates a new conversation service.
func NewConversationService(chain driving.ChainService, store driven.ConversationStore) *ConversationService {
	return &ConversationService{
		chain: chain,
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Send answers req.Question within an ingested namespace owned by the user.
// An existing req.ChatID must belong to the same namespace and user. When
// req.History is empty its stored transcript is used as history.
func (s *ConversationService) Send(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if s.chain == nil {
		return nil, fmt.Errorf("%w: chain not configured", domain.ErrLLMUnavailable)
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: conversation store not configured", domain.ErrConfig)
	}

	namespace := domain.NormalizeNamespace(req.Namespace)
	if _, err := s.store.GetNamespace(ctx, namespace, req.UserEmail); err != nil {
		return nil, fmt.Errorf("namespace %q: %w", namespace, err)
	}

	history := req.History
	chatID := req.ChatID
	if chatID == "" {
		chatID = s.newID()
	} else {
		msgs, err := s.store.ListMessages(ctx, chatID)
		if err != nil {
			return nil, fmt.Errorf("load chat %s: %w", chatID, err)
		}
		for _, m := range msgs {
			if m.Namespace != namespace || m.UserEmail != req.UserEmail {
				return nil, fmt.Errorf("chat %s in namespace %q: %w", chatID, namespace, domain.ErrNotFound)
			}
		}
		if len(history) == 0 {
			history = messagesToHistory(msgs)
			logger.Debug("Loaded %d turns for chat %s", len(history), chatID)
		}
	}

	answer, err := s.chain.Ask(ctx, domain.Query{
		Namespace: namespace,
		Question:  req.Question,
		History:   history,
	})
	if err != nil {
		return nil, err
	}

	for _, msg := range []domain.Message{
		s.message(chatID, namespace, req.UserEmail, domain.SenderUser, domain.SanitizeQuestion(req.Question)),
		s.message(chatID, namespace, req.UserEmail, domain.SenderBot, answer.Text),
	} {
		if err := s.store.SaveMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("save message: %w", err)
		}
	}

	return &domain.ChatResponse{
		ChatID:          chatID,
		Text:            answer.Text,
		SourceDocuments: answer.Matches,
	}, nil
}

func (s *ConversationService) message(chatID, namespace, email string, sender domain.Sender, content string) domain.Message {
	return domain.Message{
		ID:        s.newID(),
		ChatID:    chatID,
		Namespace: namespace,
		UserEmail: email,
		Sender:    sender,
		Content:   content,
		CreatedAt: s.now(),
	}
}

// messagesToHistory converts a stored transcript into dialogue turns.
func messagesToHistory(msgs []domain.Message) []domain.ConversationTurn {
	history := make([]domain.ConversationTurn, 0, len(msgs))
	for _, m := range msgs {
		if m.Sender == domain.SenderBot {
			history = append(history, domain.AssistantTurn(m.Content))
		} else {
			history = append(history, domain.HumanTurn(m.Content))
		}
	}
	return history
}
