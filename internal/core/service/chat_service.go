package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/ports"
)

// ChatService owns conversation lifecycle and the LLM round trip.
type ChatService struct {
	repo   ports.ChatRepository
	llm    ports.LLMClient
	logger zerolog.Logger
}

func NewChatService(repo ports.ChatRepository, llm ports.LLMClient, logger zerolog.Logger) *ChatService {
	return &ChatService{repo: repo, llm: llm, logger: logger}
}

func (s *ChatService) CreateConversation(ctx context.Context, userID int64) (string, error) {
	return s.repo.Create(ctx, userID)
}

func (s *ChatService) ListConversations(ctx context.Context, userID int64, limit, skip int) (*ports.ConversationPage, error) {
	limit = clampLimit(limit, 20)
	if skip < 0 {
		skip = 0
	}

	conversations, err := s.repo.List(ctx, userID, limit, skip)
	if err != nil {
		return nil, err
	}
	return &ports.ConversationPage{
		Conversations: conversations,
		HasMore:       len(conversations) == limit,
	}, nil
}

// SendMessage appends the user's message, asks the model for a reply with
// the full history as context, and persists both turns together.
func (s *ChatService) SendMessage(ctx context.Context, conversationID string, userID int64, content string) (domain.Message, domain.Message, error) {
	var zero domain.Message

	conv, err := s.repo.Find(ctx, conversationID, userID)
	if err != nil {
		return zero, zero, err
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: content}
	history := append(append([]domain.Message{}, conv.Messages...), userMsg)

	reply, err := s.llm.GenerateChat(ctx, history)
	if err != nil {
		return zero, zero, err
	}
	modelMsg := domain.Message{Role: domain.RoleModel, Content: reply}

	if err := s.repo.AppendMessages(ctx, conversationID, userID, []domain.Message{userMsg, modelMsg}); err != nil {
		return zero, zero, err
	}

	s.logger.Debug().
		Str("conversation_id", conversationID).
		Int64("user_id", userID).
		Msg("message exchanged")

	return userMsg, modelMsg, nil
}

func (s *ChatService) GetMessages(ctx context.Context, conversationID string, userID int64, limit, skip int) (*ports.MessagePage, error) {
	limit = clampLimit(limit, 50)
	if skip < 0 {
		skip = 0
	}

	conv, err := s.repo.Find(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	total := len(conv.Messages)
	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	return &ports.MessagePage{
		Messages: conv.Messages[skip:end],
		HasMore:  end < total,
	}, nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, conversationID string, userID int64) error {
	return s.repo.Delete(ctx, conversationID, userID)
}

// clampLimit bounds a client-supplied page size to [1, 100].
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 100 {
		return 100
	}
	return limit
}
