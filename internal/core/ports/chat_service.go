package ports

import (
	"context"

	"github.com/edgechat/backend/internal/core/domain"
)

// MessagePage is one page of a conversation transcript.
type MessagePage struct {
	Messages []domain.Message
	HasMore  bool
}

// ConversationPage is one page of a user's conversation list.
type ConversationPage struct {
	Conversations []*domain.Conversation
	HasMore       bool
}

type ChatService interface {
	CreateConversation(ctx context.Context, userID int64) (string, error)
	ListConversations(ctx context.Context, userID int64, limit, skip int) (*ConversationPage, error)
	SendMessage(ctx context.Context, conversationID string, userID int64, content string) (userMsg, modelMsg domain.Message, err error)
	GetMessages(ctx context.Context, conversationID string, userID int64, limit, skip int) (*MessagePage, error)
	DeleteConversation(ctx context.Context, conversationID string, userID int64) error
}
