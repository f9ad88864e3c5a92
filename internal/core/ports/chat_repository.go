package ports

import (
	"context"

	"github.com/edgechat/backend/internal/core/domain"
)

// ChatRepository stores conversation transcripts. Every lookup is scoped by
// userID so one user can never read or mutate another user's conversations.
type ChatRepository interface {
	Create(ctx context.Context, userID int64) (string, error)
	Find(ctx context.Context, id string, userID int64) (*domain.Conversation, error)
	List(ctx context.Context, userID int64, limit, skip int) ([]*domain.Conversation, error)
	AppendMessages(ctx context.Context, id string, userID int64, messages []domain.Message) error
	Delete(ctx context.Context, id string, userID int64) error
}
