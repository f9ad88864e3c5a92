package ports

import (
	"context"

	"github.com/edgechat/backend/internal/core/domain"
)

// LLMClient wraps the upstream model provider.
type LLMClient interface {
	// GenerateText answers a single prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateChat answers the last message given the full history.
	GenerateChat(ctx context.Context, messages []domain.Message) (string, error)
}
