package handler

import (
	"time"

	"github.com/edgechat/backend/internal/core/domain"
)

// --- Request / Response types ---

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type createConversationResponse struct {
	ID string `json:"id"`
}

type conversationItem struct {
	ID           string    `json:"id"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

type listConversationsResponse struct {
	Conversations []conversationItem `json:"conversations"`
	HasMore       bool               `json:"has_more"`
}

type sendMessageResponse struct {
	UserMessage  domain.Message `json:"user_message"`
	ModelMessage domain.Message `json:"model_message"`
}

type getMessagesResponse struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}
