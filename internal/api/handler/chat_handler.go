package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/ports"
)

type ChatHandler struct {
	chatService ports.ChatService
}

func NewChatHandler(chatService ports.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateConversation starts a new conversation.
//
// @Summary      Start a conversation
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  createConversationResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/chat/conversations [post]
func (h *ChatHandler) CreateConversation(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := h.chatService.CreateConversation(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createConversationResponse{ID: id})
}

// ListConversations lists the user's conversations, most recent first.
//
// @Summary      List conversations
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Page size (max 100)"
// @Param        skip   query     int  false  "Offset"
// @Success      200    {object}  listConversationsResponse
// @Failure      401    {object}  errorResponse
// @Router       /api/v1/chat/conversations [get]
func (h *ChatHandler) ListConversations(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 20)
	skip := queryInt(c, "skip", 0)

	page, err := h.chatService.ListConversations(c.Request().Context(), user.ID, limit, skip)
	if err != nil {
		return err
	}

	items := make([]conversationItem, 0, len(page.Conversations))
	for _, conv := range page.Conversations {
		items = append(items, conversationItem{
			ID:           conv.ID,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
		})
	}
	return c.JSON(http.StatusOK, listConversationsResponse{
		Conversations: items,
		HasMore:       page.HasMore,
	})
}

// SendMessage sends a message and returns the model's reply.
//
// @Summary      Send a message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Conversation id"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      200   {object}  sendMessageResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/v1/chat/conversations/{id}/messages [post]
func (h *ChatHandler) SendMessage(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userMsg, modelMsg, err := h.chatService.SendMessage(c.Request().Context(), c.Param("id"), user.ID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sendMessageResponse{
		UserMessage:  userMsg,
		ModelMessage: modelMsg,
	})
}

// GetMessages returns a page of a conversation's transcript.
//
// @Summary      Get message history
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Conversation id"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Param        skip   query     int     false  "Offset"
// @Success      200    {object}  getMessagesResponse
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /api/v1/chat/conversations/{id}/messages [get]
func (h *ChatHandler) GetMessages(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 50)
	skip := queryInt(c, "skip", 0)

	page, err := h.chatService.GetMessages(c.Request().Context(), c.Param("id"), user.ID, limit, skip)
	if err != nil {
		return err
	}

	messages := page.Messages
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, getMessagesResponse{
		Messages: messages,
		HasMore:  page.HasMore,
	})
}

// DeleteConversation deletes a conversation and all its messages.
//
// @Summary      Delete a conversation
// @Tags         chat
// @Security     BearerAuth
// @Param        id  path  string  true  "Conversation id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/chat/conversations/{id} [delete]
func (h *ChatHandler) DeleteConversation(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.chatService.DeleteConversation(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage.
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
