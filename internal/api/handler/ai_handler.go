package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/core/ports"
)

type completeRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type completeResponse struct {
	Text string `json:"text"`
}

// AIHandler exposes the single-shot completion endpoint.
type AIHandler struct {
	llm ports.LLMClient
}

func NewAIHandler(llm ports.LLMClient) *AIHandler {
	return &AIHandler{llm: llm}
}

// Complete sends a prompt to the model and returns the reply.
//
// @Summary      One-shot completion
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        body  body      completeRequest  true  "Prompt"
// @Success      200   {object}  completeResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/v1/ai/complete [post]
func (h *AIHandler) Complete(c echo.Context) error {
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	text, err := h.llm.GenerateText(c.Request().Context(), req.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, completeResponse{Text: text})
}
