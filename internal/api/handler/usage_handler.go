package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/core/ports"
)

// UsageHandler exposes per-user usage aggregates.
type UsageHandler struct {
	usageService ports.UsageService
}

func NewUsageHandler(usageService ports.UsageService) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// Me returns the current user's API usage stats.
//
// @Summary      Current user's usage
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UsageStats
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/usage/me [get]
func (h *UsageHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.usageService.StatsFor(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
