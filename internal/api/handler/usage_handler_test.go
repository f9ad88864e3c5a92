package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/api/middleware"
	"github.com/edgechat/backend/internal/core/domain"
)

type stubUsageService struct {
	statsFn func(ctx context.Context, userID int64) (*domain.UsageStats, error)
}

func (s *stubUsageService) StatsFor(ctx context.Context, userID int64) (*domain.UsageStats, error) {
	return s.statsFn(ctx, userID)
}

func TestUsageHandler_Me(t *testing.T) {
	e := echo.New()
	handler := NewUsageHandler(&stubUsageService{
		statsFn: func(_ context.Context, userID int64) (*domain.UsageStats, error) {
			if userID != 42 {
				t.Fatalf("unexpected user id %d", userID)
			}
			return &domain.UsageStats{TotalRequests: 120, RequestsLast24h: 7, RequestsLast7d: 31}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserKey, &domain.User{ID: 42, Email: "ada@example.com"})

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats domain.UsageStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if stats.TotalRequests != 120 || stats.RequestsLast24h != 7 || stats.RequestsLast7d != 31 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestUsageHandler_Me_WithoutGuard(t *testing.T) {
	e := echo.New()
	handler := NewUsageHandler(&stubUsageService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage/me", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
