package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/core/domain"
)

type stubLLM struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (s *stubLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.generateFn(ctx, prompt)
}

func (s *stubLLM) GenerateChat(context.Context, []domain.Message) (string, error) {
	return "", nil
}

func TestAIHandler_Complete(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAIHandler(&stubLLM{
		generateFn: func(_ context.Context, prompt string) (string, error) {
			if prompt != "write a haiku" {
				t.Fatalf("unexpected prompt %q", prompt)
			}
			return "an old silent pond", nil
		},
	})

	c, rec := newAuthContext(e, "/api/v1/ai/complete", `{"prompt":"write a haiku"}`)
	if err := handler.Complete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp completeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Text != "an old silent pond" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
}

func TestAIHandler_Complete_MissingPrompt(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAIHandler(&stubLLM{
		generateFn: func(context.Context, string) (string, error) {
			t.Fatal("provider must not be called on invalid input")
			return "", nil
		},
	})

	c, _ := newAuthContext(e, "/api/v1/ai/complete", `{}`)
	err := handler.Complete(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestAIHandler_Complete_ProviderErrorsPropagate(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	handler := NewAIHandler(&stubLLM{
		generateFn: func(context.Context, string) (string, error) {
			return "", domain.ErrLLMNotConfigured
		},
	})

	c, _ := newAuthContext(e, "/api/v1/ai/complete", `{"prompt":"hello"}`)
	if err := handler.Complete(c); err != domain.ErrLLMNotConfigured {
		t.Fatalf("expected ErrLLMNotConfigured, got %v", err)
	}
}
