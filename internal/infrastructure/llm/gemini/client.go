// Package gemini is a minimal client for the Google Gemini generateContent
// API. It is the single place for upstream calls, timeouts and error
// mapping.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edgechat/backend/internal/api/metrics"
	"github.com/edgechat/backend/internal/core/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 60 * time.Second
)

// Client calls the Gemini API over plain HTTP.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- wire types ---

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

// GenerateText answers a single prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []content{{Parts: []part{{Text: prompt}}}})
}

// GenerateChat answers the last message given the full history.
func (c *Client) GenerateChat(ctx context.Context, messages []domain.Message) (string, error) {
	contents := make([]content, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, content{
			Role:  m.Role,
			Parts: []part{{Text: m.Content}},
		})
	}
	return c.generate(ctx, contents)
}

func (c *Client) generate(ctx context.Context, contents []content) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrLLMNotConfigured
	}

	payload, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrLLMUnavailable, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrLLMUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(c.model, "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(c.model, "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("%w: read response: %v", domain.ErrLLMUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		outcome := "error"
		mapped := c.mapError(resp.StatusCode, body)
		if _, ok := mapped.(*domain.QuotaExceededError); ok {
			outcome = "quota"
		}
		metrics.LLMRequestDuration.WithLabelValues(c.model, outcome).Observe(time.Since(start).Seconds())
		return "", mapped
	}
	metrics.LLMRequestDuration.WithLabelValues(c.model, "ok").Observe(time.Since(start).Seconds())

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrLLMUnavailable, err)
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "(No text in response)", nil
	}
	return sb.String(), nil
}

// mapError converts an upstream error response into the domain error the
// handlers know how to render.
func (c *Client) mapError(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)

	switch {
	case status == http.StatusTooManyRequests || ae.Error.Status == "RESOURCE_EXHAUSTED":
		return &domain.QuotaExceededError{RetryAfter: retryDelay(ae)}
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: model %q not found", domain.ErrLLMUnavailable, c.model)
	default:
		msg := ae.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrLLMUnavailable, status, msg)
	}
}

// retryDelay extracts the RetryInfo hint ("39s") from an error payload.
func retryDelay(ae apiError) time.Duration {
	for _, d := range ae.Error.Details {
		if d.RetryDelay == "" {
			continue
		}
		if delay, err := time.ParseDuration(d.RetryDelay); err == nil && delay > 0 {
			return delay
		}
	}
	return 0
}
