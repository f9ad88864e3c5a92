package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// fakeCounterStore simulates fixed-window counters with manual clock
// control for window expiry.
type fakeCounterStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Time
	now     time.Time
	err     error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Time),
		now:     time.Now(),
	}
}

func (s *fakeCounterStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if expiry, ok := s.expires[key]; ok && !s.now.Before(expiry) {
		delete(s.counts, key)
		delete(s.expires, key)
	}
	s.counts[key]++
	if s.counts[key] == 1 {
		s.expires[key] = s.now.Add(window)
	}
	return s.counts[key], nil
}

func (s *fakeCounterStore) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func newLimitedEcho(store *fakeCounterStore, requests int, window time.Duration) *echo.Echo {
	e := echo.New()
	e.Use(RequestID())
	e.Use(RateLimit(RateLimitConfig{
		Store:    store,
		Requests: requests,
		Window:   window,
		Logger:   zerolog.Nop(),
	}))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func doRequest(e *echo.Echo, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRateLimit_RejectsFourthRequest(t *testing.T) {
	store := newFakeCounterStore()
	e := newLimitedEcho(store, 3, 60*time.Second)

	for i := 0; i < 3; i++ {
		rec := doRequest(e, "9.9.9.9:1234", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := doRequest(e, "9.9.9.9:1234", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["detail"] != "Too many requests" {
		t.Fatalf("unexpected detail: %q", body["detail"])
	}
	if body["request_id"] == "" {
		t.Fatalf("rejection body must carry the request id")
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("rejection must carry the request id header")
	}
}

func TestRateLimit_WindowExpiryResetsCounter(t *testing.T) {
	store := newFakeCounterStore()
	e := newLimitedEcho(store, 2, 60*time.Second)

	// limit=2, window=60s against a single client identity.
	if rec := doRequest(e, "", "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("request 1: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(e, "", "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("request 2: expected 200, got %d", rec.Code)
	}
	rec := doRequest(e, "", "1.2.3.4")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("request 3: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}

	store.advance(61 * time.Second)

	if rec := doRequest(e, "", "1.2.3.4"); rec.Code != http.StatusOK {
		t.Fatalf("request 4 after window expiry: expected 200, got %d", rec.Code)
	}
}

func TestRateLimit_FailsOpenOnStoreError(t *testing.T) {
	store := newFakeCounterStore()
	store.err = errors.New("counter store unreachable")
	e := newLimitedEcho(store, 1, 60*time.Second)

	for i := 0; i < 10; i++ {
		if rec := doRequest(e, "9.9.9.9:1234", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected fail-open 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimit_SeparateClientsSeparateWindows(t *testing.T) {
	store := newFakeCounterStore()
	e := newLimitedEcho(store, 1, 60*time.Second)

	if rec := doRequest(e, "1.1.1.1:1", ""); rec.Code != http.StatusOK {
		t.Fatalf("client A request 1: got %d", rec.Code)
	}
	if rec := doRequest(e, "1.1.1.1:1", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("client A request 2: expected 429, got %d", rec.Code)
	}
	if rec := doRequest(e, "2.2.2.2:1", ""); rec.Code != http.StatusOK {
		t.Fatalf("client B must have its own window, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	e := echo.New()

	cases := []struct {
		name         string
		remoteAddr   string
		forwardedFor string
		want         string
	}{
		{"forwarded first entry wins", "10.0.0.1:555", "1.2.3.4, 5.6.7.8", "1.2.3.4"},
		{"forwarded single entry", "10.0.0.1:555", "1.2.3.4", "1.2.3.4"},
		{"peer address fallback", "10.0.0.1:555", "", "10.0.0.1"},
		{"no identity at all", "", "", "unknown"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remoteAddr
		if tc.forwardedFor != "" {
			req.Header.Set(echo.HeaderXForwardedFor, tc.forwardedFor)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		if got := clientIP(c); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
