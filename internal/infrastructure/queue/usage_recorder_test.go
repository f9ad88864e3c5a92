package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgechat/backend/internal/core/domain"
)

type stubUsageRepo struct {
	mu       sync.Mutex
	appended []domain.UsageRecord
	err      error
}

func (r *stubUsageRepo) Append(_ context.Context, record domain.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.appended = append(r.appended, record)
	return nil
}

func (r *stubUsageRepo) Stats(_ context.Context, _ int64) (*domain.UsageStats, error) {
	return &domain.UsageStats{}, nil
}

func (r *stubUsageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appended)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func TestUsageRecorder_PersistsRecords(t *testing.T) {
	repo := &stubUsageRepo{}
	recorder := NewUsageRecorder(repo, 2, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	recorder.Start(ctx)

	for i := 0; i < 10; i++ {
		recorder.Record(domain.UsageRecord{UserID: 1, Path: "/api/v1/auth/me", Method: "GET"})
	}

	waitFor(t, func() bool { return repo.count() == 10 })

	cancel()
	recorder.Stop()
}

func TestUsageRecorder_RecordNeverBlocks(t *testing.T) {
	repo := &stubUsageRepo{}
	// No workers started: the buffer fills and further records must be
	// dropped rather than blocking the caller.
	recorder := NewUsageRecorder(repo, 1, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+100; i++ {
			recorder.Record(domain.UsageRecord{UserID: 1, Path: "/", Method: "GET"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full buffer")
	}
}

func TestUsageRecorder_AppendErrorsAreSwallowed(t *testing.T) {
	repo := &stubUsageRepo{err: errors.New("store down")}
	recorder := NewUsageRecorder(repo, 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	recorder.Start(ctx)

	// Must not panic or surface anywhere; just drain.
	for i := 0; i < 5; i++ {
		recorder.Record(domain.UsageRecord{UserID: 1, Path: "/", Method: "GET"})
	}
	time.Sleep(50 * time.Millisecond)

	cancel()
	recorder.Stop()

	if repo.count() != 0 {
		t.Fatalf("expected no successful appends, got %d", repo.count())
	}
}

func TestUsageRecorder_StampsCreatedAt(t *testing.T) {
	repo := &stubUsageRepo{}
	recorder := NewUsageRecorder(repo, 1, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	recorder.Start(ctx)

	recorder.Record(domain.UsageRecord{UserID: 1, Path: "/", Method: "GET"})
	waitFor(t, func() bool { return repo.count() == 1 })

	cancel()
	recorder.Stop()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.appended[0].CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not stamped")
	}
}
