// Package queue contains the asynchronous usage recorder: a small worker
// pool that persists api_usage rows off the request path.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgechat/backend/internal/api/metrics"
	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 1024
	appendTimeout  = 5 * time.Second
)

// UsageRecorder persists usage records best-effort. Record never blocks:
// when the buffer is full the record is dropped, and append failures are
// logged and discarded. The client-visible response is never affected.
type UsageRecorder struct {
	records chan domain.UsageRecord
	repo    ports.UsageRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
	workers int
}

// NewUsageRecorder creates a UsageRecorder with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewUsageRecorder(repo ports.UsageRepository, numWorkers int, log zerolog.Logger) *UsageRecorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &UsageRecorder{
		records: make(chan domain.UsageRecord, channelBuffer),
		repo:    repo,
		log:     log,
		workers: numWorkers,
	}
}

// Start launches the worker goroutines. Workers drain the buffer and stop
// when ctx is cancelled.
func (r *UsageRecorder) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.runWorker(ctx, i)
	}
}

// Stop waits for all workers to exit. Call after cancelling the Start
// context.
func (r *UsageRecorder) Stop() {
	r.wg.Wait()
}

// Record enqueues one usage record without blocking. A full buffer drops
// the record; usage accounting is best-effort by contract.
func (r *UsageRecorder) Record(record domain.UsageRecord) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	select {
	case r.records <- record:
	default:
		metrics.UsageRecordsTotal.WithLabelValues("dropped").Inc()
		r.log.Debug().Int64("user_id", record.UserID).Msg("usage record dropped, buffer full")
	}
}

func (r *UsageRecorder) runWorker(ctx context.Context, id int) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-r.records:
			if !ok {
				return
			}
			r.append(record, id)
		}
	}
}

func (r *UsageRecorder) append(record domain.UsageRecord, workerID int) {
	// Detached context: the originating request may already be gone.
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := r.repo.Append(ctx, record); err != nil {
		metrics.UsageRecordsTotal.WithLabelValues("failed").Inc()
		r.log.Debug().Err(err).
			Int64("user_id", record.UserID).
			Int("worker_id", workerID).
			Msg("usage append failed")
		return
	}
	metrics.UsageRecordsTotal.WithLabelValues("recorded").Inc()
}
