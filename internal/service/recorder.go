package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/studydeck/backend/internal/domain/practice"
	"github.com/studydeck/backend/internal/worker"
)

// AttemptStore is the persistence surface the recorder writes through.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, attempt practice.Attempt) error
}

// RecorderService persists answer attempts asynchronously through a
// worker pool, bounding concurrent writes. It implements
// practice.AttemptRecorder: enqueueing never fails, write errors are
// logged and counted but never reach the session.
type RecorderService struct {
	store  AttemptStore
	logger *slog.Logger
	pool   *worker.Pool[error]

	pending  sync.WaitGroup
	failures atomic.Uint64
}

func NewRecorderService(store AttemptStore, logger *slog.Logger, workers, queueSize int) *RecorderService {
	rs := &RecorderService{
		store:  store,
		logger: logger,
		pool:   worker.NewPool[error](workers, queueSize),
	}
	go rs.drainResults()
	return rs
}

// RecordAttempt enqueues the write and returns immediately.
func (rs *RecorderService) RecordAttempt(ctx context.Context, attempt practice.Attempt) error {
	rs.pending.Add(1)
	rs.pool.Submit(attempt.QuestionID, func() error {
		// Writes run detached from the submitting request and must not
		// be cancelled with it.
		return rs.store.RecordAttempt(context.Background(), attempt)
	})
	return nil
}

func (rs *RecorderService) drainResults() {
	for res := range rs.pool.Results() {
		if res.Output != nil {
			rs.failures.Add(1)
			rs.logger.Error("failed to persist attempt",
				"question_id", res.JobID,
				"error", res.Output,
			)
		}
		rs.pending.Done()
	}
}

// Drain blocks until every enqueued attempt has been written (or has
// failed and been logged).
func (rs *RecorderService) Drain() {
	rs.pending.Wait()
}

// Failures reports how many writes have failed since startup.
func (rs *RecorderService) Failures() uint64 {
	return rs.failures.Load()
}

// Close drains pending writes and shuts the pool down.
func (rs *RecorderService) Close() {
	rs.pending.Wait()
	rs.pool.Close()
}
