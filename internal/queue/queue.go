package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
)

var (
	// ErrIntakeClosed is returned once the service started shutting down.
	ErrIntakeClosed = errors.New("run queue closed")
	// ErrQueueFull is returned when the configured number of runs is waiting.
	ErrQueueFull = errors.New("run queue full")
)

// Queue holds runs waiting for a worker in submission order.
type Queue struct {
	mu      sync.Mutex
	pending []model.RunRequest
	limit   int
	warnAt  int
	wake    chan struct{}
	closed  atomic.Bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
}

// New returns a queue accepting at most limit waiting runs (0 = unbounded).
// A warning is logged whenever a submission leaves warnAt or more runs
// waiting (0 disables it).
func New(limit, warnAt int) *Queue {
	return &Queue{limit: limit, warnAt: warnAt, wake: make(chan struct{}, 1)}
}

// Enqueue appends req behind the runs already waiting.
func (q *Queue) Enqueue(req model.RunRequest) error {
	if q.closed.Load() {
		return ErrIntakeClosed
	}
	q.mu.Lock()
	if q.limit > 0 && len(q.pending) >= q.limit {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.pending = append(q.pending, req)
	n := len(q.pending)
	q.mu.Unlock()

	q.enqueued.Add(1)
	if q.warnAt > 0 && n >= q.warnAt {
		obs.Named("queue").Warnw("queue_backlog_high", "pending", n, "high_watermark", q.warnAt)
	}
	q.signal()
	return nil
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Next blocks until a run is waiting or ctx is done.
func (q *Queue) Next(ctx context.Context) (model.RunRequest, bool) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			req := q.pending[0]
			q.pending = q.pending[1:]
			more := len(q.pending) > 0
			q.mu.Unlock()
			if more {
				q.signal()
			}
			return req, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return model.RunRequest{}, false
		case <-q.wake:
		}
	}
}

// Position returns the 1-based place of run id among the waiting runs.
func (q *Queue) Position(id string) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, req := range q.pending {
		if req.ID == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Len returns the number of waiting runs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// MarkProcessed counts a run taken by Next as finished.
func (q *Queue) MarkProcessed() { q.processed.Add(1) }

// Metrics returns the enqueued and processed counters and the waiting count.
func (q *Queue) Metrics() (enq, proc uint64, pending int) {
	return q.enqueued.Load(), q.processed.Load(), q.Len()
}

// CloseIntake rejects future submissions. Waiting runs are still handed out.
func (q *Queue) CloseIntake() { q.closed.Store(true) }

// IsShuttingDown reports whether intake has been closed.
func (q *Queue) IsShuttingDown() bool { return q.closed.Load() }
