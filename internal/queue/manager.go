// Package queue implements an in-memory run queue and the manager executing
// queued and synchronous pipeline runs.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/product-description-generator/internal/config"
	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
	"github.com/fairyhunter13/product-description-generator/internal/pipeline"
	"github.com/fairyhunter13/product-description-generator/internal/store"
)

// Runner executes one pipeline run.
type Runner interface {
	RunObserved(ctx context.Context, observe pipeline.Observer) (*model.RunResult, error)
}

// Manager coordinates workers processing queued runs and records every run,
// queued or synchronous, in the store.
type Manager struct {
	cfg    config.Config
	q      *Queue
	st     *store.Store
	runner Runner
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewManager constructs a Manager with the given config, queue, store and runner.
func NewManager(cfg config.Config, q *Queue, st *store.Store, runner Runner) *Manager {
	return &Manager{cfg: cfg, q: q, st: st, runner: runner}
}

// Start begins processing queued runs in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.addWorkers(m.cfg.RunWorkers)
}

// Stop cancels background routines and stops workers.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

// addWorkers spawns n workers.
func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Named("queue").Infow("workers_started", "worker_count", len(m.workerCancels))
}

// worker drains run requests from the queue and executes them.
func (m *Manager) worker(ctx context.Context) {
	for {
		req, ok := m.q.Next(ctx)
		if !ok {
			return
		}
		obs.Named("queue").Infow("run_dequeued", "run_id", req.ID, "waited", time.Since(req.EnqueuedAt))
		_, _ = m.execute(ctx, req.ID)
		m.q.MarkProcessed()
	}
}

// Submit records a queued run and enqueues it. It fails with ErrIntakeClosed
// once intake is closed and with ErrQueueFull when no slot is left; no record
// is kept in either case.
func (m *Manager) Submit() (model.RunRecord, error) {
	if m.q.IsShuttingDown() {
		return model.RunRecord{}, ErrIntakeClosed
	}
	id := uuid.NewString()
	rec := m.st.Create(id, model.TriggerQueue, model.RunStateQueued)
	if err := m.q.Enqueue(model.RunRequest{ID: id, EnqueuedAt: rec.CreatedAt}); err != nil {
		m.st.Remove(id)
		return model.RunRecord{}, err
	}
	return rec, nil
}

// RunNow records and executes a run on the caller's goroutine.
func (m *Manager) RunNow(ctx context.Context, trigger model.RunTrigger) (string, *model.RunResult, error) {
	id := uuid.NewString()
	m.st.Create(id, trigger, model.RunStateIdle)
	res, err := m.execute(ctx, id)
	return id, res, err
}

func (m *Manager) execute(ctx context.Context, id string) (*model.RunResult, error) {
	log := obs.Named("queue").With("run_id", id)
	log.Infow("run_started")
	res, err := m.runner.RunObserved(ctx, func(s model.RunState) {
		if !s.Terminal() {
			m.st.SetState(id, s)
		}
	})
	if err != nil {
		var aborted *pipeline.ErrBatchAborted
		var written []string
		if errors.As(err, &aborted) {
			written = aborted.Written
		}
		m.st.Fail(id, err, written)
		log.Warnw("run_failed", "error", err)
		return nil, err
	}
	m.st.Succeed(id, res)
	log.Infow("run_finished", "message", res.Message)
	return res, nil
}

// QueueDepth returns the number of runs waiting for a worker.
func (m *Manager) QueueDepth() int { return m.q.Len() }

// Position returns the 1-based queue position of a waiting run.
func (m *Manager) Position(id string) (int, bool) { return m.q.Position(id) }

// WorkerCount returns the current number of workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// IsShuttingDown reports whether new submissions are rejected.
func (m *Manager) IsShuttingDown() bool { return m.q.IsShuttingDown() }

// CloseIntake disallows future submissions.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// QueueMetrics exposes the underlying queue counters.
func (m *Manager) QueueMetrics() (enq, proc uint64, pending int) {
	return m.q.Metrics()
}

// DrainUntil blocks until every queued run finished or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, pending := m.q.Metrics()
		if pending == 0 && enq == proc {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
