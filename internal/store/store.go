// Package store keeps an in-memory, bounded history of pipeline runs.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/fairyhunter13/product-description-generator/internal/model"
)

const defaultLimit = 50

type runState struct {
	rec   model.RunRecord
	order uint64
}

type Store struct {
	mu    sync.RWMutex
	m     map[string]runState
	limit int
	next  uint64
}

// New returns a store keeping at most limit records; the oldest record is
// evicted first.
func New(limit int) *Store {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Store{m: make(map[string]runState), limit: limit}
}

func (s *Store) Get(id string) (model.RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[id]
	if !ok {
		return model.RunRecord{}, false
	}
	return st.rec, true
}

// Create registers a new run. An existing record with the same id is kept.
func (s *Store) Create(id string, trigger model.RunTrigger, state model.RunState) model.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.m[id]; ok {
		return st.rec
	}
	s.next++
	rec := model.RunRecord{ID: id, State: state, Trigger: trigger, CreatedAt: time.Now().UTC()}
	s.m[id] = runState{rec: rec, order: s.next}
	s.evictLocked()
	return rec
}

// SetState records a non-terminal transition. Terminal records are frozen.
func (s *Store) SetState(id string, state model.RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	if !ok || st.rec.State.Terminal() {
		return
	}
	st.rec.State = state
	s.m[id] = st
}

// Succeed stores the terminal artifact of a successful run.
func (s *Store) Succeed(id string, res *model.RunResult) {
	s.finish(id, func(rec *model.RunRecord) {
		rec.State = model.RunStateSucceeded
		rec.Result = res
	})
}

// Fail stores the failure message and the products written before it.
func (s *Store) Fail(id string, err error, written []string) {
	s.finish(id, func(rec *model.RunRecord) {
		rec.State = model.RunStateFailed
		rec.Error = err.Error()
		rec.Written = written
	})
}

func (s *Store) finish(id string, apply func(*model.RunRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	if !ok || st.rec.State.Terminal() {
		return
	}
	apply(&st.rec)
	now := time.Now().UTC()
	st.rec.FinishedAt = &now
	s.m[id] = st
}

// Remove drops a record that never started.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) []model.RunRecord {
	s.mu.RLock()
	states := make([]runState, 0, len(s.m))
	for _, st := range s.m {
		states = append(states, st)
	}
	s.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return states[i].order > states[j].order })
	if limit > 0 && len(states) > limit {
		states = states[:limit]
	}
	out := make([]model.RunRecord, len(states))
	for i, st := range states {
		out[i] = st.rec
	}
	return out
}

func (s *Store) evictLocked() {
	for len(s.m) > s.limit {
		var (
			oldestID string
			oldest   uint64
		)
		for id, st := range s.m {
			if oldestID == "" || st.order < oldest {
				oldestID, oldest = id, st.order
			}
		}
		delete(s.m, oldestID)
	}
}
