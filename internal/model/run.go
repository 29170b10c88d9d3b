package model

import "time"

// RunState is a step of the pipeline state machine.
type RunState string

const (
	RunStateIdle       RunState = "idle"
	RunStateQueued     RunState = "queued"
	RunStateFetching   RunState = "fetching"
	RunStateGenerating RunState = "generating"
	RunStateSucceeded  RunState = "succeeded"
	RunStateFailed     RunState = "failed"
)

// Terminal reports whether no further transition can happen.
func (s RunState) Terminal() bool {
	return s == RunStateSucceeded || s == RunStateFailed
}

// RunTrigger tells how a run was started.
type RunTrigger string

const (
	TriggerSync  RunTrigger = "sync"
	TriggerQueue RunTrigger = "queue"
	TriggerCLI   RunTrigger = "cli"
)

// RunRequest is an asynchronous run waiting in the queue.
type RunRequest struct {
	ID         string
	EnqueuedAt time.Time
}

// RunRecord is the history entry kept for a single run.
type RunRecord struct {
	ID         string     `json:"run_id"`
	State      RunState   `json:"state"`
	Trigger    RunTrigger `json:"trigger"`
	Result     *RunResult `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	Written    []string   `json:"written_before_failure,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
