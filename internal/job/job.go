// SPDX-License-Identifier: MIT

// Package job owns asynchronous job records: the state machine, the
// store abstraction, and the worker-pool manager that executes
// conversion and cloning work off the submitting call.
package job

import (
	"errors"
	"time"

	"voiceforge/internal/voice"
)

// ErrNotFound is returned by status lookups for unknown job ids.
var ErrNotFound = errors.New("job: not found")

// Kind identifies which engine a job runs.
type Kind string

const (
	KindConvert Kind = "convert"
	KindClone   Kind = "clone"
)

// Status is the job lifecycle state. Transitions are strictly
// queued -> processing -> completed|failed; terminal states are final.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is the mutable record tracking one submitted work item. Exactly
// one worker writes a job after creation; everyone else reads
// snapshots through the store.
type Job struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Status    Status         `json:"status"`
	Progress  float64        `json:"progress"`
	Message   string         `json:"message"`
	ResultRef string         `json:"result_ref,omitempty"`
	Error     string         `json:"error,omitempty"`
	Analysis  *voice.Profile `json:"analysis,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Terminal reports whether the job has reached a final state.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// snapshot returns a copy safe to hand to concurrent readers. The MFCC
// slice is the only reference field worth isolating.
func (j Job) snapshot() Job {
	out := j
	if j.Analysis != nil {
		analysis := *j.Analysis
		analysis.MFCC = append([]float64(nil), j.Analysis.MFCC...)
		out.Analysis = &analysis
	}
	return out
}

// Event is the change notification surfaced to subscribers on every
// state or progress transition.
type Event struct {
	JobID    string  `json:"job_id"`
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
}
