// SPDX-License-Identifier: MIT
package job

import (
	"fmt"
	"sync"
	"time"
)

// Store abstracts job persistence so lifetime and locking discipline
// live in one place. Implementations must allow one writer per job with
// concurrent readers, and must return snapshots rather than shared
// references.
type Store interface {
	// Create inserts a new job record; the id must be unused.
	Create(j Job) error
	// Get returns a snapshot of the job, or ErrNotFound.
	Get(id string) (Job, error)
	// Update applies mutate to the stored job under the store's write
	// discipline, stamps UpdatedAt, and returns the new snapshot.
	Update(id string, mutate func(*Job)) (Job, error)
}

// MemoryStore keeps all jobs in a process-local map guarded by a
// read-write mutex. This is the default backend; jobs are never deleted
// by the core, retention is the caller's concern.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job)}
}

// Create inserts a new job record.
func (s *MemoryStore) Create(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[j.ID]; exists {
		return fmt.Errorf("job %q already exists", j.ID)
	}
	s.jobs[j.ID] = j.snapshot()
	return nil
}

// Get returns a snapshot of the job.
func (s *MemoryStore) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j.snapshot(), nil
}

// Update applies mutate under the write lock and returns the result.
func (s *MemoryStore) Update(id string, mutate func(*Job)) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	mutate(&j)
	j.UpdatedAt = time.Now().UTC()
	s.jobs[id] = j.snapshot()
	return j.snapshot(), nil
}
