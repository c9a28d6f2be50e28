package runner

import (
	"sync"

	"github.com/azrulhm/eplingest/workflow"
)

// MemoryStore keeps run history in memory only (no persistence).
type MemoryStore struct {
	runs []workflow.Status
	mu   sync.Mutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make([]workflow.Status, 0),
	}
}

// Runs returns all stored runs, most recent first.
func (s *MemoryStore) Runs() []workflow.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]workflow.Status, len(s.runs))
	copy(result, s.runs)
	return result
}

// Save stores a run in memory.
func (s *MemoryStore) Save(status workflow.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Prepend to keep most recent first
	s.runs = append([]workflow.Status{status}, s.runs...)
	return nil
}
