package memory

import (
	"sync"

	"github.com/JesusVicken/brain-school/internal/session"
)

// RunStore is an in-memory implementation of session.RunRepository.
type RunStore struct {
	mu      sync.RWMutex
	factory session.RunFactory
	runs    map[string]*session.Run
}

func NewRunStore(factory session.RunFactory) *RunStore {
	return &RunStore{
		factory: factory,
		runs:    make(map[string]*session.Run),
	}
}

func (s *RunStore) GetOrCreate(runID string) *session.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[runID]; ok {
		return run
	}
	run := s.factory(runID)
	s.runs[runID] = run
	return run
}

func (s *RunStore) Get(runID string) (*session.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	return run, ok
}

func (s *RunStore) Delete(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
}
