package redis

import (
	"context"
	"sync"
	"time"

	"github.com/JesusVicken/brain-school/internal/session"
	"github.com/redis/go-redis/v9"
)

// RunStore is a Redis-aware implementation of session.RunRepository.
// Notes:
//   - Runs themselves stay in a local map; the state machine's timers and
//     subscriber channels are in-process by nature.
//   - Redis marks run liveness so an operator (or a future cross-instance
//     router) can see which runs are active and where.
type RunStore struct {
	client  *redis.Client
	ttl     time.Duration
	factory session.RunFactory
	mu      sync.RWMutex
	runs    map[string]*session.Run
}

func NewRunStore(client *redis.Client, ttl time.Duration, factory session.RunFactory) *RunStore {
	return &RunStore{
		client:  client,
		ttl:     ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(runID), "1", s.ttl).Err()
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
	if _, ok := s.runs[runID]; !ok {
		return
	}
	delete(s.runs, runID)
	_ = s.client.Del(context.Background(), s.key(runID)).Err()
}

func (s *RunStore) key(runID string) string {
	return "quiz:run:" + runID
}
