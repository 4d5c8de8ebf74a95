// Package memory keeps benchmark runs in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hepframe/hepframe/internal/core/storage"
)

// RunStore is an in-memory storage.RunStore. Useful for tests and for
// benchmarking without a database.
type RunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]storage.Run
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[uuid.UUID]storage.Run)}
}

func (s *RunStore) SaveRun(ctx context.Context, run *storage.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return storage.ErrDuplicate
	}
	s.runs[run.ID] = *run
	return nil
}

func (s *RunStore) GetRun(ctx context.Context, id uuid.UUID) (*storage.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &run, nil
}

func (s *RunStore) ListRuns(ctx context.Context, query int, limit int) ([]*storage.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*storage.Run{}
	for _, r := range s.runs {
		if query != 0 && r.Query != query {
			continue
		}
		run := r
		out = append(out, &run)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].Repetition > out[j].Repetition
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
