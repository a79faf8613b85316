package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/cascade/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Result
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Result),
	}
}

// Save persists a copy of the result in memory.
func (s *Store) Save(ctx context.Context, runID string, result *domain.Result) error {
	copied := cloneResult(result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = copied
	return nil
}

// Load retrieves a copy of the result so callers can't mutate store state by pointer.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return cloneResult(result), nil
}

// Delete removes the result.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.data)), nil
}

func cloneResult(r *domain.Result) *domain.Result {
	out := *r
	out.Reactions = slices.Clone(r.Reactions)
	out.Pool = slices.Clone(r.Pool)
	out.Distribution = maps.Clone(r.Distribution)
	return &out
}
