package storage

import (
	"context"
	"sync"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// MemoryStore keeps briefs in process. Used for one-shot CLI runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]*model.IntelligenceBrief
	byRun  map[string]*model.IntelligenceBrief
}

var _ BriefStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		latest: map[string]*model.IntelligenceBrief{},
		byRun:  map[string]*model.IntelligenceBrief{},
	}
}

func (s *MemoryStore) Save(_ context.Context, b *model.IntelligenceBrief) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[b.OrganizationID] = b
	s.byRun[b.RunID] = b
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, orgID string) (*model.IntelligenceBrief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.latest[orgID]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Get(_ context.Context, runID string) (*model.IntelligenceBrief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byRun[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}
