package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"orderdesk/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.DispatchRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.DispatchRecord), now: time.Now}
}

func (s *MemoryStore) StatusFor(_ context.Context, orderID string) (*model.DispatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[orderID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) MarkDispatched(_ context.Context, orderID string) (model.DispatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := newRecord(s.now)
	s.records[orderID] = rec
	return rec, nil
}

func (s *MemoryStore) All(_ context.Context) (map[string]model.DispatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.records), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
