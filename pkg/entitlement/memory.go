package entitlement

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store backed by a mutex-guarded map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Entitlement
}

// NewMemoryStore creates an empty in-memory entitlement store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Entitlement)}
}

// Get retrieves the entitlement for a payer.
func (s *MemoryStore) Get(_ context.Context, payer string) (*Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[payer]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy so callers cannot mutate stored state without Save.
	return &rec, nil
}

// Save upserts the payer's entitlement record.
func (s *MemoryStore) Save(_ context.Context, e *Entitlement) error {
	if e == nil || e.Payer == "" {
		return ErrInvalidPayer
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[e.Payer] = *e
	return nil
}
