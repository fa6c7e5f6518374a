package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Ledger backed by a mutex-guarded map.
// Suitable for tests and single-process deployments; entries live for the
// lifetime of the process.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time)}
}

// RecordIfNew atomically records the key if it has not been seen before.
func (m *Memory) RecordIfNew(_ context.Context, key string) (Result, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.entries[key]; seen {
		return AlreadyProcessed, nil
	}
	m.entries[key] = time.Now().UTC()
	return Accepted, nil
}

// Release removes the key so the payment event can be retried.
func (m *Memory) Release(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of recorded entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
