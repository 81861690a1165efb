package state

import (
	"context"
	"sync"
)

// Store persists the last processed trading day so the daily cycle runs
// at most once per day even across process restarts. Dates are
// "2006-01-02" strings in market time.
type Store interface {
	LastRun(ctx context.Context) (string, error)
	SetLastRun(ctx context.Context, day string) error
}

// Memory keeps the marker in process memory only. Used by tests and the
// backtester; a live deployment wants the durable Postgres store.
type Memory struct {
	mu  sync.Mutex
	day string
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) LastRun(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.day, nil
}

func (m *Memory) SetLastRun(ctx context.Context, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.day = day
	return nil
}
