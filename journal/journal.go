// Package journal records order submissions so that overlapping runs
// cannot submit the same entry twice. It is not a trade history; the
// broker remains the system of record for positions.
package journal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusOpened    Status = "opened"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Submission is one claimed idempotency key.
type Submission struct {
	Key       string
	TickID    string
	Symbol    string
	Units     float64
	TradeID   string
	Status    Status
	CreatedAt time.Time
}

// Claimer hands out idempotency keys. Claim returns false when the key was
// already taken by an earlier submission.
type Claimer interface {
	Claim(ctx context.Context, key, tickID, symbol string, units float64) (bool, error)
	Complete(ctx context.Context, key, tradeID string, status Status) error
	Close() error
}

// Key identifies one entry attempt: the symbol and the open time of the
// bar the signal was read from.
func Key(symbol string, bar time.Time) string {
	return fmt.Sprintf("%s@%s", symbol, bar.UTC().Format(time.RFC3339))
}

// Memory is a process-local Claimer used when no database is configured.
type Memory struct {
	mu   sync.Mutex
	subs map[string]Submission
}

var _ Claimer = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]Submission)}
}

func (m *Memory) Claim(ctx context.Context, key, tickID, symbol string, units float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[key]; ok {
		return false, nil
	}
	m.subs[key] = Submission{
		Key:       key,
		TickID:    tickID,
		Symbol:    symbol,
		Units:     units,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	return true, nil
}

func (m *Memory) Complete(ctx context.Context, key, tradeID string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[key]
	if !ok {
		return fmt.Errorf("complete %s: %w", key, ErrUnknownKey)
	}
	s.TradeID = tradeID
	s.Status = status
	m.subs[key] = s
	return nil
}

// Get returns the submission stored under key.
func (m *Memory) Get(key string) (Submission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[key]
	return s, ok
}

func (m *Memory) Close() error { return nil }
