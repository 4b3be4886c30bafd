package order

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Note is an audit trail entry attached to an order.
type Note struct {
	ID        string
	OrderID   int64
	Text      string
	CreatedAt time.Time
}

// Memory is an in-memory Store used in tests and local development. It
// applies the same transition rules as the Postgres store.
type Memory struct {
	mu     sync.Mutex
	orders map[int64]Order
	notes  map[int64][]Note
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		orders: make(map[int64]Order),
		notes:  make(map[int64][]Note),
	}
}

// Put seeds or replaces an order.
func (m *Memory) Put(o Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, id int64) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// UpdateStatus implements Store.
func (m *Memory) UpdateStatus(_ context.Context, id int64, status Status, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status == status || demotes(o.Status, status) {
		return nil
	}
	o.Status = status
	m.orders[id] = o
	if note != "" {
		m.appendLocked(id, note)
	}
	return nil
}

// MarkPaymentComplete implements Store.
func (m *Memory) MarkPaymentComplete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status.Paid() {
		return nil
	}
	o.Status = StatusProcessing
	m.orders[id] = o
	return nil
}

// AppendNote implements Store.
func (m *Memory) AppendNote(_ context.Context, id int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	m.appendLocked(id, text)
	return nil
}

// Notes returns the audit trail recorded for an order.
func (m *Memory) Notes(id int64) []Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Note, len(m.notes[id]))
	copy(out, m.notes[id])
	return out
}

func (m *Memory) appendLocked(id int64, text string) {
	m.notes[id] = append(m.notes[id], Note{
		ID:        uuid.NewString(),
		OrderID:   id,
		Text:      text,
		CreatedAt: time.Now(),
	})
}
