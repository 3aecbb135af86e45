// Package store implements the session handoff and payment status stores.
package store

import (
	"context"
	"sync"

	"github.com/vakinha/checkout/internal/domain"
)

// MemoryHandoffStore keeps handoffs for the life of the process.
type MemoryHandoffStore struct {
	mu      sync.RWMutex
	records map[string]domain.SessionHandoff
}

func NewMemoryHandoffStore() *MemoryHandoffStore {
	return &MemoryHandoffStore{records: make(map[string]domain.SessionHandoff)}
}

func (s *MemoryHandoffStore) Save(_ context.Context, sessionID string, h domain.SessionHandoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = h
	return nil
}

func (s *MemoryHandoffStore) Load(_ context.Context, sessionID string) (*domain.SessionHandoff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.records[sessionID]
	if !ok {
		return nil, domain.ErrNoActiveCheckout
	}
	return &h, nil
}

// MemoryStatusStore keeps payment statuses for the life of the process.
type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]domain.PaymentStatus
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[string]domain.PaymentStatus)}
}

func (s *MemoryStatusStore) Put(_ context.Context, status domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.PaymentID] = status
	return nil
}

func (s *MemoryStatusStore) Get(_ context.Context, paymentID string) (*domain.PaymentStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[paymentID]
	if !ok {
		return nil, domain.ErrChargeNotFound
	}
	return &st, nil
}
