package account

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Account
	byEmail map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[acc.AccountID]; ok {
		return ErrExists
	}
	if _, ok := s.byEmail[acc.Email]; ok {
		return ErrEmailTaken
	}

	s.byID[acc.AccountID] = acc.Clone()
	s.byEmail[acc.Email] = acc.AccountID
	return nil
}

func (s *MemoryStore) Update(_ context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[acc.AccountID]
	if !ok {
		return ErrNotFound
	}

	next := acc.Clone()
	next.Email = current.Email
	next.CreationTimestamp = current.CreationTimestamp
	s.byID[acc.AccountID] = next
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, accountID string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return acc.Clone(), nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone(), nil
}
