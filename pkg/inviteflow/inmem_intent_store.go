package inviteflow

import (
	"context"
	"sync"
)

// InMemoryIntentStore implements IntentStore with process-local storage
type InMemoryIntentStore struct {
	mu     sync.RWMutex
	intent PendingInviteIntent
	exists bool
}

// NewInMemoryIntentStore creates a new in-memory intent store
func NewInMemoryIntentStore() *InMemoryIntentStore {
	return &InMemoryIntentStore{}
}

// Get returns the stored intent, reporting whether one exists
func (s *InMemoryIntentStore) Get(ctx context.Context) (PendingInviteIntent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intent, s.exists, nil
}

// Put stores the intent, replacing any previous record
func (s *InMemoryIntentStore) Put(ctx context.Context, intent PendingInviteIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = intent
	s.exists = true
	return nil
}

// Clear deletes the stored intent
func (s *InMemoryIntentStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = PendingInviteIntent{}
	s.exists = false
	return nil
}
