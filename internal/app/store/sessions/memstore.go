package sessions

import (
	"context"
	"sync"
	"time"
)

// MemStore keeps sessions in process memory. Sessions do not survive a
// restart.
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]Session
	now  func() time.Time
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]Session), now: time.Now}
}

// WithClock replaces the store's time source. Used by tests.
func (m *MemStore) WithClock(now func() time.Time) *MemStore {
	m.now = now
	return m
}

func (m *MemStore) Create(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.Token] = s
	return nil
}

func (m *MemStore) Get(_ context.Context, token string) (Session, error) {
	m.mu.RLock()
	s, ok := m.byID[token]
	m.mu.RUnlock()
	if !ok || s.Expired(m.now()) {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, token)
	return nil
}

func (m *MemStore) DeleteByAccount(_ context.Context, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, s := range m.byID {
		if s.AccountID == accountID {
			delete(m.byID, tok)
			n++
		}
	}
	return n, nil
}

func (m *MemStore) PurgeExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int64
	for tok, s := range m.byID {
		if s.Expired(now) {
			delete(m.byID, tok)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
