package otp

import (
	"context"
	"sync"
	"time"

	"github.com/azedu/quizdesk/core/user"
)

type inMemEntry struct {
	code      string
	expiresAt time.Time
}

// InMemStore holds codes in a map for tests and local development.
type InMemStore struct {
	mutex   sync.RWMutex
	entries map[string]inMemEntry
	nowFunc func() time.Time
}

var _ user.OTPStore = (*InMemStore)(nil)

func NewInMemStore() *InMemStore {
	return &InMemStore{
		entries: make(map[string]inMemEntry),
		nowFunc: time.Now,
	}
}

func (s *InMemStore) Set(_ context.Context, email, code string, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[email] = inMemEntry{code: code, expiresAt: s.nowFunc().Add(ttl)}
	return nil
}

func (s *InMemStore) Get(_ context.Context, email string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, ok := s.entries[email]
	if !ok || s.nowFunc().After(entry.expiresAt) {
		return "", user.ErrOTPInvalid
	}
	return entry.code, nil
}

func (s *InMemStore) Delete(_ context.Context, email string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, email)
	return nil
}
