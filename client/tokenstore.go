// Package client implements the consumer side of the Quizdesk API:
// durable session storage, profile resolution, an authentication read
// model, role-gated route decisions, role-derived navigation and the
// quiz countdown.
package client

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrNoToken is returned when no session token is stored.
var ErrNoToken = errors.New("no token stored")

type (
	// TokenStore persists the session bearer token across restarts.
	// It performs no validation of the token's format or expiry.
	TokenStore interface {
		Token() (string, error)
		SetToken(token string) error
		Clear() error
	}

	// fileTokenStore keeps the token in a single file.
	fileTokenStore struct {
		path string
	}

	// InMemTokenStore keeps the token in memory. Used in tests and
	// wherever durability is not wanted.
	InMemTokenStore struct {
		mutex sync.RWMutex
		token string
	}
)

var (
	_ TokenStore = (*fileTokenStore)(nil)
	_ TokenStore = (*InMemTokenStore)(nil)
)

func NewFileTokenStore(path string) *fileTokenStore {
	return &fileTokenStore{path: path}
}

func (store *fileTokenStore) Token() (string, error) {
	data, err := os.ReadFile(store.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", errors.Wrap(err, "reading token file")
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (store *fileTokenStore) SetToken(token string) error {
	if err := os.WriteFile(store.path, []byte(token), 0600); err != nil {
		return errors.Wrap(err, "writing token file")
	}
	return nil
}

func (store *fileTokenStore) Clear() error {
	if err := os.Remove(store.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing token file")
	}
	return nil
}

func NewInMemTokenStore() *InMemTokenStore {
	return &InMemTokenStore{}
}

func (store *InMemTokenStore) Token() (string, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	if store.token == "" {
		return "", ErrNoToken
	}
	return store.token, nil
}

func (store *InMemTokenStore) SetToken(token string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	store.token = token
	return nil
}

func (store *InMemTokenStore) Clear() error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	store.token = ""
	return nil
}
