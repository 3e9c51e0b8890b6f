package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invest-retro/cache"
)

// ErrInvalidSession is returned when a bearer token is unknown or expired
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionStore is the slice of the cache the session manager needs
type SessionStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// SessionManager issues and resolves opaque bearer tokens. Tokens are
// random UUIDs mapped to a user id in the store with a TTL; nothing about
// the user is encoded in the token itself.
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(store SessionStore, ttl time.Duration) *SessionManager {
	return &SessionManager{
		store: store,
		ttl:   ttl,
	}
}

// Issue creates a new session token for the user
func (m *SessionManager) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := m.store.Set(ctx, sessionKey(token), userID, m.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id a token was issued to
func (m *SessionManager) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}

	var userID int64
	err := m.store.Get(ctx, sessionKey(token), &userID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, ErrInvalidSession
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}
	return userID, nil
}

// Revoke deletes a session token
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	return m.store.Delete(ctx, sessionKey(token))
}

func sessionKey(token string) string {
	return fmt.Sprintf("auth:session:%s", token)
}
