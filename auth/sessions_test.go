package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"invest-retro/cache"
)

// memoryStore is an in-process SessionStore with the same miss semantics
// as the Redis wrapper
type memoryStore struct {
	values map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string][]byte{}}
}

func (s *memoryStore) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = b
	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string, dest interface{}) error {
	b, ok := s.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(newMemoryStore(), time.Minute)

	token, err := m.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("issued token must not be empty")
	}

	other, err := m.Issue(ctx, 43)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == token {
		t.Fatal("tokens must be unique per session")
	}

	userID, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected user 42, got %d", userID)
	}

	if err := m.Revoke(ctx, token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Resolve(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("revoked token should resolve to ErrInvalidSession, got %v", err)
	}

	// The other session survives the revoke
	if userID, err := m.Resolve(ctx, other); err != nil || userID != 43 {
		t.Errorf("unrelated session lost: user=%d err=%v", userID, err)
	}
}

func TestResolveRejectsEmptyAndUnknownTokens(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(newMemoryStore(), time.Minute)

	if _, err := m.Resolve(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("empty token should resolve to ErrInvalidSession, got %v", err)
	}
	if _, err := m.Resolve(ctx, "ffffffff-0000-0000-0000-000000000000"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("unknown token should resolve to ErrInvalidSession, got %v", err)
	}
}
