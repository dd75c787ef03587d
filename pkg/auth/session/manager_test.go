package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func TestManagerStartHasRevoke(t *testing.T) {
	store := newMockStore()
	manager := &Manager{
		store: store,
		keyer: store,
		ttl:   time.Hour,
	}

	ctx := context.Background()
	accessID := "access-123"

	if err := manager.Start(ctx, accessID, "user-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if stored := store.data[store.SessionKey(accessID)]; stored != "user-1" {
		t.Fatalf("expected stored user id, got %q", stored)
	}

	active, err := manager.Has(ctx, accessID)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !active {
		t.Fatal("expected session to be active")
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	active, err = manager.Has(ctx, accessID)
	if err != nil {
		t.Fatalf("has after revoke: %v", err)
	}
	if active {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestManagerHasUnknownSession(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	active, err := manager.Has(context.Background(), "never-started")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if active {
		t.Fatal("unknown session reported active")
	}
}

func TestManagerStartRequiresAccessID(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}

	if err := manager.Start(context.Background(), "  ", "user-1"); err == nil {
		t.Fatal("expected error for blank access id")
	}
	active, err := manager.Has(context.Background(), "")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if active {
		t.Fatal("blank access id reported active")
	}
}
