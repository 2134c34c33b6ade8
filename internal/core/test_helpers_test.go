package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roomtalk/roomtalk-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent drains the channel for a short window and fails if an event of
// the given kind shows up.
func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v received", kind)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// memStore is an in-memory store.Store used by hub tests.
type memStore struct {
	mu       sync.Mutex
	messages []*store.Message
	users    []*store.User

	failCreateMessage bool
	presenceCalls     int
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) CreateUser(_ context.Context, u *store.User) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
	return u, nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListUsers(_ context.Context) ([]*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*store.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *memStore) SetUserPresence(_ context.Context, id, status string, newMessages map[string]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presenceCalls++
	for _, u := range m.users {
		if u.ID == id {
			u.Status = status
			u.NewMessages = newMessages
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) CreateMessage(_ context.Context, msg *store.Message) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateMessage {
		return nil, errors.New("store unavailable")
	}
	msg.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) ListRoomMessages(_ context.Context, room string) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Message
	for _, msg := range m.messages {
		if msg.To == room {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) setFailCreateMessage(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCreateMessage = fail
}

func (m *memStore) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *memStore) presenceCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presenceCalls
}
