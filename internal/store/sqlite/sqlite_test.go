package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/roomtalk/roomtalk-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndListRoomMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msgs := []*store.Message{
		{Content: "first", From: "alice", To: "general", Time: "9:00", Date: "3/5/2024"},
		{Content: "second", From: "bob", To: "general", Time: "9:01", Date: "3/5/2024"},
		{Content: "other room", From: "carol", To: "tech", Time: "9:02", Date: "3/5/2024"},
	}
	for _, m := range msgs {
		created, err := s.CreateMessage(ctx, m)
		if err != nil {
			t.Fatalf("create message: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("expected assigned message ID")
		}
	}

	got, err := s.ListRoomMessages(ctx, "general")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	// Insertion order.
	if got[0].Content != "first" || got[1].Content != "second" {
		t.Fatalf("unexpected order: %q, %q", got[0].Content, got[1].Content)
	}
	if got[0].From != "alice" || got[0].To != "general" || got[0].Time != "9:00" || got[0].Date != "3/5/2024" {
		t.Fatalf("message fields lost: %+v", got[0])
	}

	empty, err := s.ListRoomMessages(ctx, "ghost")
	if err != nil {
		t.Fatalf("list unknown room: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no messages for unknown room, got %d", len(empty))
	}
}

func TestCreateAndFetchUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, &store.User{
		Name:         "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Picture:      "pic.png",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned user ID")
	}
	if created.Status != store.StatusOffline {
		t.Fatalf("expected offline default, got %q", created.Status)
	}
	if created.NewMessages == nil || len(created.NewMessages) != 0 {
		t.Fatalf("expected empty counters, got %v", created.NewMessages)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("email lookup returned %q, want %q", byEmail.ID, created.ID)
	}

	if _, err := s.GetUserByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Duplicate email violates the unique constraint.
	if _, err := s.CreateUser(ctx, &store.User{Name: "alice2", Email: "alice@example.com", PasswordHash: "h"}); err == nil {
		t.Fatal("expected duplicate email error")
	}
}

func TestSetUserPresence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, &store.User{Name: "bob", Email: "bob@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	counters := map[string]int64{"general": 3, "tech": 1}
	if err := s.SetUserPresence(ctx, created.ID, store.StatusOffline, counters); err != nil {
		t.Fatalf("set presence: %v", err)
	}

	got, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Status != store.StatusOffline {
		t.Fatalf("status = %q", got.Status)
	}
	if got.NewMessages["general"] != 3 || got.NewMessages["tech"] != 1 {
		t.Fatalf("counters = %v", got.NewMessages)
	}

	if err := s.SetUserPresence(ctx, "missing", store.StatusOffline, nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsersOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []*store.User{
		{ID: "1", Name: "alice", Email: "a@example.com", PasswordHash: "h"},
		{ID: "2", Name: "bob", Email: "b@example.com", PasswordHash: "h"},
	} {
		if _, err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "alice" || users[1].Name != "bob" {
		t.Fatalf("unexpected roster order: %q, %q", users[0].Name, users[1].Name)
	}
}
