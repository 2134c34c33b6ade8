package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// User represents a chat user record.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Picture      string
	Status       string
	NewMessages  map[string]int64 // unread counters keyed by room name
	CreatedAt    time.Time
}

// User presence values.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Message is a persisted chat message. Records are immutable once created.
type Message struct {
	ID        int64
	Content   string
	From      string // sender display name
	To        string // destination room
	Time      string // caller-supplied display string, e.g. "10:03"
	Date      string // caller-supplied calendar date string, e.g. "3/5/2024"
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, u *User) (*User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if missing.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if missing.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers returns the full user roster, oldest first.
	ListUsers(ctx context.Context) ([]*User, error)

	// SetUserPresence updates a user's status and overwrites its unread
	// counters. Returns ErrNotFound if the user does not exist.
	SetUserPresence(ctx context.Context, id, status string, newMessages map[string]int64) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message and returns it with its assigned ID.
	CreateMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListRoomMessages returns every message addressed to the room in
	// insertion order.
	ListRoomMessages(ctx context.Context, room string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
