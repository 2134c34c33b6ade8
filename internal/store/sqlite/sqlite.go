package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roomtalk/roomtalk-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	picture       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'offline',
	new_messages  TEXT NOT NULL DEFAULT '{}',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL,
	sender     TEXT NOT NULL,
	room       TEXT NOT NULL,
	time       TEXT NOT NULL,
	date       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser inserts a new user record. A missing ID is assigned here.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *store.User) (*store.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = store.StatusOffline
	}

	counters, err := encodeCounters(u.NewMessages)
	if err != nil {
		return nil, fmt.Errorf("encode new_messages: %w", err)
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, picture, status, new_messages)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.Picture, u.Status, counters); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUserByID(ctx, u.ID)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, name, email, password_hash, picture, status, new_messages, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, name, email, password_hash, picture, status, new_messages, created_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// ListUsers returns the full roster, oldest first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*store.User, error) {
	query := `
		SELECT id, name, email, password_hash, picture, status, new_messages, created_at
		FROM users
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		u, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// SetUserPresence updates status and overwrites the unread counters.
func (s *SQLiteStore) SetUserPresence(ctx context.Context, id, status string, newMessages map[string]int64) error {
	counters, err := encodeCounters(newMessages)
	if err != nil {
		return fmt.Errorf("encode new_messages: %w", err)
	}

	query := `
		UPDATE users
		SET status = ?, new_messages = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, status, counters, id)
	if err != nil {
		return fmt.Errorf("update user presence: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// ==== MessageStore implementation ====

// CreateMessage persists a message and returns it with its assigned ID.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	query := `
		INSERT INTO messages (content, sender, room, time, date)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.Content, msg.From, msg.To, msg.Time, msg.Date)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getMessageByID(ctx, id)
}

// ListRoomMessages returns every message addressed to the room in insertion order.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, room string) ([]*store.Message, error) {
	query := `
		SELECT id, content, sender, room, time, date, created_at
		FROM messages
		WHERE room = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, room)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.From, &m.To, &m.Time, &m.Date, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

func (s *SQLiteStore) getMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT id, content, sender, room, time, date, created_at
		FROM messages
		WHERE id = ?
	`
	var m store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Content, &m.From, &m.To, &m.Time, &m.Date, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	return &m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanUser(row rowScanner) (*store.User, error) {
	var (
		u        store.User
		counters string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Picture, &u.Status, &counters, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if err := json.Unmarshal([]byte(counters), &u.NewMessages); err != nil {
		return nil, fmt.Errorf("decode new_messages: %w", err)
	}

	return &u, nil
}

func encodeCounters(counters map[string]int64) (string, error) {
	if counters == nil {
		counters = map[string]int64{}
	}
	data, err := json.Marshal(counters)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
