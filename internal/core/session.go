package core

// Session is the transient server-side state of one live connection.
type Session struct {
	// ID identifies the connection.
	ID string
	// UserID optionally binds the connection to a user record. Empty when
	// the client never identified itself.
	UserID string
	// CurrentRoom is the room the session currently occupies. Empty means
	// not joined. Written only by the session's own dispatcher through the
	// join path.
	CurrentRoom string

	Commands chan *Command
	Events   chan *Event

	done chan struct{}
}

// NewSession constructs a session with initialized channels.
func NewSession(id, userID string) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
		done:     make(chan struct{}),
	}
}

// Done is closed when the session has been removed from the registry.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// send delivers an event without blocking. Slow consumers and sessions that
// are already gone simply miss the event.
func (s *Session) send(ev *Event) {
	select {
	case s.Events <- ev:
	default:
	}
}
