package core

import "github.com/roomtalk/roomtalk-server/internal/store"

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventRoster delivers the full user roster.
	EventRoster EventKind = iota
	// EventHistory delivers a room's date-grouped message history.
	EventHistory
	// EventNotification signals new activity in a room to other sessions.
	EventNotification
)

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind   EventKind
	Room   string
	Groups []MessageGroup // for EventHistory
	Roster []*store.User  // for EventRoster
}
