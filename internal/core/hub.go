package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/store"
)

// Hub is the room registry and fan-out broadcaster. It tracks live sessions,
// their room membership, and dispatches each session's commands in order.
type Hub struct {
	store store.Store
	log   *zerolog.Logger

	// mu guards sessions and rooms, the only structures shared across
	// session dispatchers.
	mu       sync.Mutex
	sessions map[*Session]struct{}
	rooms    map[string]map[*Session]struct{}

	register   chan *Session
	unregister chan *Session
	done       chan struct{}
}

// NewHub constructs a hub backed by the given store.
func NewHub(st store.Store, logger *zerolog.Logger) *Hub {
	return &Hub{
		store:      st,
		log:        logger,
		sessions:   make(map[*Session]struct{}),
		rooms:      make(map[string]map[*Session]struct{}),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		done:       make(chan struct{}),
	}
}

// Run processes session registration until ctx is cancelled. Each registered
// session gets its own dispatcher goroutine, so a stalled store call only
// blocks the issuing session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case s := <-h.register:
			h.addSession(s)
			go h.serveSession(ctx, s)
		case s := <-h.unregister:
			h.removeSession(s)
		case <-ctx.Done():
			close(h.done)
			return
		}
	}
}

// RegisterSession adds a session to the registry. A no-op after Run exits.
func (h *Hub) RegisterSession(s *Session) {
	select {
	case h.register <- s:
	case <-h.done:
	}
}

// UnregisterSession removes a session from the registry and from whatever
// room it occupies. Safe to call for sessions with in-flight commands; late
// results are discarded.
func (h *Hub) UnregisterSession(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	h.log.Debug().Str("session_id", s.ID).Msg("session registered")
}

func (h *Hub) removeSession(s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s)
	h.leaveLocked(s, s.CurrentRoom)
	h.mu.Unlock()

	close(s.done)
	h.log.Debug().Str("session_id", s.ID).Msg("session removed")
}

func (h *Hub) serveSession(ctx context.Context, s *Session) {
	for {
		select {
		case cmd := <-s.Commands:
			h.dispatch(ctx, s, cmd)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, s *Session, cmd *Command) {
	switch cmd.Kind {
	case CommandAnnounceUser:
		h.announceRoster(ctx)
	case CommandJoinRoom:
		h.joinRoom(ctx, s, cmd.Room, cmd.PreviousRoom)
	case CommandSendMessage:
		h.sendMessage(ctx, s, cmd)
	default:
		h.log.Warn().Int("kind", int(cmd.Kind)).Str("session_id", s.ID).Msg("unknown command")
	}
}

// announceRoster fetches the full roster and broadcasts it to every session.
func (h *Hub) announceRoster(ctx context.Context) {
	users, err := h.store.ListUsers(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("fetch roster")
		return
	}
	h.BroadcastRoster(users, "")
}

// joinRoom swaps the session's room membership and delivers fresh history to
// the joining session only. Rejoining the current room is a registry no-op
// but still refetches history.
func (h *Hub) joinRoom(ctx context.Context, s *Session, room, previous string) {
	if room == "" {
		h.log.Warn().Str("session_id", s.ID).Msg("join with empty room")
		return
	}

	h.mu.Lock()
	if _, ok := h.sessions[s]; !ok {
		// The session was unregistered while this command was in flight;
		// inserting it now would leave a ghost member behind.
		h.mu.Unlock()
		return
	}
	h.leaveLocked(s, previous)
	h.leaveLocked(s, s.CurrentRoom)
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	s.CurrentRoom = room
	h.mu.Unlock()

	groups, err := RoomHistory(ctx, h.store, room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("fetch room history")
		return
	}

	s.send(&Event{Kind: EventHistory, Room: room, Groups: groups})
	h.log.Debug().Str("session_id", s.ID).Str("room", room).Msg("session joined room")
}

// leaveLocked removes the session from a room's membership set. Caller holds mu.
// Leaving a room the session is not in is a no-op.
func (h *Hub) leaveLocked(s *Session, room string) {
	if room == "" {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// sendMessage persists the message, then pushes the recomputed history to the
// whole room and a notification to every other connected session. Persistence
// failure aborts the broadcast; the sender is not informed.
func (h *Hub) sendMessage(ctx context.Context, s *Session, cmd *Command) {
	if cmd.Room == "" || cmd.Content == "" || cmd.Sender == "" {
		h.log.Warn().Str("session_id", s.ID).Str("room", cmd.Room).Msg("message with missing fields")
		return
	}

	msg := &store.Message{
		Content: cmd.Content,
		From:    cmd.Sender,
		To:      cmd.Room,
		Time:    cmd.Time,
		Date:    cmd.Date,
	}
	if _, err := h.store.CreateMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("persist message")
		return
	}

	groups, err := RoomHistory(ctx, h.store, cmd.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("fetch room history")
		return
	}

	h.broadcastToRoom(cmd.Room, &Event{Kind: EventHistory, Room: cmd.Room, Groups: groups})
	h.broadcastExcept(s, &Event{Kind: EventNotification, Room: cmd.Room})
}

// BroadcastRoster delivers the roster to every session except ones bound to
// excludeUserID. An empty excludeUserID reaches everyone.
func (h *Hub) BroadcastRoster(users []*store.User, excludeUserID string) {
	ev := &Event{Kind: EventRoster, Roster: users}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		if excludeUserID != "" && s.UserID == excludeUserID {
			continue
		}
		s.send(ev)
	}
}

// broadcastToRoom delivers an event to every member of a room, sender included.
func (h *Hub) broadcastToRoom(room string, ev *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.rooms[room] {
		s.send(ev)
	}
}

// broadcastExcept delivers an event to every connected session but one.
func (h *Hub) broadcastExcept(sender *Session, ev *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		if s == sender {
			continue
		}
		s.send(ev)
	}
}
