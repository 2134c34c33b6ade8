package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types.
const (
	InboundTypeNewUser     = "new-user"
	InboundTypeJoinRoom    = "join-room"
	InboundTypeMessageRoom = "message-room"
)

// Outbound event types.
const (
	OutboundTypeNewUser       = "new-user"
	OutboundTypeRoomMessages  = "room-messages"
	OutboundTypeNotifications = "notifications"
)

// JoinRoomData requests to join a room, leaving the previous one.
type JoinRoomData struct {
	Room         string `json:"room"`
	PreviousRoom string `json:"previousRoom,omitempty"`
}

// MessageRoomData is a chat message from the client. Time and date are
// display strings produced by the client.
type MessageRoomData struct {
	Room    string `json:"room"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// MessageView is a single message as serialized to clients.
type MessageView struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	From    string `json:"from"`
	To      string `json:"to"`
	Time    string `json:"time"`
	Date    string `json:"date"`
}

// MessageGroupView is one date-bucket of a room's history.
type MessageGroupView struct {
	Date     string        `json:"date"`
	Messages []MessageView `json:"messages"`
}

// UserView is a roster entry. The password hash never leaves the server.
type UserView struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Picture     string           `json:"picture,omitempty"`
	Status      string           `json:"status"`
	NewMessages map[string]int64 `json:"newMessages"`
}
