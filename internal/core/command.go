package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandAnnounceUser requests a roster broadcast to every session.
	CommandAnnounceUser CommandKind = iota
	// CommandJoinRoom subscribes the session to a room.
	CommandJoinRoom
	// CommandSendMessage persists a message and fans it out to the room.
	CommandSendMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// Room is the target room for joins and messages.
	Room string
	// PreviousRoom is the room to leave on a join. Empty on first join.
	PreviousRoom string

	// Message fields, set for CommandSendMessage. Time and Date are
	// caller-supplied display strings and are not validated.
	Content string
	Sender  string
	Time    string
	Date    string
}
