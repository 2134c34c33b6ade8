package http

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/roomtalk/roomtalk-server/internal/proto"
)

type outboundEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readOutbound(ctx context.Context, t *testing.T, conn *websocket.Conn) outboundEnvelope {
	t.Helper()

	var env outboundEnvelope
	if err := wsjson.Read(ctx, conn, &env); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return env
}

func TestWebSocketJoinAndMessage(t *testing.T) {
	ts, _ := startTestServer(t)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	sendJoin := func(conn *websocket.Conn, room, previous string) {
		payload, _ := json.Marshal(proto.JoinRoomData{Room: room, PreviousRoom: previous})
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: payload}); err != nil {
			t.Fatalf("write join: %v", err)
		}
	}

	// Both sessions join general; each gets its own (empty) history.
	sendJoin(connA, "general", "")
	if env := readOutbound(ctx, t, connA); env.Type != proto.OutboundTypeRoomMessages {
		t.Fatalf("expected room-messages after join, got %q", env.Type)
	}
	sendJoin(connB, "general", "")
	if env := readOutbound(ctx, t, connB); env.Type != proto.OutboundTypeRoomMessages {
		t.Fatalf("expected room-messages after join, got %q", env.Type)
	}

	// A sends a message; both get the refreshed history, B also gets the
	// notification, A does not.
	payload, _ := json.Marshal(proto.MessageRoomData{
		Room:    "general",
		Content: "hello",
		Sender:  "alice",
		Time:    "10:00",
		Date:    "3/5/2024",
	})
	if err := wsjson.Write(ctx, connA, proto.Inbound{Type: proto.InboundTypeMessageRoom, Data: payload}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	envA := readOutbound(ctx, t, connA)
	if envA.Type != proto.OutboundTypeRoomMessages {
		t.Fatalf("A expected room-messages, got %q", envA.Type)
	}
	var groups []proto.MessageGroupView
	if err := json.Unmarshal(envA.Data, &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Date != "3/5/2024" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if len(groups[0].Messages) != 1 || groups[0].Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", groups[0].Messages)
	}

	envB := readOutbound(ctx, t, connB)
	if envB.Type != proto.OutboundTypeRoomMessages {
		t.Fatalf("B expected room-messages, got %q", envB.Type)
	}
	notif := readOutbound(ctx, t, connB)
	if notif.Type != proto.OutboundTypeNotifications {
		t.Fatalf("B expected notifications, got %q", notif.Type)
	}
	var room string
	if err := json.Unmarshal(notif.Data, &room); err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if room != "general" {
		t.Fatalf("notification for room %q", room)
	}
}

func TestWebSocketNewUserRosterBroadcast(t *testing.T) {
	ts, st := startTestServer(t)

	if _, err := st.CreateUser(context.Background(), userFixture("alice", "alice@example.com")); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeNewUser}); err != nil {
		t.Fatalf("write new-user: %v", err)
	}

	env := readOutbound(ctx, t, conn)
	if env.Type != proto.OutboundTypeNewUser {
		t.Fatalf("expected new-user roster, got %q", env.Type)
	}
	var roster []proto.UserView
	if err := json.Unmarshal(env.Data, &roster); err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	if len(roster) != 1 || roster[0].Name != "alice" {
		t.Fatalf("unexpected roster: %+v", roster)
	}
}
