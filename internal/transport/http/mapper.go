package http

import (
	"encoding/json"
	"fmt"

	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/proto"
	"github.com/roomtalk/roomtalk-server/internal/store"
)

// inboundToCommand maps a wire envelope to a core command. Unknown types and
// malformed payloads yield an error; field-level validation is the hub's job.
func inboundToCommand(inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeNewUser:
		return &core.Command{Kind: core.CommandAnnounceUser}, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, fmt.Errorf("decode join-room: %w", err)
		}
		return &core.Command{
			Kind:         core.CommandJoinRoom,
			Room:         join.Room,
			PreviousRoom: join.PreviousRoom,
		}, nil
	case proto.InboundTypeMessageRoom:
		var msg proto.MessageRoomData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, fmt.Errorf("decode message-room: %w", err)
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			Room:    msg.Room,
			Content: msg.Content,
			Sender:  msg.Sender,
			Time:    msg.Time,
			Date:    msg.Date,
		}, nil
	default:
		return nil, fmt.Errorf("unknown inbound type %q", inbound.Type)
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoster:
		return proto.Outbound{
			Type: proto.OutboundTypeNewUser,
			Data: rosterView(event.Roster),
		}
	case core.EventHistory:
		return proto.Outbound{
			Type: proto.OutboundTypeRoomMessages,
			Data: groupViews(event.Groups),
		}
	case core.EventNotification:
		return proto.Outbound{
			Type: proto.OutboundTypeNotifications,
			Data: event.Room,
		}
	default:
		return proto.Outbound{Type: "unknown"}
	}
}

func groupViews(groups []core.MessageGroup) []proto.MessageGroupView {
	views := make([]proto.MessageGroupView, 0, len(groups))
	for _, g := range groups {
		view := proto.MessageGroupView{
			Date:     g.Date,
			Messages: make([]proto.MessageView, 0, len(g.Messages)),
		}
		for _, m := range g.Messages {
			view.Messages = append(view.Messages, proto.MessageView{
				ID:      m.ID,
				Content: m.Content,
				From:    m.From,
				To:      m.To,
				Time:    m.Time,
				Date:    m.Date,
			})
		}
		views = append(views, view)
	}
	return views
}

func rosterView(users []*store.User) []proto.UserView {
	views := make([]proto.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	return views
}

func userView(u *store.User) proto.UserView {
	counters := u.NewMessages
	if counters == nil {
		counters = map[string]int64{}
	}
	return proto.UserView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Picture:     u.Picture,
		Status:      u.Status,
		NewMessages: counters,
	}
}
