package core

import (
	"context"
	"sort"
	"strings"

	"github.com/roomtalk/roomtalk-server/internal/store"
)

// MessageGroup is a derived view of one room's messages sharing a calendar
// date. Messages keep the store's insertion order.
type MessageGroup struct {
	Date     string
	Messages []*store.Message
}

// RoomHistory fetches all messages addressed to room and buckets them by
// date, buckets ordered chronologically. Unknown rooms yield an empty result.
func RoomHistory(ctx context.Context, ms store.MessageStore, room string) ([]MessageGroup, error) {
	messages, err := ms.ListRoomMessages(ctx, room)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]MessageGroup, 0)
	for _, msg := range messages {
		i, ok := index[msg.Date]
		if !ok {
			i = len(groups)
			index[msg.Date] = i
			groups = append(groups, MessageGroup{Date: msg.Date})
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}

	sortGroupsByDate(groups)
	return groups, nil
}

// sortGroupsByDate orders groups ascending by rearranging "M/D/YYYY" into the
// string "YYYYMD" and comparing lexicographically. Components are not
// zero-padded, so dates with differing digit counts within the same year can
// land out of calendar order. Clients depend on this exact ordering.
func sortGroupsByDate(groups []MessageGroup) {
	sort.Slice(groups, func(i, j int) bool {
		return dateSortKey(groups[i].Date) < dateSortKey(groups[j].Date)
	})
}

func dateSortKey(date string) string {
	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + parts[0] + parts[1]
}
