package http

import "github.com/roomtalk/roomtalk-server/internal/store"

func userFixture(name, email string) *store.User {
	return &store.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Status:       store.StatusOffline,
	}
}
