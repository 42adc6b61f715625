package test_utils

import (
	"context"

	"github.com/klokku/studyplan/pkg/user"
)

// UserContext returns a context carrying an authenticated test user.
func UserContext(uid string) context.Context {
	return user.WithUser(context.Background(), user.User{
		Uid:         uid,
		DisplayName: "Test User",
	})
}

// DemoContext returns a context carrying a demo session user.
func DemoContext(uid string) context.Context {
	return user.WithUser(context.Background(), user.User{
		Uid:         uid,
		DisplayName: "Demo User",
		Demo:        true,
	})
}
