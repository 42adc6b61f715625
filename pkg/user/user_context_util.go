package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserKey contextKey = "user"

var ErrNoUser = errors.New("user not found")

// CurrentId retrieves the current user's uid from the context. Returns ErrNoUser if not present in context.
func CurrentId(ctx context.Context) (string, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.Uid, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	user, ok := ctx.Value(UserKey).(User)
	if !ok || user.Uid == "" {
		log.Trace("user not found in context")
		return User{}, ErrNoUser
	}
	return user, nil
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// CurrentSessionKey returns the SessionKey of the user in the context.
func CurrentSessionKey(ctx context.Context) (string, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.SessionKey(), nil
}
