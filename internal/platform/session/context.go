package session

import (
	"context"

	"github.com/dugoutlabs/ballclub/internal/domain/user"
)

type contextKey string

const sessionContextKey contextKey = "auth_session"

// WithSession attaches the caller's session to the request context. The
// data collaborator client reads the access token back out so row-level
// policies see the same identity the gate admitted.
func WithSession(ctx context.Context, s user.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func FromContext(ctx context.Context) (user.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(user.Session)
	return s, ok
}

// AccessToken returns the bearer for outgoing collaborator calls, empty
// when the context carries no session.
func AccessToken(ctx context.Context) string {
	s, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return s.AccessToken
}
