package usecase

import (
	"context"

	"github.com/dugoutlabs/ballclub/internal/domain/user"
)

// AuthGateway is the auth side of the hosted backend collaborator. Failures
// carry the collaborator's message text; transport failures wrap
// ErrDependencyUnavailable and rejected credentials or tokens wrap
// ErrUnauthorized.
type AuthGateway interface {
	// SignUp registers the account. No session is created; depending on the
	// collaborator's policy the user confirms via email or signs in next.
	SignUp(ctx context.Context, email, password string) (user.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (user.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	// UserFromToken resolves the user behind an access token. It is the one
	// accessor session state is read through.
	UserFromToken(ctx context.Context, accessToken string) (user.User, error)
}
