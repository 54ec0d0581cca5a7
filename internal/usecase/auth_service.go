package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dugoutlabs/ballclub/internal/domain/user"
	"github.com/dugoutlabs/ballclub/internal/platform/resilience"
)

// AuthService fronts the auth collaborator for sign-up, sign-in, sign-out
// and the session check the gate runs on every protected request.
type AuthService struct {
	gateway AuthGateway
	logger  *slog.Logger
	latch   *resilience.Latch
}

func NewAuthService(gateway AuthGateway, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		gateway: gateway,
		logger:  logger,
		latch:   &resilience.Latch{},
	}
}

// SignUp registers the account and deliberately returns no session: the
// caller switches to sign-in mode and authenticates separately.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return user.User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	key := "signup:" + email
	if !s.latch.TryAcquire(key) {
		return user.User{}, fmt.Errorf("%w: sign-up for %s", ErrSubmissionInFlight, email)
	}
	defer s.latch.Release(key)

	created, err := s.gateway.SignUp(ctx, email, password)
	if err != nil {
		return user.User{}, fmt.Errorf("sign up: %w", err)
	}

	s.logger.InfoContext(ctx, "account created", "user_id", created.ID)
	return created, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (user.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return user.Session{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	key := "signin:" + email
	if !s.latch.TryAcquire(key) {
		return user.Session{}, fmt.Errorf("%w: sign-in for %s", ErrSubmissionInFlight, email)
	}
	defer s.latch.Release(key)

	sess, err := s.gateway.SignInWithPassword(ctx, email, password)
	if err != nil {
		return user.Session{}, fmt.Errorf("sign in: %w", err)
	}
	if !sess.Active() {
		return user.Session{}, fmt.Errorf("%w: collaborator returned no session", ErrUnauthorized)
	}

	return sess, nil
}

func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return fmt.Errorf("%w: no active session", ErrUnauthorized)
	}

	if err := s.gateway.SignOut(ctx, accessToken); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Session resolves the session behind an access token. An empty or rejected
// token fails closed with ErrUnauthorized; a transport failure surfaces as
// ErrDependencyUnavailable so callers can tell an outage from a signed-out
// user.
func (s *AuthService) Session(ctx context.Context, accessToken string) (user.Session, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return user.Session{}, fmt.Errorf("%w: no active session", ErrUnauthorized)
	}

	resolved, err := s.gateway.UserFromToken(ctx, accessToken)
	if err != nil {
		return user.Session{}, fmt.Errorf("resolve session: %w", err)
	}
	if resolved.ID == "" {
		return user.Session{}, fmt.Errorf("%w: token resolved to no user", ErrUnauthorized)
	}

	return user.Session{AccessToken: accessToken, User: resolved}, nil
}
