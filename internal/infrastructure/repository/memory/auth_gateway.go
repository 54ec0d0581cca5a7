package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dugoutlabs/ballclub/internal/domain/user"
	idgen "github.com/dugoutlabs/ballclub/internal/platform/id"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

type account struct {
	user     user.User
	password string
}

// AuthGateway is an in-process stand-in for the auth collaborator. Its
// rejection messages copy the hosted service's wording so dev mode and
// tests exercise the same verbatim-surface path as production.
type AuthGateway struct {
	mu       sync.Mutex
	accounts map[string]account
	sessions map[string]user.User
	ids      idgen.Generator
}

func NewAuthGateway() *AuthGateway {
	return &AuthGateway{
		accounts: make(map[string]account),
		sessions: make(map[string]user.User),
		ids:      idgen.NewRandomGenerator(),
	}
}

func (g *AuthGateway) SignUp(_ context.Context, email, password string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.accounts[email]; exists {
		return user.User{}, fmt.Errorf("%w: User already registered", usecase.ErrUnauthorized)
	}

	newID, err := g.ids.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user id: %w", err)
	}

	created := user.User{ID: newID, Email: email}
	g.accounts[email] = account{user: created, password: password}

	// No session: the caller signs in separately, as with the real
	// collaborator.
	return created, nil
}

func (g *AuthGateway) SignInWithPassword(_ context.Context, email, password string) (user.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	g.mu.Lock()
	defer g.mu.Unlock()

	acct, exists := g.accounts[email]
	if !exists || acct.password != password {
		return user.Session{}, fmt.Errorf("%w: Invalid login credentials", usecase.ErrUnauthorized)
	}

	token, err := g.ids.NewID()
	if err != nil {
		return user.Session{}, fmt.Errorf("generate session token: %w", err)
	}
	g.sessions[token] = acct.user

	return user.Session{AccessToken: token, User: acct.user}, nil
}

func (g *AuthGateway) SignOut(_ context.Context, accessToken string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.sessions[accessToken]; !exists {
		return fmt.Errorf("%w: session not found", usecase.ErrUnauthorized)
	}
	delete(g.sessions, accessToken)
	return nil
}

func (g *AuthGateway) UserFromToken(_ context.Context, accessToken string) (user.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	resolved, exists := g.sessions[accessToken]
	if !exists {
		return user.User{}, fmt.Errorf("%w: invalid or expired token", usecase.ErrUnauthorized)
	}
	return resolved, nil
}
