package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dugoutlabs/ballclub/internal/domain/team"
	"github.com/dugoutlabs/ballclub/internal/domain/user"
	"github.com/dugoutlabs/ballclub/internal/infrastructure/repository/memory"
	"github.com/dugoutlabs/ballclub/internal/platform/session"
	"github.com/dugoutlabs/ballclub/internal/platform/viewstate"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

func newTeamStore() *viewstate.Store[team.Team] {
	return viewstate.NewStore(time.Minute, func(t team.Team) string { return t.ID })
}

func seedSession(ctx context.Context) context.Context {
	return session.WithSession(ctx, user.Session{
		AccessToken: "test-token",
		User:        user.User{ID: memory.SeedUserID, Email: "dev@example.com"},
	})
}

func TestTeamService_ListTeams_NewestFirst(t *testing.T) {
	repo := memory.NewTeamRepository(memory.SeedTeams())
	svc := usecase.NewTeamService(repo, newTeamStore(), nil)

	teams, err := svc.ListTeams(seedSession(t.Context()))
	if err != nil {
		t.Fatalf("list teams failed: %v", err)
	}

	if len(teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(teams))
	}
	wantOrder := []string{"Tigers", "River Cats", "Sandlot Nine"}
	for i, want := range wantOrder {
		if teams[i].Name != want {
			t.Fatalf("position %d: got %q, want %q", i, teams[i].Name, want)
		}
	}
}

func TestTeamService_ListTeams_RequiresSession(t *testing.T) {
	repo := memory.NewTeamRepository(memory.SeedTeams())
	svc := usecase.NewTeamService(repo, newTeamStore(), nil)

	_, err := svc.ListTeams(t.Context())
	if !errors.Is(err, usecase.ErrNoAuthenticatedUser) {
		t.Fatalf("expected usecase.ErrNoAuthenticatedUser, got %v", err)
	}
}

func TestTeamService_CreateTeam_StampsOwner(t *testing.T) {
	repo := memory.NewTeamRepository(nil)
	svc := usecase.NewTeamService(repo, newTeamStore(), nil)

	created, err := svc.CreateTeam(seedSession(t.Context()), "  Mudville Nine  ")
	if err != nil {
		t.Fatalf("create team failed: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected store-assigned id")
	}
	if created.Name != "Mudville Nine" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.UserID != memory.SeedUserID {
		t.Fatalf("owner = %q, want %q", created.UserID, memory.SeedUserID)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected store-assigned creation time")
	}
}

func TestTeamService_CreateTeam_ListShowsNewTeamFirst(t *testing.T) {
	repo := memory.NewTeamRepository(memory.SeedTeams())
	svc := usecase.NewTeamService(repo, newTeamStore(), nil)
	ctx := seedSession(t.Context())

	// Warm the snapshot, then create and re-read: the re-fetch must land
	// the new team at the head, not a locally spliced copy at the tail.
	if _, err := svc.ListTeams(ctx); err != nil {
		t.Fatalf("warm list failed: %v", err)
	}

	created, err := svc.CreateTeam(ctx, "Harbor Hawks")
	if err != nil {
		t.Fatalf("create team failed: %v", err)
	}

	teams, err := svc.ListTeams(ctx)
	if err != nil {
		t.Fatalf("list after create failed: %v", err)
	}
	if len(teams) != 4 {
		t.Fatalf("expected 4 teams, got %d", len(teams))
	}
	if teams[0].ID != created.ID {
		t.Fatalf("expected new team first, got %q", teams[0].Name)
	}
}

func TestTeamService_CreateTeam_NoSessionNoWrite(t *testing.T) {
	repo := memory.NewTeamRepository(nil)
	svc := usecase.NewTeamService(repo, newTeamStore(), nil)

	_, err := svc.CreateTeam(t.Context(), "Ghost Team")
	if !errors.Is(err, usecase.ErrNoAuthenticatedUser) {
		t.Fatalf("expected usecase.ErrNoAuthenticatedUser, got %v", err)
	}

	stored, err := repo.List(t.Context())
	if err != nil {
		t.Fatalf("list repo: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected no write without a session, found %d teams", len(stored))
	}
}

func TestTeamService_CreateTeam_EmptyName(t *testing.T) {
	repo := memory.NewTeamRepository(nil)
	svc := usecase.NewTeamService(repo, newTeamStore(), nil)

	_, err := svc.CreateTeam(seedSession(t.Context()), "   ")
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected usecase.ErrInvalidInput, got %v", err)
	}
}

func TestTeamService_GetTeam_NotFound(t *testing.T) {
	repo := memory.NewTeamRepository(memory.SeedTeams())
	svc := usecase.NewTeamService(repo, newTeamStore(), nil)

	_, err := svc.GetTeam(t.Context(), "no-such-team")
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected usecase.ErrNotFound, got %v", err)
	}
}
