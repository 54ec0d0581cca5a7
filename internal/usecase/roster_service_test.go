package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dugoutlabs/ballclub/internal/domain/player"
	"github.com/dugoutlabs/ballclub/internal/domain/user"
	"github.com/dugoutlabs/ballclub/internal/infrastructure/repository/memory"
	"github.com/dugoutlabs/ballclub/internal/platform/session"
	"github.com/dugoutlabs/ballclub/internal/platform/viewstate"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

func newRosterFixture() (*usecase.RosterService, *viewstate.Store[player.Player]) {
	store := viewstate.NewStore(time.Minute, func(p player.Player) string { return p.ID })
	svc := usecase.NewRosterService(
		memory.NewTeamRepository(memory.SeedTeams()),
		memory.NewPlayerRepository(memory.SeedPlayers()),
		store,
		nil,
	)
	return svc, store
}

func seedRosterKey(teamID string) string {
	return "roster:" + memory.SeedUserID + ":" + teamID
}

func TestRosterService_FetchTeamAndRoster(t *testing.T) {
	svc, _ := newRosterFixture()

	combined, err := svc.FetchTeamAndRoster(seedSession(t.Context()), "team-tigers")
	if err != nil {
		t.Fatalf("fetch team and roster failed: %v", err)
	}

	if combined.Team.Name != "Tigers" {
		t.Fatalf("team name = %q, want Tigers", combined.Team.Name)
	}
	if len(combined.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(combined.Players))
	}
}

func TestRosterService_FetchTeamAndRoster_EmptyRoster(t *testing.T) {
	svc, _ := newRosterFixture()

	combined, err := svc.FetchTeamAndRoster(seedSession(t.Context()), "team-sandlot-nine")
	if err != nil {
		t.Fatalf("fetch team and roster failed: %v", err)
	}
	if combined.Players == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(combined.Players) != 0 {
		t.Fatalf("expected empty roster, got %d players", len(combined.Players))
	}
}

func TestRosterService_FetchTeamAndRoster_UnknownTeamNoPartial(t *testing.T) {
	svc, store := newRosterFixture()
	ctx := seedSession(t.Context())

	_, err := svc.FetchTeamAndRoster(ctx, "no-such-team")
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected usecase.ErrNotFound, got %v", err)
	}

	// The roster leg may have returned rows; none of them may escape into
	// the snapshot when the team leg failed.
	if _, ok := store.Get(ctx, seedRosterKey("no-such-team")); ok {
		t.Fatal("failed composite read must not install a snapshot")
	}
}

func TestRosterService_FetchTeamAndRoster_SessionlessWarmsOwnerView(t *testing.T) {
	svc, store := newRosterFixture()

	// Internal refresh work runs without a session; the snapshot it builds
	// belongs to the team's owner, not to some shared key.
	if _, err := svc.FetchTeamAndRoster(t.Context(), "team-tigers"); err != nil {
		t.Fatalf("fetch team and roster failed: %v", err)
	}

	if _, ok := store.Get(t.Context(), seedRosterKey("team-tigers")); !ok {
		t.Fatal("expected the owner-keyed snapshot to be warm")
	}
	if _, ok := store.Get(t.Context(), "roster:team-tigers"); ok {
		t.Fatal("no principal-less snapshot key may exist")
	}
}

func TestRosterService_ListPlayers_SnapshotIsPerCaller(t *testing.T) {
	repo := &ownerScopedPlayerRepo{
		owner: "user-owner",
		rows: map[string][]player.Player{
			"t1": {{ID: "p1", TeamID: "t1", FirstName: "Babe", LastName: "Ruth", Email: "babe@example.com"}},
		},
	}
	store := viewstate.NewStore(time.Minute, func(p player.Player) string { return p.ID })
	svc := usecase.NewRosterService(memory.NewTeamRepository(nil), repo, store, nil)

	ownerCtx := session.WithSession(t.Context(), user.Session{
		AccessToken: "tok-owner",
		User:        user.User{ID: "user-owner"},
	})
	strangerCtx := session.WithSession(t.Context(), user.Session{
		AccessToken: "tok-stranger",
		User:        user.User{ID: "user-stranger"},
	})

	ownerRows, err := svc.ListPlayers(ownerCtx, "t1")
	if err != nil {
		t.Fatalf("owner list failed: %v", err)
	}
	if len(ownerRows) != 1 {
		t.Fatalf("expected the owner to see 1 row, got %d", len(ownerRows))
	}

	// The owner's warm snapshot must not be served to a different
	// principal; the stranger's read goes back through the repository,
	// whose row policies hide the team.
	strangerRows, err := svc.ListPlayers(strangerCtx, "t1")
	if err != nil {
		t.Fatalf("stranger list failed: %v", err)
	}
	if len(strangerRows) != 0 {
		t.Fatalf("expected the stranger to see 0 rows, got %d", len(strangerRows))
	}
	if repo.calls != 2 {
		t.Fatalf("expected one repository read per principal, got %d", repo.calls)
	}
}

func TestRosterService_AddPlayer_EchoFoldsIntoSnapshot(t *testing.T) {
	svc, store := newRosterFixture()
	ctx := seedSession(t.Context())

	// Warm the roster snapshot so there is a displayed list to reconcile.
	if _, err := svc.ListPlayers(ctx, "team-tigers"); err != nil {
		t.Fatalf("warm list failed: %v", err)
	}

	created, err := svc.AddPlayer(ctx, usecase.AddPlayerInput{
		TeamID:    "team-tigers",
		FirstName: "Ty",
		LastName:  "Cobb",
		Email:     "ty@example.com",
	})
	if err != nil {
		t.Fatalf("add player failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected store-assigned id")
	}

	snapshot, ok := store.Get(ctx, seedRosterKey("team-tigers"))
	if !ok {
		t.Fatal("expected roster snapshot")
	}
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 rows after append, got %d", len(snapshot))
	}
	if snapshot[len(snapshot)-1].ID != created.ID {
		t.Fatalf("expected server echo appended at tail, got %q", snapshot[len(snapshot)-1].ID)
	}
}

func TestRosterService_AddPlayer_WithoutSnapshotStillInserts(t *testing.T) {
	svc, store := newRosterFixture()
	ctx := seedSession(t.Context())

	created, err := svc.AddPlayer(ctx, usecase.AddPlayerInput{
		TeamID:    "team-river-cats",
		FirstName: "Josh",
		LastName:  "Gibson",
		Email:     "josh@example.com",
	})
	if err != nil {
		t.Fatalf("add player failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected store-assigned id")
	}

	// No snapshot existed, so the reconcile is a no-op; the next read
	// loads fresh and sees the insert.
	if _, ok := store.Get(ctx, seedRosterKey("team-river-cats")); ok {
		t.Fatal("expected no snapshot before the next read")
	}

	players, err := svc.ListPlayers(ctx, "team-river-cats")
	if err != nil {
		t.Fatalf("list players failed: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players after insert, got %d", len(players))
	}
}

func TestRosterService_AddPlayer_InvalidInput(t *testing.T) {
	svc, _ := newRosterFixture()

	_, err := svc.AddPlayer(seedSession(t.Context()), usecase.AddPlayerInput{
		TeamID:    "team-tigers",
		FirstName: "  ",
		LastName:  "Cobb",
		Email:     "ty@example.com",
	})
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected usecase.ErrInvalidInput, got %v", err)
	}
}

func TestRosterService_AddPlayer_RequiresSession(t *testing.T) {
	svc, _ := newRosterFixture()

	_, err := svc.AddPlayer(t.Context(), usecase.AddPlayerInput{
		TeamID:    "team-tigers",
		FirstName: "Ty",
		LastName:  "Cobb",
		Email:     "ty@example.com",
	})
	if !errors.Is(err, usecase.ErrNoAuthenticatedUser) {
		t.Fatalf("expected usecase.ErrNoAuthenticatedUser, got %v", err)
	}
}

func TestRosterService_ListPlayers_RequiresSession(t *testing.T) {
	svc, _ := newRosterFixture()

	_, err := svc.ListPlayers(t.Context(), "team-tigers")
	if !errors.Is(err, usecase.ErrNoAuthenticatedUser) {
		t.Fatalf("expected usecase.ErrNoAuthenticatedUser, got %v", err)
	}
}

func TestRosterService_ListPlayers_RequiresTeamID(t *testing.T) {
	svc, _ := newRosterFixture()

	_, err := svc.ListPlayers(seedSession(t.Context()), "  ")
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected usecase.ErrInvalidInput, got %v", err)
	}
}

// ownerScopedPlayerRepo mimics the collaborator's row policies: only the
// owning principal's reads yield rows.
type ownerScopedPlayerRepo struct {
	owner string
	rows  map[string][]player.Player
	calls int
}

func (r *ownerScopedPlayerRepo) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	r.calls++
	sess, ok := session.FromContext(ctx)
	if !ok || sess.User.ID != r.owner {
		return []player.Player{}, nil
	}
	return r.rows[teamID], nil
}

func (r *ownerScopedPlayerRepo) Create(_ context.Context, _ player.NewPlayer) (player.Player, error) {
	return player.Player{}, errors.New("not supported")
}
