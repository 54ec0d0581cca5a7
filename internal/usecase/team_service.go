package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dugoutlabs/ballclub/internal/domain/team"
	"github.com/dugoutlabs/ballclub/internal/platform/resilience"
	"github.com/dugoutlabs/ballclub/internal/platform/session"
	"github.com/dugoutlabs/ballclub/internal/platform/viewstate"
)

// TeamService serves the teams screen: newest-first listing, creation tied
// to the caller's identity, and single-team resolution. After a successful
// create the team snapshot is rebuilt from a full re-fetch, so the listing
// never shows a stale or half-applied state.
type TeamService struct {
	teamRepo  team.Repository
	snapshots *viewstate.Store[team.Team]
	logger    *slog.Logger
	latch     *resilience.Latch
}

func NewTeamService(teamRepo team.Repository, snapshots *viewstate.Store[team.Team], logger *slog.Logger) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TeamService{
		teamRepo:  teamRepo,
		snapshots: snapshots,
		logger:    logger,
		latch:     &resilience.Latch{},
	}
}

// ListTeams returns every team the collaborator's row policies let the
// caller see, ordered by creation time descending. Zero teams is an empty
// slice, not an error.
func (s *TeamService) ListTeams(ctx context.Context) ([]team.Team, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: teams listing needs a session", ErrNoAuthenticatedUser)
	}

	teams, err := s.snapshots.GetOrLoad(ctx, teamsKey(sess.User.ID), func(ctx context.Context) ([]team.Team, error) {
		return s.teamRepo.List(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if teams == nil {
		teams = []team.Team{}
	}

	return teams, nil
}

// CreateTeam resolves the owning user from the request session before any
// write is issued. Without one it fails and the collaborator is never
// called.
func (s *TeamService) CreateTeam(ctx context.Context, name string) (team.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	sess, ok := session.FromContext(ctx)
	if !ok || sess.User.ID == "" {
		return team.Team{}, fmt.Errorf("%w: create team", ErrNoAuthenticatedUser)
	}

	key := "create-team:" + sess.User.ID
	if !s.latch.TryAcquire(key) {
		return team.Team{}, fmt.Errorf("%w: team creation for user %s", ErrSubmissionInFlight, sess.User.ID)
	}
	defer s.latch.Release(key)

	created, err := s.teamRepo.Create(ctx, team.NewTeam{Name: name, UserID: sess.User.ID})
	if err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	// Re-fetch reconciliation: replace the snapshot with the store's own
	// ordering rather than splicing locally. If the re-fetch fails the old
	// snapshot is dropped so the next read loads fresh.
	refreshed, err := s.teamRepo.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "team list re-fetch after create failed", "error", err)
		s.snapshots.Invalidate(ctx, teamsKey(sess.User.ID))
		return created, nil
	}
	s.snapshots.Replace(ctx, teamsKey(sess.User.ID), refreshed)

	return created, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID string) (team.Team, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team by id: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team not found", ErrNotFound)
	}

	return item, nil
}

func teamsKey(userID string) string {
	return "teams:" + userID
}
