package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/dugoutlabs/ballclub/internal/domain/player"
	"github.com/dugoutlabs/ballclub/internal/domain/team"
	"github.com/dugoutlabs/ballclub/internal/platform/resilience"
	"github.com/dugoutlabs/ballclub/internal/platform/session"
	"github.com/dugoutlabs/ballclub/internal/platform/viewstate"
)

// TeamRoster is the combined result of the team-detail composite read.
type TeamRoster struct {
	Team    team.Team
	Players []player.Player
}

type AddPlayerInput struct {
	TeamID    string
	FirstName string
	LastName  string
	Email     string
}

// RosterService serves the team-detail screen. The composite read issues
// the team lookup and the roster listing concurrently and fails as a whole
// if either leg does. Roster mutations reconcile optimistically: the row
// the collaborator echoes back is folded into the snapshot as-is, with no
// second round trip.
//
// Snapshots are keyed per principal. Which rows a roster read yields is the
// collaborator's row-policy decision for that caller, so a cached list is
// only ever served back to the principal whose read produced it.
type RosterService struct {
	teamRepo   team.Repository
	playerRepo player.Repository
	snapshots  *viewstate.Store[player.Player]
	logger     *slog.Logger
	latch      *resilience.Latch
}

func NewRosterService(
	teamRepo team.Repository,
	playerRepo player.Repository,
	snapshots *viewstate.Store[player.Player],
	logger *slog.Logger,
) *RosterService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RosterService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		snapshots:  snapshots,
		logger:     logger,
		latch:      &resilience.Latch{},
	}
}

// ListPlayers returns the roster for one team; no ordering is guaranteed.
func (s *RosterService) ListPlayers(ctx context.Context, teamID string) ([]player.Player, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: roster listing needs a session", ErrNoAuthenticatedUser)
	}

	players, err := s.snapshots.GetOrLoad(ctx, rosterKey(sess.User.ID, teamID), func(ctx context.Context) ([]player.Player, error) {
		return s.playerRepo.ListByTeam(ctx, teamID)
	})
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if players == nil {
		players = []player.Player{}
	}

	return players, nil
}

// AddPlayer inserts the row and reconciles the roster snapshot with the
// exact record the collaborator echoed back; identifiers are never
// synthesized on this side. A failed insert leaves the snapshot untouched.
func (s *RosterService) AddPlayer(ctx context.Context, input AddPlayerInput) (player.Player, error) {
	record := player.NewPlayer{
		TeamID:    strings.TrimSpace(input.TeamID),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.TrimSpace(input.Email),
	}
	if err := record.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	sess, ok := session.FromContext(ctx)
	if !ok {
		return player.Player{}, fmt.Errorf("%w: roster changes need a session", ErrNoAuthenticatedUser)
	}

	latchKey := "add-player:" + record.TeamID + ":" + sess.User.ID
	if !s.latch.TryAcquire(latchKey) {
		return player.Player{}, fmt.Errorf("%w: player submission for team %s", ErrSubmissionInFlight, record.TeamID)
	}
	defer s.latch.Release(latchKey)

	created, err := s.playerRepo.Create(ctx, record)
	if err != nil {
		return player.Player{}, fmt.Errorf("add player: %w", err)
	}

	s.snapshots.Upsert(ctx, rosterKey(sess.User.ID, record.TeamID), created)

	return created, nil
}

// FetchTeamAndRoster runs both reads concurrently and joins them. Either
// failure cancels the sibling leg and fails the whole call; no team-only or
// roster-only partial escapes. The installed snapshot is keyed by the
// calling principal when a session is present; session-less internal work
// warms the team owner's view and nobody else's.
func (s *RosterService) FetchTeamAndRoster(ctx context.Context, teamID string) (TeamRoster, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return TeamRoster{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	var (
		teamItem team.Team
		players  []player.Player
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		item, exists, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return fmt.Errorf("get team by id: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: team not found", ErrNotFound)
		}
		teamItem = item
		return nil
	})
	p.Go(func(ctx context.Context) error {
		listed, err := s.playerRepo.ListByTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		players = listed
		return nil
	})

	if err := p.Wait(); err != nil {
		return TeamRoster{}, err
	}

	if players == nil {
		players = []player.Player{}
	}

	principal := teamItem.UserID
	if sess, ok := session.FromContext(ctx); ok {
		principal = sess.User.ID
	}
	s.snapshots.Replace(ctx, rosterKey(principal, teamID), players)

	return TeamRoster{Team: teamItem, Players: players}, nil
}

func rosterKey(userID, teamID string) string {
	return "roster:" + userID + ":" + teamID
}
