package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dugoutlabs/ballclub/internal/domain/team"
	idgen "github.com/dugoutlabs/ballclub/internal/platform/id"
)

// TeamRepository is an in-memory stand-in for the hosted backend's teams
// table, used in dev mode and tests. Unlike the real collaborator it
// applies no row policies: every caller sees every team.
type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
	ids   idgen.Generator
	now   func() time.Time
}

func NewTeamRepository(seed []team.Team) *TeamRepository {
	teams := make(map[string]team.Team, len(seed))
	for _, item := range seed {
		teams[item.ID] = item
	}

	return &TeamRepository{
		teams: teams,
		ids:   idgen.NewRandomGenerator(),
		now:   time.Now,
	}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, item)
	}

	// Newest first, ties broken by id so the order is stable.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) Create(_ context.Context, input team.NewTeam) (team.Team, error) {
	if err := input.Validate(); err != nil {
		return team.Team{}, err
	}

	newID, err := r.ids.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	created := team.Team{
		ID:        newID,
		Name:      input.Name,
		UserID:    input.UserID,
		CreatedAt: r.now().UTC(),
	}

	r.mu.Lock()
	r.teams[created.ID] = created
	r.mu.Unlock()

	return created, nil
}
