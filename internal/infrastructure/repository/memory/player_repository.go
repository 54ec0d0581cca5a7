package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dugoutlabs/ballclub/internal/domain/player"
	idgen "github.com/dugoutlabs/ballclub/internal/platform/id"
)

// PlayerRepository is the in-memory stand-in for the players table.
type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
	ids     idgen.Generator
}

func NewPlayerRepository(seed []player.Player) *PlayerRepository {
	players := make(map[string]player.Player, len(seed))
	for _, item := range seed {
		players[item.ID] = item
	}

	return &PlayerRepository{
		players: players,
		ids:     idgen.NewRandomGenerator(),
	}
}

func (r *PlayerRepository) ListByTeam(_ context.Context, teamID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, item := range r.players {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}

	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, input player.NewPlayer) (player.Player, error) {
	if err := input.Validate(); err != nil {
		return player.Player{}, err
	}

	newID, err := r.ids.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	created := player.Player{
		ID:        newID,
		TeamID:    input.TeamID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}

	r.mu.Lock()
	r.players[created.ID] = created
	r.mu.Unlock()

	return created, nil
}
