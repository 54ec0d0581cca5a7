package datastore

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dugoutlabs/ballclub/internal/domain/player"
)

const playersTable = "players"

// PlayerRepository adapts the data collaborator's players table.
type PlayerRepository struct {
	client *Client
}

func NewPlayerRepository(client *Client) *PlayerRepository {
	return &PlayerRepository{client: client}
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("team_id", "eq."+teamID)

	var rows []playerRow
	if err := r.client.getJSON(ctx, playersTable, query, false, &rows); err != nil {
		return nil, fmt.Errorf("select players for team %s: %w", teamID, err)
	}

	players := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, row.toDomain())
	}
	return players, nil
}

func (r *PlayerRepository) Create(ctx context.Context, input player.NewPlayer) (player.Player, error) {
	if err := input.Validate(); err != nil {
		return player.Player{}, err
	}

	var row playerRow
	err := r.client.postJSON(ctx, playersTable, playerInsert{
		TeamID:    input.TeamID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}, &row)
	if err != nil {
		return player.Player{}, fmt.Errorf("insert player: %w", err)
	}

	created := row.toDomain()
	if err := created.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("collaborator echoed an invalid player: %w", err)
	}
	return created, nil
}

type playerRow struct {
	ID        string `json:"id"`
	TeamID    string `json:"team_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (r playerRow) toDomain() player.Player {
	return player.Player{
		ID:        r.ID,
		TeamID:    r.TeamID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}

type playerInsert struct {
	TeamID    string `json:"team_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}
