package datastore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/dugoutlabs/ballclub/internal/domain/team"
)

const teamsTable = "teams"

// TeamRepository adapts the data collaborator's teams table to the domain
// repository contract. Which rows a caller sees is decided entirely by the
// collaborator's row policies.
type TeamRepository struct {
	client *Client
}

func NewTeamRepository(client *Client) *TeamRepository {
	return &TeamRepository{client: client}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "created_at.desc")

	var rows []teamRow
	if err := r.client.getJSON(ctx, teamsTable, query, false, &rows); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	teams := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, row.toDomain())
	}
	return teams, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", "eq."+teamID)

	var row teamRow
	err := r.client.getJSON(ctx, teamsTable, query, true, &row)
	if crerr.Is(err, errNoRow) {
		return team.Team{}, false, nil
	}
	if err != nil {
		return team.Team{}, false, fmt.Errorf("select team %s: %w", teamID, err)
	}

	return row.toDomain(), true, nil
}

func (r *TeamRepository) Create(ctx context.Context, input team.NewTeam) (team.Team, error) {
	if err := input.Validate(); err != nil {
		return team.Team{}, err
	}

	var row teamRow
	err := r.client.postJSON(ctx, teamsTable, teamInsert{
		Name:   input.Name,
		UserID: input.UserID,
	}, &row)
	if err != nil {
		return team.Team{}, fmt.Errorf("insert team: %w", err)
	}

	created := row.toDomain()
	if err := created.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("collaborator echoed an invalid team: %w", err)
	}
	return created, nil
}

type teamRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r teamRow) toDomain() team.Team {
	return team.Team{
		ID:        r.ID,
		Name:      r.Name,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

type teamInsert struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}
