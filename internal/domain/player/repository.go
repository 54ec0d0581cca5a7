package player

import "context"

// Repository describes roster persistence needs from use cases.
// ListByTeam makes no ordering guarantee.
type Repository interface {
	ListByTeam(ctx context.Context, teamID string) ([]Player, error)
	Create(ctx context.Context, input NewPlayer) (Player, error)
}
