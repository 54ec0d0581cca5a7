package team

import "context"

// Repository describes team persistence needs from use cases.
// List returns teams newest-first; visibility filtering is the backing
// store's concern.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	Create(ctx context.Context, input NewTeam) (Team, error)
}
