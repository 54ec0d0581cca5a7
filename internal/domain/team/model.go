package team

import (
	"fmt"
	"time"
)

// Team is a baseball club owned by the user who created it.
type Team struct {
	ID        string
	Name      string
	UserID    string
	CreatedAt time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("team owner user id is required")
	}

	return nil
}

// NewTeam carries the fields the caller controls on insert. The id and
// creation timestamp are generated by the store.
type NewTeam struct {
	Name   string
	UserID string
}

func (n NewTeam) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if n.UserID == "" {
		return fmt.Errorf("team owner user id is required")
	}

	return nil
}
