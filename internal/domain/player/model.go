package player

import "fmt"

// Player sits on exactly one team's roster for its lifetime; no
// reassignment operation exists.
type Player struct {
	ID        string
	TeamID    string
	FirstName string
	LastName  string
	Email     string
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if p.FirstName == "" {
		return fmt.Errorf("player first name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("player last name is required")
	}
	if p.Email == "" {
		return fmt.Errorf("player email is required")
	}

	return nil
}

// NewPlayer carries the insert fields; the id comes back from the store.
type NewPlayer struct {
	TeamID    string
	FirstName string
	LastName  string
	Email     string
}

func (n NewPlayer) Validate() error {
	if n.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if n.FirstName == "" {
		return fmt.Errorf("player first name is required")
	}
	if n.LastName == "" {
		return fmt.Errorf("player last name is required")
	}
	if n.Email == "" {
		return fmt.Errorf("player email is required")
	}

	return nil
}
