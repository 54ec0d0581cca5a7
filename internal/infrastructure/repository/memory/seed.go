package memory

import (
	"time"

	"github.com/dugoutlabs/ballclub/internal/domain/player"
	"github.com/dugoutlabs/ballclub/internal/domain/team"
)

const SeedUserID = "dev-user-0001"

// SeedTeams and SeedPlayers give dev mode something to look at without a
// hosted backend.
func SeedTeams() []team.Team {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []team.Team{
		{ID: "team-tigers", Name: "Tigers", UserID: SeedUserID, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "team-river-cats", Name: "River Cats", UserID: SeedUserID, CreatedAt: base.Add(24 * time.Hour)},
		{ID: "team-sandlot-nine", Name: "Sandlot Nine", UserID: SeedUserID, CreatedAt: base},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "player-ruth", TeamID: "team-tigers", FirstName: "Babe", LastName: "Ruth", Email: "babe@example.com"},
		{ID: "player-gehrig", TeamID: "team-tigers", FirstName: "Lou", LastName: "Gehrig", Email: "lou@example.com"},
		{ID: "player-paige", TeamID: "team-river-cats", FirstName: "Satchel", LastName: "Paige", Email: "satchel@example.com"},
	}
}
