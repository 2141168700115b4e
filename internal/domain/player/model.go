package player

import "fmt"

// Player carries the externally issued stable identifier as its natural key
// within a league. Assignment fields are surrogate IDs into the hierarchy;
// zero means unassigned and is stored as NULL.
type Player struct {
	ID         int64
	ExternalID string
	LeagueID   int64
	TeamID     int64
	ClubID     int64
	SeriesID   int64
	Name       string
	Rating     float64
}

func (p Player) Validate() error {
	if p.ExternalID == "" {
		return fmt.Errorf("player external id is required")
	}
	if p.LeagueID <= 0 {
		return fmt.Errorf("player league id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
