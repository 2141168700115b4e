package team

import "fmt"

// Team is identified by the (club, series, league) triple. Exactly one row
// exists per triple; the upsert path relies on that uniqueness so the
// surrogate ID survives re-imports. User content references teams by ID.
type Team struct {
	ID          int64
	ClubID      int64
	SeriesID    int64
	LeagueID    int64
	DisplayName string
	Alias       string
}

// Detail is a team joined with the names behind its triple, used by the
// restore fallback and the orphan auditor which match by name.
type Detail struct {
	Team
	ClubName   string
	SeriesName string
	LeagueCode string
}

func (t Team) Validate() error {
	if t.ClubID <= 0 {
		return fmt.Errorf("team club id is required")
	}
	if t.SeriesID <= 0 {
		return fmt.Errorf("team series id is required")
	}
	if t.LeagueID <= 0 {
		return fmt.Errorf("team league id is required")
	}
	if t.DisplayName == "" {
		return fmt.Errorf("team display name is required")
	}

	return nil
}
