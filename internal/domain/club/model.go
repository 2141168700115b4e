package club

import "fmt"

// Club is shared across leagues; membership is tracked through association
// rows instead of a direct league foreign key so that one club fielding
// teams in several leagues stays a single row.
type Club struct {
	ID      int64
	Name    string
	Address string
}

// LeagueAssociation is a pure (club, league) relationship row.
type LeagueAssociation struct {
	ClubID   int64
	LeagueID int64
}

func (c Club) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}

	return nil
}
