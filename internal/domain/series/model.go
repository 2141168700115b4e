package series

import "fmt"

// Series is a division within a league season. Like clubs, series are
// shared rows associated to leagues through relationship rows.
type Series struct {
	ID   int64
	Name string
}

// LeagueAssociation is a pure (series, league) relationship row.
type LeagueAssociation struct {
	SeriesID int64
	LeagueID int64
}

func (s Series) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("series name is required")
	}

	return nil
}
