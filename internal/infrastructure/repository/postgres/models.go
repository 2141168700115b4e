package postgres

import (
	"database/sql"
	"time"
)

type leagueTableModel struct {
	ID        int64     `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	Code string `db:"code"`
	Name string `db:"name"`
}

type clubTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type clubInsertModel struct {
	Name    string `db:"name"`
	Address string `db:"address"`
}

type clubLeagueTableModel struct {
	ClubID   int64 `db:"club_id"`
	LeagueID int64 `db:"league_id"`
}

type seriesTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type seriesInsertModel struct {
	Name string `db:"name"`
}

type seriesLeagueTableModel struct {
	SeriesID int64 `db:"series_id"`
	LeagueID int64 `db:"league_id"`
}

type teamTableModel struct {
	ID          int64     `db:"id"`
	ClubID      int64     `db:"club_id"`
	SeriesID    int64     `db:"series_id"`
	LeagueID    int64     `db:"league_id"`
	DisplayName string    `db:"display_name"`
	Alias       string    `db:"alias"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	ClubID      int64  `db:"club_id"`
	SeriesID    int64  `db:"series_id"`
	LeagueID    int64  `db:"league_id"`
	DisplayName string `db:"display_name"`
	Alias       string `db:"alias"`
}

type teamDetailTableModel struct {
	teamTableModel
	ClubName   string `db:"club_name"`
	SeriesName string `db:"series_name"`
	LeagueCode string `db:"league_code"`
}

type playerTableModel struct {
	ID         int64         `db:"id"`
	ExternalID string        `db:"external_id"`
	LeagueID   int64         `db:"league_id"`
	TeamID     sql.NullInt64 `db:"team_id"`
	ClubID     sql.NullInt64 `db:"club_id"`
	SeriesID   sql.NullInt64 `db:"series_id"`
	Name       string        `db:"name"`
	Rating     float64       `db:"rating"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

type playerInsertModel struct {
	ExternalID string        `db:"external_id"`
	LeagueID   int64         `db:"league_id"`
	TeamID     sql.NullInt64 `db:"team_id"`
	ClubID     sql.NullInt64 `db:"club_id"`
	SeriesID   sql.NullInt64 `db:"series_id"`
	Name       string        `db:"name"`
	Rating     float64       `db:"rating"`
}

type matchTableModel struct {
	ID           int64          `db:"id"`
	LeagueID     int64          `db:"league_id"`
	ContentKey   string         `db:"content_key"`
	SourceKey    sql.NullString `db:"source_key"`
	MatchDate    time.Time      `db:"match_date"`
	HomeTeamID   sql.NullInt64  `db:"home_team_id"`
	AwayTeamID   sql.NullInt64  `db:"away_team_id"`
	HomeTeamName string         `db:"home_team_name"`
	AwayTeamName string         `db:"away_team_name"`
	PlayerIDs    string         `db:"player_external_ids"`
	Score        string         `db:"score"`
	ReviewFlag   bool           `db:"review_flag"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	LeagueID     int64          `db:"league_id"`
	ContentKey   string         `db:"content_key"`
	SourceKey    sql.NullString `db:"source_key"`
	MatchDate    time.Time      `db:"match_date"`
	HomeTeamID   sql.NullInt64  `db:"home_team_id"`
	AwayTeamID   sql.NullInt64  `db:"away_team_id"`
	HomeTeamName string         `db:"home_team_name"`
	AwayTeamName string         `db:"away_team_name"`
	PlayerIDs    string         `db:"player_external_ids"`
	Score        string         `db:"score"`
	ReviewFlag   bool           `db:"review_flag"`
}

type nameMappingTableModel struct {
	ID            int64     `db:"id"`
	LeagueID      int64     `db:"league_id"`
	SourceName    string    `db:"source_name"`
	CanonicalName string    `db:"canonical_name"`
	CreatedAt     time.Time `db:"created_at"`
}

type nameMappingInsertModel struct {
	LeagueID      int64  `db:"league_id"`
	SourceName    string `db:"source_name"`
	CanonicalName string `db:"canonical_name"`
}

type contentRowTableModel struct {
	ID        int64         `db:"id"`
	TeamID    sql.NullInt64 `db:"team_id"`
	CreatedBy string        `db:"created_by"`
	Body      string        `db:"body"`
	CreatedAt time.Time     `db:"created_at"`
}

type contentBackupTableModel struct {
	ID         int64         `db:"id"`
	RunID      string        `db:"run_id"`
	Kind       string        `db:"kind"`
	ContentID  int64         `db:"content_id"`
	TeamID     sql.NullInt64 `db:"team_id"`
	ClubName   string        `db:"club_name"`
	SeriesName string        `db:"series_name"`
	LeagueCode string        `db:"league_code"`
	CreatedBy  string        `db:"created_by"`
	Payload    string        `db:"payload"`
	BackedUpAt time.Time     `db:"backed_up_at"`
	RestoredAt sql.NullTime  `db:"restored_at"`
	Unresolved bool          `db:"unresolved"`
}

type contentBackupInsertModel struct {
	RunID      string        `db:"run_id"`
	Kind       string        `db:"kind"`
	ContentID  int64         `db:"content_id"`
	TeamID     sql.NullInt64 `db:"team_id"`
	ClubName   string        `db:"club_name"`
	SeriesName string        `db:"series_name"`
	LeagueCode string        `db:"league_code"`
	CreatedBy  string        `db:"created_by"`
	Payload    string        `db:"payload"`
	BackedUpAt time.Time     `db:"backed_up_at"`
}
