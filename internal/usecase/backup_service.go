package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
	"github.com/riskibarqy/leaguesync/internal/domain/player"
	"github.com/riskibarqy/leaguesync/internal/domain/team"
	"github.com/riskibarqy/leaguesync/internal/platform/fuzzy"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
)

const restoreFuzzyMinScore = 0.65

// BackupService protects team-scoped user content across a structural
// import. Before the first destructive stage it snapshots every row
// verbatim into the holding area together with the natural key of the team
// it pointed at; after the upsert engine finishes it restores each row
// against the post-import team identifiers, falling back to name matching
// when surrogate identity was not preserved.
type BackupService struct {
	content content.Repository
	backups content.BackupRepository
	teams   team.Repository
	players player.Repository
	logger  *logging.Logger
	now     func() time.Time
}

func NewBackupService(
	contentRepo content.Repository,
	backups content.BackupRepository,
	teams team.Repository,
	players player.Repository,
	logger *logging.Logger,
) *BackupService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BackupService{
		content: contentRepo,
		backups: backups,
		teams:   teams,
		players: players,
		logger:  logger.WithComponent("usecase.backup"),
		now:     time.Now,
	}
}

// Backup snapshots every team-scoped content row into the holding area.
// Rows whose team no longer resolves still get backed up; the natural-key
// columns just stay empty and restoration relies on the later fallbacks.
func (s *BackupService) Backup(ctx context.Context, runID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "BackupService.Backup")
	defer span.End()

	if strings.TrimSpace(runID) == "" {
		return 0, errors.Wrap(ErrInvalidInput, "run id is required")
	}

	details, err := s.teams.ListDetailed(ctx)
	if err != nil {
		return 0, fmt.Errorf("list teams: %w", err)
	}
	byID := make(map[int64]team.Detail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	rows, err := s.content.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list content rows: %w", err)
	}

	backups := make([]content.Backup, 0, len(rows))
	for _, row := range rows {
		payload, err := sonic.MarshalString(row)
		if err != nil {
			return 0, fmt.Errorf("encode %s %d payload: %w", row.Kind, row.ID, err)
		}

		b := content.Backup{
			RunID:      runID,
			Kind:       row.Kind,
			ContentID:  row.ID,
			TeamID:     row.TeamID,
			CreatedBy:  row.CreatedBy,
			Payload:    payload,
			BackedUpAt: s.now(),
		}
		if d, ok := byID[row.TeamID]; ok {
			b.ClubName = d.ClubName
			b.SeriesName = d.SeriesName
			b.LeagueCode = d.LeagueCode
		}
		backups = append(backups, b)
	}

	if err := s.backups.SaveAll(ctx, backups); err != nil {
		return 0, fmt.Errorf("save backups: %w", err)
	}

	s.logger.InfoContext(ctx, "user content backed up",
		"run_id", runID, "rows", len(backups))

	return len(backups), nil
}

// Restore applies every pending holding-area row, including rows a crashed
// earlier run left behind. Resolution order per row: same natural key, then
// club/series name similarity, then the creator's current team, then a
// series number parsed from the content's free text. A row no strategy can
// place gets a null team reference and is reported, never dropped.
func (s *BackupService) Restore(ctx context.Context, runID string) (RestoreStats, error) {
	ctx, span := startUsecaseSpan(ctx, "BackupService.Restore")
	defer span.End()

	var stats RestoreStats

	pending, err := s.backups.ListPending(ctx)
	if err != nil {
		return stats, fmt.Errorf("list pending backups: %w", err)
	}
	if len(pending) == 0 {
		return stats, nil
	}

	index, err := s.buildRestoreIndex(ctx)
	if err != nil {
		return stats, err
	}

	restoredIDs := make([]int64, 0, len(pending))
	unresolvedIDs := make([]int64, 0)
	runIDs := map[string]struct{}{runID: {}}

	for _, b := range pending {
		runIDs[b.RunID] = struct{}{}

		row, err := s.decodeBackupRow(b)
		if err != nil {
			s.logger.ErrorContext(ctx, "backup payload undecodable, parking for triage",
				"backup_id", b.ID, "error", err)
			unresolvedIDs = append(unresolvedIDs, b.ID)
			stats.Unresolved++
			continue
		}

		targetID, strategy := index.resolve(b, row)
		row.TeamID = targetID

		if err := s.applyRestore(ctx, row); err != nil {
			return stats, err
		}

		if targetID == 0 {
			unresolvedIDs = append(unresolvedIDs, b.ID)
			stats.Unresolved++
			s.logger.WarnContext(ctx, "content row needs manual triage",
				"kind", b.Kind, "content_id", b.ContentID,
				"club", b.ClubName, "series", b.SeriesName,
				"error", errors.Wrapf(ErrRestorationMatch, "%s %d", b.Kind, b.ContentID))
			continue
		}

		restoredIDs = append(restoredIDs, b.ID)
		stats.Restored++
		if targetID != b.TeamID {
			stats.Remapped++
			s.logger.InfoContext(ctx, "content row remapped to new team",
				"kind", b.Kind, "content_id", b.ContentID,
				"old_team_id", b.TeamID, "new_team_id", targetID,
				"strategy", strategy)
		}
	}

	if err := s.backups.MarkRestored(ctx, restoredIDs); err != nil {
		return stats, fmt.Errorf("mark backups restored: %w", err)
	}
	if err := s.backups.MarkUnresolved(ctx, unresolvedIDs); err != nil {
		return stats, fmt.Errorf("mark backups unresolved: %w", err)
	}
	// Purge only after restoration is confirmed; unresolved rows stay.
	for id := range runIDs {
		if err := s.backups.PurgeRestored(ctx, id); err != nil {
			return stats, fmt.Errorf("purge restored backups: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "user content restored",
		"run_id", runID,
		"restored", stats.Restored,
		"remapped", stats.Remapped,
		"unresolved", stats.Unresolved,
	)

	return stats, nil
}

func (s *BackupService) decodeBackupRow(b content.Backup) (content.Row, error) {
	var row content.Row
	if err := sonic.UnmarshalString(b.Payload, &row); err != nil {
		return content.Row{}, fmt.Errorf("decode backup %d payload: %w", b.ID, err)
	}
	if row.ID == 0 {
		row.ID = b.ContentID
	}
	if !row.Kind.Valid() {
		row.Kind = b.Kind
	}

	return row, nil
}

// applyRestore repoints the live row when it survived the import, or
// re-inserts it verbatim when the import lost it.
func (s *BackupService) applyRestore(ctx context.Context, row content.Row) error {
	_, exists, err := s.content.Get(ctx, row.Kind, row.ID)
	if err != nil {
		return fmt.Errorf("look up %s %d: %w", row.Kind, row.ID, err)
	}
	if exists {
		if err := s.content.UpdateTeamRef(ctx, row.Kind, row.ID, row.TeamID); err != nil {
			return fmt.Errorf("repoint %s %d: %w", row.Kind, row.ID, err)
		}
		return nil
	}
	if err := s.content.Restore(ctx, row); err != nil {
		return fmt.Errorf("reinsert %s %d: %w", row.Kind, row.ID, err)
	}

	return nil
}

type restoreIndex struct {
	byNaturalKey  map[string]int64
	byID          map[int64]team.Detail
	fuzzyNames    []string
	fuzzyIDs      map[string]int64
	creatorTeams  map[string]int64
	seriesNumbers map[string][]int64
}

func naturalKey(clubName, seriesName, leagueCode string) string {
	return clubName + "|" + seriesName + "|" + leagueCode
}

func (s *BackupService) buildRestoreIndex(ctx context.Context) (*restoreIndex, error) {
	details, err := s.teams.ListDetailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	index := &restoreIndex{
		byNaturalKey:  make(map[string]int64, len(details)),
		byID:          make(map[int64]team.Detail, len(details)),
		fuzzyIDs:      make(map[string]int64, len(details)),
		creatorTeams:  make(map[string]int64),
		seriesNumbers: make(map[string][]int64),
	}
	for _, d := range details {
		index.byNaturalKey[naturalKey(d.ClubName, d.SeriesName, d.LeagueCode)] = d.ID
		index.byID[d.ID] = d

		label := d.ClubName + " " + d.SeriesName
		if _, ok := index.fuzzyIDs[label]; !ok {
			index.fuzzyIDs[label] = d.ID
			index.fuzzyNames = append(index.fuzzyNames, label)
		}

		if num := fuzzy.ExtractNumber(d.SeriesName); num != "" {
			index.seriesNumbers[num] = append(index.seriesNumbers[num], d.ID)
		}
	}

	players, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	index.creatorTeams = creatorTeamAssignments(players)

	return index, nil
}

// creatorTeamAssignments maps a creator's name to their current team. A
// name assigned to different teams in different leagues is dropped rather
// than guessed.
func creatorTeamAssignments(players []player.Player) map[string]int64 {
	out := make(map[string]int64)
	conflicting := make(map[string]struct{})
	for _, p := range players {
		if p.TeamID == 0 || p.Name == "" {
			continue
		}
		if existing, ok := out[p.Name]; ok && existing != p.TeamID {
			conflicting[p.Name] = struct{}{}
			continue
		}
		out[p.Name] = p.TeamID
	}
	for name := range conflicting {
		delete(out, name)
	}

	return out
}

// resolve picks the restoration target, most confident strategy first.
func (i *restoreIndex) resolve(b content.Backup, row content.Row) (int64, string) {
	if b.ClubName != "" {
		if id, ok := i.byNaturalKey[naturalKey(b.ClubName, b.SeriesName, b.LeagueCode)]; ok {
			return id, "natural-key"
		}
	}

	if b.ClubName != "" || b.SeriesName != "" {
		query := strings.TrimSpace(b.ClubName + " " + b.SeriesName)
		if best, ok, _ := fuzzy.BestUnique(query, i.fuzzyNames, restoreFuzzyMinScore); ok {
			return i.fuzzyIDs[best], "name-similarity"
		}
	}

	if b.CreatedBy != "" {
		if id, ok := i.creatorTeams[b.CreatedBy]; ok {
			return id, "creator-team"
		}
	}

	if num := fuzzy.ExtractNumber(row.Body); num != "" {
		if ids := i.seriesNumbers[num]; len(ids) == 1 {
			return ids[0], "series-number"
		}
	}

	return 0, ""
}
