package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/leaguesync/internal/platform/logging"
)

const (
	playersFile   = "players.json"
	matchesFile   = "matches.json"
	scheduleFile  = "schedule.json"
	standingsFile = "standings.json"
	leagueFile    = "league.json"
)

// Loader reads league snapshot directories into typed, validated records.
// Each league lives in its own subdirectory named after its code; leagues
// load in parallel, records inside a file stay in input order.
type Loader struct {
	dir      string
	logger   *logging.Logger
	validate *validator.Validate
	poolSize int
}

func NewLoader(dir string, poolSize int, logger *logging.Logger) *Loader {
	if poolSize <= 0 {
		poolSize = 4
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Loader{
		dir:      dir,
		logger:   logger.WithComponent("source.loader"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		poolSize: poolSize,
	}
}

// Discover lists the league codes present under the input directory.
func (l *Loader) Discover() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	codes := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		codes = append(codes, entry.Name())
	}
	sort.Strings(codes)

	return codes, nil
}

// Load parses the snapshots for the given league codes. A missing league
// directory is an error; a malformed record inside an otherwise readable
// file is skipped and counted, never fatal. Snapshots come back ordered by
// league code regardless of worker scheduling.
func (l *Loader) Load(ctx context.Context, codes []string) ([]Snapshot, error) {
	if len(codes) == 0 {
		discovered, err := l.Discover()
		if err != nil {
			return nil, err
		}
		codes = discovered
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no league directories under %s", l.dir)
	}

	pool, err := ants.NewPool(l.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create loader pool: %w", err)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		snapshots = make([]Snapshot, len(codes))
	)
	for i, code := range codes {
		i, code := i, code
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			snap, loadErr := l.loadLeague(ctx, code)
			mu.Lock()
			defer mu.Unlock()
			if loadErr != nil {
				if firstErr == nil {
					firstErr = loadErr
				}
				return
			}
			snapshots[i] = snap
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit load for league %s: %w", code, submitErr)
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return snapshots, nil
}

func (l *Loader) loadLeague(ctx context.Context, code string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	dir := filepath.Join(l.dir, code)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Snapshot{}, fmt.Errorf("league directory %s not found", dir)
	}

	snap := Snapshot{LeagueCode: code, LeagueName: code}
	if meta, ok, err := l.readMeta(dir); err != nil {
		return Snapshot{}, err
	} else if ok && meta.Name != "" {
		snap.LeagueName = meta.Name
	}

	if err := l.loadPlayers(dir, &snap); err != nil {
		return Snapshot{}, err
	}
	if err := l.loadMatches(dir, &snap); err != nil {
		return Snapshot{}, err
	}
	if err := l.loadSchedule(dir, &snap); err != nil {
		return Snapshot{}, err
	}
	if err := l.loadStandings(dir, &snap); err != nil {
		return Snapshot{}, err
	}

	l.logger.InfoContext(ctx, "league snapshot loaded",
		"league", code,
		"players", len(snap.Players),
		"matches", len(snap.Matches),
		"schedule", len(snap.Schedule),
		"standings", len(snap.Standings),
		"skipped", len(snap.Skipped),
	)

	return snap, nil
}

func (l *Loader) readMeta(dir string) (leagueMeta, bool, error) {
	raw, err := os.ReadFile(filepath.Join(dir, leagueFile))
	if os.IsNotExist(err) {
		return leagueMeta{}, false, nil
	}
	if err != nil {
		return leagueMeta{}, false, fmt.Errorf("read %s: %w", leagueFile, err)
	}

	var meta leagueMeta
	if err := sonic.Unmarshal(raw, &meta); err != nil {
		return leagueMeta{}, false, fmt.Errorf("decode %s: %w", leagueFile, err)
	}

	return meta, true, nil
}

func (l *Loader) loadPlayers(dir string, snap *Snapshot) error {
	var records []PlayerRecord
	ok, err := readOptionalJSON(filepath.Join(dir, playersFile), &records)
	if err != nil || !ok {
		return err
	}

	for i, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			snap.Skipped = append(snap.Skipped, l.skip(snap.LeagueCode, playersFile, i, err))
			continue
		}
		snap.Players = append(snap.Players, rec)
	}

	return nil
}

func (l *Loader) loadMatches(dir string, snap *Snapshot) error {
	var records []MatchRecord
	ok, err := readOptionalJSON(filepath.Join(dir, matchesFile), &records)
	if err != nil || !ok {
		return err
	}

	for i, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			snap.Skipped = append(snap.Skipped, l.skip(snap.LeagueCode, matchesFile, i, err))
			continue
		}
		parsed, err := parseMatchDate(rec.Date)
		if err != nil {
			snap.Skipped = append(snap.Skipped, l.skip(snap.LeagueCode, matchesFile, i, err))
			continue
		}
		rec.ParsedDate = parsed
		snap.Matches = append(snap.Matches, rec)
	}

	return nil
}

func (l *Loader) loadSchedule(dir string, snap *Snapshot) error {
	var records []ScheduleRecord
	ok, err := readOptionalJSON(filepath.Join(dir, scheduleFile), &records)
	if err != nil || !ok {
		return err
	}

	for i, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			snap.Skipped = append(snap.Skipped, l.skip(snap.LeagueCode, scheduleFile, i, err))
			continue
		}
		snap.Schedule = append(snap.Schedule, rec)
	}

	return nil
}

func (l *Loader) loadStandings(dir string, snap *Snapshot) error {
	var records []StandingRecord
	ok, err := readOptionalJSON(filepath.Join(dir, standingsFile), &records)
	if err != nil || !ok {
		return err
	}

	for i, rec := range records {
		if err := l.validate.Struct(rec); err != nil {
			snap.Skipped = append(snap.Skipped, l.skip(snap.LeagueCode, standingsFile, i, err))
			continue
		}
		snap.Standings = append(snap.Standings, rec)
	}

	return nil
}

func (l *Loader) skip(league, file string, index int, reason error) SkippedRecord {
	l.logger.Warn("skipping malformed record",
		"league", league,
		"file", file,
		"index", index,
		"error", reason,
	)

	return SkippedRecord{File: file, Index: index, Reason: reason.Error()}
}

// readOptionalJSON decodes a JSON array file into out. A missing file is not
// an error; snapshots legitimately omit feeds the league does not publish.
func readOptionalJSON(path string, out any) (bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if err := sonic.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return true, nil
}
