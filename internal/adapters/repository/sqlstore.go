package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okian/gridiron/internal/domain/form"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/metrics"

	// SQL drivers selected by name at open time.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names accepted by OpenSQL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id            TEXT PRIMARY KEY,
	league        TEXT    NOT NULL,
	season        INTEGER NOT NULL,
	week          INTEGER NOT NULL,
	date          TEXT    NOT NULL,
	home_team_id  TEXT    NOT NULL,
	away_team_id  TEXT    NOT NULL,
	home_score    INTEGER,
	away_score    INTEGER,
	completed     INTEGER NOT NULL,
	neutral_site  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_scope ON games (league, season, date, week);

CREATE TABLE IF NOT EXISTS team_ratings (
	league      TEXT    NOT NULL,
	season      INTEGER NOT NULL,
	team_id     TEXT    NOT NULL,
	week        INTEGER NOT NULL,
	rating      REAL    NOT NULL,
	games_count INTEGER NOT NULL,
	as_of_date  TEXT    NOT NULL,
	kind        TEXT    NOT NULL,
	PRIMARY KEY (league, season, team_id, week, kind)
);

CREATE TABLE IF NOT EXISTS team_stats (
	league         TEXT    NOT NULL,
	season         INTEGER NOT NULL,
	team_id        TEXT    NOT NULL,
	week           INTEGER NOT NULL,
	points_for     INTEGER NOT NULL,
	points_against INTEGER NOT NULL,
	point_diff     INTEGER NOT NULL,
	PRIMARY KEY (league, season, team_id, week)
);
`

// SQLStore implements Store on database/sql. The same statements run on
// sqlite (modernc, embedded default) and Postgres (lib/pq), selected by
// driver name; placeholders are rebound for Postgres.
type SQLStore struct {
	db           *sql.DB
	driver       string
	maxOpenConns int
}

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// OpenSQL opens (and migrates) a SQL-backed store.
func OpenSQL(driver, dsn string, opts ...SQLOption) (*SQLStore, error) {
	s := &SQLStore{driver: driver}
	for _, opt := range opts {
		opt(s)
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store dir: %w", err)
			}
		}
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
		if err == nil && s.maxOpenConns == 0 {
			// Single writer keeps sqlite happy under the worker pool.
			s.maxOpenConns = 1
		}
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unknown sql driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if s.maxOpenConns > 0 {
		db.SetMaxOpenConns(s.maxOpenConns)
	}

	s.db = db
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s store: %w", driver, err)
	}
	return s, nil
}

// rebind converts ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InsertGames upserts games and rematerializes weekly stats for every
// league+season in the batch, all in one transaction.
func (s *SQLStore) InsertGames(ctx context.Context, games []model.Game) error {
	start := time.Now()
	defer func() { metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert games: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := s.rebind(`INSERT INTO games
		(id, league, season, week, date, home_team_id, away_team_id, home_score, away_score, completed, neutral_site)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			league = excluded.league, season = excluded.season, week = excluded.week,
			date = excluded.date, home_team_id = excluded.home_team_id,
			away_team_id = excluded.away_team_id, home_score = excluded.home_score,
			away_score = excluded.away_score, completed = excluded.completed,
			neutral_site = excluded.neutral_site`)

	touched := make(map[model.ReplayJob]struct{})
	for _, g := range games {
		var hs, as interface{}
		if g.HomeScore != nil {
			hs = *g.HomeScore
		}
		if g.AwayScore != nil {
			as = *g.AwayScore
		}
		if _, err := tx.ExecContext(ctx, upsert,
			g.ID, g.League, g.Season, g.Week, g.Date.UTC().Format(time.RFC3339),
			g.HomeTeamID, g.AwayTeamID, hs, as, boolToInt(g.Completed), boolToInt(g.NeutralSite),
		); err != nil {
			return fmt.Errorf("upsert game %s: %w", g.ID, err)
		}
		touched[model.ReplayJob{League: g.League, Season: g.Season}] = struct{}{}
	}

	for scope := range touched {
		if err := s.rematerializeStats(ctx, tx, scope.League, scope.Season); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert games: %w", err)
	}
	return nil
}

func (s *SQLStore) rematerializeStats(ctx context.Context, tx *sql.Tx, league string, season int) error {
	games, err := s.scanGames(ctx, tx, league, season)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM team_stats WHERE league = ? AND season = ?`), league, season); err != nil {
		return fmt.Errorf("clear team stats %s/%d: %w", league, season, err)
	}

	insert := s.rebind(`INSERT INTO team_stats
		(league, season, team_id, week, points_for, points_against, point_diff)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, row := range form.Materialize(games) {
		if _, err := tx.ExecContext(ctx, insert,
			row.League, row.Season, row.TeamID, row.Week,
			row.PointsFor, row.PointsAgainst, row.PointDiff,
		); err != nil {
			return fmt.Errorf("insert team stat %s week %d: %w", row.TeamID, row.Week, err)
		}
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) scanGames(ctx context.Context, q querier, league string, season int) ([]model.Game, error) {
	rows, err := q.QueryContext(ctx, s.rebind(`SELECT
		id, league, season, week, date, home_team_id, away_team_id,
		home_score, away_score, completed, neutral_site
		FROM games WHERE league = ? AND season = ?
		ORDER BY date, week, id`), league, season)
	if err != nil {
		return nil, fmt.Errorf("query games %s/%d: %w", league, season, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(r rowScanner) (model.Game, error) {
	var (
		g                  model.Game
		dateStr            string
		hs, as             sql.NullInt64
		completed, neutral int
	)
	if err := r.Scan(&g.ID, &g.League, &g.Season, &g.Week, &dateStr,
		&g.HomeTeamID, &g.AwayTeamID, &hs, &as, &completed, &neutral); err != nil {
		return model.Game{}, fmt.Errorf("scan game: %w", err)
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return model.Game{}, fmt.Errorf("parse game date %q: %w", dateStr, err)
	}
	g.Date = date
	if hs.Valid {
		v := int(hs.Int64)
		g.HomeScore = &v
	}
	if as.Valid {
		v := int(as.Int64)
		g.AwayScore = &v
	}
	g.Completed = completed != 0
	g.NeutralSite = neutral != 0
	return g, nil
}

// GamesFor returns the ordered game log for one league+season.
func (s *SQLStore) GamesFor(ctx context.Context, league string, season int) ([]model.Game, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds())) }()

	return s.scanGames(ctx, s.db, league, season)
}

// GameByID returns one game or ErrNotFound.
func (s *SQLStore) GameByID(ctx context.Context, id string) (model.Game, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds())) }()

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT
		id, league, season, week, date, home_team_id, away_team_id,
		home_score, away_score, completed, neutral_site
		FROM games WHERE id = ?`), id)

	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Game{}, fmt.Errorf("game %q: %w", id, ErrNotFound)
		}
		return model.Game{}, err
	}
	return g, nil
}

// UpsertSeason atomically replaces the season's rows of the given
// rows' kind inside one transaction. Re-running the same replay leaves
// exactly one row per (league, season, team, week, kind).
func (s *SQLStore) UpsertSeason(ctx context.Context, league string, season int, rows []model.RatingSnapshot) error {
	start := time.Now()
	defer func() { metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	kind := model.KindElo
	if len(rows) > 0 {
		kind = rows[0].Kind
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin season upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		s.rebind(`DELETE FROM team_ratings WHERE league = ? AND season = ? AND kind = ?`),
		league, season, string(kind)); err != nil {
		return fmt.Errorf("clear season ratings %s/%d: %w", league, season, err)
	}

	insert := s.rebind(`INSERT INTO team_ratings
		(league, season, team_id, week, rating, games_count, as_of_date, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, insert,
			r.League, r.Season, r.TeamID, r.Week, r.Rating, r.GamesCount,
			r.AsOfDate.UTC().Format(time.RFC3339), string(r.Kind),
		); err != nil {
			return fmt.Errorf("insert rating %s week %d: %w", r.TeamID, r.Week, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season upsert: %w", err)
	}
	metrics.RecordSnapshotRowsUpserted(len(rows))
	return nil
}

// LatestBefore returns the most recent snapshot at or before cutoffWeek.
func (s *SQLStore) LatestBefore(ctx context.Context, league string, season int, teamID string, cutoffWeek int) (model.RatingSnapshot, error) {
	if cutoffWeek < 0 {
		return model.RatingSnapshot{}, fmt.Errorf("cutoff week %d: %w", cutoffWeek, ErrInvalidCutoff)
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds())) }()

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT
		league, season, team_id, week, rating, games_count, as_of_date, kind
		FROM team_ratings
		WHERE league = ? AND season = ? AND team_id = ? AND week <= ? AND kind = ?
		ORDER BY week DESC LIMIT 1`),
		league, season, teamID, cutoffWeek, string(model.KindElo))

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RatingSnapshot{}, fmt.Errorf("no snapshot for %s/%d team %q through week %d: %w",
				league, season, teamID, cutoffWeek, ErrNotFound)
		}
		return model.RatingSnapshot{}, err
	}
	return snap, nil
}

func scanSnapshot(r rowScanner) (model.RatingSnapshot, error) {
	var (
		snap    model.RatingSnapshot
		dateStr string
		kind    string
	)
	if err := r.Scan(&snap.League, &snap.Season, &snap.TeamID, &snap.Week,
		&snap.Rating, &snap.GamesCount, &dateStr, &kind); err != nil {
		return model.RatingSnapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return model.RatingSnapshot{}, fmt.Errorf("parse snapshot date %q: %w", dateStr, err)
	}
	snap.AsOfDate = date
	snap.Kind = model.RatingKind(kind)
	return snap, nil
}

// FinalSnapshots returns each team's max-week row, best rating first.
func (s *SQLStore) FinalSnapshots(ctx context.Context, league string, season int) ([]model.RatingSnapshot, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds())) }()

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT
		r.league, r.season, r.team_id, r.week, r.rating, r.games_count, r.as_of_date, r.kind
		FROM team_ratings r
		JOIN (
			SELECT team_id, MAX(week) AS week FROM team_ratings
			WHERE league = ? AND season = ? AND kind = ?
			GROUP BY team_id
		) latest ON latest.team_id = r.team_id AND latest.week = r.week
		WHERE r.league = ? AND r.season = ? AND r.kind = ?
		ORDER BY r.rating DESC, r.team_id`),
		league, season, string(model.KindElo), league, season, string(model.KindElo))
	if err != nil {
		return nil, fmt.Errorf("query final snapshots %s/%d: %w", league, season, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.RatingSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate final snapshots: %w", err)
	}
	return out, nil
}

// StatsThrough returns up to limit stats rows at or before cutoffWeek,
// most recent first.
func (s *SQLStore) StatsThrough(ctx context.Context, league string, season int, teamID string, cutoffWeek, limit int) ([]model.TeamWeekStat, error) {
	if cutoffWeek < 0 {
		return nil, fmt.Errorf("cutoff week %d: %w", cutoffWeek, ErrInvalidCutoff)
	}
	if limit <= 0 {
		limit = 1 << 30
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds())) }()

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT
		league, season, team_id, week, points_for, points_against, point_diff
		FROM team_stats
		WHERE league = ? AND season = ? AND team_id = ? AND week <= ?
		ORDER BY week DESC LIMIT ?`),
		league, season, teamID, cutoffWeek, limit)
	if err != nil {
		return nil, fmt.Errorf("query team stats %s/%d: %w", league, season, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.TeamWeekStat
	for rows.Next() {
		var s model.TeamWeekStat
		if err := rows.Scan(&s.League, &s.Season, &s.TeamID, &s.Week,
			&s.PointsFor, &s.PointsAgainst, &s.PointDiff); err != nil {
			return nil, fmt.Errorf("scan team stat: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team stats: %w", err)
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close %s store: %w", s.driver, err)
	}
	s.db = nil
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
