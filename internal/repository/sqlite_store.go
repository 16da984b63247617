package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
	domrepo "MacroPulse/internal/domain/repository"
	applogger "MacroPulse/pkg/logger"
	pkgsqlite "MacroPulse/pkg/sqlite"
)

// Decimals are kept as TEXT so no precision is lost; instants are unix
// milliseconds.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS currencies (
		code    TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		country TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS indicators (
		canonical_name      TEXT PRIMARY KEY,
		positive_is_bullish INTEGER NOT NULL DEFAULT 1,
		surprise_tolerance  TEXT NOT NULL DEFAULT '0'
	)`,
	`CREATE TABLE IF NOT EXISTS economic_events (
		currency_code       TEXT NOT NULL,
		country             TEXT NOT NULL,
		report_name         TEXT NOT NULL,
		canonical_indicator TEXT,
		impact              TEXT NOT NULL,
		event_datetime      INTEGER NOT NULL,
		forecast            TEXT,
		actual              TEXT,
		previous            TEXT,
		surprise            TEXT,
		units               TEXT,
		sentiment           TEXT NOT NULL,
		source              TEXT NOT NULL,
		updated_at          INTEGER NOT NULL,
		PRIMARY KEY (country, report_name, event_datetime)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_currency_time ON economic_events (currency_code, event_datetime)`,
	`CREATE TABLE IF NOT EXISTS fx_quotes (
		pair           TEXT PRIMARY KEY,
		price          TEXT,
		bid            TEXT,
		ask            TEXT,
		open           TEXT,
		high           TEXT,
		low            TEXT,
		change_abs     TEXT,
		change_percent TEXT,
		last_update    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS job_runs (
		id         TEXT PRIMARY KEY,
		job        TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at   INTEGER NOT NULL,
		ok         INTEGER NOT NULL,
		message    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS job_cursors (
		name     TEXT PRIMARY KEY,
		last_run INTEGER NOT NULL
	)`,
}

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	cli     *pkgsqlite.Client
	db      *sql.DB
	timeout time.Duration
	l       *applogger.Logger
}

var _ domrepo.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(cli *pkgsqlite.Client, queryTimeout time.Duration, l *applogger.Logger) *SQLiteStore {
	if l == nil {
		l = applogger.NewNop()
	}
	return &SQLiteStore{cli: cli, db: cli.DB(), timeout: queryTimeout, l: l}
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.cli.InitSchema(ctx, sqliteSchema)
}

func (s *SQLiteStore) SeedReference(ctx context.Context, currencies []models.Currency, indicators []models.Indicator) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed reference: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range currencies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO currencies (code, name, country) VALUES (?, ?, ?) ON CONFLICT (code) DO NOTHING`,
			c.Code, c.Name, c.Country,
		); err != nil {
			return fmt.Errorf("seed currency %s: %w", c.Code, err)
		}
	}
	for _, ind := range indicators {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO indicators (canonical_name, positive_is_bullish, surprise_tolerance) VALUES (?, ?, ?)
			 ON CONFLICT (canonical_name) DO NOTHING`,
			ind.CanonicalName, ind.PositiveIsBullish, ind.SurpriseTolerance.String(),
		); err != nil {
			return fmt.Errorf("seed indicator %s: %w", ind.CanonicalName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed reference: %w", err)
	}
	s.l.Info("sqlite reference data seeded",
		applogger.Int("currencies", len(currencies)),
		applogger.Int("indicators", len(indicators)),
	)
	return nil
}

func (s *SQLiteStore) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT code, name, country FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []models.Currency
	for rows.Next() {
		var c models.Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.Country); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetIndicator(ctx context.Context, name string) (*models.Indicator, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var ind models.Indicator
	err := s.db.QueryRowContext(ctx,
		`SELECT canonical_name, positive_is_bullish, surprise_tolerance FROM indicators WHERE canonical_name = ?`,
		name,
	).Scan(&ind.CanonicalName, &ind.PositiveIsBullish, &ind.SurpriseTolerance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get indicator %s: %w", name, err)
	}
	return &ind, nil
}

func (s *SQLiteStore) UpsertEvent(ctx context.Context, e *models.EconomicEvent) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO economic_events (
			currency_code, country, report_name, canonical_indicator, impact, event_datetime,
			forecast, actual, previous, surprise, units, sentiment, source, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (country, report_name, event_datetime) DO UPDATE SET
			currency_code       = excluded.currency_code,
			canonical_indicator = excluded.canonical_indicator,
			impact              = excluded.impact,
			forecast            = excluded.forecast,
			actual              = excluded.actual,
			previous            = excluded.previous,
			surprise            = excluded.surprise,
			units               = excluded.units,
			sentiment           = excluded.sentiment,
			source              = excluded.source,
			updated_at          = excluded.updated_at`,
		e.CurrencyCode, e.Country, e.ReportName, nullString(e.CanonicalIndicator), string(e.Impact),
		e.EventTime.UnixMilli(),
		e.Forecast, e.Actual, e.Previous, e.Surprise, nullString(e.Units),
		string(e.Sentiment), e.Source, e.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert event %s/%s: %w", e.Country, e.ReportName, err)
	}
	return nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.EconomicEvent, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT currency_code, country, report_name, canonical_indicator, impact, event_datetime,
		       forecast, actual, previous, surprise, units, sentiment, source, updated_at
		FROM economic_events
		WHERE currency_code = ? AND event_datetime >= ? AND event_datetime <= ?`
	args := []any{q.Currency, q.From.UnixMilli(), q.To.UnixMilli()}
	if len(q.Impacts) > 0 {
		query += ` AND impact IN (` + placeholders(len(q.Impacts)) + `)`
		for _, im := range q.Impacts {
			args = append(args, string(im))
		}
	}
	query += ` ORDER BY event_datetime DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", q.Currency, err)
	}
	defer rows.Close()

	var out []models.EconomicEvent
	for rows.Next() {
		var (
			e                models.EconomicEvent
			canonical, units sql.NullString
			impact, senti    string
			eventMs, updMs   int64
		)
		if err := rows.Scan(&e.CurrencyCode, &e.Country, &e.ReportName, &canonical, &impact, &eventMs,
			&e.Forecast, &e.Actual, &e.Previous, &e.Surprise, &units, &senti, &e.Source, &updMs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CanonicalIndicator = strFromNull(canonical)
		e.Units = strFromNull(units)
		e.Impact = models.Impact(impact)
		e.Sentiment = models.Sentiment(senti)
		e.EventTime = time.UnixMilli(eventMs).UTC()
		e.UpdatedAt = time.UnixMilli(updMs).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertQuote(ctx context.Context, q *models.FxQuote) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fx_quotes (pair, price, bid, ask, open, high, low, change_abs, change_percent, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (pair) DO UPDATE SET
			price          = excluded.price,
			bid            = excluded.bid,
			ask            = excluded.ask,
			open           = excluded.open,
			high           = excluded.high,
			low            = excluded.low,
			change_abs     = excluded.change_abs,
			change_percent = excluded.change_percent,
			last_update    = excluded.last_update`,
		q.Pair, q.Price, q.Bid, q.Ask, q.Open, q.High, q.Low, q.ChangeAbs, q.ChangePercent,
		q.LastUpdate.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert quote %s: %w", q.Pair, err)
	}
	return nil
}

func (s *SQLiteStore) ListQuotes(ctx context.Context, pairs []string) ([]models.FxQuote, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	args := make([]any, len(pairs))
	for i, p := range pairs {
		args[i] = p
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT pair, price, bid, ask, open, high, low, change_abs, change_percent, last_update
		FROM fx_quotes WHERE pair IN (`+placeholders(len(pairs))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var out []models.FxQuote
	for rows.Next() {
		var (
			q  models.FxQuote
			ms int64
		)
		if err := rows.Scan(&q.Pair, &q.Price, &q.Bid, &q.Ask, &q.Open, &q.High, &q.Low,
			&q.ChangeAbs, &q.ChangePercent, &ms); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.LastUpdate = time.UnixMilli(ms).UTC()
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertJobRun(ctx context.Context, run *models.JobRun) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_runs (id, job, started_at, ended_at, ok, message) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Job, run.StartedAt.UnixMilli(), run.EndedAt.UnixMilli(), run.OK, run.Message,
	)
	if err != nil {
		return fmt.Errorf("insert job run %s: %w", run.Job, err)
	}
	return nil
}

// ListJobRuns returns the most recent runs of job, newest first.
func (s *SQLiteStore) ListJobRuns(ctx context.Context, job string, limit int) ([]models.JobRun, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job, started_at, ended_at, ok, message FROM job_runs WHERE job = ? ORDER BY started_at DESC LIMIT ?`,
		job, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	defer rows.Close()

	var out []models.JobRun
	for rows.Next() {
		var (
			r              models.JobRun
			startMs, endMs int64
		)
		if err := rows.Scan(&r.ID, &r.Job, &startMs, &endMs, &r.OK, &r.Message); err != nil {
			return nil, fmt.Errorf("scan job run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startMs).UTC()
		r.EndedAt = time.UnixMilli(endMs).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertCursor(ctx context.Context, c *models.JobCursor) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_cursors (name, last_run) VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE SET last_run = excluded.last_run`,
		c.Name, c.LastRun.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert cursor %s: %w", c.Name, err)
	}
	return nil
}

func (s *SQLiteStore) GetCursor(ctx context.Context, name string) (*models.JobCursor, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT last_run FROM job_cursors WHERE name = ?`, name).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cursor %s: %w", name, err)
	}
	return &models.JobCursor{Name: name, LastRun: time.UnixMilli(ms).UTC()}, nil
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.cli.Health(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.cli.Close()
}
