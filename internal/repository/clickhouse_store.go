package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"MacroPulse/internal/domain/models"
	domrepo "MacroPulse/internal/domain/repository"
	pkgch "MacroPulse/pkg/clickhouse"
	applogger "MacroPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

// Decimal columns hold the canonical decimal text so values round-trip
// exactly; ReplacingMergeTree collapses rows sharing the sorting key on merge, keeping
// the highest version column; reads use FINAL so replaced rows never show.
var clickhouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS currencies (
		code    String,
		name    String,
		country String
	) ENGINE = ReplacingMergeTree ORDER BY code`,
	`CREATE TABLE IF NOT EXISTS indicators (
		canonical_name      String,
		positive_is_bullish Bool,
		surprise_tolerance  String
	) ENGINE = ReplacingMergeTree ORDER BY canonical_name`,
	`CREATE TABLE IF NOT EXISTS economic_events (
		currency_code       LowCardinality(String),
		country             LowCardinality(String),
		report_name         String,
		canonical_indicator Nullable(String),
		impact              LowCardinality(String),
		event_datetime      DateTime64(3, 'UTC'),
		forecast            Nullable(String),
		actual              Nullable(String),
		previous            Nullable(String),
		surprise            Nullable(String),
		units               Nullable(String),
		sentiment           LowCardinality(String),
		source              LowCardinality(String),
		updated_at          DateTime64(3, 'UTC')
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY (country, report_name, event_datetime)`,
	`CREATE TABLE IF NOT EXISTS fx_quotes (
		pair           String,
		price          Nullable(String),
		bid            Nullable(String),
		ask            Nullable(String),
		open           Nullable(String),
		high           Nullable(String),
		low            Nullable(String),
		change_abs     Nullable(String),
		change_percent Nullable(String),
		last_update    DateTime64(3, 'UTC')
	) ENGINE = ReplacingMergeTree(last_update) ORDER BY pair`,
	`CREATE TABLE IF NOT EXISTS job_runs (
		id         UUID,
		job        LowCardinality(String),
		started_at DateTime64(3, 'UTC'),
		ended_at   DateTime64(3, 'UTC'),
		ok         Bool,
		message    String
	) ENGINE = MergeTree ORDER BY (job, started_at)`,
	`CREATE TABLE IF NOT EXISTS job_cursors (
		name     String,
		last_run DateTime64(3, 'UTC')
	) ENGINE = ReplacingMergeTree(last_run) ORDER BY name`,
}

// CHStore implements Store backed by ClickHouse.
type CHStore struct {
	cli     *pkgch.Client
	db      *sql.DB
	timeout time.Duration
	l       *applogger.Logger
}

var _ domrepo.Store = (*CHStore)(nil)

func NewCHStore(cli *pkgch.Client, queryTimeout time.Duration, l *applogger.Logger) *CHStore {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CHStore{cli: cli, db: cli.DB(), timeout: queryTimeout, l: l}
}

func (s *CHStore) Migrate(ctx context.Context) error {
	return s.cli.InitSchema(ctx, clickhouseSchema)
}

// SeedReference only inserts into empty tables: without a unique constraint
// a second insert would be a new version of every row.
func (s *CHStore) SeedReference(ctx context.Context, currencies []models.Currency, indicators []models.Indicator) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.count(ctx, "currencies")
	if err != nil {
		return err
	}
	if n == 0 && len(currencies) > 0 {
		err := s.batch(ctx, "INSERT INTO currencies (code, name, country)", len(currencies), func(stmt *sql.Stmt, i int) error {
			c := currencies[i]
			_, err := stmt.ExecContext(ctx, c.Code, c.Name, c.Country)
			return err
		})
		if err != nil {
			return fmt.Errorf("seed currencies: %w", err)
		}
	}

	n, err = s.count(ctx, "indicators")
	if err != nil {
		return err
	}
	if n == 0 && len(indicators) > 0 {
		err := s.batch(ctx, "INSERT INTO indicators (canonical_name, positive_is_bullish, surprise_tolerance)", len(indicators), func(stmt *sql.Stmt, i int) error {
			ind := indicators[i]
			_, err := stmt.ExecContext(ctx, ind.CanonicalName, ind.PositiveIsBullish, ind.SurpriseTolerance.String())
			return err
		})
		if err != nil {
			return fmt.Errorf("seed indicators: %w", err)
		}
	}
	s.l.Info("clickhouse reference data seeded",
		applogger.Int("currencies", len(currencies)),
		applogger.Int("indicators", len(indicators)),
	)
	return nil
}

func (s *CHStore) count(ctx context.Context, table string) (uint64, error) {
	var n uint64
	if err := s.db.QueryRowContext(ctx, "SELECT count() FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// batch sends n rows through one prepared insert inside a transaction, which
// clickhouse-go turns into a single native block.
func (s *CHStore) batch(ctx context.Context, insert string, n int, row func(*sql.Stmt, int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := row(stmt, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *CHStore) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT code, name, country FROM currencies FINAL ORDER BY code`)
	if err != nil {
		s.l.Error("clickhouse list_currencies query error", applogger.Error(err))
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

func (s *CHStore) GetIndicator(ctx context.Context, name string) (*models.Indicator, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var (
		ind models.Indicator
		tol string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT canonical_name, positive_is_bullish, surprise_tolerance FROM indicators FINAL WHERE canonical_name = ? LIMIT 1`,
		name,
	).Scan(&ind.CanonicalName, &ind.PositiveIsBullish, &tol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get indicator %s: %w", name, err)
	}
	if ind.SurpriseTolerance, err = decimal.NewFromString(tol); err != nil {
		return nil, fmt.Errorf("indicator %s tolerance %q: %w", name, tol, err)
	}
	return &ind, nil
}

// UpsertEvent appends a new version of the row; the merge keeps the one with
// the latest updated_at.
func (s *CHStore) UpsertEvent(ctx context.Context, e *models.EconomicEvent) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO economic_events (
			currency_code, country, report_name, canonical_indicator, impact, event_datetime,
			forecast, actual, previous, surprise, units, sentiment, source, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CurrencyCode, e.Country, e.ReportName, nullString(e.CanonicalIndicator), string(e.Impact),
		e.EventTime.UTC(),
		decText(e.Forecast), decText(e.Actual), decText(e.Previous), decText(e.Surprise),
		nullString(e.Units), string(e.Sentiment), e.Source, e.UpdatedAt.UTC(),
	)
	if err != nil {
		s.l.Error("clickhouse upsert_event error",
			applogger.String("country", e.Country),
			applogger.String("report_name", e.ReportName),
			applogger.Error(err),
		)
		return fmt.Errorf("upsert event %s/%s: %w", e.Country, e.ReportName, err)
	}
	return nil
}

func (s *CHStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.EconomicEvent, error) {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT currency_code, country, report_name, canonical_indicator, impact, event_datetime,
		       forecast, actual, previous, surprise, units, sentiment, source, updated_at
		FROM economic_events FINAL
		WHERE currency_code = ? AND event_datetime >= ? AND event_datetime <= ?`
	args := []any{q.Currency, q.From.UTC(), q.To.UTC()}
	if len(q.Impacts) > 0 {
		query += ` AND impact IN (` + placeholders(len(q.Impacts)) + `)`
		for _, im := range q.Impacts {
			args = append(args, string(im))
		}
	}
	query += ` ORDER BY event_datetime DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.l.Error("clickhouse list_events query error",
			applogger.String("currency", q.Currency),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("list events %s: %w", q.Currency, err)
	}
	defer rows.Close()

	out := make([]models.EconomicEvent, 0, 64)
	for rows.Next() {
		var (
			e                                    models.EconomicEvent
			canonical, units                     sql.NullString
			impact, senti                        string
			forecast, actual, previous, surprise sql.NullString
		)
		if err := rows.Scan(&e.CurrencyCode, &e.Country, &e.ReportName, &canonical, &impact, &e.EventTime,
			&forecast, &actual, &previous, &surprise, &units, &senti, &e.Source, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CanonicalIndicator = strFromNull(canonical)
		e.Units = strFromNull(units)
		e.Impact = models.Impact(impact)
		e.Sentiment = models.Sentiment(senti)
		e.Forecast = textDec(forecast)
		e.Actual = textDec(actual)
		e.Previous = textDec(previous)
		e.Surprise = textDec(surprise)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse list_events ok",
		applogger.String("currency", q.Currency),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHStore) UpsertQuote(ctx context.Context, q *models.FxQuote) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fx_quotes (pair, price, bid, ask, open, high, low, change_abs, change_percent, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Pair, decText(q.Price), decText(q.Bid), decText(q.Ask), decText(q.Open),
		decText(q.High), decText(q.Low), decText(q.ChangeAbs), decText(q.ChangePercent),
		q.LastUpdate.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert quote %s: %w", q.Pair, err)
	}
	return nil
}

func (s *CHStore) ListQuotes(ctx context.Context, pairs []string) ([]models.FxQuote, error) {
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
		FROM fx_quotes FINAL WHERE pair IN (`+placeholders(len(pairs))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var out []models.FxQuote
	for rows.Next() {
		var (
			q                                     models.FxQuote
			price, bid, ask, open, high, low, chg sql.NullString
			chgPct                                sql.NullString
		)
		if err := rows.Scan(&q.Pair, &price, &bid, &ask, &open, &high, &low, &chg, &chgPct, &q.LastUpdate); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Price, q.Bid, q.Ask = textDec(price), textDec(bid), textDec(ask)
		q.Open, q.High, q.Low = textDec(open), textDec(high), textDec(low)
		q.ChangeAbs, q.ChangePercent = textDec(chg), textDec(chgPct)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *CHStore) InsertJobRun(ctx context.Context, run *models.JobRun) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_runs (id, job, started_at, ended_at, ok, message) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Job, run.StartedAt.UTC(), run.EndedAt.UTC(), run.OK, run.Message,
	)
	if err != nil {
		return fmt.Errorf("insert job run %s: %w", run.Job, err)
	}
	return nil
}

func (s *CHStore) UpsertCursor(ctx context.Context, c *models.JobCursor) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_cursors (name, last_run) VALUES (?, ?)`,
		c.Name, c.LastRun.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert cursor %s: %w", c.Name, err)
	}
	return nil
}

func (s *CHStore) GetCursor(ctx context.Context, name string) (*models.JobCursor, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var last time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT last_run FROM job_cursors FINAL WHERE name = ? LIMIT 1`, name,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cursor %s: %w", name, err)
	}
	return &models.JobCursor{Name: name, LastRun: last.UTC()}, nil
}

func (s *CHStore) Health(ctx context.Context) error {
	return s.cli.Health(ctx)
}

func (s *CHStore) Close() error {
	return s.cli.Close()
}
