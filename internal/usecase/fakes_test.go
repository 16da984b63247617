package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/repository"
	pkgsqlite "MacroPulse/pkg/sqlite"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	cli, err := pkgsqlite.NewClient(pkgsqlite.MemoryPath)
	require.NoError(t, err)
	s := repository.NewSQLiteStore(cli, time.Second, nil)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

type fakeCalendar struct {
	mu    sync.Mutex
	rows  map[string][]models.RawCalendarRecord
	errs  map[string]error
	calls []string
}

func (f *fakeCalendar) FetchCalendar(_ context.Context, country string, _, _ time.Time) ([]models.RawCalendarRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, country)
	if err := f.errs[country]; err != nil {
		return nil, err
	}
	return f.rows[country], nil
}

type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]*models.RawQuoteRecord
	errs   map[string]error
	calls  []string
}

func (f *fakeQuotes) FetchQuote(_ context.Context, pair string) (*models.RawQuoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pair)
	if err := f.errs[pair]; err != nil {
		return nil, err
	}
	if q, ok := f.quotes[pair]; ok {
		cp := *q
		return &cp, nil
	}
	return &models.RawQuoteRecord{Pair: pair, Price: "1.0"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.EconomicEvent
	runs   []models.JobRun
}

func (p *recordingPublisher) PublishEvent(_ context.Context, e *models.EconomicEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) PublishJobRun(_ context.Context, r *models.JobRun) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, *r)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// failingCurrencies breaks the currency list read.
type failingCurrencies struct {
	*repository.SQLiteStore
}

func (failingCurrencies) ListCurrencies(context.Context) ([]models.Currency, error) {
	return nil, errBoom
}

// failingUpsert rejects the event with one report name.
type failingUpsert struct {
	*repository.SQLiteStore
	reportName string
}

func (f failingUpsert) UpsertEvent(ctx context.Context, e *models.EconomicEvent) error {
	if e.ReportName == f.reportName {
		return errBoom
	}
	return f.SQLiteStore.UpsertEvent(ctx, e)
}

// cancellingCalendar cancels the run as soon as the first fetch arrives.
type cancellingCalendar struct {
	*fakeCalendar
	cancel context.CancelFunc
}

func (c cancellingCalendar) FetchCalendar(ctx context.Context, country string, from, to time.Time) ([]models.RawCalendarRecord, error) {
	c.cancel()
	return c.fakeCalendar.FetchCalendar(ctx, country, from, to)
}

// failingOverviewStore breaks the event query.
type failingOverviewStore struct {
	*repository.SQLiteStore
}

func (failingOverviewStore) ListEvents(context.Context, models.EventQuery) ([]models.EconomicEvent, error) {
	return nil, errBoom
}

// gatedOverviewStore holds the event query until release is closed.
type gatedOverviewStore struct {
	*repository.SQLiteStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedOverviewStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.EconomicEvent, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return g.SQLiteStore.ListEvents(ctx, q)
}

type stubPipeline struct {
	name    string
	mu      sync.Mutex
	runs    int
	block   chan struct{}
	started chan struct{}
}

func (p *stubPipeline) Name() string { return p.name }

func (p *stubPipeline) Run(ctx context.Context) (*models.RunReport, error) {
	p.mu.Lock()
	p.runs++
	p.mu.Unlock()
	if p.started != nil {
		close(p.started)
	}
	if p.block != nil {
		<-p.block
	}
	return &models.RunReport{Job: p.name, OK: true}, nil
}

func (p *stubPipeline) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
