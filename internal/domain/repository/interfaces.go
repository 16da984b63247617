package repository

import (
	"context"
	"time"

	"MacroPulse/internal/domain/models"
)

// CalendarSource fetches raw calendar rows for one country and date window
// (inclusive YYYY-MM-DD bounds).
type CalendarSource interface {
	FetchCalendar(ctx context.Context, country string, from, to time.Time) ([]models.RawCalendarRecord, error)
}

// QuoteSource fetches the current spot quote for one pair.
type QuoteSource interface {
	FetchQuote(ctx context.Context, pair string) (*models.RawQuoteRecord, error)
}

type ReferenceStore interface {
	ListCurrencies(ctx context.Context) ([]models.Currency, error)
	// GetIndicator returns (nil, nil) when no row exists for name.
	GetIndicator(ctx context.Context, name string) (*models.Indicator, error)
}

type EventStore interface {
	// UpsertEvent inserts or replaces the row sharing e's natural key.
	UpsertEvent(ctx context.Context, e *models.EconomicEvent) error
	ListEvents(ctx context.Context, q models.EventQuery) ([]models.EconomicEvent, error)
}

type QuoteStore interface {
	UpsertQuote(ctx context.Context, q *models.FxQuote) error
	ListQuotes(ctx context.Context, pairs []string) ([]models.FxQuote, error)
}

type JobStore interface {
	InsertJobRun(ctx context.Context, run *models.JobRun) error
	UpsertCursor(ctx context.Context, c *models.JobCursor) error
	GetCursor(ctx context.Context, name string) (*models.JobCursor, error)
}

// Store is the full persistence surface one backend provides.
type Store interface {
	ReferenceStore
	EventStore
	QuoteStore
	JobStore
	Migrate(ctx context.Context) error
	// SeedReference fills currencies and indicators when their tables are
	// empty; existing rows are never touched.
	SeedReference(ctx context.Context, currencies []models.Currency, indicators []models.Indicator) error
	Health(ctx context.Context) error
	Close() error
}

// Publisher fans pipeline activity out to downstream consumers.
type Publisher interface {
	PublishEvent(ctx context.Context, e *models.EconomicEvent) error
	PublishJobRun(ctx context.Context, run *models.JobRun) error
	Close() error
}

type Metrics interface {
	RecordFetched(job string, n int)
	RecordUpserted(job string)
	RecordSkipped(job, reason string)
	RecordError(kind string)
	RecordJob(job string, ok bool, seconds float64)
	RecordCache(result string)
}

// NoopPublisher drops everything.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, *models.EconomicEvent) error { return nil }
func (NoopPublisher) PublishJobRun(context.Context, *models.JobRun) error { return nil }
func (NoopPublisher) Close() error { return nil }

// NoopMetrics records nothing.
type NoopMetrics struct{}

func (NoopMetrics) RecordFetched(string, int) {}
func (NoopMetrics) RecordUpserted(string) {}
func (NoopMetrics) RecordSkipped(string, string) {}
func (NoopMetrics) RecordError(string) {}
func (NoopMetrics) RecordJob(string, bool, float64) {}
func (NoopMetrics) RecordCache(string) {}
