package repository

import (
	"context"
	"testing"
	"time"

	"MacroPulse/internal/domain/models"
	pkgsqlite "MacroPulse/pkg/sqlite"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cli, err := pkgsqlite.NewClient(pkgsqlite.MemoryPath)
	require.NoError(t, err)
	s := NewSQLiteStore(cli, time.Second, nil)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func strp(s string) *string { return &s }

func TestSQLiteMigrateIdempotent(t *testing.T) {
	s := newMemStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestSQLiteSeedReferenceKeepsExisting(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedReference(ctx,
		[]models.Currency{{Code: "USD", Name: "US Dollar", Country: "United States"}},
		[]models.Indicator{{CanonicalName: "Unemployment Rate", PositiveIsBullish: false, SurpriseTolerance: decimal.RequireFromString("0.1")}},
	))
	require.NoError(t, s.SeedReference(ctx,
		[]models.Currency{{Code: "USD", Name: "changed", Country: "changed"}, {Code: "EUR", Name: "Euro", Country: "Euro Area"}},
		[]models.Indicator{{CanonicalName: "Unemployment Rate", PositiveIsBullish: true}},
	))

	cur, err := s.ListCurrencies(ctx)
	require.NoError(t, err)
	require.Len(t, cur, 2)
	assert.Equal(t, "EUR", cur[0].Code)
	assert.Equal(t, "US Dollar", cur[1].Name)

	ind, err := s.GetIndicator(ctx, "Unemployment Rate")
	require.NoError(t, err)
	require.NotNil(t, ind)
	assert.False(t, ind.PositiveIsBullish)
	assert.True(t, decimal.RequireFromString("0.1").Equal(ind.SurpriseTolerance))

	missing, err := s.GetIndicator(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteUpsertEventReplaces(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 5, 13, 30, 0, 0, time.UTC)

	e := &models.EconomicEvent{
		CurrencyCode: "USD", Country: "United States", ReportName: "CPI YoY",
		CanonicalIndicator: strp("CPI YoY"), Impact: models.ImpactHigh, EventTime: at,
		Forecast: dec("3.1"), Units: nil, Sentiment: models.Neutral, Source: "FinanceFlow",
		UpdatedAt: at,
	}
	require.NoError(t, s.UpsertEvent(ctx, e))

	rev := *e
	rev.Actual = dec("3.4")
	rev.Surprise = dec("0.3")
	rev.Sentiment = models.Bullish
	rev.UpdatedAt = at.Add(time.Hour)
	require.NoError(t, s.UpsertEvent(ctx, &rev))

	got, err := s.ListEvents(ctx, models.EventQuery{Currency: "USD", From: at.Add(-time.Hour), To: at.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Bullish, got[0].Sentiment)
	assert.Equal(t, "3.4", got[0].Actual.Decimal.String())
	assert.Equal(t, "3.1", got[0].Forecast.Decimal.String())
	assert.False(t, got[0].Previous.Valid)
	require.NotNil(t, got[0].CanonicalIndicator)
	assert.Equal(t, "CPI YoY", *got[0].CanonicalIndicator)
	assert.Nil(t, got[0].Units)
	assert.True(t, at.Equal(got[0].EventTime))
}

func TestSQLiteListEventsFilterAndOrder(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	add := func(name, cur string, impact models.Impact, at time.Time) {
		require.NoError(t, s.UpsertEvent(ctx, &models.EconomicEvent{
			CurrencyCode: cur, Country: "C-" + cur, ReportName: name, Impact: impact,
			EventTime: at, Sentiment: models.Neutral, Source: "FinanceFlow", UpdatedAt: base,
		}))
	}
	add("old", "USD", models.ImpactHigh, base.Add(-48*time.Hour))
	add("a", "USD", models.ImpactHigh, base)
	add("b", "USD", models.ImpactMedium, base.Add(24*time.Hour))
	add("low", "USD", models.Impact("Low"), base.Add(2*time.Hour))
	add("eur", "EUR", models.ImpactHigh, base)

	got, err := s.ListEvents(ctx, models.EventQuery{
		Currency: "USD",
		Impacts:  []models.Impact{models.ImpactHigh, models.ImpactMedium},
		From:     base.Add(-time.Hour),
		To:       base.Add(72 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ReportName)
	assert.Equal(t, "a", got[1].ReportName)
}

func TestSQLiteQuotes(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertQuote(ctx, &models.FxQuote{Pair: "EURUSD", Price: dec("1.0850"), Bid: dec("1.0849"), LastUpdate: now}))
	require.NoError(t, s.UpsertQuote(ctx, &models.FxQuote{Pair: "EURUSD", Price: dec("1.0900"), LastUpdate: now.Add(time.Minute)}))
	require.NoError(t, s.UpsertQuote(ctx, &models.FxQuote{Pair: "USDJPY", Price: dec("151.2"), LastUpdate: now}))

	got, err := s.ListQuotes(ctx, []string{"EURUSD", "GBPUSD"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1.09", got[0].Price.Decimal.String())
	assert.False(t, got[0].Bid.Valid, "upsert replaces the whole row")

	none, err := s.ListQuotes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteJobsAndCursor(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	c, err := s.GetCursor(ctx, models.JobUpdateFX)
	require.NoError(t, err)
	assert.Nil(t, c)

	require.NoError(t, s.UpsertCursor(ctx, &models.JobCursor{Name: models.JobUpdateFX, LastRun: now}))
	require.NoError(t, s.UpsertCursor(ctx, &models.JobCursor{Name: models.JobUpdateFX, LastRun: now.Add(time.Minute)}))
	c, err = s.GetCursor(ctx, models.JobUpdateFX)
	require.NoError(t, err)
	assert.True(t, now.Add(time.Minute).Equal(c.LastRun))

	require.NoError(t, s.InsertJobRun(ctx, &models.JobRun{ID: "r1", Job: models.JobUpdateFX, StartedAt: now, EndedAt: now, OK: true, Message: "first"}))
	require.NoError(t, s.InsertJobRun(ctx, &models.JobRun{ID: "r2", Job: models.JobUpdateFX, StartedAt: now.Add(time.Minute), EndedAt: now.Add(time.Minute), OK: false, Message: "second"}))
	assert.Error(t, s.InsertJobRun(ctx, &models.JobRun{ID: "r1", Job: models.JobUpdateFX, StartedAt: now, EndedAt: now}), "job runs are insert-only")

	runs, err := s.ListJobRuns(ctx, models.JobUpdateFX, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].Message)
	assert.False(t, runs[0].OK)
	assert.True(t, runs[1].OK)
}
