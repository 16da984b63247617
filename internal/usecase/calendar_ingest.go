package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/services/indicator"
	"MacroPulse/internal/services/numeric"
	"MacroPulse/internal/services/sentiment"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/util"

	"golang.org/x/sync/errgroup"
)

const calendarDone = "Calendar update completed successfully"

// CalendarStore is what the calendar pipeline reads and writes.
type CalendarStore interface {
	drepo.ReferenceStore
	drepo.EventStore
	drepo.JobStore
}

type CalendarConfig struct {
	LookbackDays  int
	LookaheadDays int
	Workers       int
	Source        string
}

// CalendarIngest pulls every tracked currency's calendar window and upserts
// its High and Medium releases.
type CalendarIngest struct {
	src     drepo.CalendarSource
	store   CalendarStore
	canon   *indicator.Canonicalizer
	pub     drepo.Publisher
	metrics drepo.Metrics
	log     *applogger.Logger
	cfg     CalendarConfig
	now     func() time.Time
}

func NewCalendarIngest(
	src drepo.CalendarSource,
	store CalendarStore,
	canon *indicator.Canonicalizer,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg CalendarConfig,
) *CalendarIngest {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Source == "" {
		cfg.Source = "FinanceFlow"
	}
	if canon == nil {
		canon = indicator.New(nil)
	}
	if pub == nil {
		pub = drepo.NoopPublisher{}
	}
	if metrics == nil {
		metrics = drepo.NoopMetrics{}
	}
	if log == nil {
		log = applogger.NewNop()
	}
	return &CalendarIngest{
		src:     src,
		store:   store,
		canon:   canon,
		pub:     pub,
		metrics: metrics,
		log:     log.With(applogger.String("job", models.JobUpdateCalendar)),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (c *CalendarIngest) Name() string { return models.JobUpdateCalendar }

// Run ingests one window. The returned error is non-nil only when the
// currency list itself could not be read; per-currency and per-record
// failures are folded into the report.
func (c *CalendarIngest) Run(ctx context.Context) (*models.RunReport, error) {
	started := c.now().UTC()
	rep := &models.RunReport{RunID: newRunID(), Job: models.JobUpdateCalendar, Started: started}
	log := c.log.With(applogger.String("run_id", rep.RunID))

	currencies, err := c.store.ListCurrencies(ctx)
	if err != nil {
		rep.Message = fmt.Sprintf("list currencies: %v", err)
		finishRun(ctx, rep, c.now().UTC(), c.store, c.pub, c.metrics, log)
		return rep, fmt.Errorf("list currencies: %w", err)
	}

	from, to := util.Window(started, c.cfg.LookbackDays, c.cfg.LookaheadDays)
	log.Info("calendar update started",
		applogger.Int("currencies", len(currencies)),
		applogger.String("from", from.Format("2006-01-02")),
		applogger.String("to", to.Format("2006-01-02")),
	)

	lookup := &indicatorLookup{store: c.store, log: log, m: make(map[string]models.Indicator)}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for _, cur := range currencies {
		cur := cur
		g.Go(func() error {
			part := c.ingestCurrency(gctx, log, lookup, cur, from, to)
			mu.Lock()
			rep.Merge(part)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := interrupted(ctx, rep, "calendar update"); err != nil {
		finishRun(ctx, rep, c.now().UTC(), c.store, c.pub, c.metrics, log)
		return rep, err
	}
	rep.OK = true
	rep.Message = calendarDone
	finishRun(ctx, rep, c.now().UTC(), c.store, c.pub, c.metrics, log)
	return rep, nil
}

func (c *CalendarIngest) ingestCurrency(ctx context.Context, log *applogger.Logger, lookup *indicatorLookup,
	cur models.Currency, from, to time.Time) models.RunReport {
	var part models.RunReport
	log = log.With(applogger.String("currency", cur.Code), applogger.String("country", cur.Country))

	rows, err := c.src.FetchCalendar(ctx, cur.Country, from, to)
	if err != nil {
		c.metrics.RecordError("fetch")
		log.Error("calendar fetch failed", applogger.Error(err))
		part.Fail(cur.Code, err)
		return part
	}
	c.metrics.RecordFetched(models.JobUpdateCalendar, len(rows))
	log.Debug("calendar rows fetched", applogger.Int("rows", len(rows)))

	for i := range rows {
		if ctx.Err() != nil {
			part.Fail(cur.Code, ctx.Err())
			return part
		}
		part.Processed++
		ev, reason := c.buildEvent(ctx, lookup, cur, &rows[i])
		if ev == nil {
			part.Skipped++
			c.metrics.RecordSkipped(models.JobUpdateCalendar, reason)
			if reason == skipTimestamp {
				log.Warn("invalid event datetime", applogger.String("report_name", rows[i].Title),
					applogger.Strings("candidates", rows[i].Times))
			}
			continue
		}
		if err := c.store.UpsertEvent(ctx, ev); err != nil {
			c.metrics.RecordError("upsert")
			log.Error("event upsert failed", applogger.String("report_name", ev.ReportName), applogger.Error(err))
			part.Fail(cur.Code+"/"+ev.ReportName, err)
			continue
		}
		part.Upserted++
		c.metrics.RecordUpserted(models.JobUpdateCalendar)
		if err := c.pub.PublishEvent(ctx, ev); err != nil {
			c.metrics.RecordError("publish")
			log.Warn("event publish failed", applogger.String("report_name", ev.ReportName), applogger.Error(err))
		}
	}
	return part
}

// buildEvent runs one raw row through impact filter, canonicalizer,
// normalizer and classifier. A nil event carries the skip reason.
func (c *CalendarIngest) buildEvent(ctx context.Context, lookup *indicatorLookup, cur models.Currency,
	raw *models.RawCalendarRecord) (*models.EconomicEvent, string) {
	impact, ok := models.ParseImpact(raw.Impact)
	if !ok {
		return nil, skipImpact
	}

	forecast := numeric.Normalize(raw.Forecast)
	actual := numeric.Normalize(raw.Actual)
	previous := numeric.Normalize(raw.Previous)

	ind := models.DefaultIndicator("")
	var canonical *string
	if name, ok := c.canon.Canonicalize(raw.Title); ok {
		canonical = &name
		ind = lookup.get(ctx, name)
	}

	at, ok := util.ParseFirst(raw.Times)
	if !ok {
		return nil, skipTimestamp
	}

	return &models.EconomicEvent{
		CurrencyCode:       cur.Code,
		Country:            cur.Country,
		ReportName:         raw.Title,
		CanonicalIndicator: canonical,
		Impact:             impact,
		EventTime:          at,
		Forecast:           forecast.Value,
		Actual:             actual.Value,
		Previous:           previous.Value,
		Surprise:           sentiment.Surprise(actual.Value, forecast.Value),
		Units:              forecast.Unit,
		Sentiment:          sentiment.ClassifyFor(ind, actual.Value, forecast.Value),
		Source:             c.cfg.Source,
		UpdatedAt:          c.now().UTC(),
	}, ""
}

// indicatorLookup memoizes indicator rows for one run. A missing row and a
// failed read both fall back to the default polarity; only hits and misses
// are cached.
type indicatorLookup struct {
	store drepo.ReferenceStore
	log   *applogger.Logger
	mu    sync.Mutex
	m     map[string]models.Indicator
}

func (l *indicatorLookup) get(ctx context.Context, name string) models.Indicator {
	l.mu.Lock()
	ind, ok := l.m[name]
	l.mu.Unlock()
	if ok {
		return ind
	}

	row, err := l.store.GetIndicator(ctx, name)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.log.Warn("indicator lookup failed, using default", applogger.String("indicator", name), applogger.Error(err))
		}
		return models.DefaultIndicator(name)
	}
	ind = models.DefaultIndicator(name)
	if row != nil {
		ind = *row
	}
	l.mu.Lock()
	l.m[name] = ind
	l.mu.Unlock()
	return ind
}
