package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/service/ratelimit"
	"MacroPulse/internal/services/numeric"
	applogger "MacroPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrNoPairs is returned when there is nothing to refresh.
var ErrNoPairs = errors.New("no currency pairs configured")

const fxLimiterKey = "financeflow:currency-spot"

// FxStore is what the FX pipeline writes.
type FxStore interface {
	drepo.QuoteStore
	drepo.JobStore
}

type FxConfig struct {
	// Pairs overrides the pairs derived from the currency table.
	Pairs      []string
	RatePerSec float64
	Burst      int
	Workers    int
}

// FxIngest refreshes the spot quote of every tracked pair.
type FxIngest struct {
	src     drepo.QuoteSource
	store   FxStore
	limiter *ratelimit.Limiter
	pub     drepo.Publisher
	metrics drepo.Metrics
	log     *applogger.Logger
	cfg     FxConfig
	now     func() time.Time
}

func NewFxIngest(
	src drepo.QuoteSource,
	store FxStore,
	limiter *ratelimit.Limiter,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg FxConfig,
) *FxIngest {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if limiter == nil {
		limiter = ratelimit.New()
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
	return &FxIngest{
		src:     src,
		store:   store,
		limiter: limiter,
		pub:     pub,
		metrics: metrics,
		log:     log.With(applogger.String("job", models.JobUpdateFX)),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (f *FxIngest) Name() string { return models.JobUpdateFX }

func (f *FxIngest) pairs() []string {
	if len(f.cfg.Pairs) == 0 {
		return models.AllPairs()
	}
	seen := make(map[string]struct{}, len(f.cfg.Pairs))
	out := make([]string, 0, len(f.cfg.Pairs))
	for _, p := range f.cfg.Pairs {
		p = strings.ToUpper(strings.TrimSpace(p))
		if _, dup := seen[p]; dup || p == "" {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Run refreshes every pair. Per-pair failures never fail the run; only an
// empty pair set does.
func (f *FxIngest) Run(ctx context.Context) (*models.RunReport, error) {
	rep := &models.RunReport{RunID: newRunID(), Job: models.JobUpdateFX, Started: f.now().UTC()}
	log := f.log.With(applogger.String("run_id", rep.RunID))

	pairs := f.pairs()
	if len(pairs) == 0 {
		rep.Message = ErrNoPairs.Error()
		finishRun(ctx, rep, f.now().UTC(), f.store, f.pub, f.metrics, log)
		return rep, ErrNoPairs
	}
	log.Info("fx update started", applogger.Int("pairs", len(pairs)))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)
	for _, pair := range pairs {
		pair := pair
		g.Go(func() error {
			err := f.refresh(gctx, pair)
			mu.Lock()
			rep.Processed++
			if err != nil {
				rep.Fail(pair, err)
			} else {
				rep.Upserted++
			}
			mu.Unlock()
			if err != nil {
				log.Error("fx pair failed", applogger.String("pair", pair), applogger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := interrupted(ctx, rep, "fx update"); err != nil {
		finishRun(ctx, rep, f.now().UTC(), f.store, f.pub, f.metrics, log)
		return rep, err
	}
	rep.OK = true
	rep.Message = fmt.Sprintf("FX update completed for %d pairs", len(pairs))
	finishRun(ctx, rep, f.now().UTC(), f.store, f.pub, f.metrics, log)
	return rep, nil
}

func (f *FxIngest) refresh(ctx context.Context, pair string) error {
	if err := f.limiter.Wait(ctx, fxLimiterKey, float64(f.cfg.Burst), f.cfg.RatePerSec); err != nil {
		return err
	}
	raw, err := f.src.FetchQuote(ctx, pair)
	if err != nil {
		f.metrics.RecordError("fetch")
		return err
	}
	f.metrics.RecordFetched(models.JobUpdateFX, 1)

	q := quoteFromRaw(raw, f.now().UTC())
	q.Pair = pair
	if err := f.store.UpsertQuote(ctx, q); err != nil {
		f.metrics.RecordError("upsert")
		return err
	}
	f.metrics.RecordUpserted(models.JobUpdateFX)
	return nil
}

func quoteFromRaw(raw *models.RawQuoteRecord, now time.Time) *models.FxQuote {
	return &models.FxQuote{
		Pair:          raw.Pair,
		Price:         numeric.Number(raw.Price),
		Bid:           numeric.Number(raw.Bid),
		Ask:           numeric.Number(raw.Ask),
		Open:          numeric.Number(raw.Open),
		High:          numeric.Number(raw.High),
		Low:           numeric.Number(raw.Low),
		ChangeAbs:     numeric.Number(raw.Change),
		ChangePercent: numeric.Number(raw.ChangePercent),
		LastUpdate:    now,
	}
}
