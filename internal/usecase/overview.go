package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/service/cache"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/util"
)

// ErrUnsupportedCurrency rejects codes outside the tracked set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Cache outcomes reported to metrics.
const (
	cacheHit         = "hit"
	cacheMiss        = "miss"
	cacheNotModified = "not_modified"
)

// OverviewStore is what the overview read path queries.
type OverviewStore interface {
	drepo.EventStore
	drepo.QuoteStore
}

type OverviewConfig struct {
	LookbackDays  int
	LookaheadDays int
	// QueryTimeout bounds one shared rebuild; it is not tied to any request.
	QueryTimeout time.Duration
}

// OverviewResult is a serialized overview ready to serve.
type OverviewResult struct {
	Payload     []byte
	ETag        string
	NotModified bool
	Hit         bool
}

// OverviewService assembles per-currency overviews behind a TTL cache.
// The cache has no invalidation hook: readers may see data up to one TTL old.
type OverviewService struct {
	store   OverviewStore
	cache   *cache.TTLCache
	metrics drepo.Metrics
	log     *applogger.Logger
	cfg     OverviewConfig
	now     func() time.Time
}

func NewOverviewService(store OverviewStore, c *cache.TTLCache, metrics drepo.Metrics, log *applogger.Logger, cfg OverviewConfig) *OverviewService {
	if metrics == nil {
		metrics = drepo.NoopMetrics{}
	}
	if log == nil {
		log = applogger.NewNop()
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}
	return &OverviewService{store: store, cache: c, metrics: metrics, log: log, cfg: cfg, now: time.Now}
}

// CacheControl is the freshness header matching the cache TTL.
func (s *OverviewService) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d", int(s.cache.TTL().Seconds()))
}

// Overview serves the overview for code. A fresh cached entry whose ETag the
// caller already holds yields NotModified; a freshly built one never does.
func (s *OverviewService) Overview(ctx context.Context, code, ifNoneMatch string) (*OverviewResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !models.IsSupportedCurrency(code) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}

	e, hit, err := s.cache.GetOrLoad(ctx, code, func(lctx context.Context) ([]byte, error) {
		lctx, cancel := context.WithTimeout(lctx, s.cfg.QueryTimeout)
		defer cancel()
		return s.build(lctx, code)
	})
	if err != nil {
		s.metrics.RecordError("overview")
		s.log.Error("overview build failed", applogger.String("currency", code), applogger.Error(err))
		return nil, err
	}

	res := &OverviewResult{Payload: e.Payload, ETag: e.ETag, Hit: hit}
	switch {
	case hit && etagMatches(ifNoneMatch, e.ETag):
		res.NotModified = true
		s.metrics.RecordCache(cacheNotModified)
	case hit:
		s.metrics.RecordCache(cacheHit)
	default:
		s.metrics.RecordCache(cacheMiss)
	}
	return res, nil
}

// Build assembles the overview without touching the cache.
func (s *OverviewService) Build(ctx context.Context, code string) (*models.CurrencyOverview, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !models.IsSupportedCurrency(code) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	from, to := util.Window(s.now().UTC(), s.cfg.LookbackDays, s.cfg.LookaheadDays)

	events, err := s.store.ListEvents(ctx, models.EventQuery{
		Currency: code,
		Impacts:  []models.Impact{models.ImpactHigh, models.ImpactMedium},
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	pairs := models.PairsFor(code)
	quotes, err := s.store.ListQuotes(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}

	ov := &models.CurrencyOverview{
		Currency: code,
		Pairs:    orderQuotes(pairs, quotes),
		Events:   events,
	}
	if ov.Events == nil {
		ov.Events = []models.EconomicEvent{}
	}
	return ov, nil
}

func (s *OverviewService) build(ctx context.Context, code string) ([]byte, error) {
	ov, err := s.Build(ctx, code)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ov)
}

// orderQuotes lays quotes out in configured pair order; pairs never quoted
// are left out.
func orderQuotes(pairs []string, quotes []models.FxQuote) []models.PairSummary {
	byPair := make(map[string]models.FxQuote, len(quotes))
	for _, q := range quotes {
		byPair[q.Pair] = q
	}
	out := make([]models.PairSummary, 0, len(quotes))
	for _, p := range pairs {
		if q, ok := byPair[p]; ok {
			out = append(out, q.Summary())
		}
	}
	return out
}

// etagMatches implements the If-None-Match weak comparison.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" || etag == "" {
		return false
	}
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(tag), "W/") == want {
			return true
		}
	}
	return false
}
