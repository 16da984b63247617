package financeflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"MacroPulse/internal/domain/models"
	drepo "MacroPulse/internal/domain/repository"
	pkghttp "MacroPulse/pkg/http"
	applogger "MacroPulse/pkg/logger"
)

const dateLayout = "2006-01-02"

// StatusError is returned for every non-2xx provider response.
type StatusError = pkghttp.StatusError

// ErrNoQuote means the provider answered 2xx but the payload held no quote.
var ErrNoQuote = errors.New("financeflow: empty quote payload")

var (
	timeAliases     = []string{"datetime", "event_time", "date"}
	titleAliases    = []string{"report_name", "title"}
	impactAliases   = []string{"economicImpact", "impact"}
	forecastAliases = []string{"consensus", "forecast"}
	priceAliases    = []string{"price", "mid", "last"}
)

// Client talks to the FinanceFlow REST API. It implements both
// CalendarSource and QuoteSource.
type Client struct {
	http    *pkghttp.Client
	baseURL string
	apiKey  string
	log     *applogger.Logger
}

var (
	_ drepo.CalendarSource = (*Client)(nil)
	_ drepo.QuoteSource    = (*Client)(nil)
)

// New creates a FinanceFlow client. A nil logger disables logging.
func New(baseURL, apiKey string, timeout time.Duration, log *applogger.Logger) *Client {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Client{
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log,
	}
}

// NewWithHTTP is New with a caller-provided transport client (tests).
func NewWithHTTP(baseURL, apiKey string, hc *pkghttp.Client, log *applogger.Logger) *Client {
	c := New(baseURL, apiKey, 0, log)
	c.http = hc
	return c
}

// FetchCalendar returns the calendar rows of one country for the inclusive
// [from, to] day window.
func (c *Client) FetchCalendar(ctx context.Context, country string, from, to time.Time) ([]models.RawCalendarRecord, error) {
	var body any
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     c.baseURL + "/financial-calendar",
		Headers: map[string]string{"accept": "application/json"},
		QueryParams: map[string][]string{
			"api_key":   {c.apiKey},
			"country":   {country},
			"date_from": {from.UTC().Format(dateLayout)},
			"date_to":   {to.UTC().Format(dateLayout)},
		},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar %s: %w", country, err)
	}

	rows := unwrapList(body)
	out := make([]models.RawCalendarRecord, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, calendarRecord(m))
	}
	c.log.Debug("calendar fetched",
		applogger.String("country", country),
		applogger.Int("rows", len(out)),
	)
	return out, nil
}

// FetchQuote returns the spot quote for pair. A wrapped payload
// ({"data": [...]}) yields its first element.
func (c *Client) FetchQuote(ctx context.Context, pair string) (*models.RawQuoteRecord, error) {
	var body any
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     c.baseURL + "/currency-spot",
		Headers: map[string]string{"accept": "application/json"},
		QueryParams: map[string][]string{
			"api_key": {c.apiKey},
			"pair":    {pair},
		},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", pair, err)
	}

	m, ok := unwrapObject(body)
	if !ok {
		return nil, fmt.Errorf("fetch quote %s: %w", pair, ErrNoQuote)
	}
	return quoteRecord(pair, m), nil
}

// unwrapList accepts a bare array or an object carrying it under "data".
func unwrapList(body any) []any {
	switch v := body.(type) {
	case []any:
		return v
	case map[string]any:
		if data, ok := v["data"].([]any); ok {
			return data
		}
	}
	return nil
}

func unwrapObject(body any) (map[string]any, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	if data, ok := m["data"].([]any); ok {
		if len(data) == 0 {
			return nil, false
		}
		first, ok := data[0].(map[string]any)
		return first, ok
	}
	return m, true
}

func calendarRecord(m map[string]any) models.RawCalendarRecord {
	rec := models.RawCalendarRecord{
		Title:    firstString(m, titleAliases),
		Impact:   firstString(m, impactAliases),
		Forecast: first(m, forecastAliases),
		Actual:   m["actual"],
		Previous: m["previous"],
		Country:  firstString(m, []string{"country"}),
	}
	for _, k := range timeAliases {
		if s := stringOf(m[k]); s != "" {
			rec.Times = append(rec.Times, s)
		}
	}
	return rec
}

func quoteRecord(pair string, m map[string]any) *models.RawQuoteRecord {
	return &models.RawQuoteRecord{
		Pair:          pair,
		Price:         first(m, priceAliases),
		Bid:           m["bid"],
		Ask:           m["ask"],
		Open:          m["open"],
		High:          m["high"],
		Low:           m["low"],
		Change:        m["change"],
		ChangePercent: m["change_percent"],
	}
}

// first returns the value of the first alias that is present and not null.
func first(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s := stringOf(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}
