package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Impact is the market impact class of an economic release. Only High and
// Medium releases are ever persisted.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
)

// ParseImpact maps the provider's free-text impact label onto an Impact.
// Anything other than high/moderate/medium is rejected.
func ParseImpact(raw string) (Impact, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return ImpactHigh, true
	case "moderate", "medium":
		return ImpactMedium, true
	default:
		return "", false
	}
}

// Sentiment is the three-way market reading of a release.
type Sentiment string

const (
	Bullish Sentiment = "Bullish"
	Bearish Sentiment = "Bearish"
	Neutral Sentiment = "Neutral"
)

// EconomicEvent is a persisted calendar release.
// Natural key: (Country, ReportName, EventTime).
type EconomicEvent struct {
	CurrencyCode       string              `json:"currency_code"`
	Country            string              `json:"country"`
	ReportName         string              `json:"report_name"`
	CanonicalIndicator *string             `json:"canonical_indicator"`
	Impact             Impact              `json:"impact"`
	EventTime          time.Time           `json:"event_datetime"`
	Forecast           decimal.NullDecimal `json:"forecast"`
	Actual             decimal.NullDecimal `json:"actual"`
	Previous           decimal.NullDecimal `json:"previous"`
	Surprise           decimal.NullDecimal `json:"surprise"`
	Units              *string             `json:"units"`
	Sentiment          Sentiment           `json:"sentiment"`
	Source             string              `json:"source"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// EventQuery selects events for the overview read path. Results are ordered
// newest first.
type EventQuery struct {
	Currency string
	Impacts  []Impact
	From     time.Time
	To       time.Time
}

// RawCalendarRecord is the provider's calendar row projected out of the
// untyped JSON map. Numeric fields keep their original string-or-number shape
// so the normalizer can decide what they mean.
type RawCalendarRecord struct {
	// Times holds the candidate timestamps in alias priority order
	// (datetime, event_time, date); absent aliases are omitted.
	Times    []string
	Title    string
	Impact   string
	Forecast any
	Actual   any
	Previous any
	Country  string
}
