package models

import "github.com/shopspring/decimal"

// Currency is a tracked currency and the country the calendar is queried for.
type Currency struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Indicator carries the classification parameters of a canonical release.
type Indicator struct {
	CanonicalName     string          `json:"canonical_name"`
	PositiveIsBullish bool            `json:"positive_is_bullish"`
	SurpriseTolerance decimal.Decimal `json:"surprise_tolerance"`
}

// DefaultIndicator is used when no Indicator row exists for a canonical name:
// higher is bullish and any surprise counts.
func DefaultIndicator(name string) Indicator {
	return Indicator{CanonicalName: name, PositiveIsBullish: true, SurpriseTolerance: decimal.Zero}
}
