package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyOverview is the aggregated read model served per currency.
type CurrencyOverview struct {
	Currency string          `json:"currency"`
	Pairs    []PairSummary   `json:"pairs"`
	Events   []EconomicEvent `json:"events"`
}

// PairSummary is the slice of a quote the overview exposes.
type PairSummary struct {
	Pair          string              `json:"pair"`
	Price         decimal.NullDecimal `json:"price"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	LastUpdate    time.Time           `json:"last_update"`
}

// Summary projects q onto the overview fields.
func (q FxQuote) Summary() PairSummary {
	return PairSummary{Pair: q.Pair, Price: q.Price, ChangePercent: q.ChangePercent, LastUpdate: q.LastUpdate}
}
