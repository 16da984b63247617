package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxQuote is the latest snapshot of one currency pair. It is replaced
// wholesale on every successful fetch.
type FxQuote struct {
	Pair          string              `json:"pair"`
	Price         decimal.NullDecimal `json:"price"`
	Bid           decimal.NullDecimal `json:"bid"`
	Ask           decimal.NullDecimal `json:"ask"`
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	ChangeAbs     decimal.NullDecimal `json:"change_abs"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	LastUpdate    time.Time           `json:"last_update"`
}

// RawQuoteRecord is the provider's spot quote projected out of the untyped
// JSON map. Price already reflects the price -> mid -> last preference.
type RawQuoteRecord struct {
	Pair          string
	Price         any
	Bid           any
	Ask           any
	Open          any
	High          any
	Low           any
	Change        any
	ChangePercent any
}
