package models

import "strings"

// SupportedCurrencies lists the tracked majors in display order.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "NZD"}

var currencyNames = map[string]string{
	"USD": "US Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"AUD": "Australian Dollar",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"NZD": "New Zealand Dollar",
}

var currencyCountries = map[string]string{
	"USD": "United States",
	"EUR": "European Union",
	"GBP": "United Kingdom",
	"JPY": "Japan",
	"AUD": "Australia",
	"CAD": "Canada",
	"CHF": "Switzerland",
	"NZD": "New Zealand",
}

var pairsByCurrency = map[string][]string{
	"USD": {"EURUSD", "USDJPY", "GBPUSD", "USDCHF"},
	"EUR": {"EURUSD", "EURJPY", "EURGBP"},
	"GBP": {"GBPUSD", "EURGBP", "GBPJPY"},
	"JPY": {"USDJPY", "EURJPY", "GBPJPY"},
	"AUD": {"AUDUSD", "AUDJPY", "EURAUD"},
	"CAD": {"USDCAD", "CADJPY", "EURCAD"},
	"CHF": {"USDCHF", "EURCHF", "CHFJPY"},
	"NZD": {"NZDUSD", "NZDJPY", "EURNZD"},
}

// IsSupportedCurrency reports whether code (any case) is tracked.
func IsSupportedCurrency(code string) bool {
	_, ok := pairsByCurrency[strings.ToUpper(code)]
	return ok
}

// PairsFor returns the configured pairs for a currency, or nil.
func PairsFor(code string) []string {
	pairs := pairsByCurrency[strings.ToUpper(code)]
	out := make([]string, len(pairs))
	copy(out, pairs)
	return out
}

// AllPairs returns the de-duplicated union of every currency's pairs in
// first-seen order.
func AllPairs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, code := range SupportedCurrencies {
		for _, p := range pairsByCurrency[code] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// DefaultCurrencies returns the reference rows seeded into a fresh store.
func DefaultCurrencies() []Currency {
	out := make([]Currency, 0, len(SupportedCurrencies))
	for _, code := range SupportedCurrencies {
		out = append(out, Currency{Code: code, Name: currencyNames[code], Country: currencyCountries[code]})
	}
	return out
}
