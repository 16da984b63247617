// Package sentiment reads an economic release as Bullish, Bearish or Neutral
// from its actual-vs-forecast surprise.
package sentiment

import (
	"github.com/shopspring/decimal"

	"MacroPulse/internal/domain/models"
)

// Classify compares actual against forecast. A missing side, or a surprise
// whose magnitude is within tolerance (inclusive), is Neutral. Otherwise the
// sign of the surprise decides, flipped when positiveIsBullish is false.
func Classify(actual, forecast decimal.NullDecimal, positiveIsBullish bool, tolerance decimal.Decimal) models.Sentiment {
	diff := Surprise(actual, forecast)
	if !diff.Valid {
		return models.Neutral
	}
	if diff.Decimal.Abs().LessThanOrEqual(tolerance.Abs()) {
		return models.Neutral
	}
	up := diff.Decimal.IsPositive()
	if up == positiveIsBullish {
		return models.Bullish
	}
	return models.Bearish
}

// Surprise is actual minus forecast, absent when either is.
func Surprise(actual, forecast decimal.NullDecimal) decimal.NullDecimal {
	if !actual.Valid || !forecast.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(actual.Decimal.Sub(forecast.Decimal))
}

// ClassifyFor applies an Indicator's polarity and tolerance.
func ClassifyFor(ind models.Indicator, actual, forecast decimal.NullDecimal) models.Sentiment {
	return Classify(actual, forecast, ind.PositiveIsBullish, ind.SurpriseTolerance)
}
