package sentiment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"MacroPulse/internal/domain/models"
)

func d(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestClassify(t *testing.T) {
	none := decimal.NullDecimal{}
	cases := []struct {
		name     string
		actual   decimal.NullDecimal
		forecast decimal.NullDecimal
		bullish  bool
		tol      string
		want     models.Sentiment
	}{
		{"beat", d("5"), d("3"), true, "0", models.Bullish},
		{"beat inverted", d("5"), d("3"), false, "0", models.Bearish},
		{"miss", d("2"), d("3"), true, "0", models.Bearish},
		{"miss inverted", d("2"), d("3"), false, "0", models.Bullish},
		{"in line", d("3"), d("3"), true, "0", models.Neutral},
		{"within tolerance", d("3.4"), d("3"), true, "0.5", models.Neutral},
		{"at tolerance", d("3.5"), d("3"), true, "0.5", models.Neutral},
		{"beyond tolerance", d("3.6"), d("3"), true, "0.5", models.Bullish},
		{"no actual", none, d("3"), true, "0", models.Neutral},
		{"no forecast", d("3"), none, false, "0", models.Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.actual, tc.forecast, tc.bullish, decimal.RequireFromString(tc.tol))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSurprise(t *testing.T) {
	s := Surprise(d("4.1"), d("3.9"))
	assert.True(t, s.Valid)
	assert.Equal(t, "0.2", s.Decimal.String())
	assert.False(t, Surprise(decimal.NullDecimal{}, d("1")).Valid)
}

func TestClassifyForIndicator(t *testing.T) {
	ind := models.Indicator{CanonicalName: "Unemployment Rate", PositiveIsBullish: false, SurpriseTolerance: decimal.Zero}
	assert.Equal(t, models.Bearish, ClassifyFor(ind, d("4.2"), d("4.0")))
	assert.Equal(t, models.Bullish, ClassifyFor(models.DefaultIndicator("CPI YoY"), d("4.2"), d("4.0")))
}
