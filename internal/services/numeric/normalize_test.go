package numeric

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePercent(t *testing.T) {
	got := Normalize("3.5%")
	require.True(t, got.Value.Valid)
	assert.True(t, got.Value.Decimal.Equal(decimal.RequireFromString("3.5")))
	assert.Nil(t, got.Unit)
}

func TestNormalizeThousandsSeparatorAndUnit(t *testing.T) {
	got := Normalize("1,234 units")
	require.True(t, got.Value.Valid)
	assert.True(t, got.Value.Decimal.Equal(decimal.NewFromInt(1234)))
	require.NotNil(t, got.Unit)
	assert.Equal(t, "units", *got.Unit)
}

func TestNormalizeDecimalWithSeparator(t *testing.T) {
	got := Normalize(" 1,234.5 ")
	require.True(t, got.Value.Valid)
	assert.Equal(t, "1234.5", got.Value.Decimal.String())
	assert.Nil(t, got.Unit)
}

func TestNormalizeAbsent(t *testing.T) {
	got := Normalize(nil)
	assert.False(t, got.Value.Valid)
	assert.Nil(t, got.Unit)

	var s *string
	got = Normalize(s)
	assert.False(t, got.Value.Valid)
	assert.Nil(t, got.Unit)
}

func TestNormalizeNumbers(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{250000, "250000"},
		{int64(-3), "-3"},
		{0.25, "0.25"},
		{json.Number("4.1"), "4.1"},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		require.True(t, got.Value.Valid, "%v", tc.in)
		assert.Equal(t, tc.want, got.Value.Decimal.String())
		assert.Nil(t, got.Unit)
	}
}

func TestNormalizeUnparseable(t *testing.T) {
	cases := []struct {
		in       string
		wantUnit string
	}{
		{"n/a", "n/a"},
		{"1.2.3K", "K"},
		{"--", ""},
		{"", ""},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		assert.False(t, got.Value.Valid, "%q", tc.in)
		if tc.wantUnit == "" {
			assert.Nil(t, got.Unit, "%q", tc.in)
			continue
		}
		require.NotNil(t, got.Unit, "%q", tc.in)
		assert.Equal(t, tc.wantUnit, *got.Unit)
	}
}

func TestNormalizeNegativeWithSuffix(t *testing.T) {
	got := Normalize("-0.2B")
	require.True(t, got.Value.Valid)
	assert.Equal(t, "-0.2", got.Value.Decimal.String())
	require.NotNil(t, got.Unit)
	assert.Equal(t, "B", *got.Unit)
}

func TestNormalizeUnsupportedType(t *testing.T) {
	assert.NotPanics(t, func() {
		got := Normalize([]int{1})
		assert.False(t, got.Value.Valid)
	})
	assert.False(t, Normalize(map[string]any{}).Value.Valid)
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1.0856", Number("1.0856").Decimal.String())
	assert.Equal(t, "-0.12", Number(" -0.12% ").Decimal.String())
	assert.Equal(t, "157.3", Number(157.3).Decimal.String())
	assert.False(t, Number("1,085").Valid)
	assert.False(t, Number("abc").Valid)
	assert.False(t, Number("").Valid)
	assert.False(t, Number(nil).Valid)
	assert.False(t, Number(true).Valid)
	assert.False(t, Number(math.NaN()).Valid)
}
