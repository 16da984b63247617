package repository

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecimalTextRoundTripKeepsPrecision(t *testing.T) {
	for _, v := range []string{"1.0849000000000001", "-0.00000000012345", "123456789012345678.9", "0"} {
		in := dec(v)
		stored := decText(in)
		assert.True(t, stored.Valid)
		assert.Equal(t, decimal.RequireFromString(v).String(), stored.String)

		out := textDec(stored)
		assert.True(t, out.Valid)
		assert.True(t, in.Decimal.Equal(out.Decimal), v)
	}
}

func TestDecimalTextNullAndGarbage(t *testing.T) {
	assert.False(t, decText(decimal.NullDecimal{}).Valid)
	assert.False(t, textDec(sql.NullString{}).Valid)
	assert.False(t, textDec(sql.NullString{String: "n/a", Valid: true}).Valid)
}
