// Package numeric turns the provider's loosely formatted figures ("3.5%",
// "1,234 units", 250000, "-0.2") into a decimal value plus an optional unit.
package numeric

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalized is a parsed figure. Either part may be absent independently.
type Normalized struct {
	Value decimal.NullDecimal
	Unit  *string
}

var (
	unitStrip  = regexp.MustCompile(`[-+0-9.,%]`)
	valueStrip = regexp.MustCompile(`[^0-9.\-]`)
)

// Normalize parses a raw provider figure. It never panics and never fails:
// anything it cannot read comes back absent.
//
// Strings are trimmed; the unit is whatever is left once digits, signs,
// separators and '%' are removed. The value is built from the digits, dots and
// minus signs only, so thousands separators disappear ("1,234" -> 1234) and a
// percent figure keeps no unit ("3.5%" -> 3.5).
func Normalize(raw any) Normalized {
	switch v := raw.(type) {
	case nil:
		return Normalized{}
	case string:
		return normalizeString(v)
	case *string:
		if v == nil {
			return Normalized{}
		}
		return normalizeString(*v)
	default:
		return Normalized{Value: Number(raw)}
	}
}

func normalizeString(s string) Normalized {
	s = strings.TrimSpace(s)
	var out Normalized
	if unit := strings.TrimSpace(unitStrip.ReplaceAllString(s, "")); unit != "" {
		out.Unit = &unit
	}
	residue := valueStrip.ReplaceAllString(s, "")
	if residue == "" {
		return out
	}
	if d, err := decimal.NewFromString(residue); err == nil {
		out.Value = decimal.NewNullDecimal(d)
	}
	return out
}

// Number is the strict numeric read used for quote fields: numbers pass
// through, strings lose a '%' and surrounding space and must then parse in
// full. Everything else is absent.
func Number(raw any) decimal.NullDecimal {
	switch v := raw.(type) {
	case nil:
		return decimal.NullDecimal{}
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(v)))
	case int32:
		return decimal.NewNullDecimal(decimal.NewFromInt32(v))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(v))
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d)
	case decimal.Decimal:
		return decimal.NewNullDecimal(v)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, "%", ""))
		if s == "" {
			return decimal.NullDecimal{}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d)
	default:
		return decimal.NullDecimal{}
	}
}

func fromFloat(f float64) decimal.NullDecimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}
