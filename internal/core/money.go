// Package core holds the domain types of the dashboard and the pure
// aggregation functions computed over them.
//
// This file contains amount parsing and rounding helpers.
package core

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a wire value into a decimal amount. Numbers, numeric
// strings (with dot or comma decimal separator and an optional currency
// symbol) are accepted; anything else, including NaN and infinities, reports
// false.
func ParseAmount(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		return ParseAmount(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		return parseAmountString(x.String())
	case decimal.Decimal:
		return x, true
	case string:
		return parseAmountString(x)
	default:
		return decimal.Zero, false
	}
}

func parseAmountString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	// Decimal comma only when no dot is present; otherwise commas are thousands separators.
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseFormAmount parses a user-entered amount. Form amounts are magnitudes:
// they must be strictly positive, the sign comes from the category.
func ParseFormAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, ok := parseAmountString(s)
	if !ok || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SignedAmount applies the sign convention for form input: income categories
// are positive, everything else is an expense.
func SignedAmount(category string, amount decimal.Decimal) decimal.Decimal {
	if strings.EqualFold(strings.TrimSpace(category), IncomeCategory) {
		return amount.Abs()
	}
	return amount.Abs().Neg()
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
