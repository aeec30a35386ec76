// Package core provides the ledger data model.
//
// This file contains functions for parsing monetary amounts from user input
// and from imported text.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a form amount such as "12.34", "-12,34" or "€ 1 200.50".
//
// A comma is read as the decimal separator only when no dot is present;
// otherwise commas are thousands separators. The sign is preserved.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(CleanAmount(s))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CleanAmount drops everything except digits, '.' and '-', which strips
// currency symbols, spaces and thousands separators.
//
// Examples:
//
//	CleanAmount("$1,234.56") -> "1234.56"
//	CleanAmount("-€50.25")   -> "-50.25"
//	CleanAmount("abc")       -> ""
func CleanAmount(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatAmount renders a decimal with two fractional digits for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
