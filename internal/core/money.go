// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing user-entered amounts and
// formatting them back with two fractional digits.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CurrencySuffix is appended to every displayed amount.
const CurrencySuffix = "€"

// ParseAmount converts user-entered text into a non-negative decimal.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Empty, non-numeric and negative inputs return ErrInvalidAmount, as do
// amounts finer than a cent, so every row adds up to the displayed total.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> 0, nil
//	ParseAmount("0.005") -> 0, ErrInvalidAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.TrimPrefix(s, "+")
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() || !d.Equal(d.Truncate(2)) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders d with exactly two fractional digits and no grouping,
// so the result parses back with ParseAmount.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatAmountWithCurrency renders d as "12.34 €".
func FormatAmountWithCurrency(d decimal.Decimal) string {
	return FormatAmount(d) + " " + CurrencySuffix
}
