// Package currency converts between the wire representation of amounts
// (decimal numbers with at most two fraction digits) and money.Amount values
// held internally as integer minor units. Amounts that cannot be represented
// exactly at two decimal places are rejected, never truncated.
package currency

import (
	"strconv"
	"strings"

	"github.com/govalues/money"

	"github.com/fkhayef/divvy/internal/errs"
)

// ParseCents parses a decimal string like "50", "50.1" or "50.10" into minor
// units (cents). It fails on empty input, non-numeric input, negative values
// and more than two fraction digits.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errs.Validation("amount", "amount is required")
	}
	if strings.HasPrefix(s, "-") {
		return 0, errs.Validation("amount", "amount must be positive")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errs.Validation("amount", "amount must be a decimal number")
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, errs.Validation("amount", "amount must have at most two decimal places")
		}
		c, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, errs.Validation("amount", "amount must be a decimal number")
		}
		if len(frac) == 1 {
			c *= 10
		}
		cents = c
	}

	const maxUnits = (1<<63 - 1) / 100
	if units > maxUnits-1 {
		return 0, errs.Validation("amount", "amount is too large")
	}
	return units*100 + cents, nil
}

// Amount builds a money.Amount from minor units in the given currency.
func Amount(code string, cents int64) (money.Amount, error) {
	a, err := money.NewAmountFromMinorUnits(code, cents)
	if err != nil {
		return money.Amount{}, errs.Validation("amount", "unsupported currency "+code)
	}
	return a, nil
}

// Zero returns the zero amount in the given currency.
func Zero(code string) money.Amount {
	a, _ := money.NewAmountFromMinorUnits(code, 0)
	return a
}

// Cents returns the minor units of a. Amounts in this system always fit in
// int64 minor units because they enter through ParseCents.
func Cents(a money.Amount) int64 {
	c, _ := a.MinorUnits()
	return c
}

// Format renders a as a plain decimal string with two fraction digits,
// e.g. "16.67" or "-0.50". The output is valid as a JSON number.
func Format(a money.Amount) string {
	return FormatCents(Cents(a))
}

// FormatCents renders minor units as a plain decimal string with two
// fraction digits.
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return sign + strconv.FormatInt(c/100, 10) + "." + pad2(c%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
