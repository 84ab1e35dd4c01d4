// Package normalize turns loosely formatted amounts and dates from external
// files into integer cents and canonical timestamps.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates text that is not a decimal number once currency
// symbols and thousands separators are removed.
var ErrInvalidAmount = errors.New("invalid amount")

// amountReplacer strips currency symbols and thousands separators.
var amountReplacer = strings.NewReplacer("$", "", "€", "", "£", "", ",", "")

// maxCents keeps IntPart from overflowing int64.
var maxCents = decimal.NewFromInt(1<<62 - 1)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses text such as "$1,234.50", "-12.3", "€7" or the
// accounting form "(12.34)" into signed cents, rounding half away from zero
// to the nearest cent.
func ParseAmount(text string) (int64, error) {
	cleaned := strings.TrimSpace(amountReplacer.Replace(text))

	negated := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
		if strings.HasPrefix(cleaned, "-") || strings.HasPrefix(cleaned, "+") {
			return 0, fmt.Errorf("%w: %q has a sign inside parentheses", ErrInvalidAmount, text)
		}
		negated = true
	}

	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q is empty", ErrInvalidAmount, text)
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse %q as number", ErrInvalidAmount, text)
	}
	if negated {
		value = value.Neg()
	}

	cents := value.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, text)
	}

	return cents.IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal number, e.g. -123450 as
// "-1234.50". No float conversion is involved.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
