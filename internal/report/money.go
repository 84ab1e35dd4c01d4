package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/Veraticus/ledgerbook/internal/common"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// Currency formats integer cents for display.
type Currency struct {
	code string
}

// NewCurrency returns a formatter for an ISO 4217 code. Only currencies with
// two minor digits are accepted, since ledger amounts are stored in cents.
func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	cur := money.GetCurrency(code)
	if cur == nil {
		return Currency{}, fmt.Errorf("%w: unknown currency %q", common.ErrInvalidConfig, code)
	}
	if cur.Fraction != 2 {
		return Currency{}, fmt.Errorf("%w: currency %s has %d minor digits, want 2", common.ErrInvalidConfig, code, cur.Fraction)
	}
	return Currency{code: code}, nil
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	if c.code == "" {
		return DefaultCurrency
	}
	return c.code
}

// Format renders cents with the currency symbol, e.g. -123450 as "-$1,234.50".
func (c Currency) Format(cents int64) string {
	return money.New(cents, c.Code()).Display()
}
