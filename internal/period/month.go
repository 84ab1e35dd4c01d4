// Package period computes calendar month boundaries for reports.
package period

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/ledgerbook/internal/common"
)

// MonthLayout is the "YYYY-MM" form used to name a month.
const MonthLayout = "2006-01"

// ErrInvalidPeriod indicates a month string that does not name a calendar month.
var ErrInvalidPeriod = errors.New("invalid period")

const (
	startOfDay = " 00:00:00"
	endOfDay   = " 23:59:59"
	dayLayout  = "2006-01-02"
)

// Month is a parsed calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "YYYY-MM". Both parts must be numeric and the month
// must be between 1 and 12.
func ParseMonth(value string) (Month, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return Month{}, invalid(value, "expected YYYY-MM")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Month{}, invalid(value, "year is not a number")
	}
	if year < 1 || year > 9999 {
		return Month{}, invalid(value, "year out of range")
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Month{}, invalid(value, "month is not a number")
	}
	if month < 1 || month > 12 {
		return Month{}, invalid(value, "month out of range")
	}

	return Month{Year: year, Month: time.Month(month)}, nil
}

// First returns midnight on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns midnight on the last day of the month.
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

// String returns the month as "YYYY-MM".
func (m Month) String() string {
	return m.First().Format(MonthLayout)
}

// Bounds returns the inclusive timestamps of the month:
// the first day at 00:00:00 and the last day at 23:59:59.
func (m Month) Bounds() (start, end string) {
	return m.First().Format(dayLayout) + startOfDay, m.Last().Format(dayLayout) + endOfDay
}

// MonthRange parses "YYYY-MM" and returns its inclusive boundaries,
// e.g. "2024-02" gives "2024-02-01 00:00:00" and "2024-02-29 23:59:59".
func MonthRange(value string) (start, end string, err error) {
	m, err := ParseMonth(value)
	if err != nil {
		return "", "", err
	}
	start, end = m.Bounds()
	return start, end, nil
}

// Of returns the month containing t, read from its wall clock.
func Of(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Current returns the "YYYY-MM" month of now.
func Current(now time.Time) string {
	return Of(now).String()
}

func invalid(value, reason string) error {
	return common.NewValidationError(ErrInvalidPeriod, "month", strconv.Quote(value), reason)
}
