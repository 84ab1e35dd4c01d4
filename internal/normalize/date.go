package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the canonical persisted timestamp format. Values in this
// layout sort lexicographically in time order.
const TimestampLayout = "2006-01-02 15:04:05"

// ErrInvalidDate indicates text that matches none of the accepted layouts.
var ErrInvalidDate = errors.New("unsupported date format")

// dateLayouts are tried in order and the first match wins, so an ambiguous
// value like "01/02/2024" is read month-first as January 2nd.
var dateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"2/1/2006",
	"2006/1/2",
	"1-2-2006",
	"2-1-2006",
	TimestampLayout,
	"1/2/2006 15:04",
}

// ParseDate parses text in any of the accepted layouts. Values without a
// time of day resolve to midnight. The result carries no zone information
// beyond UTC; only its wall clock matters.
func ParseDate(text string) (time.Time, error) {
	value := strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
}

// NormalizeDate parses text and returns it in TimestampLayout.
func NormalizeDate(text string) (string, error) {
	t, err := ParseDate(text)
	if err != nil {
		return "", err
	}
	return FormatTimestamp(t), nil
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a persisted TimestampLayout value as wall-clock time.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: stored timestamp %q", ErrInvalidDate, value)
	}
	return t, nil
}
