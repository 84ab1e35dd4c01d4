package normalize

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain integer", input: "12", want: 1200},
		{name: "two decimals", input: "12.34", want: 1234},
		{name: "dollar with thousands", input: "$1,234.50", want: 123450},
		{name: "euro", input: "€7.05", want: 705},
		{name: "pound negative", input: "-£3.10", want: -310},
		{name: "negative dollars", input: "-45.00", want: -4500},
		{name: "surrounding spaces", input: "  8.5 ", want: 850},
		{name: "rounds half away from zero", input: "0.125", want: 13},
		{name: "rounds negative half away from zero", input: "-0.125", want: -13},
		{name: "rounds down", input: "1.004", want: 100},
		{name: "leading plus", input: "+3", want: 300},
		{name: "zero", input: "0", want: 0},
		{name: "parentheses negate", input: "(12.34)", want: -1234},
		{name: "parentheses around symbol", input: "($1,200.00)", want: -120000},
		{name: "symbol outside parentheses", input: "$(7.5)", want: -750},
		{name: "padded parentheses", input: "( 3 )", want: -300},
		{name: "empty parentheses", input: "()", wantErr: true},
		{name: "signed inside parentheses", input: "(-5)", wantErr: true},
		{name: "unbalanced parenthesis", input: "(5", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "only symbol", input: "$", wantErr: true},
		{name: "two points", input: "1.2.3", wantErr: true},
		{name: "too large", input: "99999999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %d, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		want  string
		cents int64
	}{
		{cents: 0, want: "0.00"},
		{cents: 5, want: "0.05"},
		{cents: 123450, want: "1234.50"},
		{cents: -4500, want: "-45.00"},
		{cents: -1, want: "-0.01"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
