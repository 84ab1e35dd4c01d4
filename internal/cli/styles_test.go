package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		icon   string
	}{
		{name: "success", format: FormatSuccess, icon: SuccessIcon},
		{name: "error", format: FormatError, icon: ErrorIcon},
		{name: "warning", format: FormatWarning, icon: WarningIcon},
		{name: "info", format: FormatInfo, icon: InfoIcon},
		{name: "title", format: FormatTitle, icon: LedgerIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.format("Created account Checking")
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "Created account Checking")
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Contains(t, FormatAmount("$12.00", 1200), "$12.00")
	assert.Contains(t, FormatAmount("-$12.00", -1200), "-$12.00")
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("March 2024", "Net flow: $10.00")
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "Net flow: $10.00")
	assert.Contains(t, out, "╭")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"ID", "Name", "Type"},
		[][]string{
			{"1", "Checking", "asset"},
			{"2", "Visa", "liability"},
		},
	)

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, out, "Checking")
	assert.Contains(t, out, "liability")

	checking := strings.Index(out, "Checking")
	visa := strings.Index(out, "Visa")
	assert.Less(t, checking, visa, "rows keep their order")
}

func TestImportProgress(t *testing.T) {
	var out bytes.Buffer
	progress := ImportProgress(&out, "Importing rows")

	for done := 1; done <= 4; done++ {
		progress(done, 4)
	}

	assert.Contains(t, out.String(), "Importing rows")
	assert.Contains(t, out.String(), "4/4")
}
