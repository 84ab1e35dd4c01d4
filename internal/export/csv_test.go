package export

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/testutil"
)

func TestCSVExporter_Export(t *testing.T) {
	ledger := testutil.SetupTestLedger(t)
	first := ledger.MustImport(0, -123450, "Rent, March", "Bills & Utilities", "2024-03-01")
	second := ledger.MustImport(0, 5, "Refund", "Other", "2024-03-04")

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter(ledger.Storage).Export(context.Background(), &buf, ledger.Container.ID))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Amount,Description,Category,Date", lines[0])
	assert.Equal(t, itoa(second.ID)+",0.05,Refund,Other,2024-03-04 00:00:00", lines[1])
	assert.Equal(t, itoa(first.ID)+",-1234.50,\"Rent, March\",Bills & Utilities,2024-03-01 00:00:00", lines[2])
}

func TestCSVExporter_EmptyContainer(t *testing.T) {
	ledger := testutil.SetupTestLedger(t)

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter(ledger.Storage).Export(context.Background(), &buf, ledger.Container.ID))
	assert.Equal(t, "ID,Amount,Description,Category,Date\n", buf.String())
}

func TestWriteCSV_Amounts(t *testing.T) {
	tests := []struct {
		want  string
		cents int64
	}{
		{cents: 0, want: "0.00"},
		{cents: 1, want: "0.01"},
		{cents: -1, want: "-0.01"},
		{cents: 100, want: "1.00"},
		{cents: -99999, want: "-999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, []model.Transaction{{ID: 1, Amount: tt.cents, Description: "x", Category: "y"}}))
			assert.Contains(t, buf.String(), "\n1,"+tt.want+",x,y,")
		})
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
