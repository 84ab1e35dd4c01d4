// Package export writes ledger transactions to external formats.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/normalize"
)

// Header is the first line of every CSV export.
var Header = []string{"ID", "Amount", "Description", "Category", "Date"}

// TransactionLister lists the transactions of a container.
type TransactionLister interface {
	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
}

// CSVExporter writes a container's transactions as CSV, newest first.
type CSVExporter struct {
	store TransactionLister
}

// NewCSVExporter creates an exporter reading from store.
func NewCSVExporter(store TransactionLister) *CSVExporter {
	return &CSVExporter{store: store}
}

// Export writes the header and one row per transaction. Amounts are rendered
// from cents with exactly two decimals; fields containing commas or quotes
// are quoted.
func (e *CSVExporter) Export(ctx context.Context, w io.Writer, containerID int64) error {
	txns, err := e.store.ListTransactions(ctx, model.TransactionFilter{ContainerID: containerID})
	if err != nil {
		return err
	}

	if err := WriteCSV(w, txns); err != nil {
		return err
	}

	slog.Info("Exported transactions", "container_id", containerID, "count", len(txns))
	return nil
}

// WriteCSV writes txns in the export layout.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range txns {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			normalize.FormatCents(t.Amount),
			t.Description,
			t.Category,
			normalize.FormatTimestamp(t.Date),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction %d: %w", t.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
