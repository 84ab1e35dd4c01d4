// Package importer loads external statements into a ledger container.
// Imports are row-independent: a bad row is reported in the result and
// never aborts the run, and rows inserted before a failure stay persisted.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/normalize"
	"github.com/Veraticus/ledgerbook/internal/service"
)

// ProgressFunc is called after each row with the number of rows processed
// so far and the total number of rows.
type ProgressFunc func(done, total int)

// Option configures an importer.
type Option func(*options)

type options struct {
	progress ProgressFunc
}

// WithProgress reports per-row progress to fn.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{progress: func(int, int) {}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CSVImporter imports CSV statements through a TransactionImporter.
type CSVImporter struct {
	store service.TransactionImporter
	opts  options
}

// NewCSVImporter creates a CSV importer writing to store.
func NewCSVImporter(store service.TransactionImporter, opts ...Option) *CSVImporter {
	return &CSVImporter{store: store, opts: buildOptions(opts)}
}

// csvRow is one data record and its 1-based row number in the file,
// counting the header when there is one.
type csvRow struct {
	err    error
	fields []string
	number int
}

// Import reads CSV text from r and inserts one transaction per data row into
// the container. Rows whose structure, amount or date cannot be parsed, or
// whose insert fails, are counted in ErrorCount and described in Errors.
// Only a failure to read r itself is returned as an error, except that a
// canceled ctx stops the import before the next row and returns the partial
// result with the context error.
func (c *CSVImporter) Import(ctx context.Context, r io.Reader, containerID int64, columns model.ColumnMapping, hasHeader bool) (*model.ImportResult, error) {
	rows, err := readRows(r, hasHeader)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			slog.Warn("CSV import canceled", "row", row.number, "imported", result.SuccessCount)
			return result, fmt.Errorf("import canceled after %d rows: %w", i, err)
		}

		if msg := c.importRow(ctx, row, containerID, columns); msg != "" {
			result.ErrorCount++
			result.Errors = append(result.Errors, msg)
			slog.Warn("Skipped CSV row", "row", row.number, "reason", msg)
		} else {
			result.SuccessCount++
		}
		c.opts.progress(i+1, len(rows))
	}

	slog.Info("Imported CSV",
		"container_id", containerID,
		"rows", len(rows),
		"imported", result.SuccessCount,
		"failed", result.ErrorCount)
	return result, nil
}

// importRow returns an empty string on success and the row's error message
// otherwise.
func (c *CSVImporter) importRow(ctx context.Context, row csvRow, containerID int64, columns model.ColumnMapping) string {
	if row.err != nil {
		return fmt.Sprintf("Row %d: Failed to parse CSV - %v", row.number, row.err)
	}

	amountText := cell(row.fields, columns.Amount)
	amount, err := normalize.ParseAmount(amountText)
	if err != nil {
		return fmt.Sprintf("Row %d: Invalid amount '%s' - %v", row.number, amountText, err)
	}

	dateText := cell(row.fields, columns.Date)
	date, err := normalize.ParseDate(dateText)
	if err != nil {
		return fmt.Sprintf("Row %d: Invalid date '%s' - %v", row.number, dateText, err)
	}

	description, category := model.ImportedLabels(cell(row.fields, columns.Description), cell(row.fields, columns.Category))
	_, err = c.store.ImportTransaction(ctx, model.Transaction{
		ContainerID: containerID,
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		return fmt.Sprintf("Row %d: Failed to insert - %v", row.number, err)
	}
	return ""
}

// readRows splits r into records. Malformed records are kept with their
// parse error so they can be reported against their row number.
func readRows(r io.Reader, hasHeader bool) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []csvRow
	index := 0
	headerPending := hasHeader
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if headerPending {
			headerPending = false
			continue
		}

		number := index + 1
		if hasHeader {
			number = index + 2
		}
		rows = append(rows, csvRow{number: number, fields: fields, err: err})
		index++
	}
	return rows, nil
}

// cell returns the trimmed field at index, or "" when the row is too short.
func cell(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[index])
}
