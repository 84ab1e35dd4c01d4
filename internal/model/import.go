package model

import "strings"

// ColumnMapping gives the zero-based CSV column index of each imported field.
type ColumnMapping struct {
	Amount      int
	Description int
	Category    int
	Date        int
}

// Default labels for imported rows with missing cells.
const (
	ImportedDescription = "Imported"
	ImportedCategory    = DefaultCategory
)

// ImportedLabels returns the description and category for an imported row,
// substituting ImportedDescription and ImportedCategory for blank cells.
func ImportedLabels(description, category string) (string, string) {
	return applyLabelDefaults(strings.TrimSpace(description), strings.TrimSpace(category),
		ImportedDescription, ImportedCategory)
}

// ImportResult reports the outcome of an import. Rows that failed are
// described in Errors, each prefixed with its 1-based row number; rows that
// succeeded stay persisted regardless of later failures.
type ImportResult struct {
	Errors       []string
	SuccessCount int
	ErrorCount   int
}
