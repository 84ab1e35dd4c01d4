package model

// CategoryType indicates whether a category classifies income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// DefaultCategory is the label applied when a transaction has no category.
const DefaultCategory = "Other"

// TransferCategory is the label carried by both legs of a transfer.
const TransferCategory = "Transfer"

// Category is a named classification used for reporting.
// Transactions reference categories by name only; a label without a
// matching row is treated as an expense.
type Category struct {
	Name      string
	Type      CategoryType
	ID        int64
	IsDefault bool
}

// DefaultCategories are seeded on first start and protected from deletion.
var DefaultCategories = []Category{
	{Name: "Food & Dining", Type: CategoryTypeExpense},
	{Name: "Transportation", Type: CategoryTypeExpense},
	{Name: "Shopping", Type: CategoryTypeExpense},
	{Name: "Entertainment", Type: CategoryTypeExpense},
	{Name: "Bills & Utilities", Type: CategoryTypeExpense},
	{Name: "Healthcare", Type: CategoryTypeExpense},
	{Name: "Income", Type: CategoryTypeIncome},
	{Name: DefaultCategory, Type: CategoryTypeExpense},
}
