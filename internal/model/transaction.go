// Package model defines the core domain models used throughout the ledger.
package model

import (
	"strings"
	"time"
)

// DefaultDescription is used when a transaction is recorded without one.
const DefaultDescription = "Untitled"

// Transaction is a single ledger entry. Amount is in signed integer cents:
// negative is an outflow, positive an inflow.
//
// AccountID, TransferID and TransferAccountID are zero when unset. A
// transaction with a TransferID is one leg of a transfer and can only be
// deleted together with its counterpart.
type Transaction struct {
	Date              time.Time
	Description       string
	Category          string
	ID                int64
	Amount            int64
	ContainerID       int64
	AccountID         int64
	TransferID        int64
	TransferAccountID int64
}

// IsTransfer reports whether the transaction is a transfer leg.
func (t *Transaction) IsTransfer() bool {
	return t.TransferID != 0
}

// NewTransaction holds the caller-supplied fields for recording a transaction.
// Empty Description and Category fall back to DefaultDescription and
// DefaultCategory.
type NewTransaction struct {
	Description string
	Category    string
	Amount      int64
	ContainerID int64
	AccountID   int64
}

// WithDefaults returns n with an empty description or category replaced by
// its default label.
func (n NewTransaction) WithDefaults() NewTransaction {
	n.Description, n.Category = applyLabelDefaults(n.Description, n.Category, DefaultDescription, DefaultCategory)
	return n
}

// TransactionUpdate holds the editable fields of a regular transaction.
// Container and date are fixed once recorded.
type TransactionUpdate struct {
	Description string
	Category    string
	ID          int64
	Amount      int64
	AccountID   int64
}

// WithDefaults applies the same label defaults as NewTransaction.WithDefaults.
func (u TransactionUpdate) WithDefaults() TransactionUpdate {
	u.Description, u.Category = applyLabelDefaults(u.Description, u.Category, DefaultDescription, DefaultCategory)
	return u
}

// TransactionFilter narrows a transaction listing. Zero values mean no filter.
// Month is a "YYYY-MM" string.
type TransactionFilter struct {
	Month       string
	ContainerID int64
	AccountID   int64
	Limit       int
}

// DefaultTransferDescription is used when a transfer is created without one.
const DefaultTransferDescription = "Transfer"

// TransferRequest describes a movement of money between two accounts of the
// same container. Amount must be positive: the source account receives a
// debit leg of -Amount and the destination a credit leg of +Amount.
type TransferRequest struct {
	Description   string
	ContainerID   int64
	FromAccountID int64
	ToAccountID   int64
	Amount        int64
}

// DescriptionOrDefault returns the transfer description, or
// DefaultTransferDescription when it is blank.
func (r TransferRequest) DescriptionOrDefault() string {
	if strings.TrimSpace(r.Description) == "" {
		return DefaultTransferDescription
	}
	return r.Description
}

// Transfer is the pair of legs sharing one transfer id.
type Transfer struct {
	Debit  Transaction
	Credit Transaction
	ID     int64
}

func applyLabelDefaults(description, category, defDescription, defCategory string) (string, string) {
	if strings.TrimSpace(description) == "" {
		description = defDescription
	}
	if strings.TrimSpace(category) == "" {
		category = defCategory
	}
	return description, category
}
