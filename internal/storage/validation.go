// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidTransfer    = errors.New("invalid transfer")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCategory    = errors.New("invalid category")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return common.NewValidationError(ErrEmptyString, paramName, strconv.Quote(s), "cannot be empty")
	}
	return nil
}

// validateID ensures an entity id is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return common.NewValidationError(ErrInvalidID, paramName, id, "must be positive")
	}
	return nil
}

// validateAccountType ensures the account type is one of the known types.
func validateAccountType(t model.AccountType) error {
	if !t.Valid() {
		return common.NewValidationError(model.ErrInvalidAccountType, "account_type", strconv.Quote(string(t)),
			"expected asset, contra_asset, liability, equity or other")
	}
	return nil
}

// validateCategoryType ensures the category type is income or expense.
func validateCategoryType(t model.CategoryType) error {
	if !t.Valid() {
		return common.NewValidationError(ErrInvalidCategory, "category_type", strconv.Quote(string(t)),
			"expected income or expense")
	}
	return nil
}

// validateTransfer checks a transfer request before anything is written.
func validateTransfer(req model.TransferRequest) error {
	if err := validateID(req.ContainerID, "container_id"); err != nil {
		return err
	}
	if err := validateID(req.FromAccountID, "from_account_id"); err != nil {
		return err
	}
	if err := validateID(req.ToAccountID, "to_account_id"); err != nil {
		return err
	}
	if req.FromAccountID == req.ToAccountID {
		return common.NewValidationError(ErrInvalidTransfer, "to_account_id", req.ToAccountID,
			"source and destination accounts must be different")
	}
	if req.Amount <= 0 {
		return common.NewValidationError(ErrInvalidTransfer, "amount", req.Amount,
			"transfer amount must be positive")
	}
	return nil
}
