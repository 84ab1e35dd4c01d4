package model

import (
	"errors"
	"time"
)

// ErrInvalidAccountType indicates an account type outside the known set.
var ErrInvalidAccountType = errors.New("invalid account type")

// AccountType controls how an account is bucketed on the balance sheet.
type AccountType string

// Known account types.
const (
	AccountTypeAsset       AccountType = "asset"
	AccountTypeContraAsset AccountType = "contra_asset"
	AccountTypeLiability   AccountType = "liability"
	AccountTypeEquity      AccountType = "equity"
	AccountTypeOther       AccountType = "other"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeContraAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeOther:
		return true
	}
	return false
}

// Section is the balance sheet section an account of this type belongs to.
// Anything that is not an asset or a liability is reported under equity,
// including types written by older versions that are no longer recognised.
func (t AccountType) Section() string {
	switch t {
	case AccountTypeAsset, AccountTypeContraAsset:
		return "assets"
	case AccountTypeLiability:
		return "liabilities"
	default:
		return "equity"
	}
}

// Account is a named pool of money inside a container.
// OpeningBalance is in signed integer cents.
type Account struct {
	CreatedAt      time.Time
	Name           string
	Type           AccountType
	ID             int64
	ContainerID    int64
	OpeningBalance int64
}

// AccountBalance is an account together with its point balance: the opening
// balance plus every transaction on the account, transfer legs included.
type AccountBalance struct {
	Account
	Balance int64
}
