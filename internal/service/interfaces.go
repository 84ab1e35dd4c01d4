// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"

	"github.com/Veraticus/ledgerbook/internal/model"
)

// ContainerStore manages ledger containers.
type ContainerStore interface {
	ListContainers(ctx context.Context) ([]model.Container, error)
	GetContainer(ctx context.Context, id int64) (*model.Container, error)
	GetContainerByName(ctx context.Context, name string) (*model.Container, error)
	DefaultContainer(ctx context.Context) (*model.Container, error)
	CreateContainer(ctx context.Context, name string) (*model.Container, error)
	RenameContainer(ctx context.Context, id int64, name string) error
	DeleteContainer(ctx context.Context, id int64) error
}

// AccountStore manages accounts and their point balances.
type AccountStore interface {
	CreateAccount(ctx context.Context, containerID int64, name string, accountType model.AccountType, openingBalance int64) (*model.Account, error)
	UpdateAccount(ctx context.Context, id int64, name string, openingBalance int64) (*model.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	ListAccounts(ctx context.Context, containerID int64) ([]model.Account, error)
	AccountBalance(ctx context.Context, id int64) (int64, error)
	AccountBalances(ctx context.Context, containerID int64) ([]model.AccountBalance, error)
}

// CategoryStore manages reporting categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)
	DeleteCategory(ctx context.Context, name string) error
}

// TransactionStore manages individual ledger entries.
type TransactionStore interface {
	RecordTransaction(ctx context.Context, txn model.NewTransaction) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, update model.TransactionUpdate) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	AvailableMonths(ctx context.Context, containerID int64) ([]string, error)
}

// TransferStore creates and removes linked transfer legs.
type TransferStore interface {
	CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.Transfer, error)
	GetTransfer(ctx context.Context, transferID int64) (*model.Transfer, error)
	DeleteTransfer(ctx context.Context, transferID int64) error
}

// Reporter computes balances and reports. Month arguments are "YYYY-MM".
type Reporter interface {
	MonthlyBalance(ctx context.Context, containerID int64) (int64, error)
	BalanceForMonth(ctx context.Context, containerID int64, month string) (int64, error)
	AllTimeBalance(ctx context.Context, containerID int64) (int64, error)
	CategoryTotals(ctx context.Context, containerID int64, month string) ([]model.CategoryTotal, error)
	ProfitAndLoss(ctx context.Context, containerID int64, month string) (*model.ProfitLossReport, error)
	BalanceSheet(ctx context.Context, containerID int64, month string) (*model.BalanceSheetReport, error)
}

// TransactionImporter is the narrow write path used by statement importers.
type TransactionImporter interface {
	ImportTransaction(ctx context.Context, txn model.Transaction) (*model.Transaction, error)
}

// Ledger is the contract of the ledger store as consumed by the CLI.
type Ledger interface {
	ContainerStore
	AccountStore
	CategoryStore
	TransactionStore
	TransferStore
	Reporter
	TransactionImporter

	Migrate(ctx context.Context) error
	Close() error
}

// CSVImporter imports delimited statement text into a container.
type CSVImporter interface {
	Import(ctx context.Context, r io.Reader, containerID int64, columns model.ColumnMapping, hasHeader bool) (*model.ImportResult, error)
}

// Exporter writes the transactions of a container.
type Exporter interface {
	Export(ctx context.Context, w io.Writer, containerID int64) error
}
