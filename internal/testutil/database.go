// Package testutil provides test utilities for the ledger.
// It sets up migrated in-memory ledgers with a fixed clock and seeds
// accounts and transactions through the public store API.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/storage"
)

// FixedNow is the wall clock of every ledger created by SetupTestLedger.
var FixedNow = time.Date(2024, time.March, 20, 10, 30, 0, 0, time.UTC)

// TestLedger is a migrated in-memory ledger bound to a test.
type TestLedger struct {
	Storage   *storage.SQLiteStorage
	t         *testing.T
	Container model.Container
}

// SetupTestLedger creates a new in-memory ledger with the default container
// and categories seeded. It is closed automatically when the test ends.
//
// Example:
//
//	l := testutil.SetupTestLedger(t)
//	checking := l.MustCreateAccount("Checking", model.AccountTypeAsset, 10000)
//	l.MustImport(checking.ID, -2500, "Groceries", "Food & Dining", "2024-03-02")
func SetupTestLedger(t *testing.T) *TestLedger {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:", storage.WithClock(func() time.Time { return FixedNow }))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	container, err := store.DefaultContainer(ctx)
	if err != nil {
		_ = store.Close()
		t.Fatalf("failed to load default container: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestLedger{
		Storage:   store,
		Container: *container,
		t:         t,
	}
}

// MustCreateAccount creates an account in the default container or fails the test.
func (l *TestLedger) MustCreateAccount(name string, accountType model.AccountType, openingBalance int64) *model.Account {
	l.t.Helper()
	a, err := l.Storage.CreateAccount(context.Background(), l.Container.ID, name, accountType, openingBalance)
	if err != nil {
		l.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return a
}

// MustImport inserts a dated transaction into the default container or
// fails the test. A zero accountID leaves the transaction unassigned.
func (l *TestLedger) MustImport(accountID, amount int64, description, category, date string) *model.Transaction {
	l.t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		l.t.Fatalf("invalid fixture date %q: %v", date, err)
	}
	txn, err := l.Storage.ImportTransaction(context.Background(), model.Transaction{
		ContainerID: l.Container.ID,
		AccountID:   accountID,
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        d,
	})
	if err != nil {
		l.t.Fatalf("failed to import fixture transaction: %v", err)
	}
	return txn
}

// MustTransfer moves amount between two accounts of the default container or
// fails the test.
func (l *TestLedger) MustTransfer(fromAccountID, toAccountID, amount int64) *model.Transfer {
	l.t.Helper()
	transfer, err := l.Storage.CreateTransfer(context.Background(), model.TransferRequest{
		ContainerID:   l.Container.ID,
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
	})
	if err != nil {
		l.t.Fatalf("failed to create fixture transfer: %v", err)
	}
	return transfer
}

// Transactions lists every transaction of the default container, newest first.
func (l *TestLedger) Transactions() []model.Transaction {
	l.t.Helper()
	txns, err := l.Storage.ListTransactions(context.Background(), model.TransactionFilter{ContainerID: l.Container.ID})
	if err != nil {
		l.t.Fatalf("failed to list transactions: %v", err)
	}
	return txns
}
