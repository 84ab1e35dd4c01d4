package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
)

// testNow is the fixed wall clock used by createTestStorage.
var testNow = time.Date(2024, time.March, 20, 10, 30, 0, 0, time.UTC)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// defaultContainerID returns the id of the seeded default container.
func defaultContainerID(t *testing.T, store *SQLiteStorage) int64 {
	t.Helper()
	c, err := store.DefaultContainer(context.Background())
	if err != nil {
		t.Fatalf("Failed to get default container: %v", err)
	}
	return c.ID
}

func createTestAccount(t *testing.T, store *SQLiteStorage, containerID int64, name string, accountType model.AccountType, opening int64) *model.Account {
	t.Helper()
	a, err := store.CreateAccount(context.Background(), containerID, name, accountType, opening)
	if err != nil {
		t.Fatalf("Failed to create account %q: %v", name, err)
	}
	return a
}

// importOn inserts a dated transaction, the way the importers do.
func importOn(t *testing.T, store *SQLiteStorage, txn model.Transaction, date string) *model.Transaction {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	txn.Date = d
	saved, err := store.ImportTransaction(context.Background(), txn)
	if err != nil {
		t.Fatalf("Failed to import transaction: %v", err)
	}
	return saved
}

func TestNewSQLiteStorage(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{name: "file database", dbPath: filepath.Join(t.TempDir(), "nested", "ledger.db")},
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "empty path", dbPath: "", wantErr: true},
		{name: "whitespace path", dbPath: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSQLiteStorage(tt.dbPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSQLiteStorage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, common.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			defer func() { _ = store.Close() }()

			if store.Path() != tt.dbPath {
				t.Errorf("Path() = %q, want %q", store.Path(), tt.dbPath)
			}
		})
	}
}

func TestMigrate_SeedsDefaults(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	containers, err := store.ListContainers(ctx)
	if err != nil {
		t.Fatalf("ListContainers() error = %v", err)
	}
	if len(containers) != 1 {
		t.Fatalf("expected 1 seeded container, got %d", len(containers))
	}
	if containers[0].Name != model.DefaultContainerName || !containers[0].IsDefault {
		t.Errorf("seeded container = %+v, want default %q", containers[0], model.DefaultContainerName)
	}
	if !containers[0].CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", containers[0].CreatedAt, testNow)
	}

	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != len(model.DefaultCategories) {
		t.Fatalf("expected %d seeded categories, got %d", len(model.DefaultCategories), len(categories))
	}

	var income, expense int
	for _, c := range categories {
		if !c.IsDefault {
			t.Errorf("seeded category %q is not marked default", c.Name)
		}
		switch c.Type {
		case model.CategoryTypeIncome:
			income++
		case model.CategoryTypeExpense:
			expense++
		}
	}
	if income != 1 || expense != 7 {
		t.Errorf("got %d income and %d expense categories, want 1 and 7", income, expense)
	}

	var version int
	if err := store.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("Migrate() run %d error = %v", i+2, err)
		}
	}

	containers, err := store.ListContainers(ctx)
	if err != nil {
		t.Fatalf("ListContainers() error = %v", err)
	}
	if len(containers) != 1 {
		t.Errorf("expected 1 container after repeated migrations, got %d", len(containers))
	}

	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != len(model.DefaultCategories) {
		t.Errorf("expected %d categories after repeated migrations, got %d", len(model.DefaultCategories), len(categories))
	}
}

func TestMigrate_UpgradesLegacySchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// A database from before containers gained accounts and transfers.
	legacy, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("failed to open legacy database: %v", err)
	}
	for _, query := range []string{
		`CREATE TABLE containers (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL, is_default INTEGER NOT NULL DEFAULT 0)`,
		`CREATE TABLE transactions (id INTEGER PRIMARY KEY AUTOINCREMENT, amount INTEGER NOT NULL,
			description TEXT NOT NULL, category TEXT NOT NULL, date TEXT NOT NULL)`,
		`CREATE TABLE categories (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE,
			is_default INTEGER NOT NULL DEFAULT 0)`,
		`INSERT INTO containers (name, created_at, is_default) VALUES ('Household', '2023-01-01 00:00:00', 0)`,
		`INSERT INTO categories (name, is_default) VALUES ('Income', 1), ('Groceries', 0)`,
		`INSERT INTO transactions (amount, description, category, date)
			VALUES (-1500, 'Market', 'Groceries', '2023-06-01 00:00:00')`,
	} {
		if _, err := legacy.Exec(query); err != nil {
			t.Fatalf("failed to build legacy schema: %v", err)
		}
	}
	_ = legacy.Close()

	store, err := NewSQLiteStorage(dbPath, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	def, err := store.DefaultContainer(ctx)
	if err != nil {
		t.Fatalf("DefaultContainer() error = %v", err)
	}
	if def.Name != "Household" {
		t.Errorf("default container = %q, want the existing Household container", def.Name)
	}

	txns, err := store.ListTransactions(ctx, model.TransactionFilter{ContainerID: def.ID})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txns) != 1 || txns[0].Amount != -1500 || txns[0].AccountID != 0 {
		t.Errorf("legacy transaction not preserved: %+v", txns)
	}

	income, err := store.GetCategory(ctx, "Income")
	if err != nil {
		t.Fatalf("GetCategory() error = %v", err)
	}
	if income.Type != model.CategoryTypeIncome {
		t.Errorf("Income category type = %q, want income", income.Type)
	}
	groceries, err := store.GetCategory(ctx, "Groceries")
	if err != nil {
		t.Fatalf("GetCategory() error = %v", err)
	}
	if groceries.Type != model.CategoryTypeExpense {
		t.Errorf("Groceries category type = %q, want expense", groceries.Type)
	}
}

func TestSQLiteStorage_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // exercising the nil context guard
	if _, err := store.ListContainers(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("ListContainers(nil) error = %v, want ErrNilContext", err)
	}
}
