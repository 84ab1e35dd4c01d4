package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
// Every Up is idempotent: databases written by older releases may already
// have some of the tables or columns without a recorded version.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS containers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					created_at TEXT NOT NULL,
					is_default INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					amount INTEGER NOT NULL,
					description TEXT NOT NULL,
					category TEXT NOT NULL,
					date TEXT NOT NULL,
					container_id INTEGER NOT NULL DEFAULT 1,
					account_id INTEGER,
					transfer_id INTEGER,
					transfer_account_id INTEGER,
					FOREIGN KEY (container_id) REFERENCES containers(id) ON DELETE CASCADE
				)`,
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					account_type TEXT NOT NULL,
					opening_balance INTEGER NOT NULL DEFAULT 0,
					container_id INTEGER NOT NULL,
					created_at TEXT NOT NULL,
					UNIQUE(name, container_id),
					FOREIGN KEY (container_id) REFERENCES containers(id) ON DELETE CASCADE
				)`,
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					category_type TEXT NOT NULL DEFAULT 'expense',
					is_default INTEGER NOT NULL DEFAULT 0
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add container, account and transfer columns",
		Up: func(tx *sql.Tx) error {
			columns := []struct {
				table      string
				column     string
				definition string
			}{
				{"transactions", "container_id", "INTEGER NOT NULL DEFAULT 1"},
				{"transactions", "account_id", "INTEGER"},
				{"transactions", "transfer_id", "INTEGER"},
				{"transactions", "transfer_account_id", "INTEGER"},
				{"categories", "category_type", "TEXT NOT NULL DEFAULT 'expense'"},
			}

			for _, c := range columns {
				if err := addColumnIfMissing(tx, c.table, c.column, c.definition); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add ledger query indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_transactions_container_date ON transactions(container_id, date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_transfer ON transactions(transfer_id)`,
				`CREATE INDEX IF NOT EXISTS idx_accounts_container ON accounts(container_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// addColumnIfMissing adds a column unless pragma_table_info already lists it.
func addColumnIfMissing(tx *sql.Tx, table, column, definition string) error {
	var count int
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to inspect %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}

	// Identifiers cannot be bound as parameters; both come from the fixed list above.
	if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	slog.Info("Added missing column", "table", table, "column", column)
	return nil
}

// Migrate creates missing tables and columns, seeds the default container
// and categories, and records the schema version. It is safe to run on
// every start.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return common.NewStorageError("get schema version", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return common.NewStorageError("begin transaction", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return common.NewStorageError(fmt.Sprintf("apply migration %d", migration.Version), upErr)
		}

		if migration.Version > currentVersion {
			// PRAGMA does not accept bound parameters.
			if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
				_ = tx.Rollback()
				return common.NewStorageError("update schema version", execErr)
			}
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return common.NewStorageError(fmt.Sprintf("commit migration %d", migration.Version), commitErr)
		}

		if migration.Version > currentVersion {
			slog.Info("Applied migration",
				"version", migration.Version,
				"description", migration.Description)
		}
	}

	if err := s.withTx(ctx, "seed defaults", func(tx *sql.Tx) error {
		return s.seedDefaults(ctx, tx)
	}); err != nil {
		return err
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return common.NewStorageError("verify final schema version", err)
	}

	if finalVersion < ExpectedSchemaVersion {
		return fmt.Errorf("%w: database schema version mismatch: expected %d, got %d",
			common.ErrStorage, ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// seedDefaults creates the default container and categories when the tables
// are empty and repairs a container set that has lost its default.
func (s *SQLiteStorage) seedDefaults(ctx context.Context, tx *sql.Tx) error {
	var containerCount int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM containers").Scan(&containerCount); err != nil {
		return common.NewStorageError("count containers", err)
	}
	if containerCount == 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO containers (name, created_at, is_default) VALUES (?, ?, 1)`,
			model.DefaultContainerName, s.now(),
		); err != nil {
			return common.NewStorageError("create default container", err)
		}
		slog.Info("Created default container", "name", model.DefaultContainerName)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE containers SET is_default = 1
		WHERE id = (SELECT MIN(id) FROM containers)
		  AND NOT EXISTS (SELECT 1 FROM containers WHERE is_default = 1)`,
	); err != nil {
		return common.NewStorageError("repair default container", err)
	}

	var categoryCount int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&categoryCount); err != nil {
		return common.NewStorageError("count categories", err)
	}
	if categoryCount == 0 {
		for _, cat := range model.DefaultCategories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (name, category_type, is_default) VALUES (?, ?, 1)`,
				cat.Name, string(cat.Type),
			); err != nil {
				return common.NewStorageError("seed categories", err)
			}
		}
		slog.Info("Seeded default categories", "count", len(model.DefaultCategories))
	}

	backfill := []string{
		`UPDATE categories SET category_type = 'expense' WHERE category_type IS NULL OR category_type = ''`,
		`UPDATE categories SET category_type = 'income' WHERE name = 'Income'`,
	}
	for _, query := range backfill {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return common.NewStorageError("backfill category types", err)
		}
	}

	return nil
}
