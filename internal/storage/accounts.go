package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
)

const accountColumns = `a.id, a.name, a.account_type, a.opening_balance, a.container_id, a.created_at`

func scanAccount(row rowScanner, extra ...any) (*model.Account, error) {
	var (
		a           model.Account
		accountType string
		createdAt   string
	)
	dest := append([]any{&a.ID, &a.Name, &accountType, &a.OpeningBalance, &a.ContainerID, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t, err := parseStoredTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.Type = model.AccountType(accountType)
	a.CreatedAt = t
	return &a, nil
}

// CreateAccount creates an account in a container. The account type and
// container cannot be changed afterwards.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, containerID int64, name string, accountType model.AccountType, openingBalance int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateAccountType(accountType); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireContainer(ctx, s.db, containerID); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (name, account_type, opening_balance, container_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		name, string(accountType), openingBalance, containerID, s.now(),
	)
	if err != nil {
		return nil, writeError("create account", fmt.Sprintf("account %q in container %d", name, containerID), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, common.NewStorageError("get account id", err)
	}

	slog.Info("Created account",
		"id", id,
		"name", name,
		"type", accountType,
		"container_id", containerID,
		"opening_balance", openingBalance)
	return getAccount(ctx, s.db, id)
}

// UpdateAccount changes the name and opening balance of an account.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, id int64, name string, openingBalance int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "account_id"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, opening_balance = ? WHERE id = ?`,
		name, openingBalance, id,
	)
	if err != nil {
		return nil, writeError("update account", fmt.Sprintf("account %q", name), err)
	}
	if err := requireAffected(result, "account", id); err != nil {
		return nil, err
	}

	slog.Info("Updated account", "id", id, "name", name, "opening_balance", openingBalance)
	return getAccount(ctx, s.db, id)
}

// DeleteAccount deletes an account. Its transactions are kept with the
// account reference cleared.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "account_id"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "delete account", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
		if err != nil {
			return common.NewStorageError("delete account", err)
		}
		if err := requireAffected(result, "account", id); err != nil {
			return err
		}

		cleared, err := tx.ExecContext(ctx, `UPDATE transactions SET account_id = NULL WHERE account_id = ?`, id)
		if err != nil {
			return common.NewStorageError("clear account references", err)
		}
		n, _ := cleared.RowsAffected()

		slog.Info("Deleted account", "id", id, "orphaned_transactions", n)
		return nil
	})
}

// GetAccount returns the account with the given id.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "account_id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return getAccount(ctx, s.db, id)
}

// ListAccounts returns the accounts of a container ordered by name.
func (s *SQLiteStorage) ListAccounts(ctx context.Context, containerID int64) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts a
		WHERE a.container_id = ?
		ORDER BY a.name ASC`, containerID)
	if err != nil {
		return nil, common.NewStorageError("query accounts", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		a, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, common.NewStorageError("scan account", scanErr)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate accounts", err)
	}

	slog.Debug("Listed accounts", "container_id", containerID, "count", len(accounts))
	return accounts, nil
}

// AccountBalance returns the point balance of an account: its opening
// balance plus every transaction on it, transfer legs included.
func (s *SQLiteStorage) AccountBalance(ctx context.Context, id int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(id, "account_id"); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var balance int64
	err := s.db.QueryRowContext(ctx, `
		SELECT a.opening_balance + COALESCE(
			(SELECT SUM(t.amount) FROM transactions t WHERE t.account_id = a.id), 0)
		FROM accounts a
		WHERE a.id = ?`, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: account %d", common.ErrNotFound, id)
	}
	if err != nil {
		return 0, common.NewStorageError("get account balance", err)
	}
	return balance, nil
}

// AccountBalances returns every account of a container with its point
// balance, ordered by name.
func (s *SQLiteStorage) AccountBalances(ctx context.Context, containerID int64) ([]model.AccountBalance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireContainer(ctx, s.db, containerID); err != nil {
		return nil, err
	}
	return accountBalancesAsOf(ctx, s.db, containerID, "")
}

// accountBalancesAsOf computes point balances counting only transactions
// dated on or before asOf. An empty asOf counts every transaction.
func accountBalancesAsOf(ctx context.Context, q queryable, containerID int64, asOf string) ([]model.AccountBalance, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+accountColumns+`,
			a.opening_balance + COALESCE(
				(SELECT SUM(t.amount) FROM transactions t
				 WHERE t.account_id = a.id AND (? = '' OR t.date <= ?)), 0)
		FROM accounts a
		WHERE a.container_id = ?
		ORDER BY a.name ASC`, asOf, asOf, containerID)
	if err != nil {
		return nil, common.NewStorageError("query account balances", err)
	}
	defer func() { _ = rows.Close() }()

	var balances []model.AccountBalance
	for rows.Next() {
		var balance int64
		a, scanErr := scanAccount(rows, &balance)
		if scanErr != nil {
			return nil, common.NewStorageError("scan account balance", scanErr)
		}
		balances = append(balances, model.AccountBalance{Account: *a, Balance: balance})
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate account balances", err)
	}
	return balances, nil
}

func getAccount(ctx context.Context, q queryable, id int64) (*model.Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts a WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, common.NewStorageError("get account", err)
	}
	return a, nil
}

// requireAccountInContainer returns ErrNotFound when the account does not
// exist and a validation error when it belongs to another container.
func requireAccountInContainer(ctx context.Context, q queryable, accountID, containerID int64) error {
	a, err := getAccount(ctx, q, accountID)
	if err != nil {
		return err
	}
	if a.ContainerID != containerID {
		return common.NewValidationError(ErrInvalidID, "account_id", accountID,
			fmt.Sprintf("account belongs to container %d, not %d", a.ContainerID, containerID))
	}
	return nil
}
