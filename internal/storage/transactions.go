package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/normalize"
	"github.com/Veraticus/ledgerbook/internal/period"
)

const transactionColumns = `id, amount, description, category, date, container_id,
	COALESCE(account_id, 0), COALESCE(transfer_id, 0), COALESCE(transfer_account_id, 0)`

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		t    model.Transaction
		date string
	)
	err := row.Scan(&t.ID, &t.Amount, &t.Description, &t.Category, &date, &t.ContainerID,
		&t.AccountID, &t.TransferID, &t.TransferAccountID)
	if err != nil {
		return nil, err
	}
	parsed, err := parseStoredTime(date)
	if err != nil {
		return nil, err
	}
	t.Date = parsed
	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, common.NewStorageError("scan transaction", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate transactions", err)
	}
	return transactions, nil
}

// RecordTransaction records a regular transaction stamped with the current
// time. Blank description and category take their default labels.
func (s *SQLiteStorage) RecordTransaction(ctx context.Context, txn model.NewTransaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(txn.ContainerID, "container_id"); err != nil {
		return nil, err
	}
	txn = txn.WithDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireContainer(ctx, s.db, txn.ContainerID); err != nil {
		return nil, err
	}
	if txn.AccountID != 0 {
		if err := requireAccountInContainer(ctx, s.db, txn.AccountID, txn.ContainerID); err != nil {
			return nil, err
		}
	}

	id, err := insertTransaction(ctx, s.db, model.Transaction{
		Amount:      txn.Amount,
		Description: txn.Description,
		Category:    txn.Category,
		ContainerID: txn.ContainerID,
		AccountID:   txn.AccountID,
	}, s.now())
	if err != nil {
		return nil, err
	}

	slog.Info("Recorded transaction",
		"id", id,
		"amount", txn.Amount,
		"category", txn.Category,
		"container_id", txn.ContainerID)
	return getTransaction(ctx, s.db, id)
}

// ImportTransaction inserts a regular transaction carrying its own date, as
// read from an external statement. Transfer fields are ignored.
func (s *SQLiteStorage) ImportTransaction(ctx context.Context, txn model.Transaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(txn.ContainerID, "container_id"); err != nil {
		return nil, err
	}
	if txn.Date.IsZero() {
		return nil, common.NewValidationError(ErrInvalidTransaction, "date", "", "date is required")
	}
	txn.Description, txn.Category = model.ImportedLabels(txn.Description, txn.Category)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireContainer(ctx, s.db, txn.ContainerID); err != nil {
		return nil, err
	}
	if txn.AccountID != 0 {
		if err := requireAccountInContainer(ctx, s.db, txn.AccountID, txn.ContainerID); err != nil {
			return nil, err
		}
	}

	txn.TransferID, txn.TransferAccountID = 0, 0
	id, err := insertTransaction(ctx, s.db, txn, normalize.FormatTimestamp(txn.Date))
	if err != nil {
		return nil, err
	}

	slog.Debug("Imported transaction", "id", id, "amount", txn.Amount, "date", txn.Date)
	return getTransaction(ctx, s.db, id)
}

// UpdateTransaction replaces the editable fields of a regular transaction.
// Transfer legs are immutable and must be deleted as a pair instead.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, update model.TransactionUpdate) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(update.ID, "transaction_id"); err != nil {
		return nil, err
	}
	update = update.WithDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := getTransaction(ctx, s.db, update.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsTransfer() {
		return nil, fmt.Errorf("%w: transaction %d is part of transfer %d",
			common.ErrImmutableEntity, existing.ID, existing.TransferID)
	}
	if update.AccountID != 0 {
		if err := requireAccountInContainer(ctx, s.db, update.AccountID, existing.ContainerID); err != nil {
			return nil, err
		}
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, description = ?, category = ?, account_id = ?
		WHERE id = ?`,
		update.Amount, update.Description, update.Category, nullableID(update.AccountID), update.ID,
	)
	if err != nil {
		return nil, common.NewStorageError("update transaction", err)
	}

	slog.Info("Updated transaction", "id", update.ID, "amount", update.Amount, "category", update.Category)
	return getTransaction(ctx, s.db, update.ID)
}

// DeleteTransaction deletes a transaction. Deleting either leg of a transfer
// deletes both legs.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "transaction_id"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "delete transaction", func(tx *sql.Tx) error {
		t, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}

		if t.IsTransfer() {
			return deleteTransferLegs(ctx, tx, t.TransferID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return common.NewStorageError("delete transaction", err)
		}
		slog.Info("Deleted transaction", "id", id)
		return nil
	})
}

// GetTransaction returns the transaction with the given id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "transaction_id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return getTransaction(ctx, s.db, id)
}

// ListTransactions returns the transactions of a container, newest first.
// The filter can narrow by account and calendar month and cap the count.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(filter.ContainerID, "container_id"); err != nil {
		return nil, err
	}
	if filter.Limit < 0 {
		return nil, common.NewValidationError(ErrInvalidTransaction, "limit", filter.Limit, "must not be negative")
	}

	var start, end string
	if filter.Month != "" {
		var err error
		start, end, err = period.MonthRange(filter.Month)
		if err != nil {
			return nil, err
		}
	}

	// SQLite treats a negative LIMIT as no limit.
	limit := int64(-1)
	if filter.Limit > 0 {
		limit = int64(filter.Limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE container_id = ?
		  AND (? = 0 OR account_id = ?)
		  AND (? = '' OR date BETWEEN ? AND ?)
		ORDER BY date DESC, id DESC
		LIMIT ?`,
		filter.ContainerID,
		filter.AccountID, filter.AccountID,
		start, start, end,
		limit,
	)
	if err != nil {
		return nil, common.NewStorageError("query transactions", err)
	}

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("Listed transactions",
		"container_id", filter.ContainerID,
		"account_id", filter.AccountID,
		"month", filter.Month,
		"count", len(transactions))
	return transactions, nil
}

// AvailableMonths returns the distinct "YYYY-MM" months that have
// transactions in a container, newest first.
func (s *SQLiteStorage) AvailableMonths(ctx context.Context, containerID int64) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT substr(date, 1, 7) AS month
		FROM transactions
		WHERE container_id = ?
		ORDER BY month DESC`, containerID)
	if err != nil {
		return nil, common.NewStorageError("query months", err)
	}
	defer func() { _ = rows.Close() }()

	var months []string
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, common.NewStorageError("scan month", err)
		}
		months = append(months, month)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate months", err)
	}
	return months, nil
}

func insertTransaction(ctx context.Context, q queryable, t model.Transaction, date string) (int64, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO transactions (
			amount, description, category, date, container_id,
			account_id, transfer_id, transfer_account_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Amount, t.Description, t.Category, date, t.ContainerID,
		nullableID(t.AccountID), nullableID(t.TransferID), nullableID(t.TransferAccountID),
	)
	if err != nil {
		return 0, common.NewStorageError("insert transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, common.NewStorageError("get transaction id", err)
	}
	return id, nil
}

func getTransaction(ctx context.Context, q queryable, id int64) (*model.Transaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, common.NewStorageError("get transaction", err)
	}
	return t, nil
}
