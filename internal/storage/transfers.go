package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
)

// CreateTransfer moves money between two accounts of one container. Both
// legs are written in a single database transaction under a new transfer id
// and share one timestamp, so either both persist or neither does.
func (s *SQLiteStorage) CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.Transfer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransfer(req); err != nil {
		return nil, err
	}
	description := req.DescriptionOrDefault()

	s.mu.Lock()
	defer s.mu.Unlock()

	var transfer *model.Transfer
	err := s.withTx(ctx, "create transfer", func(tx *sql.Tx) error {
		if err := requireContainer(ctx, tx, req.ContainerID); err != nil {
			return err
		}
		if err := requireAccountInContainer(ctx, tx, req.FromAccountID, req.ContainerID); err != nil {
			return err
		}
		if err := requireAccountInContainer(ctx, tx, req.ToAccountID, req.ContainerID); err != nil {
			return err
		}

		// Transfer ids are global across containers.
		var transferID int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(transfer_id), 0) + 1 FROM transactions`,
		).Scan(&transferID); err != nil {
			return common.NewStorageError("allocate transfer id", err)
		}

		now := s.now()
		legs := []model.Transaction{
			{
				Amount:            -req.Amount,
				AccountID:         req.FromAccountID,
				TransferAccountID: req.ToAccountID,
			},
			{
				Amount:            req.Amount,
				AccountID:         req.ToAccountID,
				TransferAccountID: req.FromAccountID,
			},
		}
		for i := range legs {
			legs[i].Description = description
			legs[i].Category = model.TransferCategory
			legs[i].ContainerID = req.ContainerID
			legs[i].TransferID = transferID
			if _, err := insertTransaction(ctx, tx, legs[i], now); err != nil {
				return err
			}
		}

		var err error
		transfer, err = getTransfer(ctx, tx, transferID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Created transfer",
		"transfer_id", transfer.ID,
		"from_account_id", req.FromAccountID,
		"to_account_id", req.ToAccountID,
		"amount", req.Amount,
		"container_id", req.ContainerID)
	return transfer, nil
}

// GetTransfer returns both legs of a transfer.
func (s *SQLiteStorage) GetTransfer(ctx context.Context, transferID int64) (*model.Transfer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(transferID, "transfer_id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return getTransfer(ctx, s.db, transferID)
}

// DeleteTransfer deletes both legs of a transfer atomically.
func (s *SQLiteStorage) DeleteTransfer(ctx context.Context, transferID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(transferID, "transfer_id"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "delete transfer", func(tx *sql.Tx) error {
		return deleteTransferLegs(ctx, tx, transferID)
	})
}

func deleteTransferLegs(ctx context.Context, tx *sql.Tx, transferID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE transfer_id = ?`, transferID)
	if err != nil {
		return common.NewStorageError("delete transfer", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return common.NewStorageError("get rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: transfer %d", common.ErrNotFound, transferID)
	}

	slog.Info("Deleted transfer", "transfer_id", transferID, "legs", n)
	return nil
}

func getTransfer(ctx context.Context, q queryable, transferID int64) (*model.Transfer, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE transfer_id = ?
		ORDER BY amount ASC, id ASC`, transferID)
	if err != nil {
		return nil, common.NewStorageError("query transfer", err)
	}

	legs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: transfer %d", common.ErrNotFound, transferID)
	}
	if len(legs) != 2 {
		return nil, common.NewStorageError("load transfer",
			fmt.Errorf("transfer %d has %d legs", transferID, len(legs)))
	}

	// Ordered by amount, the debit leg comes first.
	return &model.Transfer{
		ID:     transferID,
		Debit:  legs[0],
		Credit: legs[1],
	}, nil
}
