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

const containerColumns = `id, name, created_at, is_default`

func scanContainer(row rowScanner) (*model.Container, error) {
	var (
		c         model.Container
		createdAt string
		isDefault int
	)
	if err := row.Scan(&c.ID, &c.Name, &createdAt, &isDefault); err != nil {
		return nil, err
	}
	t, err := parseStoredTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = t
	c.IsDefault = isDefault != 0
	return &c, nil
}

// ListContainers returns every container, the default first and the rest in
// creation order.
func (s *SQLiteStorage) ListContainers(ctx context.Context) ([]model.Container, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+containerColumns+`
		FROM containers
		ORDER BY is_default DESC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, common.NewStorageError("query containers", err)
	}
	defer func() { _ = rows.Close() }()

	var containers []model.Container
	for rows.Next() {
		c, scanErr := scanContainer(rows)
		if scanErr != nil {
			return nil, common.NewStorageError("scan container", scanErr)
		}
		containers = append(containers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate containers", err)
	}

	slog.Debug("Listed containers", "count", len(containers))
	return containers, nil
}

// GetContainer returns the container with the given id.
func (s *SQLiteStorage) GetContainer(ctx context.Context, id int64) (*model.Container, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "container_id"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return getContainer(ctx, s.db, id)
}

// GetContainerByName returns the container with the given name.
func (s *SQLiteStorage) GetContainerByName(ctx context.Context, name string) (*model.Container, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := scanContainer(s.db.QueryRowContext(ctx,
		`SELECT `+containerColumns+` FROM containers WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: container %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, common.NewStorageError("get container", err)
	}
	return c, nil
}

// DefaultContainer returns the container marked as default.
func (s *SQLiteStorage) DefaultContainer(ctx context.Context) (*model.Container, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := scanContainer(s.db.QueryRowContext(ctx,
		`SELECT `+containerColumns+` FROM containers WHERE is_default = 1 ORDER BY id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: default container", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewStorageError("get default container", err)
	}
	return c, nil
}

// CreateContainer creates a new, non-default container.
func (s *SQLiteStorage) CreateContainer(ctx context.Context, name string) (*model.Container, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO containers (name, created_at, is_default) VALUES (?, ?, 0)`,
		name, s.now(),
	)
	if err != nil {
		return nil, writeError("create container", fmt.Sprintf("container %q", name), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, common.NewStorageError("get container id", err)
	}

	slog.Info("Created container", "id", id, "name", name)
	return getContainer(ctx, s.db, id)
}

// RenameContainer changes the name of a container.
func (s *SQLiteStorage) RenameContainer(ctx context.Context, id int64, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "container_id"); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `UPDATE containers SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return writeError("rename container", fmt.Sprintf("container %q", name), err)
	}
	if err := requireAffected(result, "container", id); err != nil {
		return err
	}

	slog.Info("Renamed container", "id", id, "name", name)
	return nil
}

// DeleteContainer deletes a container together with its accounts and
// transactions. The default container cannot be deleted.
func (s *SQLiteStorage) DeleteContainer(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "container_id"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "delete container", func(tx *sql.Tx) error {
		c, err := getContainer(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.IsDefault {
			return fmt.Errorf("%w: cannot delete the default container %q", common.ErrProtectedEntity, c.Name)
		}

		// Foreign keys cascade as well; the explicit deletes cover databases
		// created before the constraints existed.
		for _, query := range []string{
			`DELETE FROM transactions WHERE container_id = ?`,
			`DELETE FROM accounts WHERE container_id = ?`,
			`DELETE FROM containers WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return common.NewStorageError("delete container", err)
			}
		}

		slog.Info("Deleted container", "id", id, "name", c.Name)
		return nil
	})
}

func getContainer(ctx context.Context, q queryable, id int64) (*model.Container, error) {
	c, err := scanContainer(q.QueryRowContext(ctx,
		`SELECT `+containerColumns+` FROM containers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: container %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, common.NewStorageError("get container", err)
	}
	return c, nil
}

// requireContainer returns ErrNotFound unless the container exists.
func requireContainer(ctx context.Context, q queryable, id int64) error {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM containers WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: container %d", common.ErrNotFound, id)
	}
	if err != nil {
		return common.NewStorageError("check container", err)
	}
	return nil
}

// requireAffected returns ErrNotFound when an update or delete matched no row.
func requireAffected(result sql.Result, what string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return common.NewStorageError("get rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", common.ErrNotFound, what, id)
	}
	return nil
}
