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

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		c            model.Category
		categoryType string
		isDefault    int
	)
	if err := row.Scan(&c.ID, &c.Name, &categoryType, &isDefault); err != nil {
		return nil, err
	}
	c.Type = model.CategoryType(categoryType)
	c.IsDefault = isDefault != 0
	return &c, nil
}

// ListCategories retrieves all categories, seeded defaults first and then
// by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(category_type, 'expense'), is_default
		FROM categories
		ORDER BY is_default DESC, name ASC
	`)
	if err != nil {
		return nil, common.NewStorageError("query categories", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		c, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, common.NewStorageError("scan category", scanErr)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate categories", err)
	}

	return categories, nil
}

// GetCategory retrieves a category by its name.
func (s *SQLiteStorage) GetCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return getCategory(ctx, s.db, name)
}

// CreateCategory creates a new, deletable category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if categoryType == "" {
		categoryType = model.CategoryTypeExpense
	}
	if err := validateCategoryType(categoryType); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, category_type, is_default) VALUES (?, ?, 0)`,
		name, string(categoryType),
	)
	if err != nil {
		return nil, writeError("create category", fmt.Sprintf("category %q", name), err)
	}

	slog.Info("Created category", "name", name, "type", categoryType)
	return getCategory(ctx, s.db, name)
}

// DeleteCategory deletes a category by name. Seeded default categories are
// protected. Transactions keep their label.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := getCategory(ctx, s.db, name)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return fmt.Errorf("%w: cannot delete default category %q", common.ErrProtectedEntity, name)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, c.ID); err != nil {
		return common.NewStorageError("delete category", err)
	}

	slog.Info("Deleted category", "name", name)
	return nil
}

func getCategory(ctx context.Context, q queryable, name string) (*model.Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(category_type, 'expense'), is_default
		FROM categories
		WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, common.NewStorageError("get category", err)
	}
	return c, nil
}
