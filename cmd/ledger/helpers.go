package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/config"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/normalize"
	"github.com/Veraticus/ledgerbook/internal/report"
	"github.com/Veraticus/ledgerbook/internal/service"
	"github.com/Veraticus/ledgerbook/internal/storage"
)

// openLedger opens the configured ledger. Tests replace it.
var openLedger = initStorage

// initStorage opens the database at database.path, creating its directory,
// and runs the startup migration.
func initStorage(ctx context.Context) (service.Ledger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	openFailed := "could not open ledger at " + cfg.DatabasePath

	if cfg.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o750); err != nil {
			return nil, common.NewUserError(openFailed, fmt.Errorf("failed to create database directory: %w", err))
		}
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, common.NewUserError(openFailed, err)
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError(openFailed, fmt.Errorf("failed to run migrations: %w", err))
	}

	return store, nil
}

// withLedger opens the ledger, runs fn and closes the ledger again.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, store service.Ledger) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, store)
}

// resolveContainer returns the container named by --container or
// ledger.container, or the default container when neither is set.
func resolveContainer(ctx context.Context, store service.ContainerStore) (*model.Container, error) {
	if name := viper.GetString(config.KeyContainer); name != "" {
		return store.GetContainerByName(ctx, name)
	}
	return store.DefaultContainer(ctx)
}

func parseID(value, what string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", what, value)
	}
	return id, nil
}

func parseAmountFlag(value, flag string) (int64, error) {
	cents, err := normalize.ParseAmount(value)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return cents, nil
}

func currency() (report.Currency, error) {
	return report.NewCurrency(viper.GetString(config.KeyCurrency))
}

func printLine(cmd *cobra.Command, a ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), a...)
}
