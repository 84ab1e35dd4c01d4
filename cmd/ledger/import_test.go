package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/config"
	"github.com/Veraticus/ledgerbook/internal/model"
)

type interruptState bool

func (s interruptState) WasInterrupted() bool { return bool(s) }

func TestFinishImport(t *testing.T) {
	canceled := errors.Join(errors.New("import canceled after 2 rows"), context.Canceled)
	partial := &model.ImportResult{SuccessCount: 2, ErrorCount: 1, Errors: []string{"Row 2: Invalid amount 'x'"}}

	tests := []struct {
		result      *model.ImportResult
		err         error
		name        string
		wantErr     string
		wantOut     []string
		interrupted interruptState
		wantUserErr bool
	}{
		{
			name:    "completed import",
			result:  &model.ImportResult{SuccessCount: 3},
			wantOut: []string{"Imported 3 transactions into Personal"},
		},
		{
			name:        "interrupted import keeps its summary",
			result:      partial,
			err:         canceled,
			interrupted: true,
			wantOut:     []string{"Imported 2 transactions into Personal", "Row 2: Invalid amount 'x'"},
			wantErr:     "import interrupted after 3 rows",
			wantUserErr: true,
		},
		{
			name:        "interrupted before any file",
			err:         context.Canceled,
			interrupted: true,
			wantErr:     "import interrupted after 0 rows",
			wantUserErr: true,
		},
		{
			name:    "cancellation without an interrupt",
			result:  partial,
			err:     canceled,
			wantErr: "import canceled after 2 rows",
		},
		{
			name:    "read failure",
			err:     errors.New("failed to read CSV: boom"),
			wantErr: "failed to read CSV: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			var out bytes.Buffer
			cmd.SetOut(&out)

			err := finishImport(cmd, "Personal", tt.result, tt.err, tt.interrupted)
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var userErr *common.UserError
			assert.Equal(t, tt.wantUserErr, errors.As(err, &userErr))
			if tt.wantUserErr {
				assert.ErrorIs(t, err, context.Canceled)
			}
		})
	}
}

func TestInitStorage_UnwritableDirectory(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	viper.Set(config.KeyDatabasePath, filepath.Join(blocker, "ledger.db"))

	_, err := initStorage(context.Background())
	require.Error(t, err)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, common.UserMessage(err), "could not open ledger at "+filepath.Join(blocker, "ledger.db"))
	assert.Contains(t, err.Error(), "failed to create database directory")
}

func TestInitStorage_OpensAndMigrates(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())

	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	viper.Set(config.KeyDatabasePath, path)

	store, err := initStorage(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	container, err := store.DefaultContainer(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, container.Name)
	assert.FileExists(t, path)
}
