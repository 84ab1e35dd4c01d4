package main

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/service"
	"github.com/Veraticus/ledgerbook/internal/testutil"
)

// sharedLedger keeps the test ledger open across commands.
type sharedLedger struct {
	service.Ledger
}

func (sharedLedger) Close() error { return nil }

// useTestLedger points every command at an in-memory ledger with a fixed
// clock.
func useTestLedger(t *testing.T) *testutil.TestLedger {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	ledger := testutil.SetupTestLedger(t)
	prev := openLedger
	openLedger = func(context.Context) (service.Ledger, error) {
		return sharedLedger{ledger.Storage}, nil
	}
	t.Cleanup(func() { openLedger = prev })

	return ledger
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCommand(t, "", args...)
	require.NoError(t, err, "ledger %s\n%s", strings.Join(args, " "), out)
	return out
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func findCommand(root *cobra.Command, path ...string) *cobra.Command {
	cmd, _, err := root.Find(path)
	if err != nil {
		return nil
	}
	return cmd
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"containers", "list"}, {"containers", "add"}, {"containers", "rename"}, {"containers", "delete"},
		{"accounts", "list"}, {"accounts", "add"}, {"accounts", "update"}, {"accounts", "delete"}, {"accounts", "balances"},
		{"categories", "list"}, {"categories", "add"}, {"categories", "delete"},
		{"tx", "add"}, {"tx", "list"}, {"tx", "show"}, {"tx", "update"}, {"tx", "delete"},
		{"transfer", "add"}, {"transfer", "show"}, {"transfer", "delete"},
		{"balance"}, {"months"},
		{"report", "pnl"}, {"report", "balance-sheet"}, {"report", "categories"}, {"report", "summary"},
		{"import", "csv"}, {"import", "ofx"},
		{"export", "csv"},
		{"version"},
	} {
		cmd := findCommand(root, path...)
		if assert.NotNil(t, cmd, "missing command %v", path) {
			assert.Equal(t, path[len(path)-1], cmd.Name())
		}
	}

	for _, name := range []string{"config", "log-level", "log-format", "container"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing global flag --%s", name)
	}
}

func TestVersionCmd(t *testing.T) {
	useTestLedger(t)

	out := mustRun(t, "version")
	assert.Equal(t, "ledger dev\n", out)
}

func TestInitConfig_InvalidLogLevel(t *testing.T) {
	useTestLedger(t)

	_, err := runCommand(t, "", "--log-level", "chatty", "version")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidConfig), "got %v", err)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "7", want: 7},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "seven", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in, "account ID")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
