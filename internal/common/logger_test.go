package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHandler(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler(&buf, slog.LevelInfo, "json")
		require.NoError(t, err)

		logger := slog.New(h)
		logger.Debug("hidden")
		logger.Info("Created account", "account_id", 3)

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `"msg":"Created account"`)
		assert.Contains(t, out, `"account_id":3`)
	})

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler(&buf, slog.LevelDebug, "console")
		require.NoError(t, err)

		slog.New(h).Debug("Listed transactions", "count", 2)
		assert.True(t, strings.Contains(buf.String(), "msg=\"Listed transactions\" count=2"), buf.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := NewHandler(&bytes.Buffer{}, slog.LevelInfo, "xml")
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	prev := slog.Default()
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(prev) })

	LogError(errors.New("database is locked"), "Failed to roll back transaction", Fields{"op": "delete container"})
	slog.Log(context.Background(), slog.LevelInfo, "after")

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"error":"database is locked"`)
	assert.Contains(t, out, `"op":"delete container"`)
}
