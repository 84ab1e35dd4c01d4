// Package config loads the ledger settings through viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledgerbook/internal/common"
)

// Configuration keys.
const (
	KeyDatabasePath = "database.path"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
	KeySkipHeader   = "import.skip_header"
	KeyContainer    = "ledger.container"
	KeyCurrency     = "ledger.currency"
)

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "$HOME/.local/share/ledger/ledger.db"

// EnvPrefix prefixes environment overrides, e.g. LEDGER_DATABASE_PATH.
const EnvPrefix = "LEDGER"

// Config is the resolved runtime configuration.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Container    string
	Currency     string
	SkipHeader   bool
}

// SetDefaults registers the default value of every key and binds
// LEDGER_-prefixed environment variables.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeySkipHeader, true)
	v.SetDefault(KeyContainer, "")
	v.SetDefault(KeyCurrency, "USD")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v. The database path has ~ and $VAR
// expanded; invalid logging settings are reported as ErrInvalidConfig.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
		SkipHeader:   v.GetBool(KeySkipHeader),
		Container:    strings.TrimSpace(v.GetString(KeyContainer)),
		Currency:     strings.ToUpper(strings.TrimSpace(v.GetString(KeyCurrency))),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// LoadDotEnv loads environment variables from a .env file. A missing file
// is not an error; variables already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
