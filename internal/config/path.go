package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and $VAR references in a file path, such as the
// default database path $HOME/.local/share/ledger/ledger.db or a
// database.path of ~/ledgers/home.db.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}
