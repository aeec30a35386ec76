package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Valid backend names for DATA_BACKEND.
var validBackends = []string{"sqlite", "file", "memory"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	// Backend selection
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// File
	SnapshotFile string

	// Slot key shared by every backend
	StorageKey string

	// Import
	ImportPaymentMethod string

	// Logging
	LogLevel string

	// Persistence
	SaveTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		DataBackend:         getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:        getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		SnapshotFile:        getEnv("SNAPSHOT_FILE", "./data/fintrack.json"),
		StorageKey:          getEnv("STORAGE_KEY", "financeTracker"),
		ImportPaymentMethod: getEnv("IMPORT_PAYMENT_METHOD", "CSV Import"),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		SaveTimeout:         getEnvDuration("SAVE_TIMEOUT", 5*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	if !oneOf(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(c.SQLiteDBPath); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create SQLite database directory: %v", err))
		}
	case "file":
		if c.SnapshotFile == "" {
			errors = append(errors, "snapshot file cannot be empty when using file backend")
		} else if err := ensureDir(c.SnapshotFile); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create snapshot directory: %v", err))
		}
	}

	if strings.TrimSpace(c.StorageKey) == "" {
		errors = append(errors, "storage key cannot be empty")
	}

	if strings.TrimSpace(c.ImportPaymentMethod) == "" {
		errors = append(errors, "import payment method cannot be empty")
	}

	if !oneOf(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if c.SaveTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid save timeout %v: must be at least 100ms", c.SaveTimeout))
	} else if c.SaveTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid save timeout %v: must be at most 1 minute", c.SaveTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir creates the parent directory of path if it is missing.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("'%s': %w", dir, err)
		}
	}
	return nil
}

func oneOf(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
