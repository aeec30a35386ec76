package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) Config {
	dir := t.TempDir()
	return Config{
		DataBackend:         "sqlite",
		SQLiteDBPath:        filepath.Join(dir, "data", "test.db"),
		SnapshotFile:        filepath.Join(dir, "data", "test.json"),
		StorageKey:          "financeTracker",
		ImportPaymentMethod: "CSV Import",
		LogLevel:            "info",
		SaveTimeout:         5 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid file backend config",
			modify:  func(c *Config) { c.DataBackend = "file" },
			wantErr: false,
		},
		{
			name: "valid memory backend ignores paths",
			modify: func(c *Config) {
				c.DataBackend = "memory"
				c.SQLiteDBPath = ""
				c.SnapshotFile = ""
			},
			wantErr: false,
		},
		{
			name:        "invalid data backend",
			modify:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [sqlite file memory]",
		},
		{
			name:        "sqlite backend missing database path",
			modify:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name: "file backend missing snapshot path",
			modify: func(c *Config) {
				c.DataBackend = "file"
				c.SnapshotFile = ""
			},
			wantErr:     true,
			errorString: "snapshot file cannot be empty when using file backend",
		},
		{
			name:        "blank storage key",
			modify:      func(c *Config) { c.StorageKey = "  " },
			wantErr:     true,
			errorString: "storage key cannot be empty",
		},
		{
			name:        "blank import payment method",
			modify:      func(c *Config) { c.ImportPaymentMethod = "" },
			wantErr:     true,
			errorString: "import payment method cannot be empty",
		},
		{
			name:        "invalid log level",
			modify:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "invalid save timeout - too short",
			modify:      func(c *Config) { c.SaveTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid save timeout 10ms: must be at least 100ms",
		},
		{
			name:        "invalid save timeout - too long",
			modify:      func(c *Config) { c.SaveTimeout = 2 * time.Minute },
			wantErr:     true,
			errorString: "invalid save timeout 2m0s: must be at most 1 minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsEveryError(t *testing.T) {
	cfg := Config{DataBackend: "nope", LogLevel: "loud"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"invalid data backend", "storage key", "import payment method", "invalid log level", "invalid save timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"DATA_BACKEND", "SQLITE_DB_PATH", "SNAPSHOT_FILE", "STORAGE_KEY", "IMPORT_PAYMENT_METHOD", "LOG_LEVEL", "SAVE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/fintrack.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/fintrack.db", cfg.SQLiteDBPath)
		}
		if cfg.SnapshotFile != "./data/fintrack.json" {
			t.Errorf("Load() SnapshotFile = %v, want ./data/fintrack.json", cfg.SnapshotFile)
		}
		if cfg.StorageKey != "financeTracker" {
			t.Errorf("Load() StorageKey = %v, want financeTracker", cfg.StorageKey)
		}
		if cfg.ImportPaymentMethod != "CSV Import" {
			t.Errorf("Load() ImportPaymentMethod = %v, want CSV Import", cfg.ImportPaymentMethod)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Load() LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.SaveTimeout != 5*time.Second {
			t.Errorf("Load() SaveTimeout = %v, want 5s", cfg.SaveTimeout)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("DATA_BACKEND", "file")
		t.Setenv("SNAPSHOT_FILE", "/tmp/ledger.json")
		t.Setenv("STORAGE_KEY", "custom")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("SAVE_TIMEOUT", "250ms")

		cfg := Load()

		if cfg.DataBackend != "file" || cfg.SnapshotFile != "/tmp/ledger.json" || cfg.StorageKey != "custom" {
			t.Errorf("Load() ignored environment: %+v", cfg)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.SaveTimeout != 250*time.Millisecond {
			t.Errorf("Load() SaveTimeout = %v, want 250ms", cfg.SaveTimeout)
		}
	})

	t.Run("invalid duration falls back to default", func(t *testing.T) {
		t.Setenv("SAVE_TIMEOUT", "soon")
		if cfg := Load(); cfg.SaveTimeout != 5*time.Second {
			t.Errorf("Load() SaveTimeout = %v, want 5s", cfg.SaveTimeout)
		}
	})
}
