package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/storage"
)

// ErrUnknownBackend is returned for a backend name outside GetBackendTypes.
var ErrUnknownBackend = errors.New("unknown backend")

// ParseBackendType maps a DATA_BACKEND value onto a BackendType.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(s)
	if !bt.IsValid() {
		return "", fmt.Errorf("%w %q, want one of %v", ErrUnknownBackend, s, GetBackendTypeStrings())
	}
	return bt, nil
}

// FromAppConfig picks the slot settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	bt, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Type:         bt,
		Key:          appConfig.StorageKey,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SnapshotFile: appConfig.SnapshotFile,
	}, nil
}

// Validate checks that the path the chosen backend needs is set.
func (c Config) Validate() error {
	if _, err := ParseBackendType(string(c.Type)); err != nil {
		return err
	}
	if p, ok := c.path(); ok && p == "" {
		return fmt.Errorf("%s backend needs a path", c.Type)
	}
	return nil
}

// path returns the on-disk location for backends that have one.
func (c Config) path() (string, bool) {
	switch c.Type {
	case SQLiteBackend:
		return c.SQLiteDBPath, true
	case FileBackend:
		return c.SnapshotFile, true
	}
	return "", false
}

func (c Config) key() string {
	if c.Key == "" {
		return storage.DefaultKey
	}
	return c.Key
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, FileBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
