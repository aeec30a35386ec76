package backend

import (
	"context"

	"fintrack/internal/persist"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SlotResult contains the slot instance and optional cleanup function
type SlotResult struct {
	Slot    persist.Slot
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *SlotResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates storage slots based on configuration
type Factory interface {
	// CreateSlot opens the slot selected by config
	CreateSlot(ctx context.Context, config Config) (*SlotResult, error)
}

// Config holds configuration for slot creation
type Config struct {
	// Backend type
	Type BackendType

	// Slot key
	Key string

	// SQLite specific
	SQLiteDBPath string

	// File specific
	SnapshotFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
