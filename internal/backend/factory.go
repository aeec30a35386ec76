package backend

import (
	"context"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new slot factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateSlot implements Factory.CreateSlot
func (f *DefaultFactory) CreateSlot(ctx context.Context, config Config) (*SlotResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteSlot(config)
	case FileBackend:
		return f.createFileSlot(config)
	case MemoryBackend:
		return f.createMemorySlot(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteSlot(config Config) (*SlotResult, error) {
	slot, err := storage.NewSQLiteSlot(config.SQLiteDBPath, config.key())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite slot: %w", err)
	}

	f.logger.Info("Initialized backend",
		log.FieldBackend, config.Type,
		log.FieldFile, config.SQLiteDBPath,
		log.FieldKey, config.key())

	return &SlotResult{
		Slot:    slot,
		Cleanup: slot.Close,
	}, nil
}

func (f *DefaultFactory) createFileSlot(config Config) (*SlotResult, error) {
	slot, err := storage.NewFileSlot(config.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file slot: %w", err)
	}

	f.logger.Info("Initialized backend", log.FieldBackend, config.Type, log.FieldFile, slot.Path())

	return &SlotResult{
		Slot:    slot,
		Cleanup: nil, // Nothing held open between writes
	}, nil
}

func (f *DefaultFactory) createMemorySlot(config Config) (*SlotResult, error) {
	f.logger.Info("Initialized backend", log.FieldBackend, config.Type, log.FieldKey, config.key())

	return &SlotResult{
		Slot:    storage.NewMemorySlot(nil),
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}
