package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/persist"

	"github.com/mattn/go-isatty"
)

// IO carries the streams and clock a command runs against.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	Now func() time.Time
	// Interactive reports whether prompts may be shown.
	Interactive func() bool
}

// DefaultIO uses the process streams and wall clock.
func DefaultIO() IO {
	return IO{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Now:         time.Now,
		Interactive: stdinIsTerminal,
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// App is one command's session: a ledger loaded from the configured slot,
// saving itself after every change.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Store   *ledger.Store
	Persist *persist.Adapter
	IO      IO

	slot *backend.SlotResult
}

// Open loads the ledger from the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger, streams IO) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	slot, err := backend.NewFactory(logger).CreateSlot(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}

	adapter := persist.NewAdapter(slot.Slot,
		persist.WithLogger(logger),
		persist.WithClock(streams.Now),
		persist.WithSaveTimeout(cfg.SaveTimeout))
	state := adapter.Load(ctx)
	if adapter.Status() == persist.StatusError {
		logger.Warn("Starting with an empty ledger", log.FieldError, adapter.LoadErr())
	}

	store := ledger.New(state,
		ledger.WithClock(streams.Now),
		ledger.WithLogger(logger))
	store.OnChange(adapter.Observer(ctx))

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Persist: adapter,
		IO:      streams,
		slot:    slot,
	}, nil
}

// Close releases the backend.
func (a *App) Close() error {
	return a.slot.Close()
}
