package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Slot is a single durable key holding the snapshot document.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Status tracks the outcome of the last load.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// DefaultSaveTimeout bounds one observer-triggered write.
const DefaultSaveTimeout = 5 * time.Second

// Adapter moves ledger state in and out of a Slot. Save failures are logged
// and never returned to the ledger.
type Adapter struct {
	slot    Slot
	logger  *log.Logger
	now     func() time.Time
	timeout time.Duration

	mu        sync.Mutex
	status    Status
	loadErr   error
	lastSaved time.Time
	saveErr   error
}

type Option func(*Adapter)

func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.logger = l.WithComponent(log.ComponentPersist) }
}

func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithSaveTimeout sets the bound used by Observer. Zero disables it.
func WithSaveTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

func NewAdapter(slot Slot, opts ...Option) *Adapter {
	a := &Adapter{
		slot:    slot,
		logger:  log.Discard(),
		now:     time.Now,
		timeout: DefaultSaveTimeout,
		status:  StatusIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load reads the slot. An empty slot yields the default state. Content that
// cannot be decoded is cleared and the default state returned; the slot is
// not retried.
func (a *Adapter) Load(ctx context.Context) core.State {
	a.setStatus(StatusLoading, nil)

	data, err := a.slot.Read(ctx)
	switch {
	case errors.Is(err, storage.ErrSlotEmpty):
		a.setStatus(StatusLoaded, nil)
		a.logger.Info("No saved data, starting fresh", log.FieldOperation, log.OpLoad)
		return core.EmptyState()
	case err != nil:
		a.setStatus(StatusError, fmt.Errorf("read slot: %w", err))
		a.logger.Error("Failed to read saved data", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return core.EmptyState()
	}

	patch, err := DecodeDocument(data)
	if err != nil {
		a.setStatus(StatusError, fmt.Errorf("decode snapshot: %w", err))
		a.logger.Error("Saved data is corrupt, clearing it",
			log.FieldOperation, log.OpLoad,
			log.FieldBytes, len(data),
			log.FieldError, err)
		if cerr := a.slot.Clear(ctx); cerr != nil {
			a.logger.Error("Failed to clear corrupt data", log.FieldOperation, log.OpClear, log.FieldError, cerr)
		}
		return core.EmptyState()
	}

	state := Apply(core.EmptyState(), patch)
	a.setStatus(StatusLoaded, nil)
	fields := log.NewFields().
		WithOperation(log.OpLoad).
		WithCount(len(state.Transactions)).
		With("budgets", len(state.Budgets))
	a.logger.Info("Loaded saved data", fields.ToSlice()...)
	return state
}

// Apply overlays the collections present in p onto base.
func Apply(base core.State, p core.StatePatch) core.State {
	out := base.Clone()
	if p.Transactions != nil {
		out.Transactions = append([]core.Transaction{}, *p.Transactions...)
	}
	if p.Budgets != nil {
		out.Budgets = append([]core.Budget{}, *p.Budgets...)
	}
	if p.Categories != nil {
		out.Categories = append([]string{}, *p.Categories...)
	}
	if p.PaymentMethods != nil {
		out.PaymentMethods = append([]string{}, *p.PaymentMethods...)
	}
	return out
}

// Save writes the full state. It reports the error for callers that care;
// the failure is also logged and recorded.
func (a *Adapter) Save(ctx context.Context, state core.State) error {
	now := a.now()
	data, err := json.Marshal(NewSnapshot(state, now))
	if err == nil {
		err = a.slot.Write(ctx, data)
	}

	a.mu.Lock()
	a.saveErr = err
	if err == nil {
		a.lastSaved = now
	}
	a.mu.Unlock()

	if err != nil {
		a.logger.Error("Failed to save data", log.FieldOperation, log.OpSave, log.FieldError, err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	a.logger.Debug("Saved data", log.FieldOperation, log.OpSave, log.FieldBytes, len(data))
	return nil
}

// Observer returns a change observer that saves every new state, bounded by
// the configured timeout. Errors are swallowed after logging.
func (a *Adapter) Observer(ctx context.Context) func(core.State) {
	return func(state core.State) {
		saveCtx := ctx
		if a.timeout > 0 {
			var cancel context.CancelFunc
			saveCtx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}
		_ = a.Save(saveCtx, state)
	}
}

// Clear empties the slot.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.slot.Clear(ctx); err != nil {
		a.logger.Error("Failed to clear saved data", log.FieldOperation, log.OpClear, log.FieldError, err)
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}

func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// LoadErr is the failure behind StatusError, if any.
func (a *Adapter) LoadErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadErr
}

// LastSaved is the time of the last successful save.
func (a *Adapter) LastSaved() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved, !a.lastSaved.IsZero()
}

// SaveErr is the error of the most recent save, nil after a success.
func (a *Adapter) SaveErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveErr
}

func (a *Adapter) setStatus(s Status, err error) {
	a.mu.Lock()
	a.status = s
	a.loadErr = err
	a.mu.Unlock()
}
