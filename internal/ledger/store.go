// Package ledger holds the authoritative transactions, budgets, categories
// and payment methods, and keeps derived budget figures in step with them.
package ledger

import (
	"strings"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/derive"
	"fintrack/internal/log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Observer receives the full state after every mutation that changed it.
type Observer func(core.State)

// Store is the single source of truth for the ledger. All mutation methods are
// total: they never fail on well-formed input and absent ids are no-ops.
type Store struct {
	mu sync.Mutex

	transactions   []core.Transaction
	budgets        []core.Budget
	categories     []string
	paymentMethods []string

	now            func() time.Time
	newID          func() string
	logger         *log.Logger
	stats          *cache.LRU[core.MonthlyStats]
	observers      []Observer
	recomputations int

	// Observer delivery is ordered by the ticket taken under mu.
	notifyMu  sync.Mutex
	delivered *sync.Cond
	issued    uint64
	handed    uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock that defines "the current month".
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// New builds a store from a loaded state. Budgets are recomputed immediately
// so a stale persisted Spent never survives a restart.
func New(state core.State, opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.Discard(),
		stats:  cache.NewLRU[core.MonthlyStats](12, 0),
	}
	s.delivered = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}
	s.load(state)
	s.recompute()
	return s
}

func (s *Store) load(state core.State) {
	s.transactions = make([]core.Transaction, 0, len(state.Transactions))
	for _, t := range state.Transactions {
		s.transactions = append(s.transactions, t.Normalize())
	}
	s.budgets = append([]core.Budget{}, state.Budgets...)
	s.categories = core.Dedupe(state.Categories)
	if len(s.categories) == 0 {
		s.categories = core.DefaultCategories()
	}
	s.paymentMethods = core.Dedupe(state.PaymentMethods)
	if len(s.paymentMethods) == 0 {
		s.paymentMethods = core.DefaultPaymentMethods()
	}
}

// OnChange registers an observer. Observers run synchronously, in
// registration order, after the store lock is released. States reach
// observers in the order the mutations were applied. An observer may read
// the store but must not mutate it.
func (s *Store) OnChange(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// State returns a copy of the current contents.
func (s *Store) State() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Recomputations counts the derivation passes run so far.
func (s *Store) Recomputations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputations
}

// AddTransaction appends a new record with a fresh id.
func (s *Store) AddTransaction(in core.TransactionInput) core.Transaction {
	added := s.AddTransactionsBatch([]core.TransactionInput{in})
	return added[0]
}

// AddTransactionsBatch appends every input and runs a single recomputation.
func (s *Store) AddTransactionsBatch(ins []core.TransactionInput) []core.Transaction {
	if len(ins) == 0 {
		return []core.Transaction{}
	}
	s.mu.Lock()
	added := make([]core.Transaction, len(ins))
	for i, in := range ins {
		added[i] = s.newTransaction(in)
	}
	s.transactions = append(s.transactions, added...)
	s.recompute()
	publish := s.publishLocked()

	if len(added) == 1 {
		s.logger.Debug("Transaction added", log.FieldTransactionID, added[0].ID, log.FieldCategory, added[0].Category)
	} else {
		s.logger.Info("Transactions added", log.FieldOperation, log.OpBatch, log.FieldCount, len(added))
	}
	publish()
	return append([]core.Transaction{}, added...)
}

func (s *Store) newTransaction(in core.TransactionInput) core.Transaction {
	in = in.Normalize()
	return core.Transaction{
		ID:            s.newID(),
		Date:          in.Date,
		Amount:        in.Amount,
		Description:   in.Description,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		Type:          in.Type,
	}
}

// UpdateTransaction replaces the record with t's id. It reports whether a
// record matched; an absent id changes nothing.
func (s *Store) UpdateTransaction(t core.Transaction) bool {
	s.mu.Lock()
	idx := s.indexOfTransaction(t.ID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.transactions[idx] = t.Normalize()
	s.recompute()
	publish := s.publishLocked()

	s.logger.Debug("Transaction updated", log.FieldTransactionID, t.ID)
	publish()
	return true
}

// DeleteTransaction removes one record.
func (s *Store) DeleteTransaction(id string) bool {
	return s.DeleteTransactionsBatch([]string{id}) == 1
}

// DeleteTransactionsBatch removes every matching record in one pass and
// returns how many were removed.
func (s *Store) DeleteTransactionsBatch(ids []string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	kept := s.transactions[:0:0]
	for _, t := range s.transactions {
		if _, ok := drop[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	removed := len(s.transactions) - len(kept)
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.transactions = kept
	s.recompute()
	publish := s.publishLocked()

	s.logger.Info("Transactions deleted", log.FieldOperation, log.OpDelete, log.FieldCount, removed)
	publish()
	return removed
}

// AddBudget creates a budget and derives its spend from existing transactions.
func (s *Store) AddBudget(in core.BudgetInput) core.Budget {
	s.mu.Lock()
	b := core.Budget{
		ID:       s.newID(),
		Category: strings.TrimSpace(in.Category),
		Amount:   in.Amount,
		Spent:    decimal.Zero,
		Period:   in.Period,
	}
	if !b.Period.Valid() {
		b.Period = core.Monthly
	}
	s.budgets = append(s.budgets, b)
	s.recompute()
	b = s.budgets[len(s.budgets)-1]
	publish := s.publishLocked()

	s.logger.Debug("Budget added", log.FieldBudgetID, b.ID, log.FieldCategory, b.Category)
	publish()
	return b
}

// UpdateBudget replaces the budget with b's id. Spent is always re-derived.
func (s *Store) UpdateBudget(b core.Budget) bool {
	s.mu.Lock()
	idx := s.indexOfBudget(b.ID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	if !b.Period.Valid() {
		b.Period = core.Monthly
	}
	s.budgets[idx] = b
	s.recompute()
	publish := s.publishLocked()

	publish()
	return true
}

// DeleteBudget removes a budget; its category's transactions are untouched.
func (s *Store) DeleteBudget(id string) bool {
	s.mu.Lock()
	idx := s.indexOfBudget(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.budgets = append(s.budgets[:idx:idx], s.budgets[idx+1:]...)
	s.recompute()
	publish := s.publishLocked()

	s.logger.Debug("Budget deleted", log.FieldBudgetID, id)
	publish()
	return true
}

// AddCategory registers a category. Already-known names are a no-op.
func (s *Store) AddCategory(name string) bool {
	return s.addToSet(&s.categories, name, log.FieldCategory)
}

// AddPaymentMethod registers a payment method. Already-known names are a no-op.
func (s *Store) AddPaymentMethod(name string) bool {
	return s.addToSet(&s.paymentMethods, name, log.FieldPaymentMethod)
}

func (s *Store) addToSet(set *[]string, name, field string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	s.mu.Lock()
	if core.Contains(*set, name) {
		s.mu.Unlock()
		return false
	}
	*set = append(*set, name)
	publish := s.publishLocked()

	s.logger.Info("Registered new value", field, name)
	publish()
	return true
}

// Replace swaps each collection present in the patch wholesale. Categories and
// payment methods referenced by the resulting records are registered if the
// sets do not already hold them.
func (s *Store) Replace(p core.StatePatch) {
	s.mu.Lock()
	next := s.snapshotLocked()
	if p.Transactions != nil {
		next.Transactions = *p.Transactions
	}
	if p.Budgets != nil {
		next.Budgets = *p.Budgets
	}
	if p.Categories != nil {
		next.Categories = *p.Categories
	}
	if p.PaymentMethods != nil {
		next.PaymentMethods = *p.PaymentMethods
	}
	s.load(next)
	registered := s.registerReferencedLocked()
	s.recompute()
	count := len(s.transactions)
	publish := s.publishLocked()

	s.logger.Info("State replaced",
		log.FieldOperation, log.OpImport,
		log.FieldCount, count,
		"registered", registered)
	publish()
}

// registerReferencedLocked adds every category and payment method used by a
// transaction or budget to the known sets and returns how many were added.
func (s *Store) registerReferencedLocked() int {
	added := 0
	register := func(set *[]string, name string) {
		name = strings.TrimSpace(name)
		if name != "" && !core.Contains(*set, name) {
			*set = append(*set, name)
			added++
		}
	}
	for _, t := range s.transactions {
		register(&s.categories, t.Category)
		register(&s.paymentMethods, t.PaymentMethod)
	}
	for _, b := range s.budgets {
		register(&s.categories, b.Category)
	}
	return added
}

// Clear resets the ledger to an empty state with the default sets.
func (s *Store) Clear() {
	s.mu.Lock()
	s.load(core.EmptyState())
	s.recompute()
	publish := s.publishLocked()

	s.logger.Info("Ledger cleared", log.FieldOperation, log.OpClear)
	publish()
}

// recompute refreshes every budget's Spent and drops cached statistics.
// Callers hold s.mu.
func (s *Store) recompute() {
	s.budgets = derive.RecomputeBudgets(s.transactions, s.budgets, s.today())
	s.recomputations++
	s.stats.Purge()
}

func (s *Store) today() core.Date {
	return core.DateOf(s.now())
}

func (s *Store) snapshotLocked() core.State {
	return core.State{
		Transactions:   s.transactions,
		Budgets:        s.budgets,
		Categories:     s.categories,
		PaymentMethods: s.paymentMethods,
	}.Clone()
}

// publishLocked takes a delivery ticket and releases s.mu. The returned func
// hands the state to the observers once every earlier ticket is delivered.
func (s *Store) publishLocked() func() {
	state := s.snapshotLocked()
	observers := append([]Observer(nil), s.observers...)
	s.issued++
	ticket := s.issued
	s.mu.Unlock()

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		for s.handed+1 != ticket {
			s.delivered.Wait()
		}
		for _, o := range observers {
			o(state.Clone())
		}
		s.handed = ticket
		s.delivered.Broadcast()
	}
}

func (s *Store) indexOfTransaction(id string) int {
	for i, t := range s.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfBudget(id string) int {
	for i, b := range s.budgets {
		if b.ID == id {
			return i
		}
	}
	return -1
}
