package ledger

import (
	"sort"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/derive"
)

// Transactions returns every record, newest date first. Records sharing a
// date keep insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	out := append([]core.Transaction{}, s.transactions...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Transaction looks a record up by id.
func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfTransaction(id); i >= 0 {
		return s.transactions[i], true
	}
	return core.Transaction{}, false
}

// Budgets returns every budget with its current Spent.
func (s *Store) Budgets() []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget{}, s.budgets...)
}

func (s *Store) Budget(id string) (core.Budget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfBudget(id); i >= 0 {
		return s.budgets[i], true
	}
	return core.Budget{}, false
}

// Categories returns the known categories in insertion order.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.categories...)
}

// PaymentMethods returns the known payment methods in insertion order.
func (s *Store) PaymentMethods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.paymentMethods...)
}

// TransactionsByDateRange returns records dated within [start, end], inclusive.
func (s *Store) TransactionsByDateRange(start, end core.Date) []core.Transaction {
	return s.filter(func(t core.Transaction) bool {
		return !t.Date.Before(start) && !t.Date.After(end)
	})
}

// TransactionsByCategory matches the category name exactly.
func (s *Store) TransactionsByCategory(category string) []core.Transaction {
	category = strings.TrimSpace(category)
	return s.filter(func(t core.Transaction) bool { return t.Category == category })
}

func (s *Store) filter(keep func(core.Transaction) bool) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Transaction{}
	for _, t := range s.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// MonthlyStats summarises the current calendar month.
func (s *Store) MonthlyStats() core.MonthlyStats {
	return s.MonthlyStatsAt(s.today())
}

// MonthlyStatsAt summarises the month containing asOf. Results are cached
// until the next mutation.
func (s *Store) MonthlyStatsAt(asOf core.Date) core.MonthlyStats {
	key := asOf.MonthKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.stats.Get(key); ok {
		return stats
	}
	stats := derive.MonthlyStats(s.transactions, s.budgets, asOf)
	s.stats.Set(key, stats)
	return stats
}

// Today is the store clock's calendar date.
func (s *Store) Today() core.Date {
	return s.today()
}
