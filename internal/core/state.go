package core

import "strings"

// State is the full ledger contents: the unit that is persisted, exported and
// handed to change observers.
type State struct {
	Transactions   []Transaction `json:"transactions"`
	Budgets        []Budget      `json:"budgets"`
	Categories     []string      `json:"categories"`
	PaymentMethods []string      `json:"paymentMethods"`
}

// StatePatch replaces the collections that are non-nil and leaves the rest alone.
type StatePatch struct {
	Transactions   *[]Transaction
	Budgets        *[]Budget
	Categories     *[]string
	PaymentMethods *[]string
}

// DefaultCategories seeds a fresh ledger.
func DefaultCategories() []string {
	return []string{
		"Food", "Transportation", "Entertainment", "Shopping", "Bills",
		"Healthcare", "Education", "Salary", "Freelance", "Investment", DefaultCategory,
	}
}

func DefaultPaymentMethods() []string {
	return []string{"Cash", "Credit Card", "Debit Card", "Bank Transfer", "Digital Wallet"}
}

// EmptyState has no records and the default category and payment method sets.
func EmptyState() State {
	return State{
		Transactions:   []Transaction{},
		Budgets:        []Budget{},
		Categories:     DefaultCategories(),
		PaymentMethods: DefaultPaymentMethods(),
	}
}

// Clone deep-copies the slices so callers cannot alias store internals.
func (s State) Clone() State {
	return State{
		Transactions:   append([]Transaction{}, s.Transactions...),
		Budgets:        append([]Budget{}, s.Budgets...),
		Categories:     append([]string{}, s.Categories...),
		PaymentMethods: append([]string{}, s.PaymentMethods...),
	}
}

// Contains reports exact membership.
func Contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Dedupe trims, drops blanks and duplicates, and keeps first-seen order.
func Dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
