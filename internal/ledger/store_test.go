package ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	n := 0
	return New(core.EmptyState(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(date, amount, cat string) core.TransactionInput {
	d, _ := core.ParseDate(date)
	return core.TransactionInput{Date: d, Amount: dec(amount), Description: "x", Category: cat, PaymentMethod: "Cash", Type: core.Expense}
}

func income(date, amount, cat string) core.TransactionInput {
	in := expense(date, amount, cat)
	in.Type = core.Income
	return in
}

// expectedSpent recomputes from scratch, independent of the store.
func expectedSpent(txs []core.Transaction, category string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == core.Expense && t.Category == category && t.Date.MonthKey() == "2024-03" {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

func assertBudgetsFresh(t *testing.T, s *Store) {
	t.Helper()
	txs := s.Transactions()
	for _, b := range s.Budgets() {
		if want := expectedSpent(txs, b.Category); !b.Spent.Equal(want) {
			t.Fatalf("budget %s spent=%s want %s", b.Category, b.Spent, want)
		}
	}
}

func TestBudgetsStayFreshAcrossMutations(t *testing.T) {
	s := newTestStore(t)
	s.AddBudget(core.BudgetInput{Category: "Food", Amount: dec("200"), Period: core.Monthly})
	s.AddBudget(core.BudgetInput{Category: "Bills", Amount: dec("100"), Period: core.Monthly})

	a := s.AddTransaction(expense("2024-03-01", "20", "Food"))
	assertBudgetsFresh(t, s)
	b := s.AddTransaction(expense("2024-03-02", "30", "Bills"))
	assertBudgetsFresh(t, s)
	s.AddTransaction(expense("2024-02-02", "30", "Food"))
	assertBudgetsFresh(t, s)

	a.Amount = dec("45")
	if !s.UpdateTransaction(a) {
		t.Fatalf("expected update to match")
	}
	assertBudgetsFresh(t, s)

	b.Category = "Food"
	s.UpdateTransaction(b)
	assertBudgetsFresh(t, s)

	s.DeleteTransaction(a.ID)
	assertBudgetsFresh(t, s)

	food, _ := s.Budget("id-1")
	if !food.Spent.Equal(dec("30")) {
		t.Fatalf("expected food spent 30, got %s", food.Spent)
	}
}

func TestBatchAddRecomputesOnce(t *testing.T) {
	batch := newTestStore(t)
	seq := newTestStore(t)
	for _, s := range []*Store{batch, seq} {
		s.AddBudget(core.BudgetInput{Category: "Food", Amount: dec("100"), Period: core.Monthly})
	}
	ins := []core.TransactionInput{
		expense("2024-03-01", "1", "Food"),
		expense("2024-03-02", "2", "Food"),
		income("2024-03-03", "3", "Salary"),
	}

	before := batch.Recomputations()
	added := batch.AddTransactionsBatch(ins)
	if got := batch.Recomputations() - before; got != 1 {
		t.Fatalf("expected one recomputation, got %d", got)
	}
	if len(added) != 3 {
		t.Fatalf("expected 3 added, got %d", len(added))
	}

	before = seq.Recomputations()
	for _, in := range ins {
		seq.AddTransaction(in)
	}
	if got := seq.Recomputations() - before; got != 3 {
		t.Fatalf("expected 3 recomputations, got %d", got)
	}

	bt, st := batch.Transactions(), seq.Transactions()
	if len(bt) != len(st) {
		t.Fatalf("different lengths %d vs %d", len(bt), len(st))
	}
	for i := range bt {
		if bt[i].ID != st[i].ID || !bt[i].Amount.Equal(st[i].Amount) || bt[i].Category != st[i].Category {
			t.Fatalf("row %d differs: %+v vs %+v", i, bt[i], st[i])
		}
	}
	if !batch.Budgets()[0].Spent.Equal(seq.Budgets()[0].Spent) {
		t.Fatalf("budgets differ")
	}
}

func TestDeleteBatchRecomputesOnce(t *testing.T) {
	s := newTestStore(t)
	added := s.AddTransactionsBatch([]core.TransactionInput{
		expense("2024-03-01", "1", "Food"),
		expense("2024-03-02", "2", "Food"),
		expense("2024-03-03", "3", "Food"),
	})
	before := s.Recomputations()
	if n := s.DeleteTransactionsBatch([]string{added[0].ID, added[2].ID, "missing"}); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if s.Recomputations()-before != 1 {
		t.Fatalf("expected one recomputation")
	}
	if left := s.Transactions(); len(left) != 1 || left[0].ID != added[1].ID {
		t.Fatalf("unexpected remaining %+v", left)
	}
}

func TestAbsentIDsAreNoOps(t *testing.T) {
	s := newTestStore(t)
	calls := 0
	s.OnChange(func(core.State) { calls++ })
	before := s.Recomputations()

	if s.UpdateTransaction(core.Transaction{ID: "nope"}) {
		t.Fatalf("update should not match")
	}
	if s.DeleteTransaction("nope") || s.DeleteBudget("nope") || s.UpdateBudget(core.Budget{ID: "nope"}) {
		t.Fatalf("delete/update should not match")
	}
	if calls != 0 || s.Recomputations() != before {
		t.Fatalf("no-ops must not notify or recompute (calls=%d)", calls)
	}
}

func TestAddBudgetReflectsExistingSpending(t *testing.T) {
	s := newTestStore(t)
	s.AddTransaction(expense("2024-03-01", "12.50", "Food"))
	s.AddTransaction(expense("2024-03-09", "7.50", "Food"))

	b := s.AddBudget(core.BudgetInput{Category: "Food", Amount: dec("100"), Period: core.Monthly})
	if !b.Spent.Equal(dec("20")) {
		t.Fatalf("expected spent 20 on creation, got %s", b.Spent)
	}

	// Deleting the budget keeps the history; re-adding recomputes from it.
	s.DeleteBudget(b.ID)
	if len(s.Transactions()) != 2 {
		t.Fatalf("transactions must survive budget deletion")
	}
	again := s.AddBudget(core.BudgetInput{Category: "Food", Amount: dec("50"), Period: core.Monthly})
	if again.ID == b.ID || !again.Spent.Equal(dec("20")) {
		t.Fatalf("unexpected re-added budget %+v", again)
	}
}

func TestUpdateBudgetIgnoresHandEditedSpent(t *testing.T) {
	s := newTestStore(t)
	s.AddTransaction(expense("2024-03-01", "10", "Food"))
	b := s.AddBudget(core.BudgetInput{Category: "Food", Amount: dec("100"), Period: core.Monthly})

	b.Spent = dec("999")
	b.Amount = dec("150")
	s.UpdateBudget(b)
	got, _ := s.Budget(b.ID)
	if !got.Spent.Equal(dec("10")) || !got.Amount.Equal(dec("150")) {
		t.Fatalf("unexpected budget %+v", got)
	}
}

func TestYearlyBudget(t *testing.T) {
	s := newTestStore(t)
	s.AddTransaction(expense("2024-01-01", "10", "Travel"))
	s.AddTransaction(expense("2024-03-01", "15", "Travel"))
	b := s.AddBudget(core.BudgetInput{Category: "Travel", Amount: dec("1000"), Period: core.Yearly})
	if !b.Spent.Equal(dec("25")) {
		t.Fatalf("expected yearly spent 25, got %s", b.Spent)
	}
}

func TestAddCategoryIdempotent(t *testing.T) {
	s := newTestStore(t)
	calls := 0
	s.OnChange(func(core.State) { calls++ })

	if !s.AddCategory("Pets") {
		t.Fatalf("expected new category")
	}
	if s.AddCategory("Pets") || s.AddCategory("Food") || s.AddCategory("  ") {
		t.Fatalf("expected no-op")
	}
	cats := s.Categories()
	if cats[len(cats)-1] != "Pets" || calls != 1 {
		t.Fatalf("unexpected categories %v calls=%d", cats, calls)
	}
	if !s.AddPaymentMethod("CSV Import") || s.AddPaymentMethod("CSV Import") {
		t.Fatalf("payment method registration not idempotent")
	}
}

func TestObserversReceiveDerivedState(t *testing.T) {
	s := newTestStore(t)
	s.AddBudget(core.BudgetInput{Category: "Food", Amount: dec("100"), Period: core.Monthly})

	var last core.State
	s.OnChange(func(st core.State) { last = st })
	s.AddTransaction(expense("2024-03-01", "40", "Food"))

	if len(last.Transactions) != 1 || !last.Budgets[0].Spent.Equal(dec("40")) {
		t.Fatalf("observer got stale state %+v", last)
	}
	last.Transactions[0].Description = "mutated"
	if s.Transactions()[0].Description == "mutated" {
		t.Fatalf("observer state aliases store")
	}
}

func TestQueries(t *testing.T) {
	s := newTestStore(t)
	s.AddTransactionsBatch([]core.TransactionInput{
		expense("2024-02-28", "1", "Food"),
		expense("2024-03-01", "2", "Bills"),
		expense("2024-03-31", "3", "Food"),
		expense("2024-04-01", "4", "Food"),
	})

	got := s.TransactionsByDateRange(core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if len(got) != 2 {
		t.Fatalf("expected inclusive range of 2, got %d", len(got))
	}
	if food := s.TransactionsByCategory("Food"); len(food) != 3 {
		t.Fatalf("expected 3 food, got %d", len(food))
	}
	all := s.Transactions()
	if all[0].Date.String() != "2024-04-01" || all[3].Date.String() != "2024-02-28" {
		t.Fatalf("expected newest first, got %v..%v", all[0].Date, all[3].Date)
	}
}

func TestMonthlyStatsCachedUntilMutation(t *testing.T) {
	s := newTestStore(t)
	if st := s.MonthlyStats(); !st.TotalIncome.IsZero() || !st.TotalExpenses.IsZero() || !st.Savings.IsZero() || st.BudgetUsed != 0 {
		t.Fatalf("expected zero stats, got %+v", st)
	}

	s.AddBudget(core.BudgetInput{Category: "Food", Amount: dec("200"), Period: core.Monthly})
	s.AddTransaction(expense("2024-03-02", "50", "Food"))
	s.AddTransaction(income("2024-03-01", "1000", "Salary"))

	first := s.MonthlyStats()
	if first.BudgetUsed != 25 || !first.Savings.Equal(dec("950")) {
		t.Fatalf("unexpected stats %+v", first)
	}
	hitsBefore, _ := s.stats.Stats()
	s.MonthlyStats()
	if hits, _ := s.stats.Stats(); hits != hitsBefore+1 {
		t.Fatalf("expected cache hit")
	}

	s.AddTransaction(expense("2024-03-03", "50", "Food"))
	if st := s.MonthlyStats(); st.BudgetUsed != 50 {
		t.Fatalf("expected fresh stats after mutation, got %+v", st)
	}
}

func TestReplaceAndClear(t *testing.T) {
	s := newTestStore(t)
	s.AddTransaction(expense("2024-03-01", "5", "Food"))
	s.AddCategory("Pets")

	txs := []core.Transaction{{ID: "t1", Date: core.NewDate(2024, 3, 2), Amount: dec("-9"), Description: "imported", Category: "Food", PaymentMethod: "Cash"}}
	budgets := []core.Budget{{ID: "b1", Category: "Food", Amount: dec("10"), Period: core.Monthly}}
	s.Replace(core.StatePatch{Transactions: &txs, Budgets: &budgets})

	st := s.State()
	if len(st.Transactions) != 1 || st.Transactions[0].ID != "t1" {
		t.Fatalf("transactions not replaced: %+v", st.Transactions)
	}
	if st.Transactions[0].Type != core.Expense || !st.Transactions[0].Amount.Equal(dec("9")) {
		t.Fatalf("imported record not normalized: %+v", st.Transactions[0])
	}
	if !st.Budgets[0].Spent.Equal(dec("9")) {
		t.Fatalf("budgets not recomputed after replace: %+v", st.Budgets[0])
	}
	if !core.Contains(st.Categories, "Pets") {
		t.Fatalf("absent categories key must leave categories untouched")
	}

	s.Clear()
	st = s.State()
	if len(st.Transactions) != 0 || len(st.Budgets) != 0 || core.Contains(st.Categories, "Pets") {
		t.Fatalf("clear left data behind: %+v", st)
	}
}

func TestNewRecomputesStaleSpent(t *testing.T) {
	state := core.EmptyState()
	state.Transactions = []core.Transaction{{ID: "t", Date: core.NewDate(2024, 3, 1), Amount: dec("5"), Category: "Food", Type: core.Expense}}
	state.Budgets = []core.Budget{{ID: "b", Category: "Food", Amount: dec("10"), Spent: dec("77"), Period: core.Monthly}}

	s := New(state, WithClock(func() time.Time { return fixedNow }))
	if got := s.Budgets()[0].Spent; !got.Equal(dec("5")) {
		t.Fatalf("expected spent 5, got %s", got)
	}
}

func TestReplaceRegistersReferencedSets(t *testing.T) {
	s := newTestStore(t)
	cats := []string{"Food"}
	txs := []core.Transaction{
		{ID: "t1", Date: core.NewDate(2024, 3, 2), Amount: dec("9"), Description: "ferry", Category: "Travel", PaymentMethod: "Voucher", Type: core.Expense},
		{ID: "t2", Date: core.NewDate(2024, 3, 3), Amount: dec("4"), Description: "lunch", Category: "Food", PaymentMethod: "Cash", Type: core.Expense},
	}
	budgets := []core.Budget{{ID: "b1", Category: "Pets", Amount: dec("10"), Period: core.Monthly}}
	s.Replace(core.StatePatch{Transactions: &txs, Budgets: &budgets, Categories: &cats})

	st := s.State()
	for _, want := range []string{"Food", "Travel", "Pets"} {
		if !core.Contains(st.Categories, want) {
			t.Errorf("category %q not registered: %v", want, st.Categories)
		}
	}
	if !core.Contains(st.PaymentMethods, "Voucher") {
		t.Errorf("payment method not registered: %v", st.PaymentMethods)
	}
	if len(st.Categories) != 3 {
		t.Errorf("categories = %v, want exactly Food, Travel, Pets", st.Categories)
	}
}

func TestObserversSeeMutationsInOrder(t *testing.T) {
	s := newTestStore(t)

	var mu sync.Mutex
	var seen []int
	first := true
	entered := make(chan struct{})
	release := make(chan struct{})
	s.OnChange(func(st core.State) {
		mu.Lock()
		block := first
		first = false
		mu.Unlock()
		if block {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, len(st.Transactions))
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.AddTransaction(expense("2024-03-01", "1", "Food"))
	}()
	<-entered

	go func() {
		defer wg.Done()
		s.AddTransaction(expense("2024-03-02", "2", "Food"))
	}()
	deadline := time.Now().Add(5 * time.Second)
	for len(s.Transactions()) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("second mutation never applied")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("observer saw transaction counts %v, want [1 2]", seen)
	}
}
