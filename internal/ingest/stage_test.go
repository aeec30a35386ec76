package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"

	"github.com/shopspring/decimal"
)

const importCSV = `description,amount,category,date
Flight,-300,Travel,2024-03-02
Gift,-40,Gifts,2024-03-03
Lunch,-12,Food,2024-03-04
`

func newLedger() *ledger.Store {
	return ledger.New(core.EmptyState(), ledger.WithClock(func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}))
}

func stage(t *testing.T, data string) *Staged {
	t.Helper()
	s, err := ParseCSV("import.csv", []byte(data), opts())
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	return s
}

func TestCommitRegistersCategoriesThenAddsBatch(t *testing.T) {
	store := newLedger()
	store.AddBudget(core.BudgetInput{Category: "Food", Amount: decimal.NewFromInt(100), Period: core.Monthly})
	before := store.Recomputations()

	s := stage(t, importCSV)
	if got := s.NewCategories(); !reflect.DeepEqual(got, []string{"Travel", "Gifts"}) {
		t.Fatalf("new categories: %v", got)
	}
	if len(store.Transactions()) != 0 {
		t.Fatalf("staging must not touch the ledger")
	}

	s.Deselect(1) // Gift
	res := s.Commit(store, "CSV Import")

	if len(res.Added) != 2 {
		t.Fatalf("expected 2 added, got %d", len(res.Added))
	}
	if !reflect.DeepEqual(res.Categories, []string{"Travel"}) {
		t.Fatalf("only categories used by selected rows are registered, got %v", res.Categories)
	}
	cats := store.Categories()
	if !core.Contains(cats, "Travel") || core.Contains(cats, "Gifts") {
		t.Fatalf("unexpected categories %v", cats)
	}
	if !core.Contains(store.PaymentMethods(), "CSV Import") {
		t.Fatalf("import payment method not registered")
	}
	for _, tx := range store.Transactions() {
		if tx.PaymentMethod != "CSV Import" {
			t.Fatalf("row not tagged with import method: %+v", tx)
		}
		if !core.Contains(cats, tx.Category) {
			t.Fatalf("committed transaction with unknown category %q", tx.Category)
		}
	}
	if got := store.Recomputations() - before; got != 1 {
		t.Fatalf("expected one recomputation for the batch, got %d", got)
	}
	if b := store.Budgets()[0]; !b.Spent.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("food budget spent: got %s want 12", b.Spent)
	}
}

func TestCommitEmptySelectionDoesNothing(t *testing.T) {
	store := newLedger()
	before := store.Recomputations()
	s := stage(t, importCSV)
	s.SelectAll(false)

	res := s.Commit(store, "CSV Import")
	if len(res.Added) != 0 || len(res.Categories) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.Recomputations() != before || core.Contains(store.PaymentMethods(), "CSV Import") {
		t.Fatalf("empty commit changed the ledger")
	}
}

func TestStagedReview(t *testing.T) {
	s := stage(t, importCSV)
	s.Remove(0)
	s.Remove(10)
	if s.Len() != 2 || s.Rows()[0].Input.Description != "Gift" {
		t.Fatalf("unexpected rows after remove %+v", s.Rows())
	}
	s.Deselect(0)
	if got := s.Selected(); len(got) != 1 || got[0].Description != "Lunch" {
		t.Fatalf("unexpected selection %+v", got)
	}
	s.Select(0)
	s.Select(-1)
	if len(s.Selected()) != 2 {
		t.Fatalf("select did not restore the row")
	}

	// Rows is a copy.
	rows := s.Rows()
	rows[0].Selected = false
	if len(s.Selected()) != 2 {
		t.Fatalf("Rows aliased staged state")
	}
}

func TestReadFilesAndMerge(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}
	a := write("a.csv", importCSV)
	b := write("b.csv", "description,amount,category,date\nTaxi,-20,Travel,2024-03-05\nBad,x,Food,2024-03-05\n")

	files, err := ReadFiles(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("ReadFiles: %v", err)
	}
	if len(files) != 2 || files[0].Name != a || files[1].Name != b {
		t.Fatalf("files out of order: %+v", files)
	}

	s, err := ParseFiles(files, opts())
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	if s.Len() != 4 || len(s.Skipped()) != 1 || s.Skipped()[0].Source != b {
		t.Fatalf("unexpected merge: rows=%d skipped=%+v", s.Len(), s.Skipped())
	}
	if got := s.NewCategories(); !reflect.DeepEqual(got, []string{"Travel", "Gifts"}) {
		t.Fatalf("merged categories should be listed once: %v", got)
	}

	_, err = ReadFiles(context.Background(), []string{a, filepath.Join(dir, "missing.csv")})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestParseFilesFailsWholeSet(t *testing.T) {
	files := []File{
		{Name: "good.csv", Data: []byte(importCSV)},
		{Name: "bad.csv", Data: []byte("description,category\nx,y\n")},
	}
	if s, err := ParseFiles(files, opts()); !errors.Is(err, ErrMissingColumns) || s != nil {
		t.Fatalf("expected missing columns for the set, got %v", err)
	}
}
