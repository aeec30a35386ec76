package ingest

import (
	"fintrack/internal/core"
)

// Row is one staged record awaiting review.
type Row struct {
	Source string
	Line   int
	Input  core.TransactionInput
	// Selected rows are the ones Commit will add.
	Selected bool
	// DateDefaulted marks rows whose date could not be read.
	DateDefaulted bool
}

// SkippedRow records a data row that was dropped during parsing.
type SkippedRow struct {
	Source string
	Line   int
	Reason string
}

// Staged is the review area between parsing and commit. It is not safe for
// concurrent use.
type Staged struct {
	source        string
	known         []string
	rows          []Row
	newCategories []string
	skipped       []SkippedRow
}

func newStaged(source string, known []string) *Staged {
	return &Staged{source: source, known: known}
}

func (s *Staged) add(line int, in core.TransactionInput, defaulted bool) {
	s.rows = append(s.rows, Row{
		Source:        s.source,
		Line:          line,
		Input:         in,
		Selected:      true,
		DateDefaulted: defaulted,
	})
	if !core.Contains(s.known, in.Category) && !core.Contains(s.newCategories, in.Category) {
		s.newCategories = append(s.newCategories, in.Category)
	}
}

func (s *Staged) skip(line int, reason string) {
	s.skipped = append(s.skipped, SkippedRow{Source: s.source, Line: line, Reason: reason})
}

// Rows returns a copy of every staged row in file order.
func (s *Staged) Rows() []Row {
	return append([]Row{}, s.rows...)
}

// Len is the number of staged rows, selected or not.
func (s *Staged) Len() int {
	return len(s.rows)
}

// Skipped returns the rows dropped during parsing.
func (s *Staged) Skipped() []SkippedRow {
	return append([]SkippedRow{}, s.skipped...)
}

// NewCategories lists the categories first seen in this batch, in order of
// first appearance.
func (s *Staged) NewCategories() []string {
	return append([]string{}, s.newCategories...)
}

// Select marks row i for commit. Out-of-range indexes are ignored.
func (s *Staged) Select(i int) {
	if i >= 0 && i < len(s.rows) {
		s.rows[i].Selected = true
	}
}

// Deselect keeps row i staged but excludes it from commit.
func (s *Staged) Deselect(i int) {
	if i >= 0 && i < len(s.rows) {
		s.rows[i].Selected = false
	}
}

// SelectAll sets the selection flag on every row.
func (s *Staged) SelectAll(selected bool) {
	for i := range s.rows {
		s.rows[i].Selected = selected
	}
}

// Remove drops row i from the batch entirely.
func (s *Staged) Remove(i int) {
	if i >= 0 && i < len(s.rows) {
		s.rows = append(s.rows[:i:i], s.rows[i+1:]...)
	}
}

// Selected returns the inputs that Commit would add.
func (s *Staged) Selected() []core.TransactionInput {
	var out []core.TransactionInput
	for _, r := range s.rows {
		if r.Selected {
			out = append(out, r.Input)
		}
	}
	return out
}

// Committer is the part of the ledger a commit writes to.
type Committer interface {
	AddCategory(name string) bool
	AddPaymentMethod(name string) bool
	AddTransactionsBatch(ins []core.TransactionInput) []core.Transaction
}

// CommitResult reports what a commit changed.
type CommitResult struct {
	Added      []core.Transaction
	Categories []string
}

// Commit registers the new categories used by selected rows and the import
// payment method, then adds every selected row in a single batch. Nothing
// happens when no row is selected.
func (s *Staged) Commit(c Committer, paymentMethod string) CommitResult {
	ins := s.Selected()
	if len(ins) == 0 {
		return CommitResult{}
	}

	var res CommitResult
	for _, name := range s.newCategories {
		if !usesCategory(ins, name) {
			continue
		}
		if c.AddCategory(name) {
			res.Categories = append(res.Categories, name)
		}
	}
	if paymentMethod != "" {
		c.AddPaymentMethod(paymentMethod)
	}
	for i := range ins {
		ins[i].PaymentMethod = paymentMethod
	}
	res.Added = c.AddTransactionsBatch(ins)
	return res
}

func usesCategory(ins []core.TransactionInput, name string) bool {
	for _, in := range ins {
		if in.Category == name {
			return true
		}
	}
	return false
}

// MergeStaged combines several parsed files into one review batch. Categories
// discovered by more than one file are listed once.
func MergeStaged(batches ...*Staged) *Staged {
	out := &Staged{}
	for _, b := range batches {
		if b == nil {
			continue
		}
		out.rows = append(out.rows, b.rows...)
		out.skipped = append(out.skipped, b.skipped...)
		out.newCategories = append(out.newCategories, b.newCategories...)
		out.known = append(out.known, b.known...)
	}
	out.newCategories = core.Dedupe(out.newCategories)
	out.known = core.Dedupe(out.known)
	return out
}
