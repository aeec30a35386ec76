// Package persist maps ledger state to and from its durable JSON documents.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Validation failures reported by DecodeDocument.
var (
	ErrMalformed     = errors.New("malformed document")
	ErrInvalidRecord = errors.New("invalid record")
)

// Snapshot is the document held in the storage slot.
type Snapshot struct {
	Transactions   []core.Transaction `json:"transactions"`
	Budgets        []core.Budget      `json:"budgets"`
	Categories     []string           `json:"categories"`
	PaymentMethods []string           `json:"paymentMethods"`
	LastSaved      time.Time          `json:"lastSaved"`
}

// ExportDocument is the user-facing backup file.
type ExportDocument struct {
	Transactions   []core.Transaction `json:"transactions"`
	Budgets        []core.Budget      `json:"budgets"`
	Categories     []string           `json:"categories"`
	PaymentMethods []string           `json:"paymentMethods"`
	ExportDate     time.Time          `json:"exportDate"`
}

// NewSnapshot stamps state with the save time.
func NewSnapshot(state core.State, now time.Time) Snapshot {
	return Snapshot{
		Transactions:   nonNil(state.Transactions),
		Budgets:        nonNil(state.Budgets),
		Categories:     nonNil(state.Categories),
		PaymentMethods: nonNil(state.PaymentMethods),
		LastSaved:      now.UTC(),
	}
}

// Export renders state as an indented backup document.
func Export(state core.State, now time.Time) ([]byte, error) {
	doc := ExportDocument{
		Transactions:   nonNil(state.Transactions),
		Budgets:        nonNil(state.Budgets),
		Categories:     nonNil(state.Categories),
		PaymentMethods: nonNil(state.PaymentMethods),
		ExportDate:     now.UTC(),
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return out, nil
}

// ExportFileName is the suggested name for a backup taken at now.
func ExportFileName(now time.Time) string {
	return "finance-data-" + now.Format(core.DateLayout) + ".json"
}

// Raw record shapes. Pointers distinguish absent fields from zero values.
type (
	document struct {
		Transactions   *[]rawTransaction `json:"transactions"`
		Budgets        *[]rawBudget      `json:"budgets"`
		Categories     *[]string         `json:"categories"`
		PaymentMethods *[]string         `json:"paymentMethods"`
	}

	rawTransaction struct {
		ID            *string          `json:"id"`
		Date          *string          `json:"date"`
		Amount        *decimal.Decimal `json:"amount"`
		Description   *string          `json:"description"`
		Category      string           `json:"category"`
		PaymentMethod string           `json:"paymentMethod"`
		Type          *string          `json:"type"`
	}

	rawBudget struct {
		ID       *string          `json:"id"`
		Category *string          `json:"category"`
		Amount   *decimal.Decimal `json:"amount"`
		Spent    *decimal.Decimal `json:"spent"`
		Period   *string          `json:"period"`
	}
)

// DecodeDocument parses a snapshot or export document. Only the collections
// present in the input are set on the patch. Any invalid record rejects the
// whole document.
func DecodeDocument(data []byte) (core.StatePatch, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.StatePatch{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var patch core.StatePatch
	if doc.Transactions != nil {
		txs := make([]core.Transaction, 0, len(*doc.Transactions))
		for i, raw := range *doc.Transactions {
			t, err := raw.toTransaction()
			if err != nil {
				return core.StatePatch{}, fmt.Errorf("%w: transactions[%d]: %v", ErrInvalidRecord, i, err)
			}
			txs = append(txs, t)
		}
		patch.Transactions = &txs
	}
	if doc.Budgets != nil {
		budgets := make([]core.Budget, 0, len(*doc.Budgets))
		for i, raw := range *doc.Budgets {
			b, err := raw.toBudget()
			if err != nil {
				return core.StatePatch{}, fmt.Errorf("%w: budgets[%d]: %v", ErrInvalidRecord, i, err)
			}
			budgets = append(budgets, b)
		}
		patch.Budgets = &budgets
	}
	if doc.Categories != nil {
		cats := core.Dedupe(*doc.Categories)
		patch.Categories = &cats
	}
	if doc.PaymentMethods != nil {
		methods := core.Dedupe(*doc.PaymentMethods)
		patch.PaymentMethods = &methods
	}
	return patch, nil
}

func (r rawTransaction) toTransaction() (core.Transaction, error) {
	if r.ID == nil || strings.TrimSpace(*r.ID) == "" {
		return core.Transaction{}, errors.New("missing id")
	}
	if r.Date == nil {
		return core.Transaction{}, errors.New("missing date")
	}
	date, err := parseDocumentDate(*r.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	if r.Description == nil || strings.TrimSpace(*r.Description) == "" {
		return core.Transaction{}, errors.New("missing description")
	}
	if r.Type == nil {
		return core.Transaction{}, errors.New("missing type")
	}
	typ, err := core.ParseTransactionType(*r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	if r.Amount == nil {
		return core.Transaction{}, errors.New("missing amount")
	}
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = core.DefaultCategory
	}
	return core.Transaction{
		ID:            strings.TrimSpace(*r.ID),
		Date:          date,
		Amount:        *r.Amount,
		Description:   strings.TrimSpace(*r.Description),
		Category:      category,
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		Type:          typ,
	}.Normalize(), nil
}

func (r rawBudget) toBudget() (core.Budget, error) {
	if r.ID == nil || strings.TrimSpace(*r.ID) == "" {
		return core.Budget{}, errors.New("missing id")
	}
	if r.Category == nil || strings.TrimSpace(*r.Category) == "" {
		return core.Budget{}, errors.New("missing category")
	}
	if r.Amount == nil || !r.Amount.IsPositive() {
		return core.Budget{}, errors.New("amount must be positive")
	}
	if r.Period == nil {
		return core.Budget{}, errors.New("missing period")
	}
	period, err := core.ParsePeriod(*r.Period)
	if err != nil {
		return core.Budget{}, err
	}
	spent := decimal.Zero
	if r.Spent != nil {
		spent = *r.Spent
	}
	return core.Budget{
		ID:       strings.TrimSpace(*r.ID),
		Category: strings.TrimSpace(*r.Category),
		Amount:   *r.Amount,
		Spent:    spent,
		Period:   period,
	}, nil
}

// parseDocumentDate accepts a calendar date or a full timestamp.
func parseDocumentDate(s string) (core.Date, error) {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return core.ParseDate(s)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
