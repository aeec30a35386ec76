package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// DefaultCategory is used when an imported row leaves the category blank.
const DefaultCategory = "Other"

type (
	TransactionType string

	Period string

	// Transaction is one ledger entry. Amount is the magnitude; Type carries the sign.
	Transaction struct {
		ID            string          `json:"id"`
		Date          Date            `json:"date"`
		Amount        decimal.Decimal `json:"amount"`
		Description   string          `json:"description"`
		Category      string          `json:"category"`
		PaymentMethod string          `json:"paymentMethod"`
		Type          TransactionType `json:"type"`
	}

	// TransactionInput is a transaction without an id.
	TransactionInput struct {
		Date          Date
		Amount        decimal.Decimal
		Description   string
		Category      string
		PaymentMethod string
		Type          TransactionType
	}

	// Budget caps spending for one category. Spent is derived, never user-set.
	Budget struct {
		ID       string          `json:"id"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Spent    decimal.Decimal `json:"spent"`
		Period   Period          `json:"period"`
	}

	BudgetInput struct {
		Category string
		Amount   decimal.Decimal
		Period   Period
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownPayment      = errors.New("unknown payment method")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidPeriod       = errors.New("invalid budget period")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrNonPositiveBudget   = errors.New("budget amount must be positive")
	ErrMissingPaymentInput = errors.New("empty payment method")
)

func init() {
	// Amounts travel as JSON numbers in snapshots and exports.
	decimal.MarshalJSONWithoutQuotes = true
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p Period) Valid() bool {
	return p == Monthly || p == Yearly
}

// Signed returns the amount with the sign implied by the type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Abs().Neg()
	}
	return t.Amount.Abs()
}

// Input strips the id, for editing flows that rebuild a record.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Date:          t.Date,
		Amount:        t.Amount,
		Description:   t.Description,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Type:          t.Type,
	}
}

// Normalize enforces the sign convention: a negative amount without a type
// becomes an expense, and the stored amount is always the magnitude.
func (in TransactionInput) Normalize() TransactionInput {
	if !in.Type.Valid() {
		if in.Amount.IsNegative() {
			in.Type = Expense
		} else {
			in.Type = Income
		}
	}
	in.Amount = in.Amount.Abs()
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	return in
}

// Normalize applies the same convention to a stored record.
func (t Transaction) Normalize() Transaction {
	in := t.Input().Normalize()
	return Transaction{
		ID:            t.ID,
		Date:          in.Date,
		Amount:        in.Amount,
		Description:   in.Description,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		Type:          in.Type,
	}
}

// Validate checks a form submission against the known category and payment
// method sets. Every failing field is reported.
func (in TransactionInput) Validate(categories, paymentMethods []string) error {
	var errs []error
	if err := in.Date.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("date: %w", err))
	}
	if in.Amount.IsZero() {
		errs = append(errs, fmt.Errorf("amount: %w", ErrInvalidAmount))
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		errs = append(errs, fmt.Errorf("description: %w", ErrEmptyDescription))
	} else if len(desc) > 200 {
		errs = append(errs, fmt.Errorf("description: %w", ErrDescriptionTooLong))
	}
	switch cat := strings.TrimSpace(in.Category); {
	case cat == "":
		errs = append(errs, fmt.Errorf("category: %w", ErrEmptyCategory))
	case !Contains(categories, cat):
		errs = append(errs, fmt.Errorf("category %q: %w", cat, ErrUnknownCategory))
	}
	switch pm := strings.TrimSpace(in.PaymentMethod); {
	case pm == "":
		errs = append(errs, fmt.Errorf("payment method: %w", ErrMissingPaymentInput))
	case !Contains(paymentMethods, pm):
		errs = append(errs, fmt.Errorf("payment method %q: %w", pm, ErrUnknownPayment))
	}
	if in.Type != "" && !in.Type.Valid() {
		errs = append(errs, fmt.Errorf("type %q: %w", in.Type, ErrInvalidType))
	}
	return errors.Join(errs...)
}

func (in BudgetInput) Validate(categories []string) error {
	var errs []error
	switch cat := strings.TrimSpace(in.Category); {
	case cat == "":
		errs = append(errs, fmt.Errorf("category: %w", ErrEmptyCategory))
	case !Contains(categories, cat):
		errs = append(errs, fmt.Errorf("category %q: %w", cat, ErrUnknownCategory))
	}
	if !in.Amount.IsPositive() {
		errs = append(errs, fmt.Errorf("amount: %w", ErrNonPositiveBudget))
	}
	if !in.Period.Valid() {
		errs = append(errs, fmt.Errorf("period %q: %w", in.Period, ErrInvalidPeriod))
	}
	return errors.Join(errs...)
}

// ParseTransactionType accepts the enum names case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}
