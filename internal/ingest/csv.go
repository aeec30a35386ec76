// Package ingest turns untrusted CSV or JSON text into a staged batch of
// transactions that can be reviewed and then committed to the ledger.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"

	godate "github.com/joyt/godate"
	"github.com/shopspring/decimal"
)

// Required logical columns, in the order missing ones are reported.
const (
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
)

var requiredFields = []string{FieldDescription, FieldAmount, FieldCategory, FieldDate}

// minRowFields is the shortest row considered at all.
const minRowFields = 4

// Skip reasons recorded on SkippedRow.
const (
	ReasonTooFewFields     = "too few fields"
	ReasonEmptyDescription = "empty description"
	ReasonEmptyDate        = "empty date"
	ReasonInvalidAmount    = "invalid amount"
)

// Options configures a CSV parse.
type Options struct {
	// KnownCategories decides which row categories count as new.
	KnownCategories []string
	// AsOf replaces dates that cannot be parsed.
	AsOf   core.Date
	Logger *log.Logger
}

type columns map[string]int

// ParseCSV validates and stages the rows of a CSV file. It never touches the
// ledger. A structural problem fails the whole file; bad rows are skipped
// and recorded.
func ParseCSV(name string, data []byte, opts Options) (*Staged, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentIngest)

	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidFileType)
	}

	lines := splitLines(string(data))
	if len(lines) < 2 {
		return nil, fmt.Errorf("%s: %w", name, ErrFileTooShort)
	}

	cols, err := resolveHeader(lines[0].text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	staged := newStaged(name, opts.KnownCategories)
	for _, l := range lines[1:] {
		in, dated, reason := parseRow(l.text, cols, opts.AsOf)
		if reason != "" {
			staged.skip(l.number, reason)
			continue
		}
		staged.add(l.number, in, !dated)
	}

	logger.Info("CSV staged",
		log.FieldFile, name,
		log.FieldOperation, log.OpParse,
		log.FieldCount, len(staged.rows),
		log.FieldSkipped, len(staged.skipped),
		"new_categories", len(staged.newCategories))
	return staged, nil
}

type line struct {
	number int
	text   string
}

// splitLines drops blank lines and keeps 1-based numbers for reporting.
func splitLines(text string) []line {
	var out []line
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		out = append(out, line{number: i + 1, text: raw})
	}
	return out
}

// resolveHeader finds, for each required field, the first header that
// contains the field name case-insensitively.
func resolveHeader(header string) (columns, error) {
	headers := strings.Split(header, ",")
	for i := range headers {
		headers[i] = strings.ToLower(strings.Trim(strings.TrimSpace(headers[i]), `"`))
	}
	cols := columns{}
	var missing []string
	for _, field := range requiredFields {
		idx := -1
		for i, h := range headers {
			if strings.Contains(h, field) {
				idx = i
				break
			}
		}
		if idx < 0 {
			missing = append(missing, field)
			continue
		}
		cols[field] = idx
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Fields: missing}
	}
	return cols, nil
}

// parseRow returns the staged input, whether the date parsed, and a skip
// reason when the row is unusable.
func parseRow(text string, cols columns, asOf core.Date) (core.TransactionInput, bool, string) {
	values := splitCSVLine(text)
	if len(values) < minRowFields {
		return core.TransactionInput{}, false, ReasonTooFewFields
	}

	description := safeGet(values, cols[FieldDescription])
	if description == "" {
		return core.TransactionInput{}, false, ReasonEmptyDescription
	}
	rawDate := safeGet(values, cols[FieldDate])
	if rawDate == "" {
		return core.TransactionInput{}, false, ReasonEmptyDate
	}
	amount, err := decimal.NewFromString(core.CleanAmount(safeGet(values, cols[FieldAmount])))
	if err != nil {
		return core.TransactionInput{}, false, ReasonInvalidAmount
	}

	typ := core.Income
	if amount.IsNegative() {
		typ = core.Expense
	}
	category := safeGet(values, cols[FieldCategory])
	if category == "" {
		category = core.DefaultCategory
	}
	date, dated := normalizeDate(rawDate, asOf)

	return core.TransactionInput{
		Date:        date,
		Amount:      amount.Abs(),
		Description: description,
		Category:    category,
		Type:        typ,
	}, dated, ""
}

// splitCSVLine splits on commas outside double quotes. Quote characters
// toggle quoting and are not kept.
func splitCSVLine(text string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// normalizeDate accepts ISO dates directly and detects other common layouts;
// anything else falls back to asOf.
func normalizeDate(raw string, asOf core.Date) (core.Date, bool) {
	if d, err := core.ParseDate(raw); err == nil {
		return d, true
	}
	if t, _, err := godate.ParseAndGetLayout(raw); err == nil {
		return core.DateOf(t), true
	}
	return asOf, false
}

func safeGet(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[idx])
}
