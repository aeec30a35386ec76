// Package derive computes the figures that depend on the transaction ledger:
// budget spend-to-date, monthly statistics and the dashboard analytics.
//
// Every function is pure and takes the as-of date explicitly; nothing here
// reads the wall clock.
package derive

import (
	"sort"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WindowKey returns the date prefix that a transaction must share with the
// as-of date to count toward a budget of the given period.
func WindowKey(p core.Period, asOf core.Date) string {
	if p == core.Yearly {
		return asOf.YearKey()
	}
	return asOf.MonthKey()
}

// groupExpenses sums expense magnitudes per window key and category in a
// single pass. Only the windows containing asOf are kept.
func groupExpenses(txs []core.Transaction, asOf core.Date) map[string]map[string]decimal.Decimal {
	totals := map[string]map[string]decimal.Decimal{
		WindowKey(core.Monthly, asOf): {},
		WindowKey(core.Yearly, asOf):  {},
	}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		amt := t.Amount.Abs()
		for _, p := range []core.Period{core.Monthly, core.Yearly} {
			if byCat, ok := totals[WindowKey(p, t.Date)]; ok {
				byCat[t.Category] = byCat[t.Category].Add(amt)
			}
		}
	}
	return totals
}

// RecomputeBudgets returns a copy of budgets with Spent set to the expenses of
// each budget's category inside its period window. Inputs are not modified.
func RecomputeBudgets(txs []core.Transaction, budgets []core.Budget, asOf core.Date) []core.Budget {
	out := make([]core.Budget, len(budgets))
	if len(budgets) == 0 {
		return out
	}
	totals := groupExpenses(txs, asOf)
	for i, b := range budgets {
		period := b.Period
		if period != core.Yearly {
			period = core.Monthly
		}
		b.Spent = totals[WindowKey(period, asOf)][b.Category]
		out[i] = b
	}
	return out
}

// MonthlyStats totals the as-of month. BudgetUsed is expenses over the sum of
// every budget's limit, as a rounded percentage, and 0 when nothing is budgeted.
func MonthlyStats(txs []core.Transaction, budgets []core.Budget, asOf core.Date) core.MonthlyStats {
	month := asOf.MonthKey()
	stats := core.MonthlyStats{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, t := range txs {
		if t.Date.MonthKey() != month {
			continue
		}
		switch t.Type {
		case core.Income:
			stats.TotalIncome = stats.TotalIncome.Add(t.Amount.Abs())
		case core.Expense:
			stats.TotalExpenses = stats.TotalExpenses.Add(t.Amount.Abs())
		}
	}
	stats.Savings = stats.TotalIncome.Sub(stats.TotalExpenses)

	budgeted := decimal.Zero
	for _, b := range budgets {
		budgeted = budgeted.Add(b.Amount)
	}
	if budgeted.IsPositive() {
		stats.BudgetUsed = percent(stats.TotalExpenses, budgeted)
	}
	return stats
}

// CategoryBreakdown lists the as-of month's expenses per category, largest
// first.
func CategoryBreakdown(txs []core.Transaction, asOf core.Date) []core.CategoryAmount {
	totals := groupExpenses(txs, asOf)[WindowKey(core.Monthly, asOf)]
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amt := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Trend returns income, expenses and savings for the months ending at asOf,
// oldest first.
func Trend(txs []core.Transaction, asOf core.Date, months int) []core.MonthSummary {
	if months < 1 {
		return nil
	}
	first := time.Date(asOf.Year(), asOf.Month()-time.Month(months-1), 1, 0, 0, 0, 0, time.UTC)
	out := make([]core.MonthSummary, months)
	index := make(map[string]int, months)
	for i := range out {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i] = core.MonthSummary{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
		index[key] = i
	}
	for _, t := range txs {
		i, ok := index[t.Date.MonthKey()]
		if !ok {
			continue
		}
		switch t.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(t.Amount.Abs())
		case core.Expense:
			out[i].Expenses = out[i].Expenses.Add(t.Amount.Abs())
		}
	}
	for i := range out {
		out[i].Savings = out[i].Income.Sub(out[i].Expenses)
	}
	return out
}

// BudgetProgress reports remaining headroom for already-recomputed budgets.
func BudgetProgress(budgets []core.Budget) []core.BudgetProgress {
	out := make([]core.BudgetProgress, len(budgets))
	for i, b := range budgets {
		p := core.BudgetProgress{
			Budget:    b,
			Remaining: b.Amount.Sub(b.Spent),
			Over:      b.Spent.GreaterThan(b.Amount),
		}
		if b.Amount.IsPositive() {
			p.Percent = percent(b.Spent, b.Amount)
		}
		out[i] = p
	}
	return out
}

func percent(part, whole decimal.Decimal) int64 {
	return part.Div(whole).Mul(hundred).Round(0).IntPart()
}
