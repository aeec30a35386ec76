package core

import "github.com/shopspring/decimal"

// MonthlyStats summarises the transactions of one calendar month.
type MonthlyStats struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Savings       decimal.Decimal `json:"savings"`
	BudgetUsed    int64           `json:"budgetUsed"` // percent of total budgeted, rounded
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// MonthSummary is one point of a multi-month trend.
type MonthSummary struct {
	Month    string // YYYY-MM
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Savings  decimal.Decimal
}

// BudgetProgress describes how far a budget has been consumed.
type BudgetProgress struct {
	Budget    Budget
	Remaining decimal.Decimal
	Percent   int64
	Over      bool
}
