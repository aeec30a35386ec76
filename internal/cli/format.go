package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fintrack/internal/core"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTransactions(w io.Writer, txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tPAYMENT\tDESCRIPTION")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date, t.Type, core.FormatAmount(t.Signed()), t.Category, t.PaymentMethod, t.Description)
	}
	tw.Flush()
}

func printBudgets(w io.Writer, progress []core.BudgetProgress) {
	if len(progress) == 0 {
		fmt.Fprintln(w, "No budgets.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tCATEGORY\tPERIOD\tSPENT\tBUDGET\tREMAINING\tUSED\t")
	for _, p := range progress {
		flag := ""
		if p.Over {
			flag = "OVER"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
			p.Budget.ID, p.Budget.Category, p.Budget.Period,
			core.FormatAmount(p.Budget.Spent), core.FormatAmount(p.Budget.Amount),
			core.FormatAmount(p.Remaining), p.Percent, flag)
	}
	tw.Flush()
}

func printList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintln(w, item)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// formatErrors renders a joined validation error one problem per line.
func formatErrors(err error) string {
	lines := strings.Split(err.Error(), "\n")
	return "  - " + strings.Join(lines, "\n  - ")
}
