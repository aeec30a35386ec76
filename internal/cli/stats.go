package cli

import (
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/derive"

	"github.com/spf13/cobra"
)

func (s *session) statsCommand() *cobra.Command {
	var asOfFlag string
	var months int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise a month: totals, budgets, categories and trend",
		Args:  cobra.NoArgs,
		RunE: s.run(func(*cobra.Command, []string) error {
			store := s.app.Store
			asOf := store.Today()
			if asOfFlag != "" {
				d, err := core.ParseDate(asOfFlag)
				if err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
				asOf = d
			}
			txs := store.Transactions()
			out := s.io.Out

			stats := store.MonthlyStatsAt(asOf)
			tw := newTable(out)
			fmt.Fprintf(tw, "Month\t%s\n", asOf.MonthKey())
			fmt.Fprintf(tw, "Income\t%s\n", core.FormatAmount(stats.TotalIncome))
			fmt.Fprintf(tw, "Expenses\t%s\n", core.FormatAmount(stats.TotalExpenses))
			fmt.Fprintf(tw, "Savings\t%s\n", core.FormatAmount(stats.Savings))
			fmt.Fprintf(tw, "Budget used\t%d%%\n", stats.BudgetUsed)
			tw.Flush()

			if breakdown := derive.CategoryBreakdown(txs, asOf); len(breakdown) > 0 {
				fmt.Fprintln(out, "\nSpending by category")
				tw = newTable(out)
				for _, c := range breakdown {
					fmt.Fprintf(tw, "%s\t%s\n", c.Name, core.FormatAmount(c.Amount))
				}
				tw.Flush()
			}

			if budgets := store.Budgets(); len(budgets) > 0 {
				fmt.Fprintln(out, "\nBudgets")
				printBudgets(out, derive.BudgetProgress(derive.RecomputeBudgets(txs, budgets, asOf)))
			}

			if trend := derive.Trend(txs, asOf, months); len(trend) > 0 {
				fmt.Fprintln(out, "\nTrend")
				tw = newTable(out)
				fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSES\tSAVINGS")
				for _, m := range trend {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Month,
						core.FormatAmount(m.Income), core.FormatAmount(m.Expenses), core.FormatAmount(m.Savings))
				}
				tw.Flush()
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "any date in the month to summarise (default today)")
	cmd.Flags().IntVar(&months, "months", 6, "months of trend to show, 0 to hide")
	return cmd
}
