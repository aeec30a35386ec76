package cli

import (
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/derive"

	"github.com/spf13/cobra"
)

type budgetFlags struct {
	category string
	amount   string
	period   string
}

func (f *budgetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "category the budget limits")
	cmd.Flags().StringVar(&f.amount, "amount", "", "spending limit, must be positive")
	cmd.Flags().StringVar(&f.period, "period", string(core.Monthly), "monthly or yearly")
}

// apply overlays the set flags onto in and validates the result against the
// known categories.
func (f *budgetFlags) apply(cmd *cobra.Command, in core.BudgetInput, categories []string) (core.BudgetInput, error) {
	var errs []error
	changed := cmd.Flags().Changed
	if changed("category") {
		in.Category = f.category
	}
	if changed("amount") {
		amt, err := core.ParseAmount(f.amount)
		if err != nil {
			errs = append(errs, fmt.Errorf("amount: %w", err))
		}
		in.Amount = amt
	}
	if changed("period") || in.Period == "" {
		p, err := core.ParsePeriod(f.period)
		if err != nil {
			errs = append(errs, fmt.Errorf("period: %w", err))
		}
		in.Period = p
	}
	if err := errors.Join(errs...); err != nil {
		return in, fmt.Errorf("invalid budget:\n%s", formatErrors(err))
	}
	if err := in.Validate(categories); err != nil {
		return in, fmt.Errorf("invalid budget:\n%s", formatErrors(err))
	}
	return in, nil
}

func (s *session) budgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage spending limits per category",
	}
	cmd.AddCommand(
		s.budgetAddCommand(),
		s.budgetEditCommand(),
		s.budgetDeleteCommand(),
		s.budgetListCommand(),
	)
	return cmd
}

func (s *session) budgetAddCommand() *cobra.Command {
	var f budgetFlags
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a budget",
		Example: "  fintrack budget add --category Food --amount 400",
		Args:    cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, _ []string) error {
			in, err := f.apply(cmd, core.BudgetInput{}, s.app.Store.Categories())
			if err != nil {
				return err
			}
			b := s.app.Store.AddBudget(in)
			fmt.Fprintf(s.io.Out, "Added %s budget for %s: %s of %s spent (%s)\n",
				b.Period, b.Category, core.FormatAmount(b.Spent), core.FormatAmount(b.Amount), b.ID)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func (s *session) budgetEditCommand() *cobra.Command {
	var f budgetFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a budget's category, amount or period",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			existing, ok := s.app.Store.Budget(args[0])
			if !ok {
				return fmt.Errorf("budget %s not found", args[0])
			}
			in, err := f.apply(cmd, core.BudgetInput{
				Category: existing.Category,
				Amount:   existing.Amount,
				Period:   existing.Period,
			}, s.app.Store.Categories())
			if err != nil {
				return err
			}
			s.app.Store.UpdateBudget(core.Budget{
				ID:       existing.ID,
				Category: in.Category,
				Amount:   in.Amount,
				Period:   in.Period,
			})
			fmt.Fprintf(s.io.Out, "Updated %s\n", existing.ID)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func (s *session) budgetDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a budget; its transactions are kept",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(_ *cobra.Command, args []string) error {
			if !s.app.Store.DeleteBudget(args[0]) {
				return fmt.Errorf("budget %s not found", args[0])
			}
			fmt.Fprintf(s.io.Out, "Deleted budget %s\n", args[0])
			return nil
		}),
	}
}

func (s *session) budgetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show budgets with current spending",
		Args:  cobra.NoArgs,
		RunE: s.run(func(*cobra.Command, []string) error {
			printBudgets(s.io.Out, derive.BudgetProgress(s.app.Store.Budgets()))
			return nil
		}),
	}
}
