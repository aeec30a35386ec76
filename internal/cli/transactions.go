package cli

import (
	"errors"
	"fmt"
	"sort"

	"fintrack/internal/core"

	"github.com/spf13/cobra"
)

type txFlags struct {
	date        string
	amount      string
	description string
	category    string
	payment     string
	typ         string
}

func (f *txFlags) register(cmd *cobra.Command, defaults bool) {
	payment := ""
	if defaults {
		payment = "Cash"
	}
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount; negative means expense unless --type is given")
	cmd.Flags().StringVar(&f.description, "description", "", "what the transaction was for")
	cmd.Flags().StringVar(&f.category, "category", "", "category name")
	cmd.Flags().StringVar(&f.payment, "payment", payment, "payment method")
	cmd.Flags().StringVar(&f.typ, "type", "", "income or expense")
}

// apply overlays the flags the user set onto in. Parse failures are collected
// rather than returned one at a time.
func (f *txFlags) apply(cmd *cobra.Command, in core.TransactionInput) (core.TransactionInput, error) {
	var errs []error
	changed := cmd.Flags().Changed

	if changed("date") {
		d, err := core.ParseDate(f.date)
		if err != nil {
			errs = append(errs, fmt.Errorf("date: %w", err))
		}
		in.Date = d
	}
	if changed("amount") {
		amt, err := core.ParseAmount(f.amount)
		if err != nil {
			errs = append(errs, fmt.Errorf("amount: %w", err))
		}
		in.Amount = amt
		if amt.IsNegative() && !changed("type") {
			in.Type = core.Expense
		}
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("category") {
		in.Category = f.category
	}
	if changed("payment") || (f.payment != "" && in.PaymentMethod == "") {
		in.PaymentMethod = f.payment
	}
	if changed("type") {
		typ, err := core.ParseTransactionType(f.typ)
		if err != nil {
			errs = append(errs, fmt.Errorf("type: %w", err))
		}
		in.Type = typ
	}
	return in, errors.Join(errs...)
}

func (s *session) validateTransaction(in core.TransactionInput) error {
	store := s.app.Store
	if err := in.Validate(store.Categories(), store.PaymentMethods()); err != nil {
		return fmt.Errorf("invalid transaction:\n%s", formatErrors(err))
	}
	return nil
}

func (s *session) addCommand() *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record a transaction",
		Example: "  fintrack add --amount -12.50 --description Lunch --category Food",
		Args:    cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, _ []string) error {
			in, err := f.apply(cmd, core.TransactionInput{Date: s.app.Store.Today()})
			if err != nil {
				return fmt.Errorf("invalid transaction:\n%s", formatErrors(err))
			}
			if err := s.validateTransaction(in); err != nil {
				return err
			}
			t := s.app.Store.AddTransaction(in)
			fmt.Fprintf(s.io.Out, "Added %s %s %s (%s)\n", t.Type, core.FormatAmount(t.Amount), t.Description, t.ID)
			return nil
		}),
	}
	f.register(cmd, true)
	return cmd
}

func (s *session) editCommand() *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			existing, ok := s.app.Store.Transaction(args[0])
			if !ok {
				return fmt.Errorf("transaction %s not found", args[0])
			}
			in, err := f.apply(cmd, existing.Input())
			if err != nil {
				return fmt.Errorf("invalid transaction:\n%s", formatErrors(err))
			}
			if err := s.validateTransaction(in); err != nil {
				return err
			}
			in = in.Normalize()
			s.app.Store.UpdateTransaction(core.Transaction{
				ID:            existing.ID,
				Date:          in.Date,
				Amount:        in.Amount,
				Description:   in.Description,
				Category:      in.Category,
				PaymentMethod: in.PaymentMethod,
				Type:          in.Type,
			})
			fmt.Fprintf(s.io.Out, "Updated %s\n", existing.ID)
			return nil
		}),
	}
	f.register(cmd, false)
	return cmd
}

func (s *session) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: s.run(func(_ *cobra.Command, args []string) error {
			n := s.app.Store.DeleteTransactionsBatch(args)
			if n == 0 {
				return errors.New("no matching transactions")
			}
			fmt.Fprintf(s.io.Out, "Deleted %s\n", plural(n, "transaction"))
			return nil
		}),
	}
}

func (s *session) listCommand() *cobra.Command {
	var from, to, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, _ []string) error {
			txs, err := s.queryTransactions(cmd, from, to, category)
			if err != nil {
				return err
			}
			printTransactions(s.io.Out, txs)
			return nil
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "latest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}

func (s *session) queryTransactions(cmd *cobra.Command, from, to, category string) ([]core.Transaction, error) {
	store := s.app.Store
	byDate := cmd.Flags().Changed("from") || cmd.Flags().Changed("to")
	if !byDate {
		if category != "" {
			return newestFirst(store.TransactionsByCategory(category)), nil
		}
		return store.Transactions(), nil
	}

	start, end := core.NewDate(1, 1, 1), core.NewDate(9999, 12, 31)
	var errs []error
	if from != "" {
		d, err := core.ParseDate(from)
		if err != nil {
			errs = append(errs, fmt.Errorf("--from: %w", err))
		}
		start = d
	}
	if to != "" {
		d, err := core.ParseDate(to)
		if err != nil {
			errs = append(errs, fmt.Errorf("--to: %w", err))
		}
		end = d
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	txs := store.TransactionsByDateRange(start, end)
	if category != "" {
		kept := txs[:0]
		for _, t := range txs {
			if t.Category == category {
				kept = append(kept, t)
			}
		}
		txs = kept
	}
	return newestFirst(txs), nil
}

func newestFirst(txs []core.Transaction) []core.Transaction {
	out := append([]core.Transaction{}, txs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
