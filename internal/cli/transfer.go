package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ingest"
	"fintrack/internal/log"
	"fintrack/internal/persist"

	"github.com/spf13/cobra"
)

func (s *session) importCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from CSV or a JSON backup",
	}
	cmd.AddCommand(s.importCSVCommand(), s.importJSONCommand())
	return cmd
}

func (s *session) importCSVCommand() *cobra.Command {
	var yes bool
	var exclude []int
	cmd := &cobra.Command{
		Use:   "csv FILE...",
		Short: "Stage rows from CSV files, review them, then commit",
		Long: `Reads one or more CSV files with description, amount, category and date
columns. Rows are shown for review before anything is added. Use --exclude
with row numbers from the review table to leave rows out.`,
		Example: "  fintrack import csv bank.csv --exclude 3 --yes",
		Args:    cobra.MinimumNArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			files, err := ingest.ReadFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			staged, err := ingest.ParseFiles(files, ingest.Options{
				KnownCategories: s.app.Store.Categories(),
				AsOf:            s.app.Store.Today(),
				Logger:          s.app.Logger,
			})
			if err != nil {
				return err
			}
			for _, n := range exclude {
				if n < 1 || n > staged.Len() {
					return fmt.Errorf("--exclude %d: no such row", n)
				}
				staged.Deselect(n - 1)
			}

			s.printReview(staged)
			selected := len(staged.Selected())
			if selected == 0 {
				fmt.Fprintln(s.io.Out, "Nothing to import.")
				return nil
			}

			if !yes {
				if !s.io.Interactive() {
					fmt.Fprintln(s.io.Out, "Staged only. Re-run with --yes to commit.")
					return nil
				}
				if !s.confirm(fmt.Sprintf("Import %s?", plural(selected, "transaction"))) {
					fmt.Fprintln(s.io.Out, "Import cancelled.")
					return nil
				}
			}

			res := staged.Commit(s.app.Store, s.app.Config.ImportPaymentMethod)
			s.app.Logger.Info("CSV import committed",
				log.FieldOperation, log.OpCommit,
				log.FieldCount, len(res.Added),
				log.FieldSkipped, len(staged.Skipped()))
			fmt.Fprintf(s.io.Out, "Imported %s", plural(len(res.Added), "transaction"))
			if len(res.Categories) > 0 {
				fmt.Fprintf(s.io.Out, "; new categories: %s", strings.Join(res.Categories, ", "))
			}
			fmt.Fprintln(s.io.Out)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "commit without asking")
	cmd.Flags().IntSliceVar(&exclude, "exclude", nil, "row numbers to leave out")
	return cmd
}

func (s *session) printReview(staged *ingest.Staged) {
	out := s.io.Out
	tw := newTable(out)
	fmt.Fprintln(tw, "#\tIMPORT\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for i, r := range staged.Rows() {
		mark := "yes"
		if !r.Selected {
			mark = "no"
		}
		date := r.Input.Date.String()
		if r.DateDefaulted {
			date += "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i+1, mark, date, r.Input.Type,
			core.FormatAmount(r.Input.Amount), r.Input.Category, r.Input.Description)
	}
	tw.Flush()

	fmt.Fprintf(out, "%s staged, %d selected\n", plural(staged.Len(), "row"), len(staged.Selected()))
	if cats := staged.NewCategories(); len(cats) > 0 {
		fmt.Fprintf(out, "New categories: %s\n", strings.Join(cats, ", "))
	}
	if skipped := staged.Skipped(); len(skipped) > 0 {
		fmt.Fprintf(out, "Skipped %s:\n", plural(len(skipped), "row"))
		for _, sk := range skipped {
			fmt.Fprintf(out, "  %s:%d %s\n", sk.Source, sk.Line, sk.Reason)
		}
	}
	for _, r := range staged.Rows() {
		if r.DateDefaulted {
			fmt.Fprintln(out, "* date not recognised, today's date used")
			break
		}
	}
}

func (s *session) confirm(question string) bool {
	fmt.Fprintf(s.io.Out, "%s [y/N] ", question)
	line, err := bufio.NewReader(s.io.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *session) importJSONCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "json FILE",
		Short: "Replace ledger collections from a JSON backup",
		Long: `Each collection present in the backup (transactions, budgets, categories,
paymentMethods) replaces the current one. Absent collections are kept. An
invalid backup changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: s.run(func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			patch, err := ingest.ImportJSON(data)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			s.app.Store.Replace(patch)
			state := s.app.Store.State()
			fmt.Fprintf(s.io.Out, "Imported backup: %s, %s\n",
				plural(len(state.Transactions), "transaction"), plural(len(state.Budgets), "budget"))
			return nil
		}),
	}
}

func (s *session) exportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the whole ledger",
		Args:  cobra.NoArgs,
		RunE: s.run(func(*cobra.Command, []string) error {
			now := s.io.Now()
			data, err := persist.Export(s.app.Store.State(), now)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = s.io.Out.Write(append(data, '\n'))
				return err
			}
			if out == "" {
				out = persist.ExportFileName(now)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			s.app.Logger.Info("Exported ledger", log.FieldOperation, log.OpExport, log.FieldFile, out, log.FieldBytes, len(data))
			fmt.Fprintf(s.io.Out, "Exported to %s\n", out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default finance-data-DATE.json)")
	return cmd
}

func (s *session) sampleCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:         "sample-csv",
		Short:       "Print an example CSV in the accepted import format",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoLedger: "true"},
		RunE: func(*cobra.Command, []string) error {
			if out == "" || out == "-" {
				_, err := s.io.Out.Write(ingest.SampleCSV())
				return err
			}
			if err := os.WriteFile(out, ingest.SampleCSV(), 0o644); err != nil {
				return fmt.Errorf("write sample: %w", err)
			}
			fmt.Fprintf(s.io.Out, "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func (s *session) clearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction and budget",
		Args:  cobra.NoArgs,
		RunE: s.run(func(*cobra.Command, []string) error {
			if !yes {
				return errors.New("refusing to clear the ledger without --yes")
			}
			s.app.Store.Clear()
			fmt.Fprintln(s.io.Out, "Ledger cleared.")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
