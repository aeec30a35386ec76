package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (s *session) categoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage transaction categories",
	}
	cmd.AddCommand(
		s.setAddCommand("category", func(name string) bool { return s.app.Store.AddCategory(name) }),
		s.setListCommand("categories", func() []string { return s.app.Store.Categories() }),
	)
	return cmd
}

func (s *session) paymentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Manage payment methods",
	}
	cmd.AddCommand(
		s.setAddCommand("payment method", func(name string) bool { return s.app.Store.AddPaymentMethod(name) }),
		s.setListCommand("payment methods", func() []string { return s.app.Store.PaymentMethods() }),
	)
	return cmd
}

func (s *session) setAddCommand(noun string, add func(string) bool) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME...",
		Short: "Register a " + noun,
		Args:  cobra.MinimumNArgs(1),
		RunE: s.run(func(_ *cobra.Command, args []string) error {
			for _, name := range args {
				if add(name) {
					fmt.Fprintf(s.io.Out, "Added %s %q\n", noun, name)
				} else {
					fmt.Fprintf(s.io.Out, "%q already exists\n", name)
				}
			}
			return nil
		}),
	}
}

func (s *session) setListCommand(noun string, list func() []string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known " + noun,
		Args:  cobra.NoArgs,
		RunE: s.run(func(*cobra.Command, []string) error {
			printList(s.io.Out, list())
			return nil
		}),
	}
}
