package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fintrack/internal/log"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// annotationNoLedger marks commands that run without opening storage.
const annotationNoLedger = "fintrack/no-ledger"

// session is shared by every command of one invocation.
type session struct {
	io  IO
	app *App
}

// NewRootCommand builds the command tree. Storage is opened before any
// command that needs the ledger and closed when it returns.
func NewRootCommand(streams IO) *cobra.Command {
	s := &session{io: streams}

	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Track income, expenses and budgets",
		Long: `fintrack records income and expense transactions, keeps budgets
up to date with current spending, and imports bank CSV exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsLedger(cmd) {
				return nil
			}
			return s.open(cmd.Context())
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.AddCommand(
		s.addCommand(),
		s.editCommand(),
		s.deleteCommand(),
		s.listCommand(),
		s.statsCommand(),
		s.budgetCommand(),
		s.categoryCommand(),
		s.paymentCommand(),
		s.importCommand(),
		s.exportCommand(),
		s.sampleCommand(),
		s.clearCommand(),
	)
	return root
}

// needsLedger reports whether cmd works on stored data. Cobra's generated
// help and completion commands never do.
func needsLedger(cmd *cobra.Command) bool {
	if cmd.Annotations[annotationNoLedger] != "" {
		return false
	}
	if cmd.Name() == "help" || strings.HasPrefix(cmd.Name(), "__complete") {
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return false
		}
	}
	return true
}

func (s *session) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger, err := SetupLogger(cfg.LogLevel, s.io.Err)
	if err != nil {
		return err
	}
	app, err := Open(ctx, cfg, logger, s.io)
	if err != nil {
		return err
	}
	s.app = app
	return nil
}

// run wraps a RunE so the session is closed whether or not it fails.
func (s *session) run(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	}
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

// Execute runs the CLI against the process environment and returns the exit
// code.
func Execute(ctx context.Context) int {
	LoadEnvFile()
	streams := DefaultIO()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentCLI)
	ctx, cancel := SignalContext(ctx, logger)
	defer cancel()

	root := NewRootCommand(streams)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		cc.Init(&cc.Config{
			RootCmd:  root,
			Headings: cc.HiCyan + cc.Bold + cc.Underline,
			Commands: cc.HiYellow + cc.Bold,
			Example:  cc.Italic,
			ExecName: cc.Bold,
			Flags:    cc.Bold,
		})
	}

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(streams.Err, "Error:", err)
		return 1
	}
	return 0
}
