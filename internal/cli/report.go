package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkarpenko/ledgerbot/internal/ledger"
	"github.com/vkarpenko/ledgerbot/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
}

// reportKinds are the accepted report arguments.
var reportKinds = []string{"clients", "orders", "archive", "history", "stats"}

// NewReportCommand creates the report command: the bot's read-side
// reports, printed to stdout without going through Telegram.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <kind>",
		Short: "Print a ledger report",
		Long: `Print one of the ledger reports to stdout.

Kinds:
  clients   all clients
  orders    active (unpaid and paid) orders
  archive   completed orders
  history   income and expenses with totals
  stats     full summary

Example:
  ledgerbot report stats --db ./ledger.db`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     reportKinds,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions, kind string) error {
	led, err := ledger.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer led.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := renderReport(ctx, led, kind)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func renderReport(ctx context.Context, led *ledger.Ledger, kind string) (string, error) {
	switch kind {
	case "clients":
		clients, err := led.ListClients(ctx)
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		return report.Clients(clients), nil

	case "orders":
		unpaid, err := led.OrdersByStatus(ctx, ledger.StatusUnpaid)
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		paid, err := led.OrdersByStatus(ctx, ledger.StatusPaid)
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		return report.ActiveOrders(unpaid, paid), nil

	case "archive":
		completed, err := led.OrdersByStatus(ctx, ledger.StatusCompleted)
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		return report.Archive(completed), nil

	case "history":
		paid, err := led.OrdersByStatus(ctx, ledger.StatusPaid)
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		completed, err := led.OrdersByStatus(ctx, ledger.StatusCompleted)
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		expenses, err := led.ListExpenses(ctx)
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		return report.History(append(paid, completed...), expenses), nil

	case "stats":
		stats, err := led.CollectStats(ctx, time.Now())
		if err != nil {
			return "", WrapExitError(ExitFailure, "query failed", err)
		}
		return report.Stats(stats), nil

	default:
		return "", WrapExitError(ExitCommandError,
			fmt.Sprintf("unknown report %q: must be one of %v", kind, reportKinds), nil)
	}
}
