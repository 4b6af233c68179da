package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vkarpenko/ledgerbot/internal/ledger"
)

// InitDBOptions holds flags for the initdb command.
type InitDBOptions struct {
	*RootOptions
	Database string
}

// NewInitDBCommand creates the initdb command.
func NewInitDBCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitDBOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "initdb",
		Short: "Create or migrate the ledger database",
		Long: `Create the SQLite ledger database, applying the schema and any
pending migrations. Safe to run repeatedly.

Example:
  ledgerbot initdb --db ./ledger.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("initializing database", "path", opts.Database)
			led, err := ledger.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to initialize database", err)
			}
			if err := led.Close(); err != nil {
				return WrapExitError(ExitFailure, "failed to close database", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready: %s\n", opts.Database)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
