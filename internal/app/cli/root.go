package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shopnotes",
		Short:         "Notes and contacts for Shopify merchants",
		Long:          `shopnotes runs the embedded app backend and its operator tools: migrations, billing reconciliation and plan usage checks.`,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newReconcileCommand(),
		newUsageCommand(),
	)
	return rootCmd
}

// Execute runs the root command; SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
