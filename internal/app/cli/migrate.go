package cli

import (
	"shopnotes-app/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			// InitDB migrates on open
			if err := bootstrap(); err != nil {
				return err
			}
			logger.WithComponent("migrate").Info("schema up to date")
			return nil
		},
	}
}
