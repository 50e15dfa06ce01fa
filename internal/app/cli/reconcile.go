package cli

import (
	"encoding/json"
	"os"

	"shopnotes-app/config"
	"shopnotes-app/database"
	"shopnotes-app/internal/app/reconcile"
	"shopnotes-app/internal/infra/secrets"
	"shopnotes-app/internal/infra/shopify"

	"github.com/spf13/cobra"
)

func newReconcileCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Sync local subscriptions with Shopify charges and align plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bootstrap(); err != nil {
				return err
			}
			box, err := secrets.NewBox(config.TOKEN_ENC_KEY_B64)
			if err != nil {
				return err
			}

			r := &reconcile.Reconciler{
				DB:          database.DB,
				Charges:     shopify.NewClient(config.SHOPIFY_API_VERSION),
				Tokens:      box,
				Concurrency: concurrency,
			}
			res, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Shops checked in parallel")
	return cmd
}
