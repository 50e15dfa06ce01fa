package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"shopnotes-app/config"
	"shopnotes-app/internal/client/planusage"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/shopify"

	"github.com/spf13/cobra"
)

func newUsageCommand() *cobra.Command {
	var shop, baseURL string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Print a shop's plan usage as the embedded app sees it",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			domain, err := shops.NormalizeDomain(shop)
			if err != nil {
				return fmt.Errorf("--shop: %w", err)
			}
			if baseURL == "" {
				baseURL = "http://localhost:" + config.PORT
			}

			token, err := shopify.MintSessionToken(domain, config.SHOPIFY_API_KEY, config.SHOPIFY_API_SECRET, time.Now(), time.Minute)
			if err != nil {
				return err
			}

			tracker := planusage.New(cmd.Context(), planusage.Config{
				BaseURL:     baseURL,
				Token:       token,
				AutoRefresh: true,
			})
			state := tracker.State()

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(state); err != nil {
				return err
			}
			if state.Error != "" {
				return errors.New(state.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&shop, "shop", "", "Shop domain, e.g. demo.myshopify.com")
	cmd.Flags().StringVar(&baseURL, "url", "", "App base URL (default http://localhost:$PORT)")
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}
