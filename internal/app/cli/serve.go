package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"shopnotes-app/config"
	"shopnotes-app/database"
	authapi "shopnotes-app/internal/api/auth"
	"shopnotes-app/internal/api/billing"
	"shopnotes-app/internal/api/shopifywebhook"
	routes "shopnotes-app/internal/app/http"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/infra/cache"
	"shopnotes-app/internal/infra/secrets"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var releaseMode bool

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&releaseMode, "release", false, "Run gin in release mode")
	return cmd
}

// bootstrap loads config, logger and database shared by every command.
func bootstrap() error {
	config.LoadEnv()
	logger.Init(config.LOG_LEVEL, config.LOG_FORMAT, os.Stdout)
	return database.InitDB()
}

func newDeduper(ctx context.Context) cache.Deduper {
	log := logger.WithComponent("cache")
	if config.REDIS_URL == "" {
		log.Info("REDIS_URL not set, using in-memory webhook dedupe")
		return cache.NewMemoryDeduper()
	}
	client, err := cache.Connect(ctx, config.REDIS_URL, 5, 2*time.Second)
	if err != nil {
		log.Warn("redis unavailable, using in-memory webhook dedupe", "error", err)
		return cache.NewMemoryDeduper()
	}
	return cache.NewRedisDeduper(client)
}

func runServe(cmd *cobra.Command, args []string) error {
	if releaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := bootstrap(); err != nil {
		return err
	}
	log := logger.WithComponent("server")

	box, err := secrets.NewBox(config.TOKEN_ENC_KEY_B64)
	if err != nil {
		return err
	}
	client := shopify.NewClient(config.SHOPIFY_API_VERSION)
	appURL := strings.TrimRight(config.APP_URL, "/")

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:         database.DB,
		APIKey:     config.SHOPIFY_API_KEY,
		APISecret:  config.SHOPIFY_API_SECRET,
		AdminToken: config.ADMIN_API_TOKEN,
		Auth: &authapi.Handler{
			DB:           database.DB,
			OAuth:        shopify.NewOAuth(config.SHOPIFY_API_KEY, config.SHOPIFY_API_SECRET, config.SHOPIFY_SCOPES, appURL+"/auth/callback"),
			Tokens:       box,
			APIKey:       config.SHOPIFY_API_KEY,
			APISecret:    config.SHOPIFY_API_SECRET,
			SecureCookie: strings.HasPrefix(appURL, "https://"),
		},
		Billing: &billing.Handler{
			DB:      database.DB,
			Shopify: client,
			Tokens:  box,
			Plan: billing.Plan{
				Name:      "PRO",
				Price:     config.PRO_PLAN_PRICE,
				TrialDays: config.PRO_TRIAL_DAYS,
				Test:      config.SHOPIFY_BILLING_TEST,
			},
			AppURL: appURL,
			APIKey: config.SHOPIFY_API_KEY,
		},
		Webhooks: &shopifywebhook.Handler{
			DB:     database.DB,
			Secret: config.SHOPIFY_API_SECRET,
			Dedupe: newDeduper(cmd.Context()),
		},
	})

	srv := &http.Server{
		Addr:         ":" + config.PORT,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return err
	}
	log.Info("server exited gracefully")
	return nil
}
