package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"grveyardapp/pkg/api"
	"grveyardapp/pkg/assets"
	"grveyardapp/pkg/auth"
	"grveyardapp/pkg/config"
	"grveyardapp/pkg/logging"
	"grveyardapp/pkg/paging"
)

var (
	cfgPath string
	baseURL string

	cfg    *config.Config
	logger *logrus.Logger

	provider   auth.Provider
	accountAPI auth.AccountAPI
	assetCache *assets.AssetCache

	assetService *assets.Service
	authService  *auth.Service
)

var rootCmd = &cobra.Command{
	Use:   "graveyard",
	Short: "grveyard marketplace client",
	Long: "Command-line client for the grveyard startup-asset marketplace.\n" +
		"Browse listings, inspect assets, and manage your account against a\n" +
		"running backend (see the dev-server command for a local one).",
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "directory containing appsettings.yaml")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL (overrides config)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sellCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(devServerCmd)
}

func initializeApp(cmd *cobra.Command, args []string) error {
	// Missing .env is fine; environment variables alone work.
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	logger = logging.NewLogger(cfg.Log.Level)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout(), logger)
	provider = auth.NewMemoryProvider()
	accountAPI = auth.NewRESTAccountAPI(client)
	assetCache = assets.NewAssetCache()

	repo := assets.NewRESTAssetRepository(client)
	assetService = assets.NewService(repo, assetCache, provider, logger,
		assets.WithPostCreate(assetCache.Put),
		assets.WithPagingConfig(paging.Config{
			PageSize:    cfg.Paging.PageSize,
			InitialLoad: cfg.Paging.InitialLoad,
		}),
	)
	authService = auth.NewService(accountAPI, provider, logger)

	return nil
}

// ensureSession establishes an identity for commands that need one. A fresh
// process has no local session, so this signs in against the backend and
// adopts the account's uuid when the in-memory provider has never seen the
// email.
func ensureSession(ctx context.Context, email, password string) error {
	if _, ok := provider.Current(); ok {
		return nil
	}
	if email == "" || password == "" {
		return auth.ErrNotAuthenticated
	}

	if _, err := provider.SignIn(ctx, email, password); err == nil {
		return nil
	}

	acct, err := accountAPI.Login(ctx, email, password)
	if err != nil {
		return err
	}
	restorer, ok := provider.(auth.SessionRestorer)
	if !ok {
		return auth.ErrNotAuthenticated
	}
	restorer.Restore(auth.Identity{UID: acct.UUID, Email: acct.Email})
	return nil
}
