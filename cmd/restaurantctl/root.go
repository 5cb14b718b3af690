package main

import (
	"context"
	"os"

	"github.com/alang8/Help-Restaurant-Review/internal/app"
	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "restaurantctl",
	Short: "restaurant store administration",
	Example: `restaurantctl seed
restaurantctl reviews clear --yes
restaurantctl ratings sync`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Getenv("LOG_LEVEL"))
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(seedCmd(), reviewsCmd(), ratingsCmd())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// openServices connects to the configured MongoDB. The CLI never falls back
// to memory: writing sample data nowhere is an error.
func openServices(ctx context.Context) (*app.Services, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.MongoDB.URI == "" {
		return nil, errNoStore
	}
	return app.Open(ctx, cfg, nil)
}
