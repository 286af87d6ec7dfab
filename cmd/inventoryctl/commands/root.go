// Package commands implements the inventoryctl subcommands.
package commands

import (
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/retailplus/inventory-engine/cmd/inventoryctl/ui"
	"github.com/retailplus/inventory-engine/internal/agent"
	"github.com/retailplus/inventory-engine/internal/config"
	"github.com/retailplus/inventory-engine/internal/llm"
	"github.com/retailplus/inventory-engine/internal/observability"
	"github.com/retailplus/inventory-engine/internal/storage"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "inventoryctl",
	Short: "Retail inventory optimization from the command line",
	Long: `inventoryctl runs the retail inventory engine directly against the
configured database and model endpoint: dashboard listings, demand
forecasts, and full optimization plans without starting the API server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		ui.InitUI(noColor, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	return db, nil
}

// newService builds an agent service over the given database, with logging
// quiet by default so command output stays readable.
func newService(cfg *config.Config, db *sql.DB) *agent.Service {
	logger := observability.NopLogger()
	if verbose {
		logger = observability.NewLogger(observability.LogConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "inventoryctl",
		})
	}

	modelClient := llm.NewClient(llm.Config{
		BaseURL:        cfg.Model.BaseURL,
		Model:          cfg.Model.Name,
		Timeout:        cfg.Model.RequestTimeout,
		MaxRetries:     cfg.Model.MaxRetries,
		InitialBackoff: cfg.Model.InitialBackoff,
		MaxBackoff:     cfg.Model.MaxBackoff,
	}, logger)

	return agent.NewService(agent.ServiceParams{
		Demand:    storage.NewDemandRepository(db),
		Inventory: storage.NewInventoryRepository(db),
		Pricing:   storage.NewPricingRepository(db),
		Model:     modelClient,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    logger,
	})
}
