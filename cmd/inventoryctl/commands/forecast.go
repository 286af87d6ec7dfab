package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/retailplus/inventory-engine/cmd/inventoryctl/ui"
	"github.com/retailplus/inventory-engine/internal/agent"
)

var (
	forecastProductID int64
	forecastStoreID   int64
	forecastDaysAhead int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Generate a demand forecast for a product at a store",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().Int64VarP(&forecastProductID, "product", "p", 0, "product ID (required)")
	forecastCmd.Flags().Int64VarP(&forecastStoreID, "store", "s", 0, "store ID (required)")
	forecastCmd.Flags().IntVarP(&forecastDaysAhead, "days", "d", agent.DefaultDaysAhead, "forecast horizon in days")
	forecastCmd.MarkFlagRequired("product")
	forecastCmd.MarkFlagRequired("store")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	service := newService(cfg, db)
	target := agent.Target{ProductID: forecastProductID, StoreID: forecastStoreID}

	sp := ui.NewSpinner(fmt.Sprintf("Forecasting demand for product %d at store %d...", target.ProductID, target.StoreID))
	sp.Start()
	result, err := service.Forecast(ctx, target, forecastDaysAhead)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}

	ui.Header(fmt.Sprintf("Demand Forecast (next %d days)", forecastDaysAhead))
	if result.UsedFallback {
		ui.Warn("Model unavailable, showing estimated values")
	}
	ui.Field("Forecast quantity", result.Fields["forecast_quantity"])
	ui.Field("Explanation", result.Fields["explanation"])
	return nil
}
