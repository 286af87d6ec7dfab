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
	optimizeProductID int64
	optimizeStoreID   int64
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run the full optimization pipeline for a product at a store",
	Long: `Runs the demand forecast, inventory status, pricing, and supply chain
analyses, then coordinates them into a single optimization plan.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().Int64VarP(&optimizeProductID, "product", "p", 0, "product ID (required)")
	optimizeCmd.Flags().Int64VarP(&optimizeStoreID, "store", "s", 0, "store ID (required)")
	optimizeCmd.MarkFlagRequired("product")
	optimizeCmd.MarkFlagRequired("store")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
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
	target := agent.Target{ProductID: optimizeProductID, StoreID: optimizeStoreID}

	sp := ui.NewSpinner(fmt.Sprintf("Optimizing inventory for product %d at store %d...", target.ProductID, target.StoreID))
	sp.Start()
	start := time.Now()
	result, err := service.Optimize(ctx, target)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	ui.Header("Inventory Optimization Plan")
	if result.UsedFallback {
		ui.Warn("Model unavailable, showing estimated values")
	}
	ui.Field("Demand forecast", result.Fields["demand_forecast"])
	ui.Field("Optimal inventory level", result.Fields["optimal_inventory_level"])
	ui.Field("Pricing strategy", result.Fields["pricing_strategy"])
	ui.Field("Order recommendations", result.Fields["order_recommendations"])

	if actions := toStringList(result.Fields["key_actions"]); len(actions) > 0 {
		ui.List("Key actions", actions)
	}
	if impact, ok := result.Fields["projected_impact"].(map[string]any); ok {
		ui.List("Projected impact", []string{
			fmt.Sprintf("Revenue: %v", impact["revenue"]),
			fmt.Sprintf("Costs: %v", impact["costs"]),
			fmt.Sprintf("Profit margin: %v", impact["profit_margin"]),
			fmt.Sprintf("Stockout risk: %v", impact["stockout_risk"]),
		})
	}
	ui.Success("Completed in %s", time.Since(start).Round(time.Second))
	return nil
}

// toStringList flattens the list representations a normalized result can
// carry.
func toStringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}
