package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/retailplus/inventory-engine/cmd/inventoryctl/ui"
	"github.com/retailplus/inventory-engine/internal/storage"
)

var (
	topProductsLimit int
	criticalLimit    int
)

var topProductsCmd = &cobra.Command{
	Use:   "top-products",
	Short: "List products by total sales volume",
	RunE:  runTopProducts,
}

var criticalInventoryCmd = &cobra.Command{
	Use:   "critical-inventory",
	Short: "List items whose stock is below the reorder point",
	RunE:  runCriticalInventory,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE:  runStats,
}

func init() {
	topProductsCmd.Flags().IntVarP(&topProductsLimit, "limit", "n", 10, "number of products to show")
	criticalInventoryCmd.Flags().IntVarP(&criticalLimit, "limit", "n", 10, "number of items to show")
	rootCmd.AddCommand(topProductsCmd, criticalInventoryCmd, statsCmd)
}

func runTopProducts(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	products, err := storage.NewDemandRepository(db).TopProducts(ctx, topProductsLimit)
	if err != nil {
		return fmt.Errorf("top products: %w", err)
	}

	ui.Header("Top Products by Sales")
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.ProductID),
			fmt.Sprintf("%.0f", p.TotalSales),
		})
	}
	ui.Table([]string{"Product ID", "Total Sales"}, rows)
	return nil
}

func runCriticalInventory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	items, err := storage.NewInventoryRepository(db).CriticalItems(ctx, criticalLimit)
	if err != nil {
		return fmt.Errorf("critical inventory: %w", err)
	}

	ui.Header("Critical Inventory")
	if len(items) == 0 {
		ui.Success("No items below reorder point")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ProductID),
			fmt.Sprintf("%d", item.StoreID),
			fmt.Sprintf("%.0f", item.StockLevel),
			fmt.Sprintf("%.0f", item.ReorderPoint),
		})
	}
	ui.Table([]string{"Product ID", "Store ID", "Stock", "Reorder Point"}, rows)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

	stats, err := storage.NewStatsRepository(db).DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("dashboard stats: %w", err)
	}

	ui.Header("Dashboard Statistics")
	ui.Field("Products", stats.TotalProducts)
	ui.Field("Stores", stats.TotalStores)
	ui.Field("Critical items", stats.CriticalItems)
	ui.Field("Optimization accuracy", fmt.Sprintf("%d%%", stats.OptimizationAccuracy))
	return nil
}
