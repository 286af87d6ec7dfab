// Package storage provides database models and repositories for the inventory engine.
package storage

import "time"

// ProductRef identifies a product at a store.
type ProductRef struct {
	ProductID int64 `json:"product_id"`
	StoreID   int64 `json:"store_id"`
}

// ProductSales is a product ranked by total sales volume.
type ProductSales struct {
	ProductID  int64   `json:"product_id"`
	StoreID    int64   `json:"store_id"`
	TotalSales float64 `json:"total_sales"`
}

// CriticalItem is a product whose stock has fallen below its reorder point.
type CriticalItem struct {
	ProductID     int64   `json:"product_id"`
	StoreID       int64   `json:"store_id"`
	StockLevel    float64 `json:"stock_level"`
	ReorderPoint  float64 `json:"reorder_point"`
	SalesQuantity float64 `json:"sales_quantity"`
}

// DemandRecord is one row of sales/demand history.
type DemandRecord struct {
	ProductID     int64     `json:"product_id"`
	StoreID       int64     `json:"store_id"`
	Date          time.Time `json:"date"`
	Price         float64   `json:"price"`
	SalesQuantity float64   `json:"sales_quantity"`
	Promotions    string    `json:"promotions"`
	Seasonality   string    `json:"seasonality"`
	DemandTrend   string    `json:"demand_trend"`
}

// DemandSummary aggregates demand history for prompt construction.
type DemandSummary struct {
	Rows       int64   `json:"rows"`
	TotalSales float64 `json:"total_sales"`
	AvgSales   float64 `json:"avg_sales"`
	MinSales   float64 `json:"min_sales"`
	MaxSales   float64 `json:"max_sales"`
	AvgPrice   float64 `json:"avg_price"`
}

// InventoryRecord is the current inventory position of a product at a store.
type InventoryRecord struct {
	ProductID            int64   `json:"product_id"`
	StoreID              int64   `json:"store_id"`
	StockLevel           float64 `json:"stock_level"`
	ReorderPoint         float64 `json:"reorder_point"`
	SupplierLeadTimeDays float64 `json:"supplier_lead_time_days"`
	StockoutFrequency    float64 `json:"stockout_frequency"`
	WarehouseCapacity    float64 `json:"warehouse_capacity"`
	SalesQuantity        float64 `json:"sales_quantity"`
}

// PricingRecord is the pricing position of a product at a store, joined with
// inventory context for prompt construction.
type PricingRecord struct {
	ProductID       int64   `json:"product_id"`
	StoreID         int64   `json:"store_id"`
	Price           float64 `json:"price"`
	CompetitorPrice float64 `json:"competitor_price"`
	DiscountPct     float64 `json:"discount_pct"`
	SalesVolume     float64 `json:"sales_volume"`
	ReturnRatePct   float64 `json:"return_rate_pct"`
	StorageCost     float64 `json:"storage_cost"`
	ElasticityIndex float64 `json:"elasticity_index"`
	StockLevel      float64 `json:"stock_level"`
}

// DashboardStats are the headline figures for the dashboard view.
type DashboardStats struct {
	TotalProducts        int64 `json:"total_products"`
	TotalStores          int64 `json:"total_stores"`
	CriticalItems        int64 `json:"critical_items"`
	OptimizationAccuracy int64 `json:"optimization_accuracy"`
}
