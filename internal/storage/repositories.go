package storage

import (
	"context"
	"database/sql"
	"errors"
)

// Common errors.
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DemandRepository reads sales/demand history.
type DemandRepository struct {
	db DB
}

// NewDemandRepository creates a new demand repository.
func NewDemandRepository(db DB) *DemandRepository {
	return &DemandRepository{db: db}
}

// History returns the most recent demand rows for a product at a store.
func (r *DemandRepository) History(ctx context.Context, productID, storeID int64, limit int) ([]DemandRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT product_id, store_id, date, price, sales_quantity, promotions, seasonality, demand_trend
		FROM demand_history
		WHERE product_id = $1 AND store_id = $2
		ORDER BY date DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, productID, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DemandRecord
	for rows.Next() {
		var rec DemandRecord
		if err := rows.Scan(
			&rec.ProductID, &rec.StoreID, &rec.Date, &rec.Price,
			&rec.SalesQuantity, &rec.Promotions, &rec.Seasonality, &rec.DemandTrend,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summarize aggregates demand history for a product at a store.
// Returns ErrNotFound when no history exists.
func (r *DemandRepository) Summarize(ctx context.Context, productID, storeID int64) (*DemandSummary, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(sales_quantity), 0),
			COALESCE(AVG(sales_quantity), 0),
			COALESCE(MIN(sales_quantity), 0),
			COALESCE(MAX(sales_quantity), 0),
			COALESCE(AVG(price), 0)
		FROM demand_history
		WHERE product_id = $1 AND store_id = $2
	`
	summary := &DemandSummary{}
	err := r.db.QueryRowContext(ctx, query, productID, storeID).Scan(
		&summary.Rows, &summary.TotalSales, &summary.AvgSales,
		&summary.MinSales, &summary.MaxSales, &summary.AvgPrice,
	)
	if err != nil {
		return nil, err
	}
	if summary.Rows == 0 {
		return nil, ErrNotFound
	}
	return summary, nil
}

// ListProducts returns distinct (product, store) pairs present in the history.
func (r *DemandRepository) ListProducts(ctx context.Context, limit int) ([]ProductRef, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT DISTINCT product_id, store_id
		FROM demand_history
		ORDER BY product_id, store_id
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []ProductRef
	for rows.Next() {
		var ref ProductRef
		if err := rows.Scan(&ref.ProductID, &ref.StoreID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// TopProducts returns products ranked by total sales volume.
func (r *DemandRepository) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT product_id, store_id, SUM(sales_quantity) AS total_sales
		FROM demand_history
		GROUP BY product_id, store_id
		ORDER BY total_sales DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductSales
	for rows.Next() {
		var p ProductSales
		if err := rows.Scan(&p.ProductID, &p.StoreID, &p.TotalSales); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// InventoryRepository reads inventory positions.
type InventoryRepository struct {
	db DB
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Get returns the inventory position for a product at a store, joined with
// the latest sales quantity from demand history.
func (r *InventoryRepository) Get(ctx context.Context, productID, storeID int64) (*InventoryRecord, error) {
	query := `
		SELECT i.product_id, i.store_id, i.stock_level, i.reorder_point,
			i.supplier_lead_time_days, i.stockout_frequency, i.warehouse_capacity,
			COALESCE((
				SELECT d.sales_quantity FROM demand_history d
				WHERE d.product_id = i.product_id AND d.store_id = i.store_id
				ORDER BY d.date DESC LIMIT 1
			), 0)
		FROM inventory_levels i
		WHERE i.product_id = $1 AND i.store_id = $2
	`
	rec := &InventoryRecord{}
	err := r.db.QueryRowContext(ctx, query, productID, storeID).Scan(
		&rec.ProductID, &rec.StoreID, &rec.StockLevel, &rec.ReorderPoint,
		&rec.SupplierLeadTimeDays, &rec.StockoutFrequency, &rec.WarehouseCapacity,
		&rec.SalesQuantity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// CriticalItems returns products whose stock level is below the reorder
// point, worst shortfall first.
func (r *InventoryRepository) CriticalItems(ctx context.Context, limit int) ([]CriticalItem, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT i.product_id, i.store_id, i.stock_level, i.reorder_point,
			COALESCE((
				SELECT d.sales_quantity FROM demand_history d
				WHERE d.product_id = i.product_id AND d.store_id = i.store_id
				ORDER BY d.date DESC LIMIT 1
			), 0)
		FROM inventory_levels i
		WHERE i.stock_level < i.reorder_point
		ORDER BY (i.reorder_point - i.stock_level) DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CriticalItem
	for rows.Next() {
		var item CriticalItem
		if err := rows.Scan(
			&item.ProductID, &item.StoreID, &item.StockLevel,
			&item.ReorderPoint, &item.SalesQuantity,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PricingRepository reads pricing positions.
type PricingRepository struct {
	db DB
}

// NewPricingRepository creates a new pricing repository.
func NewPricingRepository(db DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// Get returns the pricing position for a product at a store, joined with the
// current stock level for prompt context.
func (r *PricingRepository) Get(ctx context.Context, productID, storeID int64) (*PricingRecord, error) {
	query := `
		SELECT p.product_id, p.store_id, p.price, p.competitor_price, p.discount_pct,
			p.sales_volume, p.return_rate_pct, p.storage_cost, p.elasticity_index,
			COALESCE(i.stock_level, 0)
		FROM pricing_history p
		LEFT JOIN inventory_levels i
			ON p.product_id = i.product_id AND p.store_id = i.store_id
		WHERE p.product_id = $1 AND p.store_id = $2
	`
	rec := &PricingRecord{}
	err := r.db.QueryRowContext(ctx, query, productID, storeID).Scan(
		&rec.ProductID, &rec.StoreID, &rec.Price, &rec.CompetitorPrice,
		&rec.DiscountPct, &rec.SalesVolume, &rec.ReturnRatePct,
		&rec.StorageCost, &rec.ElasticityIndex, &rec.StockLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// StatsRepository computes dashboard aggregates.
type StatsRepository struct {
	db DB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// optimizationAccuracy is a fixed display figure; there is no feedback loop
// measuring realized accuracy.
const optimizationAccuracy = 94

// DashboardStats returns the headline dashboard figures.
func (r *StatsRepository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{OptimizationAccuracy: optimizationAccuracy}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT product_id) FROM demand_history`,
	).Scan(&stats.TotalProducts)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT store_id) FROM demand_history`,
	).Scan(&stats.TotalStores)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_levels WHERE stock_level < reorder_point`,
	).Scan(&stats.CriticalItems)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
