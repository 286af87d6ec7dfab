package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailplus/inventory-engine/internal/config"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// A single connection keeps the in-memory database alive across queries.
	db.SetMaxOpenConns(1)

	require.NoError(t, InitSchema(context.Background(), db))
	return db
}

func seedTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()

	demand := []struct {
		product, store int64
		date           string
		price, qty     float64
		trend          string
	}{
		{101, 1, "2025-01-01", 24.99, 120, "Increasing"},
		{101, 1, "2025-01-02", 24.99, 135, "Increasing"},
		{101, 1, "2025-01-03", 22.49, 160, "Increasing"},
		{202, 1, "2025-01-01", 9.99, 40, "Stable"},
		{202, 2, "2025-01-01", 9.99, 75, "Stable"},
	}
	for _, d := range demand {
		date, err := time.Parse("2006-01-02", d.date)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `
			INSERT INTO demand_history (product_id, store_id, date, price, sales_quantity, promotions, seasonality, demand_trend)
			VALUES ($1, $2, $3, $4, $5, '', '', $6)`,
			d.product, d.store, date, d.price, d.qty, d.trend)
		require.NoError(t, err)
	}

	inventory := []struct {
		product, store                          int64
		stock, reorder, leadTime, freq, capacity float64
	}{
		{101, 1, 30, 80, 5, 0.12, 500},
		{202, 1, 200, 60, 3, 0.02, 400},
		{202, 2, 10, 90, 7, 0.30, 300},
	}
	for _, i := range inventory {
		_, err := db.ExecContext(ctx, `
			INSERT INTO inventory_levels (product_id, store_id, stock_level, reorder_point, supplier_lead_time_days, stockout_frequency, warehouse_capacity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			i.product, i.store, i.stock, i.reorder, i.leadTime, i.freq, i.capacity)
		require.NoError(t, err)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO pricing_history (product_id, store_id, price, competitor_price, discount_pct, sales_volume, return_rate_pct, storage_cost, elasticity_index)
		VALUES (101, 1, 24.99, 22.50, 0, 1200, 2.5, 4.10, 1.4)`)
	require.NoError(t, err)
}

func TestDemandRepository_Summarize(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewDemandRepository(db)

	summary, err := repo.Summarize(context.Background(), 101, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Rows)
	assert.InDelta(t, 415, summary.TotalSales, 0.001)
	assert.InDelta(t, 120, summary.MinSales, 0.001)
	assert.InDelta(t, 160, summary.MaxSales, 0.001)
}

func TestDemandRepository_Summarize_NotFound(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewDemandRepository(db)

	_, err := repo.Summarize(context.Background(), 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDemandRepository_History_OrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewDemandRepository(db)

	records, err := repo.History(context.Background(), 101, 1, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.True(t, records[0].Date.After(records[1].Date))
	assert.InDelta(t, 160, records[0].SalesQuantity, 0.001)
}

func TestDemandRepository_TopProducts(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewDemandRepository(db)

	top, err := repo.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, int64(101), top[0].ProductID)
	assert.InDelta(t, 415, top[0].TotalSales, 0.001)
}

func TestDemandRepository_ListProducts(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewDemandRepository(db)

	refs, err := repo.ListProducts(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
}

func TestInventoryRepository_Get(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewInventoryRepository(db)

	rec, err := repo.Get(context.Background(), 101, 1)
	require.NoError(t, err)

	assert.InDelta(t, 30, rec.StockLevel, 0.001)
	assert.InDelta(t, 80, rec.ReorderPoint, 0.001)
	// Latest sales quantity joined in.
	assert.InDelta(t, 160, rec.SalesQuantity, 0.001)
}

func TestInventoryRepository_Get_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewInventoryRepository(db)

	_, err := repo.Get(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInventoryRepository_CriticalItems(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewInventoryRepository(db)

	items, err := repo.CriticalItems(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// (202, 2) has the larger shortfall: 90-10=80 vs 80-30=50.
	assert.Equal(t, int64(202), items[0].ProductID)
	assert.Equal(t, int64(2), items[0].StoreID)
}

func TestPricingRepository_Get(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewPricingRepository(db)

	rec, err := repo.Get(context.Background(), 101, 1)
	require.NoError(t, err)

	assert.InDelta(t, 24.99, rec.Price, 0.001)
	assert.InDelta(t, 22.50, rec.CompetitorPrice, 0.001)
	assert.InDelta(t, 30, rec.StockLevel, 0.001)
}

func TestPricingRepository_Get_NotFound(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewPricingRepository(db)

	_, err := repo.Get(context.Background(), 202, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsRepository_DashboardStats(t *testing.T) {
	db := openTestDB(t)
	seedTestData(t, db)
	repo := NewStatsRepository(db)

	stats, err := repo.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.TotalStores)
	assert.Equal(t, int64(2), stats.CriticalItems)
	assert.Equal(t, int64(94), stats.OptimizationAccuracy)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
