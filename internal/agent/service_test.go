package agent

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailplus/inventory-engine/internal/cache"
	"github.com/retailplus/inventory-engine/internal/llm"
	"github.com/retailplus/inventory-engine/internal/storage"
)

// scriptedModel returns canned responses and records the prompts it saw.
type scriptedModel struct {
	responses []string
	err       error
	prompts   []string
	calls     int
}

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "{}", nil
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func newTestService(t *testing.T, model ModelClient, c cache.Client) *Service {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, storage.InitSchema(context.Background(), db))

	seedServiceData(t, db)

	return NewService(ServiceParams{
		Demand:    storage.NewDemandRepository(db),
		Inventory: storage.NewInventoryRepository(db),
		Pricing:   storage.NewPricingRepository(db),
		Model:     model,
		Cache:     c,
		CacheTTL:  time.Minute,
	})
}

func seedServiceData(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO demand_history (product_id, store_id, date, price, sales_quantity, promotions, seasonality, demand_trend)
		VALUES (101, 1, $1, 24.99, 120, '', '', 'Increasing'),
		       (101, 1, $2, 24.99, 140, '', '', 'Increasing')`,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO inventory_levels (product_id, store_id, stock_level, reorder_point, supplier_lead_time_days, stockout_frequency, warehouse_capacity)
		VALUES (101, 1, 30, 80, 5, 0.12, 500)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO pricing_history (product_id, store_id, price, competitor_price, discount_pct, sales_volume, return_rate_pct, storage_cost, elasticity_index)
		VALUES (101, 1, 24.99, 22.50, 0, 1200, 2.5, 4.10, 1.4)`)
	require.NoError(t, err)
}

func TestForecastHappyPath(t *testing.T) {
	model := &scriptedModel{responses: []string{`{"forecast_quantity": 220, "explanation": "Upward trend."}`}}
	svc := newTestService(t, model, nil)

	result, err := svc.Forecast(context.Background(), Target{ProductID: 101, StoreID: 1}, 30)
	require.NoError(t, err)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 220.0, result.Fields["forecast_quantity"])
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "product ID 101")
	assert.Contains(t, model.prompts[0], "next 30 days")
}

func TestForecastUnknownProduct(t *testing.T) {
	svc := newTestService(t, &scriptedModel{}, nil)

	_, err := svc.Forecast(context.Background(), Target{ProductID: 999, StoreID: 1}, 30)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestForecastDefaultsDaysAhead(t *testing.T) {
	model := &scriptedModel{responses: []string{`{"forecast_quantity": 100, "explanation": "ok"}`}}
	svc := newTestService(t, model, nil)

	_, err := svc.Forecast(context.Background(), Target{ProductID: 101, StoreID: 1}, 0)
	require.NoError(t, err)
	assert.Contains(t, model.prompts[0], "next 30 days")
}

func TestModelTransportFailureUsesFallback(t *testing.T) {
	model := &scriptedModel{err: llm.ErrTransport}
	svc := newTestService(t, model, nil)
	target := Target{ProductID: 101, StoreID: 1}

	result, err := svc.InventoryStatus(context.Background(), target)
	require.NoError(t, err)

	assert.True(t, result.UsedFallback)
	assert.Equal(t, NewFallbackTable().Payload(KindInventory, target), result.Fields)
}

func TestMalformedModelOutputUsesFallback(t *testing.T) {
	model := &scriptedModel{responses: []string{"I am unable to produce JSON today."}}
	svc := newTestService(t, model, nil)

	result, err := svc.Pricing(context.Background(), Target{ProductID: 101, StoreID: 1})
	require.NoError(t, err)
	assert.True(t, result.UsedFallback)
}

func TestResultsAreCached(t *testing.T) {
	model := &scriptedModel{responses: []string{`{"forecast_quantity": 220, "explanation": "Upward trend."}`}}
	memCache := cache.NewMemoryClient(10)
	t.Cleanup(func() { memCache.Close() })
	svc := newTestService(t, model, memCache)
	target := Target{ProductID: 101, StoreID: 1}

	first, err := svc.Forecast(context.Background(), target, 30)
	require.NoError(t, err)
	second, err := svc.Forecast(context.Background(), target, 30)
	require.NoError(t, err)

	assert.Equal(t, 1, model.calls)
	assert.Equal(t, first.Fields["forecast_quantity"], second.Fields["forecast_quantity"])
}

func TestFallbackResultsAreNotCached(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}
	memCache := cache.NewMemoryClient(10)
	t.Cleanup(func() { memCache.Close() })
	svc := newTestService(t, model, memCache)
	target := Target{ProductID: 101, StoreID: 1}

	_, err := svc.SupplyChain(context.Background(), target)
	require.NoError(t, err)
	_, err = svc.SupplyChain(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, 2, model.calls)
}

func TestOptimizeCoordinatesAllKinds(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"forecast_quantity": 220, "explanation": "Upward trend."}`,
		`{"current_stock": 30, "status": "Low"}`,
		`{"optimal_price": "$23.99"}`,
		`{"optimal_order_quantity": "90 units"}`,
		`{"demand_forecast": "220 units next month", "key_actions": ["Reorder", "Discount"], "projected_impact": {"revenue": "+5%"}}`,
	}}
	svc := newTestService(t, model, nil)
	target := Target{ProductID: 101, StoreID: 1}

	result, err := svc.Optimize(context.Background(), target)
	require.NoError(t, err)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 5, model.calls)
	assert.Equal(t, "220 units next month", result.Fields["demand_forecast"])

	// The coordinator prompt embeds the four specialized results.
	coordPrompt := model.prompts[4]
	assert.Contains(t, coordPrompt, "demand_forecast")
	assert.Contains(t, coordPrompt, "supply_chain_recommendations")

	impact, ok := result.Fields["projected_impact"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "+5%", impact["revenue"])
	assert.Contains(t, impact, "stockout_risk")
}

func TestOptimizeUnknownProductFails(t *testing.T) {
	svc := newTestService(t, &scriptedModel{}, nil)

	_, err := svc.Optimize(context.Background(), Target{ProductID: 999, StoreID: 9})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
