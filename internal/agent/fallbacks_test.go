package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackPayloadsAreDeterministic(t *testing.T) {
	a := NewFallbackTable()
	b := NewFallbackTable()
	target := Target{ProductID: 437, StoreID: 12}

	for _, kind := range Kinds() {
		assert.Equal(t, a.Payload(kind, target), b.Payload(kind, target), "kind %s", kind)
		assert.Equal(t, a.Payload(kind, target), a.Payload(kind, target), "kind %s", kind)
	}
}

func TestFallbackPayloadsAreSchemaComplete(t *testing.T) {
	table := NewFallbackTable()
	target := Target{ProductID: 1, StoreID: 1}

	for _, kind := range Kinds() {
		payload := table.Payload(kind, target)
		require.Len(t, payload, len(Schema(kind)), "kind %s", kind)
		for _, field := range Schema(kind) {
			assert.Contains(t, payload, field.Name, "kind %s", kind)
		}
	}
}

func TestFallbackVariesByProduct(t *testing.T) {
	table := NewFallbackTable()

	a := table.Payload(KindInventory, Target{ProductID: 3, StoreID: 1})
	b := table.Payload(KindInventory, Target{ProductID: 90, StoreID: 1})
	assert.NotEqual(t, a["current_stock"], b["current_stock"])
}

func TestStockStatusLadder(t *testing.T) {
	cases := []struct {
		stock, reorder float64
		status, code   string
	}{
		{0, 40, "Out of Stock", "out_of_stock"},
		{15, 40, "Critical", "critical"},
		{30, 40, "Low", "low"},
		{60, 40, "Adequate", "adequate"},
		{90, 40, "Overstock", "overstock"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, stockStatus(tc.stock, tc.reorder))
		assert.Equal(t, tc.code, stockStatusCode(tc.stock, tc.reorder))
	}
}

func TestInventoryFallbackArithmetic(t *testing.T) {
	table := NewFallbackTable()
	target := Target{ProductID: 101, StoreID: 1}

	payload := table.Payload(KindInventory, target)
	assert.Equal(t, float64(50+101%150), payload["current_stock"])
	assert.Equal(t, float64(25+101%50), payload["reorder_point"])
	assert.Equal(t, float64(3+101%7), payload["lead_time_days"])
	assert.Equal(t, "6.00%", payload["stockout_frequency"])
}

func TestSupplyChainFallbackEOQ(t *testing.T) {
	table := NewFallbackTable()
	target := Target{ProductID: 101, StoreID: 1}

	payload := table.Payload(KindSupplyChain, target)
	// EOQ over annual demand 1301, order cost 26, holding cost 0.21.
	assert.Equal(t, "568 units", payload["optimal_order_quantity"])

	actions, ok := payload["recommended_actions"].([]string)
	require.True(t, ok)
	assert.NotEmpty(t, actions)
	assert.LessOrEqual(t, len(actions), 5)
}

func TestPricingDiscountBands(t *testing.T) {
	assert.Equal(t, "0% (No discount needed)", recommendedDiscount(10, 12))
	assert.Equal(t, "0% (No discount needed)", recommendedDiscount(100, 96))
	assert.Equal(t, "10%", recommendedDiscount(100, 90))
	assert.Equal(t, "15% (Maximum recommended discount)", recommendedDiscount(100, 70))
}

func TestOptimizeFallbackImpactMap(t *testing.T) {
	table := NewFallbackTable()
	payload := table.Payload(KindOptimize, Target{ProductID: 9, StoreID: 2})

	impact, ok := payload["projected_impact"].(map[string]any)
	require.True(t, ok)
	for _, key := range impactKeys {
		assert.Contains(t, impact, key)
	}
	assert.Contains(t, fmt.Sprint(payload["demand_forecast"]), "Product 9")
	assert.Contains(t, fmt.Sprint(payload["optimal_inventory_level"]), "Store 2")
}
