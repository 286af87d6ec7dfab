package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(NewFallbackTable())
}

func fieldNames(kind Kind) []string {
	names := make([]string, 0, len(Schema(kind)))
	for _, f := range Schema(kind) {
		names = append(names, f.Name)
	}
	return names
}

func TestNormalizeCleanJSON(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := `{"forecast_quantity": 250, "explanation": "Steady growth expected."}`
	result := n.Normalize(raw, KindForecast, target)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 250.0, result.Fields["forecast_quantity"])
	assert.Equal(t, "Steady growth expected.", result.Fields["explanation"])
}

func TestNormalizeMarkdownFences(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := "Here is the forecast:\n```json\n{\"forecast_quantity\": 180, \"explanation\": \"Seasonal peak.\"}\n```\nLet me know if you need more."
	result := n.Normalize(raw, KindForecast, target)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 180.0, result.Fields["forecast_quantity"])
}

func TestNormalizeObjectEmbeddedInProse(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := `Sure! Based on the data, {"forecast_quantity": 90, "explanation": "Declining {trend} detected."} is my analysis.`
	result := n.Normalize(raw, KindForecast, target)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 90.0, result.Fields["forecast_quantity"])
	assert.Equal(t, "Declining {trend} detected.", result.Fields["explanation"])
}

func TestNormalizeRepairsMalformedJSON(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	cases := map[string]string{
		"unquoted keys":   `{forecast_quantity: 42, explanation: "ok"}`,
		"single quotes":   `{'forecast_quantity': 42, 'explanation': 'ok'}`,
		"trailing commas": `{"forecast_quantity": 42, "explanation": "ok",}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			result := n.Normalize(raw, KindForecast, target)
			assert.False(t, result.UsedFallback)
			assert.Equal(t, 42.0, result.Fields["forecast_quantity"])
		})
	}
}

func TestNormalizeGarbageFallsBack(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	for _, raw := range []string{"", "I cannot answer that.", "{{{{", "[1, 2, 3]"} {
		result := n.Normalize(raw, KindForecast, target)
		assert.True(t, result.UsedFallback, "input %q", raw)
		for _, name := range fieldNames(KindForecast) {
			assert.Contains(t, result.Fields, name)
		}
	}
}

func TestNormalizeFillsMissingFields(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := `{"current_stock": 75}`
	result := n.Normalize(raw, KindInventory, target)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 75.0, result.Fields["current_stock"])
	for _, name := range fieldNames(KindInventory) {
		assert.Contains(t, result.Fields, name)
	}
	// Filled fields come from the fallback payload for this target.
	fb := NewFallbackTable().Payload(KindInventory, target)
	assert.Equal(t, fb["recommendations"], result.Fields["recommendations"])
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := `{"forecast_quantity": 10, "explanation": "ok", "confidence": 0.9, "model_notes": "n/a"}`
	result := n.Normalize(raw, KindForecast, target)

	assert.Len(t, result.Fields, len(Schema(KindForecast)))
	assert.NotContains(t, result.Fields, "confidence")
	assert.NotContains(t, result.Fields, "model_notes")
}

func TestNormalizeNumericCoercion(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := `{"forecast_quantity": "312.5", "explanation": 7}`
	result := n.Normalize(raw, KindForecast, target)

	assert.Equal(t, 312.5, result.Fields["forecast_quantity"])
	assert.Equal(t, "7", result.Fields["explanation"])
}

func TestNormalizeNonNumericStringFallsBackPerField(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := `{"forecast_quantity": "about a hundred", "explanation": "fuzzy"}`
	result := n.Normalize(raw, KindForecast, target)

	assert.False(t, result.UsedFallback)
	fb := NewFallbackTable().Payload(KindForecast, target)
	assert.Equal(t, fb["forecast_quantity"], result.Fields["forecast_quantity"])
	assert.Equal(t, "fuzzy", result.Fields["explanation"])
}

func TestNormalizeStringListCoercion(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 7, StoreID: 2}

	raw := `{"recommended_actions": ["Order now", "Review supplier"]}`
	result := n.Normalize(raw, KindSupplyChain, target)
	assert.Equal(t, []string{"Order now", "Review supplier"}, result.Fields["recommended_actions"])

	raw = `{"recommended_actions": "1. Order now\n2. Review supplier\n3. Audit warehouse"}`
	result = n.Normalize(raw, KindSupplyChain, target)
	assert.Equal(t, []string{"Order now", "Review supplier", "Audit warehouse"}, result.Fields["recommended_actions"])
}

func TestNormalizeImpactMap(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 55, StoreID: 3}

	raw := `{"projected_impact": {"revenue": 8.5, "costs": "-2%", "extra": "dropped"}}`
	result := n.Normalize(raw, KindOptimize, target)

	impact, ok := result.Fields["projected_impact"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "+8.5%", impact["revenue"])
	assert.Equal(t, "-2%", impact["costs"])
	assert.NotContains(t, impact, "extra")

	// Missing subkeys are backfilled from the fallback map.
	fb := NewFallbackTable().Payload(KindOptimize, target)["projected_impact"].(map[string]any)
	assert.Equal(t, fb["profit_margin"], impact["profit_margin"])
	assert.Equal(t, fb["stockout_risk"], impact["stockout_risk"])
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newTestNormalizer()
	target := Target{ProductID: 101, StoreID: 1}

	raw := `{current_stock: 75, 'status': "Low", "recommendations": "Reorder soon",}`
	first := n.Normalize(raw, KindInventory, target)

	serialized, err := json.Marshal(first.Fields)
	require.NoError(t, err)
	second := n.Normalize(string(serialized), KindInventory, target)

	assert.False(t, second.UsedFallback)
	assert.Equal(t, first.Fields, second.Fields)
}

func TestExtractObjectBalancedBraces(t *testing.T) {
	candidate, ok := firstBalancedObject(`noise {"a": {"b": "} tricky"}, "c": 1} trailing`)
	require.True(t, ok)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(candidate), &obj))
	assert.Equal(t, 1.0, obj["c"])
}
