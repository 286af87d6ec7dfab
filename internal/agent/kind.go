// Package agent implements the retail optimization agents: prompt
// construction, model dispatch, and normalization of model output into the
// fixed per-kind result schemas.
package agent

import "fmt"

// Kind identifies one of the five request kinds. Each kind has its own
// prompt template, result schema, and fallback payload.
type Kind string

const (
	KindForecast    Kind = "forecast"
	KindInventory   Kind = "inventory"
	KindPricing     Kind = "pricing"
	KindSupplyChain Kind = "supply_chain"
	KindOptimize    Kind = "optimize"
)

// Kinds lists all request kinds.
func Kinds() []Kind {
	return []Kind{KindForecast, KindInventory, KindPricing, KindSupplyChain, KindOptimize}
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindForecast, KindInventory, KindPricing, KindSupplyChain, KindOptimize:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown request kind: %q", s)
	}
}

// FieldClass describes how a schema field's value is coerced.
type FieldClass int

const (
	// FieldNumber coerces numeric strings to float64.
	FieldNumber FieldClass = iota
	// FieldString keeps strings verbatim and formats scalar values.
	FieldString
	// FieldStringList coerces to a list of strings.
	FieldStringList
	// FieldImpactMap coerces to the projected-impact map with fixed subkeys.
	FieldImpactMap
)

// Field is one entry of a kind's result schema.
type Field struct {
	Name  string
	Class FieldClass
}

// impactKeys are the fixed subkeys of the projected_impact map.
var impactKeys = []string{"revenue", "costs", "profit_margin", "stockout_risk"}

// percentImpactKeys are the projected_impact subkeys formatted as signed
// percentages when the model returns bare numbers.
var percentImpactKeys = map[string]bool{
	"revenue":       true,
	"costs":         true,
	"profit_margin": true,
}

var schemas = map[Kind][]Field{
	KindForecast: {
		{Name: "forecast_quantity", Class: FieldNumber},
		{Name: "explanation", Class: FieldString},
	},
	KindInventory: {
		{Name: "current_stock", Class: FieldNumber},
		{Name: "reorder_point", Class: FieldNumber},
		{Name: "status", Class: FieldString},
		{Name: "status_code", Class: FieldString},
		{Name: "lead_time_days", Class: FieldNumber},
		{Name: "stockout_frequency", Class: FieldString},
		{Name: "details", Class: FieldString},
		{Name: "recommendations", Class: FieldString},
	},
	KindPricing: {
		{Name: "optimal_price", Class: FieldString},
		{Name: "recommended_discount_percentage", Class: FieldString},
		{Name: "elasticity_assessment", Class: FieldString},
		{Name: "expected_sales_impact", Class: FieldString},
		{Name: "expected_profit_impact", Class: FieldString},
	},
	KindSupplyChain: {
		{Name: "optimal_order_quantity", Class: FieldString},
		{Name: "recommended_order_frequency_days", Class: FieldString},
		{Name: "supplier_performance", Class: FieldString},
		{Name: "warehouse_capacity_status", Class: FieldString},
		{Name: "recommended_actions", Class: FieldStringList},
	},
	KindOptimize: {
		{Name: "demand_forecast", Class: FieldString},
		{Name: "optimal_inventory_level", Class: FieldString},
		{Name: "pricing_strategy", Class: FieldString},
		{Name: "order_recommendations", Class: FieldString},
		{Name: "key_actions", Class: FieldStringList},
		{Name: "projected_impact", Class: FieldImpactMap},
	},
}

// Schema returns the result schema for a kind.
func Schema(kind Kind) []Field {
	return schemas[kind]
}

// Target identifies the product and store a request operates on.
type Target struct {
	ProductID int64
	StoreID   int64
}
