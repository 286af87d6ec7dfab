package agent

import (
	"encoding/json"
	"fmt"

	"github.com/retailplus/inventory-engine/internal/storage"
)

// Prompt templates for each request kind. Each template embeds the relevant
// store data as JSON and spells out the exact response structure, since the
// small models this service targets drift from loose instructions.

func forecastPrompt(target Target, daysAhead int, summary *storage.DemandSummary) string {
	data, _ := json.Marshal(summary)
	return fmt.Sprintf(`I need a demand forecast for product ID %d at store ID %d for the next %d days.

Here is the historical sales data summary:
%s

Please provide a predicted demand quantity for the next %d days and an explanation of your forecast.
Consider seasonality, trends, and any external factors.

Respond with a JSON object of this exact structure:
{
  "forecast_quantity": 123,
  "explanation": "Explanation of the forecast"
}`, target.ProductID, target.StoreID, daysAhead, data, daysAhead)
}

func inventoryPrompt(target Target, record *storage.InventoryRecord) string {
	data, _ := json.Marshal(record)
	return fmt.Sprintf(`I need an inventory status analysis for product ID %d at store ID %d.

Here is the current inventory data:
%s

Please analyze the inventory status and provide current stock assessment, reorder recommendations, and stockout risk.

Respond with a JSON object of this exact structure:
{
  "current_stock": 123,
  "reorder_point": 45,
  "status": "Current inventory status (e.g., Adequate, Low, Critical, Overstock)",
  "status_code": "status code (e.g., adequate, low, critical, overstock)",
  "lead_time_days": 5,
  "stockout_frequency": "frequency as a percentage",
  "details": "Details about the current inventory situation",
  "recommendations": "Recommended actions"
}`, target.ProductID, target.StoreID, data)
}

func pricingPrompt(target Target, record *storage.PricingRecord) string {
	data, _ := json.Marshal(record)
	return fmt.Sprintf(`I need pricing optimization recommendations for product ID %d at store ID %d.

Here is the pricing and sales data:
%s

Please analyze the data and provide an optimal price point, discount recommendations, a price elasticity assessment, and the expected impact on sales and profit.

Respond with a JSON object of this exact structure:
{
  "optimal_price": "$24.99",
  "recommended_discount_percentage": "5%%",
  "elasticity_assessment": "assessment text",
  "expected_sales_impact": "impact description",
  "expected_profit_impact": "impact description"
}`, target.ProductID, target.StoreID, data)
}

func supplyChainPrompt(target Target, record *storage.InventoryRecord) string {
	data, _ := json.Marshal(record)
	return fmt.Sprintf(`I need supply chain recommendations for product ID %d at store ID %d.

Here is the inventory and supply chain data:
%s

Please analyze the data and provide an optimal order quantity, recommended order frequency, a supplier performance assessment, a warehouse capacity assessment, and recommended actions.

Respond with a JSON object of this exact structure:
{
  "optimal_order_quantity": "120 units",
  "recommended_order_frequency_days": "14 days",
  "supplier_performance": "performance assessment",
  "warehouse_capacity_status": "capacity assessment",
  "recommended_actions": ["Action 1", "Action 2", "Action 3"]
}`, target.ProductID, target.StoreID, data)
}

func optimizePrompt(target Target, sections map[string]any) string {
	data, _ := json.MarshalIndent(sections, "", "  ")
	return fmt.Sprintf(`I need to coordinate inventory optimization decisions for product ID %d at store ID %d.

Here are the recommendations from the specialized analyses:
%s

Based on all this information, please provide a comprehensive inventory optimization plan covering the final demand forecast, the optimal inventory level to maintain, pricing strategy, order recommendations, key actions to take, and the projected impact on revenue, costs, and profit.

Respond with a JSON object of this exact structure:
{
  "demand_forecast": "Detailed explanation of demand forecast",
  "optimal_inventory_level": "Explanation of optimal inventory with specific numbers",
  "pricing_strategy": "Detailed pricing recommendations with specific numbers",
  "order_recommendations": "Specific ordering recommendations with quantities and timing",
  "key_actions": ["Action 1", "Action 2", "Action 3", "Action 4"],
  "projected_impact": {
    "revenue": "+X%%",
    "costs": "-Y%%",
    "profit_margin": "+Z%%",
    "stockout_risk": "Description"
  }
}

Use only double quotes for keys and string values, do not include trailing commas, and return only the JSON object with no text before or after.`, target.ProductID, target.StoreID, data)
}
