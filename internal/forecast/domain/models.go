package domain

import "time"

// Urgency buckets a shopping list item by how soon it is needed.
type Urgency string

const (
	UrgencyNeeded Urgency = "needed"
	UrgencySoon   Urgency = "soon"
	UrgencyLater  Urgency = "later"
)

// PurchaseEvent is one line item occurrence of a product. Dates are
// normalized to UTC when the history is extracted.
type PurchaseEvent struct {
	Date      time.Time `json:"date"`
	Quantity  float64   `json:"quantity"`
	UnitPrice *float64  `json:"unit_price"`
	ReceiptID string    `json:"receipt_id"`
	ProductID string    `json:"product_id,omitempty"`
}

// ConsumptionPattern is the estimated consumption model for one product.
type ConsumptionPattern struct {
	ProductName              string    `json:"product_name"`
	ProductID                string    `json:"product_id"`
	PurchaseCount            int       `json:"purchase_count"`
	TotalQuantityPurchased   float64   `json:"total_quantity_purchased"`
	MedianQuantityPerPurchase float64  `json:"median_quantity_per_purchase"`
	MedianIntervalDays       float64   `json:"median_interval_days"`
	WeightedAvgIntervalDays  float64   `json:"weighted_avg_interval_days"`
	ConsumptionRatePerDay    float64   `json:"consumption_rate_per_day"`
	LastPurchaseDate         time.Time `json:"last_purchase_date"`
	DaysSinceLastPurchase    float64   `json:"days_since_last_purchase"`
	EstimatedInventory       float64   `json:"estimated_inventory"`
	DaysUntilNeeded          float64   `json:"days_until_needed"`
	MedianPrice              float64   `json:"median_price"`
	Confidence               float64   `json:"confidence"`
}

type ShoppingListItem struct {
	ProductName             string    `json:"product_name"`
	ProductID               string    `json:"product_id"`
	SuggestedQuantity       int       `json:"suggested_quantity"`
	Urgency                 Urgency   `json:"urgency"`
	EstimatedDaysUntilNeeded float64  `json:"estimated_days_until_needed"`
	EstimatedInventory      float64   `json:"estimated_inventory"`
	MedianPrice             float64   `json:"median_price"`
	EstimatedCost           float64   `json:"estimated_cost"`
	Confidence              float64   `json:"confidence"`
	LastPurchaseDate        time.Time `json:"last_purchase_date"`
	PurchaseCount           int       `json:"purchase_count"`
	MedianIntervalDays      float64   `json:"median_interval_days,omitempty"`
	WeightedAvgIntervalDays float64   `json:"weighted_avg_interval_days,omitempty"`
}

type ShoppingList struct {
	GeneratedAt         time.Time          `json:"generated_at"`
	PlanningHorizonDays int                `json:"planning_horizon_days"`
	NeededItems         []ShoppingListItem `json:"needed_items"`
	MightNeedSoon       []ShoppingListItem `json:"might_need_soon"`
	EstimatedTotal      float64            `json:"estimated_total"`
	ItemsAnalyzed       int                `json:"items_analyzed"`
	ItemsFilteredOut    int                `json:"items_filtered_out"`
}

// FilterCriteria echoes the thresholds applied to the pattern listing.
type FilterCriteria struct {
	MinPurchases       int     `json:"min_purchases"`
	MaxAvgIntervalDays float64 `json:"max_avg_interval_days"`
	MaxDaysSinceLast   float64 `json:"max_days_since_last"`
}

type ConsumptionPatterns struct {
	GeneratedAt           time.Time            `json:"generated_at"`
	Products              []ConsumptionPattern `json:"products"`
	TotalProductsAnalyzed int                  `json:"total_products_analyzed"`
	ProductsFilteredOut   int                  `json:"products_filtered_out"`
	FilterCriteria        FilterCriteria       `json:"filter_criteria"`
}

type ProductDetail struct {
	ProductName           string             `json:"product_name"`
	ProductID             string             `json:"product_id"`
	PurchaseHistory       []PurchaseEvent    `json:"purchase_history"`
	ConsumptionPattern    ConsumptionPattern `json:"consumption_pattern"`
	PredictionExplanation string             `json:"prediction_explanation"`
}
