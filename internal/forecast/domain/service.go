package domain

import (
	"context"
	"errors"
)

// PatternOptions tune the estimator and the inclusion filter. Zero
// values fall back to configured defaults.
type PatternOptions struct {
	DecayRate          float64
	MinPurchases       int
	MaxAvgIntervalDays float64
	MaxDaysSinceLast   float64
}

// ShoppingListOptions extend PatternOptions with the planning horizon
// and an optional confidence floor. A nil MinConfidence keeps every
// item regardless of confidence.
type ShoppingListOptions struct {
	PatternOptions
	DaysAhead     int
	MinConfidence *float64
}

type Service interface {
	ConsumptionPatterns(ctx context.Context, opts PatternOptions) (ConsumptionPatterns, error)
	ShoppingList(ctx context.Context, opts ShoppingListOptions) (ShoppingList, error)
	ProductDetail(ctx context.Context, productName string, decayRate float64) (ProductDetail, error)
}

var ErrNoPurchaseHistory = errors.New("no_purchase_history")
