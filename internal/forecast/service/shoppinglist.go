package service

import (
	"math"
	"sort"
	"time"

	"github.com/pantrysense/pantrysense/internal/forecast/domain"
)

// buildShoppingList buckets filtered patterns by urgency within the
// planning horizon. Items needed later than twice the horizon are left
// off the list entirely.
func buildShoppingList(patterns domain.ConsumptionPatterns, daysAhead int, minConfidence *float64, now time.Time) domain.ShoppingList {
	needed := []domain.ShoppingListItem{}
	soon := []domain.ShoppingListItem{}

	for _, pattern := range patterns.Products {
		if minConfidence != nil && pattern.Confidence < *minConfidence {
			continue
		}

		suggestedQty := int(math.Ceil(pattern.MedianQuantityPerPurchase))
		if suggestedQty < 1 {
			suggestedQty = 1
		}

		urgency := domain.UrgencyLater
		switch {
		case pattern.DaysUntilNeeded <= float64(daysAhead):
			urgency = domain.UrgencyNeeded
		case pattern.DaysUntilNeeded <= float64(daysAhead*2):
			urgency = domain.UrgencySoon
		}

		item := domain.ShoppingListItem{
			ProductName:              pattern.ProductName,
			ProductID:                pattern.ProductID,
			SuggestedQuantity:        suggestedQty,
			Urgency:                  urgency,
			EstimatedDaysUntilNeeded: round1(pattern.DaysUntilNeeded),
			EstimatedInventory:       round1(pattern.EstimatedInventory),
			MedianPrice:              round2(pattern.MedianPrice),
			EstimatedCost:            round2(pattern.MedianPrice * float64(suggestedQty)),
			Confidence:               pattern.Confidence,
			LastPurchaseDate:         pattern.LastPurchaseDate,
			PurchaseCount:            pattern.PurchaseCount,
			MedianIntervalDays:       round1(pattern.MedianIntervalDays),
			WeightedAvgIntervalDays:  round1(pattern.WeightedAvgIntervalDays),
		}

		switch urgency {
		case domain.UrgencyNeeded:
			needed = append(needed, item)
		case domain.UrgencySoon:
			soon = append(soon, item)
		}
	}

	sort.SliceStable(needed, func(i, j int) bool {
		return needed[i].EstimatedDaysUntilNeeded < needed[j].EstimatedDaysUntilNeeded
	})
	sort.SliceStable(soon, func(i, j int) bool {
		return soon[i].EstimatedDaysUntilNeeded < soon[j].EstimatedDaysUntilNeeded
	})

	estimatedTotal := 0.0
	for _, item := range needed {
		estimatedTotal += item.EstimatedCost
	}

	return domain.ShoppingList{
		GeneratedAt:         now,
		PlanningHorizonDays: daysAhead,
		NeededItems:         needed,
		MightNeedSoon:       soon,
		EstimatedTotal:      round2(estimatedTotal),
		ItemsAnalyzed:       patterns.TotalProductsAnalyzed,
		ItemsFilteredOut:    patterns.ProductsFilteredOut,
	}
}
