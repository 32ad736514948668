package service

import (
	"math"
	"sort"
	"time"

	"github.com/pantrysense/pantrysense/internal/forecast/domain"
)

// daysUntilNeededCap stands in for "never" so values stay sortable and
// JSON-safe.
const daysUntilNeededCap = 9999.0

// decayWeight computes the exponential decay weight of a purchase.
// With decayRate 0.02 a purchase from 35 days ago keeps roughly half
// the weight of one from today.
func decayWeight(daysAgo, decayRate float64) float64 {
	return math.Exp(-decayRate * daysAgo)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

// estimatePattern derives the consumption model for one product from
// its purchase events. Events must be non-empty and sorted ascending
// by date; callers own both guarantees.
func estimatePattern(productName string, events []domain.PurchaseEvent, decayRate float64, now time.Time) domain.ConsumptionPattern {
	if len(events) == 0 {
		panic("estimatePattern: empty purchase history")
	}

	last := events[len(events)-1]

	quantities := make([]float64, 0, len(events))
	totalQuantity := 0.0
	var prices []float64
	for _, event := range events {
		quantities = append(quantities, event.Quantity)
		totalQuantity += event.Quantity
		if event.UnitPrice != nil {
			prices = append(prices, *event.UnitPrice)
		}
	}
	medianQuantity := median(quantities)
	medianPrice := median(prices)

	// Intervals between consecutive purchases, each weighted by how
	// recent the later purchase is.
	var weightedSum, weightSum float64
	intervals := make([]float64, 0, len(events)-1)
	for i := 1; i < len(events); i++ {
		intervalDays := events[i].Date.Sub(events[i-1].Date).Seconds() / 86400
		daysAgo := now.Sub(events[i].Date).Seconds() / 86400
		weight := decayWeight(daysAgo, decayRate)
		intervals = append(intervals, intervalDays)
		weightedSum += intervalDays * weight
		weightSum += weight
	}

	daysSinceLast := now.Sub(last.Date).Seconds() / 86400

	var weightedAvgInterval, medianInterval float64
	if len(intervals) > 0 {
		if weightSum > 0 {
			weightedAvgInterval = weightedSum / weightSum
		}
		medianInterval = median(intervals)
	} else {
		// Single purchase: assume at least a weekly cadence.
		weightedAvgInterval = math.Max(daysSinceLast, 7)
		medianInterval = weightedAvgInterval
	}

	consumptionRate := 0.0
	if weightedAvgInterval > 0 {
		consumptionRate = medianQuantity / weightedAvgInterval
	}

	estimatedInventory := math.Max(0, medianQuantity-daysSinceLast*consumptionRate)

	daysUntilNeeded := daysUntilNeededCap
	if consumptionRate > 0 {
		daysUntilNeeded = math.Min(daysUntilNeededCap, estimatedInventory/consumptionRate)
	}

	return domain.ConsumptionPattern{
		ProductName:               productName,
		ProductID:                 last.ProductID,
		PurchaseCount:             len(events),
		TotalQuantityPurchased:    totalQuantity,
		MedianQuantityPerPurchase: medianQuantity,
		MedianIntervalDays:        medianInterval,
		WeightedAvgIntervalDays:   weightedAvgInterval,
		ConsumptionRatePerDay:     consumptionRate,
		LastPurchaseDate:          last.Date,
		DaysSinceLastPurchase:     daysSinceLast,
		EstimatedInventory:        estimatedInventory,
		DaysUntilNeeded:           daysUntilNeeded,
		MedianPrice:               medianPrice,
		Confidence:                confidence(len(events), medianInterval, daysSinceLast),
	}
}

// confidence scores prediction quality in [0, 1]. More purchases,
// regular intervals and recent activity all raise it; the ceiling
// is 0.9.
func confidence(purchaseCount int, medianInterval, daysSinceLast float64) float64 {
	countFactor := math.Min(1, float64(purchaseCount)/10)

	recencyFactor := 0.5
	if medianInterval > 0 {
		recencyRatio := daysSinceLast / medianInterval
		if recencyRatio > 1 {
			recencyFactor = math.Max(0, 1-(recencyRatio-1)*0.3)
		} else {
			recencyFactor = 1
		}
	}

	score := countFactor * recencyFactor * 0.9
	return round2(math.Max(0, math.Min(1, score)))
}
