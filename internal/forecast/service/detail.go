package service

import (
	"fmt"
	"strings"

	"github.com/pantrysense/pantrysense/internal/forecast/domain"
)

// matchProduct resolves a searched name against the extracted histories:
// exact case-insensitive match first, then the substring match with the
// most purchases, then the first history (histories arrive in ascending
// name order, so the fallback is deterministic).
func matchProduct(histories []productHistory, productName string) productHistory {
	lowered := strings.ToLower(productName)

	var best *productHistory
	for i := range histories {
		name := strings.ToLower(histories[i].Name)
		if name == lowered {
			return histories[i]
		}
		if strings.Contains(name, lowered) {
			if best == nil || len(histories[i].Events) > len(best.Events) {
				best = &histories[i]
			}
		}
	}
	if best != nil {
		return *best
	}
	return histories[0]
}

func explainPrediction(pattern domain.ConsumptionPattern) string {
	lines := []string{
		fmt.Sprintf("Based on %d purchases:", pattern.PurchaseCount),
		fmt.Sprintf("- You typically buy this every %.1f days", pattern.MedianIntervalDays),
		fmt.Sprintf("- Typical quantity per purchase: %.1f", pattern.MedianQuantityPerPurchase),
		fmt.Sprintf("- Estimated consumption rate: %.3f units/day", pattern.ConsumptionRatePerDay),
		"",
		fmt.Sprintf("Last purchased %.1f days ago.", pattern.DaysSinceLastPurchase),
		fmt.Sprintf("Estimated remaining inventory: %.2f units", pattern.EstimatedInventory),
	}

	switch {
	case pattern.DaysUntilNeeded >= daysUntilNeededCap:
		lines = append(lines, "Unable to predict when you'll need more (insufficient data).")
	case pattern.DaysUntilNeeded <= 0:
		lines = append(lines, "You likely need to restock NOW.")
	case pattern.DaysUntilNeeded <= 4:
		lines = append(lines, fmt.Sprintf("Estimated to need restocking in %.1f days.", pattern.DaysUntilNeeded))
	default:
		lines = append(lines, fmt.Sprintf("Estimated to need restocking in about %.0f days.", pattern.DaysUntilNeeded))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("Confidence: %.0f%%", pattern.Confidence*100),
	)

	return strings.Join(lines, "\n")
}
