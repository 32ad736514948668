package service

import "github.com/pantrysense/pantrysense/internal/forecast/domain"

// shouldInclude drops one-off purchases, rarely bought products and
// products no longer being bought.
func shouldInclude(pattern domain.ConsumptionPattern, criteria domain.FilterCriteria) bool {
	if pattern.PurchaseCount < criteria.MinPurchases {
		return false
	}
	if pattern.MedianIntervalDays > criteria.MaxAvgIntervalDays {
		return false
	}
	if pattern.DaysSinceLastPurchase > criteria.MaxDaysSinceLast {
		return false
	}
	return true
}
