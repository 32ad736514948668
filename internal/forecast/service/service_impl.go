package service

import (
	"context"
	"sort"

	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/config"
	"github.com/pantrysense/pantrysense/internal/forecast/domain"
	"github.com/pantrysense/pantrysense/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Holder  *config.ForecastConfigHolder
	Clock   clock.Clock
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	holder  *config.ForecastConfigHolder
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("forecast.service"),
		holder:  p.Holder,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func clampFloat(value, min, max, def float64) float64 {
	if value == 0 {
		return def
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, min, max, def int) int {
	if value == 0 {
		return def
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// resolveOptions fills defaults from the config holder and clamps
// everything to the supported ranges so the estimator never computes
// on out-of-range values.
func (s *Service) resolveOptions(opts domain.PatternOptions) domain.PatternOptions {
	defaults := s.holder.Get()
	return domain.PatternOptions{
		DecayRate:          clampFloat(opts.DecayRate, 0.001, 0.1, defaults.DecayRate),
		MinPurchases:       clampInt(opts.MinPurchases, 1, 10, defaults.MinPurchases),
		MaxAvgIntervalDays: clampFloat(opts.MaxAvgIntervalDays, 7, 180, defaults.MaxAvgIntervalDays),
		MaxDaysSinceLast:   clampFloat(opts.MaxDaysSinceLast, 14, 365, defaults.MaxDaysSinceLast),
	}
}

func (s *Service) ConsumptionPatterns(ctx context.Context, opts domain.PatternOptions) (domain.ConsumptionPatterns, error) {
	opts = s.resolveOptions(opts)
	now := s.clock.Now()

	histories, err := extractHistory(ctx, s.db, "", 1)
	if err != nil {
		return domain.ConsumptionPatterns{}, err
	}

	criteria := domain.FilterCriteria{
		MinPurchases:       opts.MinPurchases,
		MaxAvgIntervalDays: opts.MaxAvgIntervalDays,
		MaxDaysSinceLast:   opts.MaxDaysSinceLast,
	}

	patterns := []domain.ConsumptionPattern{}
	filteredOut := 0
	for _, history := range histories {
		pattern := estimatePattern(history.Name, history.Events, opts.DecayRate, now)
		if shouldInclude(pattern, criteria) {
			patterns = append(patterns, pattern)
		} else {
			filteredOut++
		}
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].DaysUntilNeeded < patterns[j].DaysUntilNeeded
	})

	s.metrics.RecordForecastGenerated(ctx, "patterns")

	return domain.ConsumptionPatterns{
		GeneratedAt:           now,
		Products:              patterns,
		TotalProductsAnalyzed: len(patterns),
		ProductsFilteredOut:   filteredOut,
		FilterCriteria:        criteria,
	}, nil
}

func (s *Service) ShoppingList(ctx context.Context, opts domain.ShoppingListOptions) (domain.ShoppingList, error) {
	defaults := s.holder.Get()
	daysAhead := clampInt(opts.DaysAhead, 1, 30, defaults.DaysAhead)

	patterns, err := s.ConsumptionPatterns(ctx, opts.PatternOptions)
	if err != nil {
		return domain.ShoppingList{}, err
	}

	list := buildShoppingList(patterns, daysAhead, opts.MinConfidence, patterns.GeneratedAt)

	s.metrics.RecordForecastGenerated(ctx, "shopping_list")
	s.log.Debug("shopping list generated",
		zap.Int("needed", len(list.NeededItems)),
		zap.Int("soon", len(list.MightNeedSoon)),
		zap.Int("filtered_out", list.ItemsFilteredOut),
	)

	return list, nil
}

func (s *Service) ProductDetail(ctx context.Context, productName string, decayRate float64) (domain.ProductDetail, error) {
	defaults := s.holder.Get()
	decayRate = clampFloat(decayRate, 0.001, 0.1, defaults.DecayRate)
	now := s.clock.Now()

	histories, err := extractHistory(ctx, s.db, productName, 1)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	if len(histories) == 0 {
		return domain.ProductDetail{}, domain.ErrNoPurchaseHistory
	}

	matched := matchProduct(histories, productName)
	pattern := estimatePattern(matched.Name, matched.Events, decayRate, now)

	// Most recent purchases first.
	history := make([]domain.PurchaseEvent, len(matched.Events))
	for i, event := range matched.Events {
		history[len(matched.Events)-1-i] = event
	}

	s.metrics.RecordForecastGenerated(ctx, "product_detail")

	return domain.ProductDetail{
		ProductName:           matched.Name,
		ProductID:             pattern.ProductID,
		PurchaseHistory:       history,
		ConsumptionPattern:    pattern,
		PredictionExplanation: explainPrediction(pattern),
	}, nil
}
