package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/config"
	"github.com/pantrysense/pantrysense/internal/observability/metrics"
	"github.com/pantrysense/pantrysense/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxBatchSize = 50

var allowedSorts = map[string]struct{}{
	"RELEVANCE":  {},
	"PRICE_ASC":  {},
	"PRICE_DESC": {},
}

// Catalog is the slice of the retail client the service depends on.
type Catalog interface {
	Product(ctx context.Context, productID string) (*domain.ProductDetail, error)
	ProductByBarcode(ctx context.Context, barcode string) (*domain.ProductDetail, error)
	Search(ctx context.Context, query string, page, size int, sort string) (domain.ProductSearchResponse, error)
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Catalog Catalog
	Clock   clock.Clock
	Config  config.Config
	Metrics *metrics.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	catalog  Catalog
	clock    clock.Clock
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		repo:     p.Repo,
		catalog:  p.Catalog,
		clock:    p.Clock,
		cacheTTL: p.Config.ProductCacheTTL,
		metrics:  p.Metrics,
	}
}

func (s *Service) fetchAndCache(ctx context.Context, productID string) (domain.ProductDetail, error) {
	detail, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return domain.ProductDetail{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if detail == nil {
		return domain.ProductDetail{}, domain.ErrProductNotFound
	}
	s.storeInCache(ctx, *detail)
	return *detail, nil
}

// storeInCache is best effort. A cache write failure must not fail a
// lookup that already succeeded upstream.
func (s *Service) storeInCache(ctx context.Context, detail domain.ProductDetail) {
	now := s.clock.Now()
	row := detailToRow(detail, now, now.Add(s.cacheTTL))
	if err := s.repo.Upsert(ctx, s.db, &row); err != nil {
		s.log.Warn("product cache write failed",
			zap.String("product_id", detail.ProductID),
			zap.Error(err),
		)
	}
}

func (s *Service) Product(ctx context.Context, productID string, refresh bool) (domain.ProductDetail, error) {
	if !refresh {
		row, err := s.repo.Get(ctx, s.db, productID)
		if err != nil {
			return domain.ProductDetail{}, err
		}
		if row != nil && row.Valid(s.clock.Now()) {
			s.metrics.RecordProductCacheHit(ctx, "product_id")
			return rowToDetail(*row), nil
		}
	}
	s.metrics.RecordProductCacheMiss(ctx, "product_id")
	return s.fetchAndCache(ctx, productID)
}

func (s *Service) ProductByWebshopID(ctx context.Context, webshopID string, refresh bool) (domain.ProductDetail, error) {
	if !refresh {
		row, err := s.repo.GetByWebshopID(ctx, s.db, webshopID)
		if err != nil {
			return domain.ProductDetail{}, err
		}
		if row != nil && row.Valid(s.clock.Now()) {
			s.metrics.RecordProductCacheHit(ctx, "webshop_id")
			return rowToDetail(*row), nil
		}
	}
	s.metrics.RecordProductCacheMiss(ctx, "webshop_id")
	return s.fetchAndCache(ctx, webshopID)
}

func (s *Service) ProductByBarcode(ctx context.Context, barcode string) (domain.ProductDetail, error) {
	s.metrics.RecordProductCacheMiss(ctx, "barcode")
	detail, err := s.catalog.ProductByBarcode(ctx, barcode)
	if err != nil {
		return domain.ProductDetail{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if detail == nil {
		return domain.ProductDetail{}, domain.ErrProductNotFound
	}
	s.storeInCache(ctx, *detail)
	return *detail, nil
}

func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.ProductSearchResponse, error) {
	if req.Sort == "" {
		req.Sort = "RELEVANCE"
	}
	if _, ok := allowedSorts[req.Sort]; !ok {
		return domain.ProductSearchResponse{}, domain.ErrInvalidSort
	}
	if req.Page < 0 {
		req.Page = 0
	}
	if req.Size < 1 {
		req.Size = 20
	}
	if req.Size > 100 {
		req.Size = 100
	}

	resp, err := s.catalog.Search(ctx, req.Query, req.Page, req.Size, req.Sort)
	if err != nil {
		return domain.ProductSearchResponse{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return resp, nil
}

// Batch returns cached entries where fresh and fetches the rest.
// Products that fail to resolve are skipped rather than failing the
// whole request.
func (s *Service) Batch(ctx context.Context, productIDs []string) ([]domain.ProductCacheEntry, error) {
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(ids) > maxBatchSize {
		return nil, domain.ErrBatchTooLarge
	}

	now := s.clock.Now()
	rows, err := s.repo.GetByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	cached := make(map[string]domain.CachedProduct, len(rows))
	for _, row := range rows {
		cached[row.ProductID] = row
	}

	entries := make([]domain.ProductCacheEntry, 0, len(ids))
	for _, id := range ids {
		if row, ok := cached[id]; ok && row.Valid(now) {
			s.metrics.RecordProductCacheHit(ctx, "batch")
			entries = append(entries, rowToEntry(row))
			continue
		}

		s.metrics.RecordProductCacheMiss(ctx, "batch")
		detail, err := s.catalog.Product(ctx, id)
		if err != nil || detail == nil {
			if err != nil {
				s.log.Debug("batch product fetch failed", zap.String("product_id", id), zap.Error(err))
			}
			continue
		}
		s.storeInCache(ctx, *detail)
		entries = append(entries, detailToEntry(*detail, now))
	}

	return entries, nil
}

func (s *Service) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	total, valid, err := s.repo.Counts(ctx, s.db, s.clock.Now())
	if err != nil {
		return domain.CacheStats{}, err
	}
	return domain.CacheStats{
		TotalCached:       total,
		Valid:             valid,
		Expired:           total - valid,
		CacheDurationDays: int(s.cacheTTL.Hours() / 24),
	}, nil
}

func (s *Service) PurgeExpired(ctx context.Context) (domain.PurgeResult, error) {
	deleted, err := s.repo.DeleteExpired(ctx, s.db, s.clock.Now())
	if err != nil {
		return domain.PurgeResult{}, err
	}
	s.log.Info("expired product cache entries purged", zap.Int64("deleted", deleted))
	return domain.PurgeResult{Deleted: deleted}, nil
}
