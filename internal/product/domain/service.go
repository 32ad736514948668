package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product_not_found")
	ErrInvalidSort     = errors.New("invalid_sort")
	ErrEmptyBatch      = errors.New("empty_batch")
	ErrBatchTooLarge   = errors.New("batch_too_large")
)

// ErrUpstream wraps failures talking to the retail catalog so the HTTP
// layer can map them to a gateway error instead of an internal one.
var ErrUpstream = errors.New("retail_api_error")

type SearchRequest struct {
	Query string
	Page  int
	Size  int
	Sort  string
}

type Service interface {
	Product(ctx context.Context, productID string, refresh bool) (ProductDetail, error)
	ProductByWebshopID(ctx context.Context, webshopID string, refresh bool) (ProductDetail, error)
	ProductByBarcode(ctx context.Context, barcode string) (ProductDetail, error)
	Search(ctx context.Context, req SearchRequest) (ProductSearchResponse, error)
	Batch(ctx context.Context, productIDs []string) ([]ProductCacheEntry, error)
	CacheStats(ctx context.Context) (CacheStats, error)
	PurgeExpired(ctx context.Context) (PurgeResult, error)
}
