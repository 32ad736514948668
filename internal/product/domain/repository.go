package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB, productID string) (*CachedProduct, error)
	GetByWebshopID(ctx context.Context, db *gorm.DB, webshopID string) (*CachedProduct, error)
	GetByIDs(ctx context.Context, db *gorm.DB, productIDs []string) ([]CachedProduct, error)
	Upsert(ctx context.Context, db *gorm.DB, row *CachedProduct) error
	Counts(ctx context.Context, db *gorm.DB, now time.Time) (total, valid int64, err error)
	DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
