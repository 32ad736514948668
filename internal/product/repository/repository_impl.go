package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pantrysense/pantrysense/internal/product/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, productID string) (*domain.CachedProduct, error) {
	var row domain.CachedProduct
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) GetByWebshopID(ctx context.Context, db *gorm.DB, webshopID string) (*domain.CachedProduct, error) {
	var row domain.CachedProduct
	err := db.WithContext(ctx).
		Where("webshop_id = ?", webshopID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) GetByIDs(ctx context.Context, db *gorm.DB, productIDs []string) ([]domain.CachedProduct, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []domain.CachedProduct
	err := db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, row *domain.CachedProduct) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			UpdateAll: true,
		}).
		Create(row).Error
}

func (r *repo) Counts(ctx context.Context, db *gorm.DB, now time.Time) (int64, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.CachedProduct{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	var valid int64
	err := db.WithContext(ctx).Model(&domain.CachedProduct{}).
		Where("expires_at IS NOT NULL AND expires_at > ?", now).
		Count(&valid).Error
	if err != nil {
		return 0, 0, err
	}
	return total, valid, nil
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at IS NULL OR expires_at <= ?", now).
		Delete(&domain.CachedProduct{})
	return res.RowsAffected, res.Error
}
