package repository

import (
	"context"

	"github.com/pantrysense/pantrysense/internal/receipt/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// InsertWithChildren writes a receipt and its child rows in one transaction.
func (r *repo) InsertWithChildren(ctx context.Context, db *gorm.DB, receipt *domain.Receipt, items []domain.ReceiptItem, discounts []domain.ReceiptDiscount, vatEntries []domain.ReceiptVAT) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		if len(discounts) > 0 {
			if err := tx.Create(&discounts).Error; err != nil {
				return err
			}
		}
		if len(vatEntries) > 0 {
			if err := tx.Create(&vatEntries).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) ExistingIDs(ctx context.Context, db *gorm.DB) (map[string]struct{}, error) {
	var ids []string
	err := db.WithContext(ctx).Raw(`SELECT id FROM receipts`).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return existing, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Receipt{}).Count(&count).Error
	return count, err
}
