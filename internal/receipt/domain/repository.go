package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	InsertWithChildren(ctx context.Context, db *gorm.DB, receipt *Receipt, items []ReceiptItem, discounts []ReceiptDiscount, vatEntries []ReceiptVAT) error
	ExistingIDs(ctx context.Context, db *gorm.DB) (map[string]struct{}, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
