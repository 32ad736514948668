package service

import (
	"context"
	"strings"
	"time"

	"github.com/pantrysense/pantrysense/internal/forecast/domain"
	"gorm.io/gorm"
)

// productHistory is the purchase history of one product, events sorted
// ascending by date.
type productHistory struct {
	Name   string
	Events []domain.PurchaseEvent
}

// extractHistory loads purchase events grouped per product name, in
// ascending product name order. An optional case-insensitive substring
// filter narrows the product set. Products with fewer than minPurchases
// events are dropped. Timestamps are normalized to UTC here and nowhere
// else.
func extractHistory(ctx context.Context, db *gorm.DB, productName string, minPurchases int) ([]productHistory, error) {
	stmt := db.WithContext(ctx).
		Table("receipt_items").
		Select(`receipt_items.product_name,
		        receipt_items.product_id,
		        receipt_items.quantity,
		        receipt_items.unit_price,
		        receipt_items.receipt_id,
		        receipts.transaction_moment`).
		Joins("JOIN receipts ON receipt_items.receipt_id = receipts.id").
		Order("receipt_items.product_name, receipts.transaction_moment")
	if search := strings.TrimSpace(productName); search != "" {
		stmt = stmt.Where("LOWER(receipt_items.product_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var rows []struct {
		ProductName       string
		ProductID         string
		Quantity          float64
		UnitPrice         *float64
		ReceiptID         string
		TransactionMoment time.Time
	}
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}

	var histories []productHistory
	index := map[string]int{}
	for _, row := range rows {
		quantity := row.Quantity
		if quantity == 0 {
			quantity = 1
		}
		event := domain.PurchaseEvent{
			Date:      row.TransactionMoment.UTC(),
			Quantity:  quantity,
			UnitPrice: row.UnitPrice,
			ReceiptID: row.ReceiptID,
			ProductID: row.ProductID,
		}
		if i, ok := index[row.ProductName]; ok {
			histories[i].Events = append(histories[i].Events, event)
			continue
		}
		index[row.ProductName] = len(histories)
		histories = append(histories, productHistory{Name: row.ProductName, Events: []domain.PurchaseEvent{event}})
	}

	if minPurchases > 1 {
		filtered := histories[:0]
		for _, history := range histories {
			if len(history.Events) >= minPurchases {
				filtered = append(filtered, history)
			}
		}
		histories = filtered
	}

	return histories, nil
}
