package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	receiptdomain "github.com/pantrysense/pantrysense/internal/receipt/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var testNode, _ = snowflake.NewNode(1)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&receiptdomain.Receipt{},
		&receiptdomain.ReceiptItem{},
		&receiptdomain.ReceiptDiscount{},
		&receiptdomain.ReceiptVAT{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPurchase(t *testing.T, db *gorm.DB, receiptID, productName string, moment time.Time, quantity float64, unitPrice float64) {
	t.Helper()
	receipt := receiptdomain.Receipt{
		ID:                receiptID,
		TransactionMoment: moment,
		TotalAmount:       quantity * unitPrice,
	}
	if err := db.Where("id = ?", receiptID).FirstOrCreate(&receipt).Error; err != nil {
		t.Fatalf("seed receipt: %v", err)
	}
	item := receiptdomain.ReceiptItem{
		ID:          testNode.Generate(),
		ReceiptID:   receiptID,
		ProductID:   "p-" + productName,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   &unitPrice,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func TestExtractHistoryGroupsAndOrders(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Seeded deliberately out of order.
	seedPurchase(t, db, "r2", "Melk", base.AddDate(0, 0, 7), 1, 1.5)
	seedPurchase(t, db, "r1", "Melk", base, 1, 1.5)
	seedPurchase(t, db, "r3", "Brood", base.AddDate(0, 0, 2), 1, 2.2)

	histories, err := extractHistory(context.Background(), db, "", 1)

	assert.NoError(t, err)
	assert.Len(t, histories, 2)
	assert.Equal(t, "Brood", histories[0].Name)
	assert.Equal(t, "Melk", histories[1].Name)
	assert.Len(t, histories[1].Events, 2)
	assert.Equal(t, "r1", histories[1].Events[0].ReceiptID)
	assert.Equal(t, "r2", histories[1].Events[1].ReceiptID)
	assert.True(t, histories[1].Events[0].Date.Before(histories[1].Events[1].Date))
}

func TestExtractHistorySubstringFilter(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	seedPurchase(t, db, "r1", "Halfvolle MELK", base, 1, 1.5)
	seedPurchase(t, db, "r2", "Brood", base, 1, 2.2)

	histories, err := extractHistory(context.Background(), db, "melk", 1)

	assert.NoError(t, err)
	assert.Len(t, histories, 1)
	assert.Equal(t, "Halfvolle MELK", histories[0].Name)
}

func TestExtractHistoryMinPurchases(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	seedPurchase(t, db, "r1", "Melk", base, 1, 1.5)
	seedPurchase(t, db, "r2", "Melk", base.AddDate(0, 0, 7), 1, 1.5)
	seedPurchase(t, db, "r3", "Melk", base.AddDate(0, 0, 14), 1, 1.5)
	seedPurchase(t, db, "r4", "Brood", base, 1, 2.2)

	histories, err := extractHistory(context.Background(), db, "", 3)

	assert.NoError(t, err)
	assert.Len(t, histories, 1)
	assert.Equal(t, "Melk", histories[0].Name)
}

func TestExtractHistoryZeroQuantityDefaultsToOne(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	seedPurchase(t, db, "r1", "Melk", base, 0, 1.5)

	histories, err := extractHistory(context.Background(), db, "", 1)

	assert.NoError(t, err)
	assert.Len(t, histories, 1)
	assert.Equal(t, 1.0, histories[0].Events[0].Quantity)
}

func TestExtractHistoryNormalizesToUTC(t *testing.T) {
	db := newTestDB(t)
	amsterdam := time.FixedZone("CEST", 2*60*60)
	moment := time.Date(2024, 5, 1, 12, 0, 0, 0, amsterdam)

	seedPurchase(t, db, "r1", "Melk", moment, 1, 1.5)

	histories, err := extractHistory(context.Background(), db, "", 1)

	assert.NoError(t, err)
	got := histories[0].Events[0].Date
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(moment))
}

func TestExtractHistoryEmpty(t *testing.T) {
	db := newTestDB(t)

	histories, err := extractHistory(context.Background(), db, "", 1)

	assert.NoError(t, err)
	assert.Empty(t, histories)
}
