package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pantrysense/pantrysense/internal/analytics/domain"
	receiptdomain "github.com/pantrysense/pantrysense/internal/receipt/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNode, _ = snowflake.NewNode(2)

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

func newAnalyticsService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()
	return New(Params{DB: db, Log: zap.NewNop()})
}

func ptr(value float64) *float64 { return &value }

func seedReceipt(t *testing.T, db *gorm.DB, receipt receiptdomain.Receipt) {
	t.Helper()
	if err := db.Create(&receipt).Error; err != nil {
		t.Fatalf("seed receipt: %v", err)
	}
}

func seedItem(t *testing.T, db *gorm.DB, receiptID, productName string, quantity float64, lineTotal float64) {
	t.Helper()
	item := receiptdomain.ReceiptItem{
		ID:          testNode.Generate(),
		ReceiptID:   receiptID,
		ProductID:   "p-" + productName,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   ptr(lineTotal / quantity),
		LineTotal:   ptr(lineTotal),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func seedDiscount(t *testing.T, db *gorm.DB, receiptID, discountType, name string, amount float64) {
	t.Helper()
	discount := receiptdomain.ReceiptDiscount{
		ID:             testNode.Generate(),
		ReceiptID:      receiptID,
		DiscountType:   discountType,
		DiscountName:   name,
		DiscountAmount: amount,
	}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("seed discount: %v", err)
	}
}

func TestSummary(t *testing.T) {
	db := newTestDB(t)
	first := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	last := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r1", TransactionMoment: first, TotalAmount: 10, DiscountTotal: ptr(-1.5),
	})
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r2", TransactionMoment: last, TotalAmount: 20, DiscountTotal: ptr(-0.5),
	})

	summary, err := newAnalyticsService(t, db).Summary(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalReceipts)
	assert.Equal(t, 30.0, summary.TotalSpending)
	// Discounts are stored as negatives; the summary reports savings
	// as a positive amount.
	assert.Equal(t, 2.0, summary.TotalSavings)
	assert.Equal(t, 15.0, summary.AveragePerReceipt)
	if assert.NotNil(t, summary.FirstReceiptDate) {
		assert.True(t, summary.FirstReceiptDate.Equal(first))
	}
	if assert.NotNil(t, summary.LastReceiptDate) {
		assert.True(t, summary.LastReceiptDate.Equal(last))
	}
}

func TestSummaryEmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	summary, err := newAnalyticsService(t, db).Summary(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalReceipts)
	assert.Equal(t, 0.0, summary.TotalSpending)
	assert.Equal(t, 0.0, summary.AveragePerReceipt)
	assert.Nil(t, summary.FirstReceiptDate)
	assert.Nil(t, summary.LastReceiptDate)
}

func TestSpendingOverTimeMonthly(t *testing.T) {
	db := newTestDB(t)
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r1", TransactionMoment: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), TotalAmount: 10,
	})
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r2", TransactionMoment: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), TotalAmount: 15,
	})
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r3", TransactionMoment: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), TotalAmount: 7,
	})

	resp, err := newAnalyticsService(t, db).SpendingOverTime(context.Background(), domain.SpendingOverTimeRequest{})

	assert.NoError(t, err)
	assert.Equal(t, "month", resp.Granularity)
	if assert.Len(t, resp.Periods, 2) {
		assert.Equal(t, "2024-01", resp.Periods[0].Period)
		assert.Equal(t, 25.0, resp.Periods[0].TotalSpending)
		assert.Equal(t, int64(2), resp.Periods[0].ReceiptCount)
		assert.Equal(t, "2024-02", resp.Periods[1].Period)
		assert.Equal(t, 7.0, resp.Periods[1].TotalSpending)
	}
}

func TestSpendingOverTimeDateWindow(t *testing.T) {
	db := newTestDB(t)
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r1", TransactionMoment: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), TotalAmount: 10,
	})
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r2", TransactionMoment: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), TotalAmount: 99,
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	resp, err := newAnalyticsService(t, db).SpendingOverTime(context.Background(), domain.SpendingOverTimeRequest{
		Granularity: "day",
		StartDate:   &start,
		EndDate:     &end,
	})

	assert.NoError(t, err)
	if assert.Len(t, resp.Periods, 1) {
		assert.Equal(t, "2024-01-05", resp.Periods[0].Period)
	}
}

func TestSpendingOverTimeInvalidGranularity(t *testing.T) {
	db := newTestDB(t)

	_, err := newAnalyticsService(t, db).SpendingOverTime(context.Background(), domain.SpendingOverTimeRequest{
		Granularity: "hour",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidGranularity)
}

func TestStoreAnalytics(t *testing.T) {
	db := newTestDB(t)
	moment := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r1", TransactionMoment: moment, TotalAmount: 10, StoreID: 1, StoreName: "Centrum", StoreCity: "Utrecht",
	})
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r2", TransactionMoment: moment, TotalAmount: 30, StoreID: 1, StoreName: "Centrum", StoreCity: "Utrecht",
	})
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r3", TransactionMoment: moment, TotalAmount: 5, StoreID: 2, StoreName: "Zuid", StoreCity: "Utrecht",
	})

	resp, err := newAnalyticsService(t, db).StoreAnalytics(context.Background(), 0)

	assert.NoError(t, err)
	if assert.Len(t, resp.Stores, 2) {
		assert.Equal(t, "Centrum", resp.Stores[0].StoreName)
		assert.Equal(t, 40.0, resp.Stores[0].TotalSpending)
		assert.Equal(t, int64(2), resp.Stores[0].ReceiptCount)
		assert.Equal(t, 20.0, resp.Stores[0].AveragePerReceipt)
		assert.Equal(t, "Zuid", resp.Stores[1].StoreName)
	}
}

func TestProductAnalyticsDefaultSort(t *testing.T) {
	db := newTestDB(t)
	moment := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	seedReceipt(t, db, receiptdomain.Receipt{ID: "r1", TransactionMoment: moment, TotalAmount: 20})
	seedReceipt(t, db, receiptdomain.Receipt{ID: "r2", TransactionMoment: moment, TotalAmount: 20})
	seedItem(t, db, "r1", "Melk", 2, 3)
	seedItem(t, db, "r2", "Melk", 2, 3)
	seedItem(t, db, "r1", "Kaas", 1, 8)

	resp, err := newAnalyticsService(t, db).ProductAnalytics(context.Background(), domain.ProductAnalyticsRequest{})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalProducts)
	if assert.Len(t, resp.Products, 2) {
		// Kaas spent 8.00, Melk 6.00: spending descending is the default.
		assert.Equal(t, "Kaas", resp.Products[0].ProductName)
		assert.Equal(t, "p-Kaas", resp.Products[0].ProductID)
		assert.Equal(t, 8.0, resp.Products[0].TotalSpending)
		assert.Equal(t, int64(1), resp.Products[0].PurchaseCount)
		assert.Equal(t, "Melk", resp.Products[1].ProductName)
		assert.Equal(t, 4.0, resp.Products[1].TotalQuantity)
		assert.Equal(t, int64(2), resp.Products[1].PurchaseCount)
		assert.Equal(t, 1.5, resp.Products[1].AveragePrice)
	}
}

func TestProductAnalyticsNameAscending(t *testing.T) {
	db := newTestDB(t)
	moment := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	seedReceipt(t, db, receiptdomain.Receipt{ID: "r1", TransactionMoment: moment, TotalAmount: 20})
	seedItem(t, db, "r1", "Melk", 1, 1.5)
	seedItem(t, db, "r1", "Appels", 1, 2.5)

	resp, err := newAnalyticsService(t, db).ProductAnalytics(context.Background(), domain.ProductAnalyticsRequest{
		SortBy:    "product_name",
		SortOrder: "asc",
	})

	assert.NoError(t, err)
	if assert.Len(t, resp.Products, 2) {
		assert.Equal(t, "Appels", resp.Products[0].ProductName)
		assert.Equal(t, "Melk", resp.Products[1].ProductName)
	}
}

func TestProductAnalyticsSearch(t *testing.T) {
	db := newTestDB(t)
	moment := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	seedReceipt(t, db, receiptdomain.Receipt{ID: "r1", TransactionMoment: moment, TotalAmount: 20})
	seedItem(t, db, "r1", "Halfvolle Melk", 1, 1.5)
	seedItem(t, db, "r1", "Kaas", 1, 8)

	resp, err := newAnalyticsService(t, db).ProductAnalytics(context.Background(), domain.ProductAnalyticsRequest{
		Search: "MELK",
	})

	assert.NoError(t, err)
	if assert.Len(t, resp.Products, 1) {
		assert.Equal(t, "Halfvolle Melk", resp.Products[0].ProductName)
	}
	// The overall distinct count is not narrowed by the search.
	assert.Equal(t, int64(2), resp.TotalProducts)
}

func TestSavingsAnalytics(t *testing.T) {
	db := newTestDB(t)
	moment := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r1", TransactionMoment: moment, TotalAmount: 10, DiscountTotal: ptr(-2),
	})
	seedReceipt(t, db, receiptdomain.Receipt{
		ID: "r2", TransactionMoment: moment, TotalAmount: 10, DiscountTotal: ptr(-1),
	})
	seedDiscount(t, db, "r1", "BONUS", "Melk bonus", -2)
	seedDiscount(t, db, "r2", "BONUS", "Melk bonus", -0.5)
	seedDiscount(t, db, "r2", "STAMPS", "Koopzegels", -0.5)

	resp, err := newAnalyticsService(t, db).SavingsAnalytics(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3.0, resp.TotalSavings)
	assert.Equal(t, int64(3), resp.TotalDiscountsApplied)
	assert.Equal(t, 1.5, resp.AverageSavingsPerReceipt)
	if assert.Len(t, resp.DiscountTypes, 2) {
		byName := map[string]domain.DiscountTypeStats{}
		for _, dt := range resp.DiscountTypes {
			byName[dt.DiscountName] = dt
		}
		assert.Equal(t, 2.5, byName["Melk bonus"].TotalSavings)
		assert.Equal(t, int64(2), byName["Melk bonus"].OccurrenceCount)
		assert.Equal(t, 0.5, byName["Koopzegels"].TotalSavings)
	}
}

func TestReceiptList(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("r%d", i+1)
		seedReceipt(t, db, receiptdomain.Receipt{
			ID:                id,
			TransactionMoment: base.AddDate(0, 0, i),
			TotalAmount:       float64(10 * (i + 1)),
			StoreName:         "Centrum",
		})
	}
	seedItem(t, db, "r1", "Melk", 1, 1.5)
	seedItem(t, db, "r1", "Kaas", 1, 8)

	resp, err := newAnalyticsService(t, db).ReceiptList(context.Background(), domain.ReceiptListRequest{})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 20, resp.Limit)
	if assert.Len(t, resp.Receipts, 3) {
		// Newest first by default.
		assert.Equal(t, "r3", resp.Receipts[0].ID)
		assert.Equal(t, "r1", resp.Receipts[2].ID)
		assert.Equal(t, int64(2), resp.Receipts[2].ItemCount)
		assert.Equal(t, int64(0), resp.Receipts[0].ItemCount)
	}
}

func TestReceiptListPagination(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedReceipt(t, db, receiptdomain.Receipt{
			ID:                fmt.Sprintf("r%d", i+1),
			TransactionMoment: base.AddDate(0, 0, i),
			TotalAmount:       10,
		})
	}

	resp, err := newAnalyticsService(t, db).ReceiptList(context.Background(), domain.ReceiptListRequest{
		Offset:    1,
		Limit:     2,
		SortBy:    "transaction_moment",
		SortOrder: "asc",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	assert.Equal(t, 1, resp.Offset)
	if assert.Len(t, resp.Receipts, 2) {
		assert.Equal(t, "r2", resp.Receipts[0].ID)
		assert.Equal(t, "r3", resp.Receipts[1].ID)
	}
}

func TestReceiptDetail(t *testing.T) {
	db := newTestDB(t)
	moment := time.Date(2024, 1, 5, 17, 30, 0, 0, time.UTC)
	seedReceipt(t, db, receiptdomain.Receipt{
		ID:                "r1",
		TransactionMoment: moment,
		TotalAmount:       9.5,
		Subtotal:          ptr(11.5),
		DiscountTotal:     ptr(-2),
		StoreID:           1,
		StoreName:         "Centrum",
		StoreCity:         "Utrecht",
		PaymentMethod:     "PIN",
	})
	seedItem(t, db, "r1", "Melk", 1, 1.5)
	seedItem(t, db, "r1", "Kaas", 1, 8)
	seedDiscount(t, db, "r1", "BONUS", "Kaas bonus", -2)

	detail, err := newAnalyticsService(t, db).ReceiptDetail(context.Background(), "r1")

	assert.NoError(t, err)
	assert.Equal(t, "r1", detail.ID)
	assert.Equal(t, 9.5, detail.TotalAmount)
	assert.Equal(t, "Centrum", detail.StoreName)
	assert.Equal(t, "PIN", detail.PaymentMethod)
	assert.Len(t, detail.Items, 2)
	if assert.Len(t, detail.Discounts, 1) {
		assert.Equal(t, "Kaas bonus", detail.Discounts[0].DiscountName)
		assert.Equal(t, -2.0, detail.Discounts[0].DiscountAmount)
	}
}

func TestReceiptDetailNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := newAnalyticsService(t, db).ReceiptDetail(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
}
