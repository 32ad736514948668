package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pantrysense/pantrysense/internal/bonnyclient"
	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/config"
	"github.com/pantrysense/pantrysense/internal/receipt/domain"
	"github.com/pantrysense/pantrysense/internal/receipt/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubSource struct {
	pages      map[int]*bonnyclient.ReceiptsPage
	details    map[string]*bonnyclient.ReceiptDetail
	detailErrs map[string]error
	listErr    error

	detailCalls []string
}

func (s *stubSource) Receipts(_ context.Context, offset, limit int) (*bonnyclient.ReceiptsPage, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	page, ok := s.pages[offset]
	if !ok {
		return &bonnyclient.ReceiptsPage{}, nil
	}
	return page, nil
}

func (s *stubSource) Receipt(_ context.Context, receiptID string) (*bonnyclient.ReceiptDetail, error) {
	s.detailCalls = append(s.detailCalls, receiptID)
	if err, ok := s.detailErrs[receiptID]; ok {
		return nil, err
	}
	return s.details[receiptID], nil
}

func summaryOf(id string) bonnyclient.ReceiptSummary {
	return bonnyclient.ReceiptSummary{ID: id, DateTime: "2024-05-01T10:00:00Z"}
}

func detailOf(id string, total float64) *bonnyclient.ReceiptDetail {
	return &bonnyclient.ReceiptDetail{
		ID:    id,
		Total: bonnyclient.Money{Amount: total},
		Transaction: bonnyclient.ReceiptTransaction{
			DateTime: "2024-05-01T10:00:00Z",
			Store:    1234,
		},
		Address: &bonnyclient.StoreAddress{Street: "Hoofdstraat 1", City: "Utrecht"},
		Products: []bonnyclient.ReceiptProduct{
			{ID: "p1", Name: "Melk", Quantity: 2, Price: bonnyclient.Money{Amount: 1.5}, Amount: bonnyclient.Money{Amount: 3}},
		},
	}
}

func newSyncTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Receipt{},
		&domain.ReceiptItem{},
		&domain.ReceiptDiscount{},
		&domain.ReceiptVAT{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newSyncService(t *testing.T, db *gorm.DB, source ReceiptSource, threshold int) *Service {
	t.Helper()
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Source: source,
		Clock:  clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		Config: config.Config{
			SyncBatchSize:         2,
			SyncExistingThreshold: threshold,
			SyncRequestDelay:      0,
		},
	})
}

func TestSyncStoresNewReceipts(t *testing.T) {
	db := newSyncTestDB(t)
	source := &stubSource{
		pages: map[int]*bonnyclient.ReceiptsPage{
			0: {
				Pagination: bonnyclient.PageWindow{TotalElements: 2},
				Receipts:   []bonnyclient.ReceiptSummary{summaryOf("r1"), summaryOf("r2")},
			},
		},
		details: map[string]*bonnyclient.ReceiptDetail{
			"r1": detailOf("r1", 9.5),
			"r2": detailOf("r2", 4.2),
		},
	}

	result, err := newSyncService(t, db, source, 3).Run(context.Background(), false)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.SyncedCount)
	assert.Equal(t, 0, result.SkippedCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Len(t, result.SyncedReceipts, 2)
	assert.Equal(t, "Bonny Hoofdstraat 1", result.SyncedReceipts[0].StoreName)

	var count int64
	assert.NoError(t, db.Model(&domain.Receipt{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	var items int64
	assert.NoError(t, db.Model(&domain.ReceiptItem{}).Count(&items).Error)
	assert.Equal(t, int64(2), items)
}

func TestSyncIncrementalStopsAtThreshold(t *testing.T) {
	db := newSyncTestDB(t)
	for _, id := range []string{"e1", "e2"} {
		assert.NoError(t, db.Create(&domain.Receipt{
			ID:                id,
			TransactionMoment: time.Now().UTC(),
			TotalAmount:       1,
		}).Error)
	}
	source := &stubSource{
		pages: map[int]*bonnyclient.ReceiptsPage{
			0: {
				Pagination: bonnyclient.PageWindow{TotalElements: 3},
				Receipts:   []bonnyclient.ReceiptSummary{summaryOf("e1"), summaryOf("e2")},
			},
			2: {
				Pagination: bonnyclient.PageWindow{TotalElements: 3},
				Receipts:   []bonnyclient.ReceiptSummary{summaryOf("new1")},
			},
		},
		details: map[string]*bonnyclient.ReceiptDetail{"new1": detailOf("new1", 5)},
	}

	result, err := newSyncService(t, db, source, 2).Run(context.Background(), false)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.SyncedCount)
	assert.Equal(t, 2, result.SkippedCount)
	// The run stops before touching the second page.
	assert.Empty(t, source.detailCalls)
}

func TestSyncFullIgnoresThreshold(t *testing.T) {
	db := newSyncTestDB(t)
	for _, id := range []string{"e1", "e2"} {
		assert.NoError(t, db.Create(&domain.Receipt{
			ID:                id,
			TransactionMoment: time.Now().UTC(),
			TotalAmount:       1,
		}).Error)
	}
	source := &stubSource{
		pages: map[int]*bonnyclient.ReceiptsPage{
			0: {
				Pagination: bonnyclient.PageWindow{TotalElements: 3},
				Receipts:   []bonnyclient.ReceiptSummary{summaryOf("e1"), summaryOf("e2")},
			},
			2: {
				Pagination: bonnyclient.PageWindow{TotalElements: 3},
				Receipts:   []bonnyclient.ReceiptSummary{summaryOf("new1")},
			},
		},
		details: map[string]*bonnyclient.ReceiptDetail{"new1": detailOf("new1", 5)},
	}

	result, err := newSyncService(t, db, source, 2).Run(context.Background(), true)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.SyncedCount)
	assert.Equal(t, 2, result.SkippedCount)
	assert.Equal(t, []string{"new1"}, source.detailCalls)
}

func TestSyncDetailFailuresAreAccounted(t *testing.T) {
	db := newSyncTestDB(t)
	source := &stubSource{
		pages: map[int]*bonnyclient.ReceiptsPage{
			0: {
				Pagination: bonnyclient.PageWindow{TotalElements: 2},
				Receipts:   []bonnyclient.ReceiptSummary{summaryOf("bad"), summaryOf("good")},
			},
		},
		details:    map[string]*bonnyclient.ReceiptDetail{"good": detailOf("good", 3)},
		detailErrs: map[string]error{"bad": errors.New("boom")},
	}

	result, err := newSyncService(t, db, source, 3).Run(context.Background(), false)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.SyncedCount)
	assert.Equal(t, 1, result.ErrorCount)
	if assert.Len(t, result.Errors, 1) {
		assert.Equal(t, "bad", result.Errors[0].ReceiptID)
	}
}

func TestSyncListFailureAborts(t *testing.T) {
	db := newSyncTestDB(t)
	source := &stubSource{listErr: errors.New("upstream down")}

	result, err := newSyncService(t, db, source, 3).Run(context.Background(), false)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.SyncedCount)
	assert.Equal(t, 1, result.ErrorCount)
	if assert.Len(t, result.Errors, 1) {
		assert.Equal(t, "batch_fetch", result.Errors[0].ReceiptID)
	}
}

func TestMapReceiptStoreNameFallback(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	detail := &bonnyclient.ReceiptDetail{
		ID:        "r1",
		StoreInfo: bonnyclient.StringList{"Filiaal 1234"},
		Total:     bonnyclient.Money{Amount: 5},
	}

	receipt := mapReceipt(detail, now)

	assert.Equal(t, "Filiaal 1234", receipt.StoreName)
	// No parsable transaction moment: falls back to the sync time.
	assert.Equal(t, now, receipt.TransactionMoment)
}

func TestMapItemsDefaults(t *testing.T) {
	node, _ := snowflake.NewNode(4)
	now := time.Now().UTC()

	items := mapItems(node, "r1", []bonnyclient.ReceiptProduct{
		{ID: "p1", Name: "", Quantity: 0, Amount: bonnyclient.Money{Amount: 2}},
	}, now)

	if assert.Len(t, items, 1) {
		assert.Equal(t, "Unknown", items[0].ProductName)
		assert.Equal(t, 1.0, items[0].Quantity)
	}
}
