package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pantrysense/pantrysense/internal/analytics/domain"
	"github.com/pantrysense/pantrysense/internal/cache"
	"github.com/pantrysense/pantrysense/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SummaryCacheKey is shared with the sync endpoint, which invalidates
// the summary after new receipts land.
const SummaryCacheKey = "analytics:summary"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cache *cache.ResponseCache `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cache *cache.ResponseCache
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		cache: p.Cache,
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	var cached domain.Summary
	if hit, err := s.cache.Get(ctx, SummaryCacheKey, &cached); err != nil {
		s.log.Warn("summary cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	var row struct {
		TotalReceipts int64
		TotalSpending float64
		TotalSavings  float64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(id) AS total_receipts,
		        COALESCE(SUM(total_amount), 0) AS total_spending,
		        COALESCE(SUM(discount_total), 0) AS total_savings
		 FROM receipts`,
	).Scan(&row).Error
	if err != nil {
		return domain.Summary{}, err
	}

	// MIN/MAX lose the timestamp column type on sqlite, so the bounds
	// come from ordered single-row lookups.
	var first, last *time.Time
	if row.TotalReceipts > 0 {
		if first, err = s.receiptMoment(ctx, "ASC"); err != nil {
			return domain.Summary{}, err
		}
		if last, err = s.receiptMoment(ctx, "DESC"); err != nil {
			return domain.Summary{}, err
		}
	}

	average := 0.0
	if row.TotalReceipts > 0 {
		average = row.TotalSpending / float64(row.TotalReceipts)
	}

	summary := domain.Summary{
		TotalReceipts:     row.TotalReceipts,
		TotalSpending:     round2(row.TotalSpending),
		TotalSavings:      round2(math.Abs(row.TotalSavings)),
		AveragePerReceipt: round2(average),
		FirstReceiptDate:  first,
		LastReceiptDate:   last,
	}

	if err := s.cache.Set(ctx, SummaryCacheKey, summary); err != nil {
		s.log.Warn("summary cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *Service) receiptMoment(ctx context.Context, direction string) (*time.Time, error) {
	var moments []time.Time
	err := s.db.WithContext(ctx).
		Table("receipts").
		Where("transaction_moment IS NOT NULL").
		Order("transaction_moment " + direction).
		Limit(1).
		Pluck("transaction_moment", &moments).Error
	if err != nil {
		return nil, err
	}
	if len(moments) == 0 {
		return nil, nil
	}
	return &moments[0], nil
}

// periodExpr builds the grouping expression for the active SQL dialect.
func (s *Service) periodExpr(granularity string) (string, error) {
	dialect := s.db.Dialector.Name()
	switch granularity {
	case "day":
		switch dialect {
		case "postgres":
			return `to_char(transaction_moment, 'YYYY-MM-DD')`, nil
		case "mysql":
			return `DATE_FORMAT(transaction_moment, '%Y-%m-%d')`, nil
		default:
			return `strftime('%Y-%m-%d', transaction_moment)`, nil
		}
	case "week":
		switch dialect {
		case "postgres":
			return `to_char(transaction_moment, 'YYYY-"W"WW')`, nil
		case "mysql":
			return `DATE_FORMAT(transaction_moment, '%Y-W%u')`, nil
		default:
			return `strftime('%Y-W%W', transaction_moment)`, nil
		}
	case "month", "":
		switch dialect {
		case "postgres":
			return `to_char(transaction_moment, 'YYYY-MM')`, nil
		case "mysql":
			return `DATE_FORMAT(transaction_moment, '%Y-%m')`, nil
		default:
			return `strftime('%Y-%m', transaction_moment)`, nil
		}
	default:
		return "", domain.ErrInvalidGranularity
	}
}

func (s *Service) SpendingOverTime(ctx context.Context, req domain.SpendingOverTimeRequest) (domain.SpendingOverTime, error) {
	granularity := req.Granularity
	if granularity == "" {
		granularity = "month"
	}
	expr, err := s.periodExpr(granularity)
	if err != nil {
		return domain.SpendingOverTime{}, err
	}

	stmt := s.db.WithContext(ctx).
		Table("receipts").
		Select(fmt.Sprintf(
			`%s AS period,
			 SUM(total_amount) AS total_spending,
			 COUNT(id) AS receipt_count,
			 COALESCE(SUM(discount_total), 0) AS total_savings`, expr)).
		Where("transaction_moment IS NOT NULL")
	if req.StartDate != nil {
		stmt = stmt.Where("transaction_moment >= ?", *req.StartDate)
	}
	if req.EndDate != nil {
		stmt = stmt.Where("transaction_moment <= ?", *req.EndDate)
	}

	var rows []struct {
		Period        string
		TotalSpending float64
		ReceiptCount  int64
		TotalSavings  float64
	}
	if err := stmt.Group(expr).Order("period").Scan(&rows).Error; err != nil {
		return domain.SpendingOverTime{}, err
	}

	periods := make([]domain.SpendingPeriod, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, domain.SpendingPeriod{
			Period:        row.Period,
			TotalSpending: round2(row.TotalSpending),
			ReceiptCount:  row.ReceiptCount,
			TotalSavings:  round2(math.Abs(row.TotalSavings)),
		})
	}
	return domain.SpendingOverTime{Granularity: granularity, Periods: periods}, nil
}

func (s *Service) StoreAnalytics(ctx context.Context, limit int) (domain.StoreAnalytics, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []struct {
		StoreID       int
		StoreName     string
		StoreCity     string
		TotalSpending float64
		ReceiptCount  int64
		TotalSavings  float64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT store_id,
		        store_name,
		        store_city,
		        SUM(total_amount) AS total_spending,
		        COUNT(id) AS receipt_count,
		        COALESCE(SUM(discount_total), 0) AS total_savings
		 FROM receipts
		 GROUP BY store_id, store_name, store_city
		 ORDER BY SUM(total_amount) DESC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return domain.StoreAnalytics{}, err
	}

	stores := make([]domain.StoreStats, 0, len(rows))
	for _, row := range rows {
		average := 0.0
		if row.ReceiptCount > 0 {
			average = row.TotalSpending / float64(row.ReceiptCount)
		}
		stores = append(stores, domain.StoreStats{
			StoreID:           row.StoreID,
			StoreName:         row.StoreName,
			StoreCity:         row.StoreCity,
			TotalSpending:     round2(row.TotalSpending),
			ReceiptCount:      row.ReceiptCount,
			AveragePerReceipt: round2(average),
			TotalSavings:      round2(math.Abs(row.TotalSavings)),
		})
	}
	return domain.StoreAnalytics{Stores: stores}, nil
}

var productSortColumns = map[string]string{
	"product_name":   "product_name",
	"total_quantity": "total_quantity",
	"total_spending": "total_spending",
	"purchase_count": "purchase_count",
	"average_price":  "SUM(line_total) / SUM(quantity)",
}

func (s *Service) ProductAnalytics(ctx context.Context, req domain.ProductAnalyticsRequest) (domain.ProductAnalytics, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	sortCol, ok := productSortColumns[req.SortBy]
	if !ok {
		sortCol = "total_spending"
	}
	direction := "DESC"
	if strings.EqualFold(req.SortOrder, "asc") {
		direction = "ASC"
	}

	stmt := s.db.WithContext(ctx).
		Table("receipt_items").
		Select(`MIN(product_id) AS product_id,
		        product_name,
		        SUM(quantity) AS total_quantity,
		        SUM(line_total) AS total_spending,
		        COUNT(DISTINCT receipt_id) AS purchase_count`)
	countStmt := s.db.WithContext(ctx).Table("receipt_items")
	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where("LOWER(product_name) LIKE ?", pattern)
	}

	var rows []struct {
		ProductID     string
		ProductName   string
		TotalQuantity float64
		TotalSpending float64
		PurchaseCount int64
	}
	err := stmt.Group("product_name").
		Order(sortCol + " " + direction).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return domain.ProductAnalytics{}, err
	}

	var totalProducts int64
	if err := countStmt.Distinct("product_name").Count(&totalProducts).Error; err != nil {
		return domain.ProductAnalytics{}, err
	}

	products := make([]domain.ProductStats, 0, len(rows))
	for _, row := range rows {
		quantity := row.TotalQuantity
		if quantity == 0 {
			quantity = 1
		}
		products = append(products, domain.ProductStats{
			ProductID:     row.ProductID,
			ProductName:   row.ProductName,
			TotalQuantity: round2(row.TotalQuantity),
			TotalSpending: round2(row.TotalSpending),
			PurchaseCount: row.PurchaseCount,
			AveragePrice:  round2(row.TotalSpending / quantity),
		})
	}
	return domain.ProductAnalytics{Products: products, TotalProducts: totalProducts}, nil
}

func (s *Service) SavingsAnalytics(ctx context.Context) (domain.SavingsAnalytics, error) {
	var receiptStats struct {
		TotalSavings float64
		ReceiptCount int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(discount_total), 0) AS total_savings,
		        COUNT(id) AS receipt_count
		 FROM receipts`,
	).Scan(&receiptStats).Error
	if err != nil {
		return domain.SavingsAnalytics{}, err
	}

	totalSavings := math.Abs(receiptStats.TotalSavings)
	averageSavings := 0.0
	if receiptStats.ReceiptCount > 0 {
		averageSavings = totalSavings / float64(receiptStats.ReceiptCount)
	}

	var rows []struct {
		DiscountType    string
		DiscountName    string
		TotalSavings    float64
		OccurrenceCount int64
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT discount_type,
		        discount_name,
		        SUM(discount_amount) AS total_savings,
		        COUNT(id) AS occurrence_count
		 FROM receipt_discounts
		 GROUP BY discount_type, discount_name
		 ORDER BY SUM(discount_amount) DESC`,
	).Scan(&rows).Error
	if err != nil {
		return domain.SavingsAnalytics{}, err
	}

	discountTypes := make([]domain.DiscountTypeStats, 0, len(rows))
	for _, row := range rows {
		discountTypes = append(discountTypes, domain.DiscountTypeStats{
			DiscountType:    row.DiscountType,
			DiscountName:    row.DiscountName,
			TotalSavings:    round2(math.Abs(row.TotalSavings)),
			OccurrenceCount: row.OccurrenceCount,
		})
	}

	var totalDiscounts int64
	if err := s.db.WithContext(ctx).Table("receipt_discounts").Count(&totalDiscounts).Error; err != nil {
		return domain.SavingsAnalytics{}, err
	}

	return domain.SavingsAnalytics{
		TotalSavings:             round2(totalSavings),
		TotalDiscountsApplied:    totalDiscounts,
		AverageSavingsPerReceipt: round2(averageSavings),
		DiscountTypes:            discountTypes,
	}, nil
}

var receiptSortColumns = map[string]string{
	"transaction_moment": "receipts.transaction_moment",
	"store_name":         "receipts.store_name",
	"item_count":         "item_count",
	"discount_total":     "receipts.discount_total",
	"total_amount":       "receipts.total_amount",
}

func (s *Service) ReceiptList(ctx context.Context, req domain.ReceiptListRequest) (domain.ReceiptList, error) {
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Table("receipts").Count(&total).Error; err != nil {
		return domain.ReceiptList{}, err
	}

	sortCol, ok := receiptSortColumns[req.SortBy]
	if !ok {
		sortCol = "receipts.transaction_moment"
	}
	direction := "DESC"
	if strings.EqualFold(req.SortOrder, "asc") {
		direction = "ASC"
	}

	var rows []struct {
		ID                string
		TransactionMoment time.Time
		TotalAmount       float64
		StoreName         string
		StoreCity         string
		DiscountTotal     *float64
		ItemCount         int64
	}
	err := s.db.WithContext(ctx).
		Table("receipts").
		Select(`receipts.id,
		        receipts.transaction_moment,
		        receipts.total_amount,
		        receipts.store_name,
		        receipts.store_city,
		        receipts.discount_total,
		        COUNT(receipt_items.id) AS item_count`).
		Joins("LEFT JOIN receipt_items ON receipts.id = receipt_items.receipt_id").
		Group("receipts.id").
		Order(sortCol + " " + direction).
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return domain.ReceiptList{}, err
	}

	receipts := make([]domain.ReceiptListItem, 0, len(rows))
	for _, row := range rows {
		receipts = append(receipts, domain.ReceiptListItem{
			ID:                row.ID,
			TransactionMoment: row.TransactionMoment,
			TotalAmount:       row.TotalAmount,
			StoreName:         row.StoreName,
			StoreCity:         row.StoreCity,
			DiscountTotal:     row.DiscountTotal,
			ItemCount:         row.ItemCount,
		})
	}

	return domain.ReceiptList{
		Receipts: receipts,
		PageInfo: pagination.PageInfo{Offset: offset, Limit: limit, Total: total},
	}, nil
}

func (s *Service) ReceiptDetail(ctx context.Context, receiptID string) (domain.ReceiptDetail, error) {
	var receipt struct {
		ID                string
		TransactionMoment time.Time
		TotalAmount       float64
		Subtotal          *float64
		DiscountTotal     *float64
		MemberID          string
		StoreID           int
		StoreName         string
		StoreStreet       string
		StoreCity         string
		StorePostalCode   string
		CheckoutLane      int
		PaymentMethod     string
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, transaction_moment, total_amount, subtotal, discount_total,
		        member_id, store_id, store_name, store_street, store_city,
		        store_postal_code, checkout_lane, payment_method
		 FROM receipts WHERE id = ?`,
		receiptID,
	).Scan(&receipt).Error
	if err != nil {
		return domain.ReceiptDetail{}, err
	}
	if receipt.ID == "" {
		return domain.ReceiptDetail{}, domain.ErrReceiptNotFound
	}

	var items []domain.ReceiptItemDetail
	err = s.db.WithContext(ctx).Raw(
		`SELECT id, product_id, product_name, quantity, unit_price, line_total
		 FROM receipt_items WHERE receipt_id = ? ORDER BY id`,
		receiptID,
	).Scan(&items).Error
	if err != nil {
		return domain.ReceiptDetail{}, err
	}

	var discounts []domain.ReceiptDiscountDetail
	err = s.db.WithContext(ctx).Raw(
		`SELECT id, discount_type, discount_name, discount_amount
		 FROM receipt_discounts WHERE receipt_id = ? ORDER BY id`,
		receiptID,
	).Scan(&discounts).Error
	if err != nil {
		return domain.ReceiptDetail{}, err
	}

	return domain.ReceiptDetail{
		ID:                receipt.ID,
		TransactionMoment: receipt.TransactionMoment,
		TotalAmount:       receipt.TotalAmount,
		Subtotal:          receipt.Subtotal,
		DiscountTotal:     receipt.DiscountTotal,
		MemberID:          receipt.MemberID,
		StoreID:           receipt.StoreID,
		StoreName:         receipt.StoreName,
		StoreStreet:       receipt.StoreStreet,
		StoreCity:         receipt.StoreCity,
		StorePostalCode:   receipt.StorePostalCode,
		CheckoutLane:      receipt.CheckoutLane,
		PaymentMethod:     receipt.PaymentMethod,
		Items:             items,
		Discounts:         discounts,
	}, nil
}
