package domain

import (
	"context"
	"errors"
	"time"
)

type SpendingOverTimeRequest struct {
	Granularity string
	StartDate   *time.Time
	EndDate     *time.Time
}

type ProductAnalyticsRequest struct {
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

type ReceiptListRequest struct {
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

type Service interface {
	Summary(ctx context.Context) (Summary, error)
	SpendingOverTime(ctx context.Context, req SpendingOverTimeRequest) (SpendingOverTime, error)
	StoreAnalytics(ctx context.Context, limit int) (StoreAnalytics, error)
	ProductAnalytics(ctx context.Context, req ProductAnalyticsRequest) (ProductAnalytics, error)
	SavingsAnalytics(ctx context.Context) (SavingsAnalytics, error)
	ReceiptList(ctx context.Context, req ReceiptListRequest) (ReceiptList, error)
	ReceiptDetail(ctx context.Context, receiptID string) (ReceiptDetail, error)
}

var (
	ErrInvalidGranularity = errors.New("invalid_granularity")
	ErrReceiptNotFound    = errors.New("receipt_not_found")
)
