package domain

import (
	"time"

	"github.com/pantrysense/pantrysense/pkg/db/pagination"
)

type Summary struct {
	TotalReceipts     int64      `json:"total_receipts"`
	TotalSpending     float64    `json:"total_spending"`
	TotalSavings      float64    `json:"total_savings"`
	AveragePerReceipt float64    `json:"average_per_receipt"`
	FirstReceiptDate  *time.Time `json:"first_receipt_date"`
	LastReceiptDate   *time.Time `json:"last_receipt_date"`
}

type SpendingPeriod struct {
	Period        string  `json:"period"`
	TotalSpending float64 `json:"total_spending"`
	ReceiptCount  int64   `json:"receipt_count"`
	TotalSavings  float64 `json:"total_savings"`
}

type SpendingOverTime struct {
	Granularity string           `json:"granularity"`
	Periods     []SpendingPeriod `json:"periods"`
}

type StoreStats struct {
	StoreID           int     `json:"store_id"`
	StoreName         string  `json:"store_name"`
	StoreCity         string  `json:"store_city"`
	TotalSpending     float64 `json:"total_spending"`
	ReceiptCount      int64   `json:"receipt_count"`
	AveragePerReceipt float64 `json:"average_per_receipt"`
	TotalSavings      float64 `json:"total_savings"`
}

type StoreAnalytics struct {
	Stores []StoreStats `json:"stores"`
}

type ProductStats struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalSpending float64 `json:"total_spending"`
	PurchaseCount int64   `json:"purchase_count"`
	AveragePrice  float64 `json:"average_price"`
}

type ProductAnalytics struct {
	Products      []ProductStats `json:"products"`
	TotalProducts int64          `json:"total_products"`
}

type DiscountTypeStats struct {
	DiscountType    string  `json:"discount_type"`
	DiscountName    string  `json:"discount_name"`
	TotalSavings    float64 `json:"total_savings"`
	OccurrenceCount int64   `json:"occurrence_count"`
}

type SavingsAnalytics struct {
	TotalSavings             float64             `json:"total_savings"`
	TotalDiscountsApplied    int64               `json:"total_discounts_applied"`
	AverageSavingsPerReceipt float64             `json:"average_savings_per_receipt"`
	DiscountTypes            []DiscountTypeStats `json:"discount_types"`
}

type ReceiptListItem struct {
	ID                string    `json:"id"`
	TransactionMoment time.Time `json:"transaction_moment"`
	TotalAmount       float64   `json:"total_amount"`
	StoreName         string    `json:"store_name"`
	StoreCity         string    `json:"store_city"`
	DiscountTotal     *float64  `json:"discount_total"`
	ItemCount         int64     `json:"item_count"`
}

type ReceiptList struct {
	Receipts []ReceiptListItem `json:"receipts"`
	pagination.PageInfo
}

type ReceiptItemDetail struct {
	ID          int64    `json:"id"`
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
}

type ReceiptDiscountDetail struct {
	ID             int64   `json:"id"`
	DiscountType   string  `json:"discount_type"`
	DiscountName   string  `json:"discount_name"`
	DiscountAmount float64 `json:"discount_amount"`
}

type ReceiptDetail struct {
	ID                string                  `json:"id"`
	TransactionMoment time.Time               `json:"transaction_moment"`
	TotalAmount       float64                 `json:"total_amount"`
	Subtotal          *float64                `json:"subtotal"`
	DiscountTotal     *float64                `json:"discount_total"`
	MemberID          string                  `json:"member_id"`
	StoreID           int                     `json:"store_id"`
	StoreName         string                  `json:"store_name"`
	StoreStreet       string                  `json:"store_street"`
	StoreCity         string                  `json:"store_city"`
	StorePostalCode   string                  `json:"store_postal_code"`
	CheckoutLane      int                     `json:"checkout_lane"`
	PaymentMethod     string                  `json:"payment_method"`
	Items             []ReceiptItemDetail     `json:"items"`
	Discounts         []ReceiptDiscountDetail `json:"discounts"`
}
