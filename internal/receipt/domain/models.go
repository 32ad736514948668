package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Receipt is one point-of-sale transaction. The primary key is the
// retailer's transaction id and stays an opaque string.
type Receipt struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	TransactionMoment time.Time `gorm:"not null;index" json:"transaction_moment"`
	TotalAmount       float64   `gorm:"not null" json:"total_amount"`
	Subtotal          *float64  `json:"subtotal,omitempty"`
	DiscountTotal     *float64  `json:"discount_total,omitempty"`
	MemberID          string    `json:"member_id,omitempty"`
	StoreID           int       `json:"store_id,omitempty"`
	StoreName         string    `json:"store_name,omitempty"`
	StoreStreet       string    `json:"store_street,omitempty"`
	StoreCity         string    `json:"store_city,omitempty"`
	StorePostalCode   string    `json:"store_postal_code,omitempty"`
	CheckoutLane      int       `json:"checkout_lane,omitempty"`
	PaymentMethod     string    `json:"payment_method,omitempty"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Receipt) TableName() string { return "receipts" }

type ReceiptItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ReceiptID   string       `gorm:"not null;index" json:"receipt_id"`
	ProductID   string       `json:"product_id,omitempty"`
	ProductName string       `gorm:"not null" json:"product_name"`
	Quantity    float64      `gorm:"default:1" json:"quantity"`
	UnitPrice   *float64     `json:"unit_price,omitempty"`
	LineTotal   *float64     `json:"line_total,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ReceiptItem) TableName() string { return "receipt_items" }

type ReceiptDiscount struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ReceiptID      string       `gorm:"not null;index" json:"receipt_id"`
	DiscountType   string       `json:"discount_type,omitempty"`
	DiscountName   string       `json:"discount_name,omitempty"`
	DiscountAmount float64      `gorm:"not null" json:"discount_amount"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ReceiptDiscount) TableName() string { return "receipt_discounts" }

type ReceiptVAT struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ReceiptID     string       `gorm:"not null;index" json:"receipt_id"`
	VATPercentage float64      `gorm:"not null" json:"vat_percentage"`
	VATAmount     float64      `gorm:"not null" json:"vat_amount"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ReceiptVAT) TableName() string { return "receipt_vat" }
