package sync

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pantrysense/pantrysense/internal/bonnyclient"
	"github.com/pantrysense/pantrysense/internal/receipt/domain"
)

const storeBrand = "Bonny"

func parseMoment(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback
	}
	return parsed.UTC()
}

// mapReceipt converts an API receipt detail to the persisted model.
func mapReceipt(detail *bonnyclient.ReceiptDetail, now time.Time) domain.Receipt {
	moment := parseMoment(detail.Transaction.DateTime, now)

	var subtotal *float64
	if detail.SubtotalProducts != nil {
		value := detail.SubtotalProducts.Amount.Amount
		subtotal = &value
	}

	var discountTotal *float64
	if detail.DiscountTotal != nil {
		value := detail.DiscountTotal.Amount
		discountTotal = &value
	}

	paymentMethod := ""
	if len(detail.Payments) > 0 {
		paymentMethod = detail.Payments[0].Method
	}

	// Store name is built from the street; storeInfo only carries an id.
	var street, city, postalCode string
	if detail.Address != nil {
		street = detail.Address.Street
		city = detail.Address.City
		postalCode = detail.Address.PostalCode
	}
	storeName := ""
	if street != "" {
		storeName = storeBrand + " " + street
	} else {
		storeName = detail.StoreInfo.First()
	}

	return domain.Receipt{
		ID:                detail.ID,
		TransactionMoment: moment,
		TotalAmount:       detail.Total.Amount,
		Subtotal:          subtotal,
		DiscountTotal:     discountTotal,
		MemberID:          detail.MemberID,
		StoreID:           int(detail.Transaction.Store),
		StoreName:         storeName,
		StoreStreet:       street,
		StoreCity:         city,
		StorePostalCode:   postalCode,
		CheckoutLane:      int(detail.Transaction.Lane),
		PaymentMethod:     paymentMethod,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func mapItems(genID *snowflake.Node, receiptID string, products []bonnyclient.ReceiptProduct, now time.Time) []domain.ReceiptItem {
	items := make([]domain.ReceiptItem, 0, len(products))
	for _, product := range products {
		name := product.Name
		if name == "" {
			name = "Unknown"
		}
		quantity := product.Quantity
		if quantity == 0 {
			quantity = 1
		}
		unitPrice := product.Price.Amount
		lineTotal := product.Amount.Amount
		items = append(items, domain.ReceiptItem{
			ID:          genID.Generate(),
			ReceiptID:   receiptID,
			ProductID:   product.ID,
			ProductName: name,
			Quantity:    quantity,
			UnitPrice:   &unitPrice,
			LineTotal:   &lineTotal,
			CreatedAt:   now,
		})
	}
	return items
}

func mapDiscounts(genID *snowflake.Node, receiptID string, discounts []bonnyclient.ReceiptDiscount, now time.Time) []domain.ReceiptDiscount {
	mapped := make([]domain.ReceiptDiscount, 0, len(discounts))
	for _, discount := range discounts {
		mapped = append(mapped, domain.ReceiptDiscount{
			ID:             genID.Generate(),
			ReceiptID:      receiptID,
			DiscountType:   discount.Type,
			DiscountName:   discount.Name,
			DiscountAmount: discount.Amount.Amount,
			CreatedAt:      now,
		})
	}
	return mapped
}

func mapVAT(genID *snowflake.Node, receiptID string, vat *bonnyclient.VATSummary, now time.Time) []domain.ReceiptVAT {
	if vat == nil {
		return nil
	}
	entries := make([]domain.ReceiptVAT, 0, len(vat.Levels))
	for _, level := range vat.Levels {
		entries = append(entries, domain.ReceiptVAT{
			ID:            genID.Generate(),
			ReceiptID:     receiptID,
			VATPercentage: level.Percentage,
			VATAmount:     level.Amount.Amount,
			CreatedAt:     now,
		})
	}
	return entries
}
