package bonnyclient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Money decodes both the object form {"amount": 1.5, "formatted": "1,50"}
// and the bare numeric form the upstream API mixes freely.
type Money struct {
	Amount    float64
	Formatted string
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = Money{}
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Amount    float64 `json:"amount"`
			Formatted string  `json:"formatted"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		m.Amount = obj.Amount
		m.Formatted = obj.Formatted
		return nil
	}
	var amount float64
	if err := json.Unmarshal(data, &amount); err != nil {
		return err
	}
	m.Amount = amount
	m.Formatted = ""
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount    float64 `json:"amount"`
		Formatted string  `json:"formatted,omitempty"`
	}{Amount: m.Amount, Formatted: m.Formatted})
}

// FlexInt decodes integers that the upstream API sometimes quotes.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*f = 0
		return nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*f = FlexInt(parsed)
	return nil
}

// StringList decodes a value that may be a single string or an array.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = []string{single}
	return nil
}

// First returns the first entry or an empty string.
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

type StoreAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type ReceiptSummary struct {
	ID           string       `json:"id"`
	DateTime     string       `json:"dateTime"`
	TotalAmount  Money        `json:"totalAmount"`
	StoreAddress StoreAddress `json:"storeAddress"`
}

type PageWindow struct {
	Offset        int `json:"offset"`
	Limit         int `json:"limit"`
	TotalElements int `json:"totalElements"`
}

type ReceiptsPage struct {
	Pagination PageWindow       `json:"pagination"`
	Receipts   []ReceiptSummary `json:"posReceipts"`
}

type ReceiptProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    Money   `json:"price"`
	Amount   Money   `json:"amount"`
}

type ReceiptDiscount struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

type ReceiptPayment struct {
	Method string `json:"method"`
	Amount Money  `json:"amount"`
}

type ReceiptTransaction struct {
	DateTime string  `json:"dateTime"`
	Store    FlexInt `json:"store"`
	Lane     FlexInt `json:"lane"`
	ID       string  `json:"id"`
}

type VATLevel struct {
	Percentage float64 `json:"percentage"`
	Amount     Money   `json:"amount"`
}

type VATSummary struct {
	Levels []VATLevel `json:"levels"`
	Total  struct {
		Amount Money `json:"amount"`
	} `json:"total"`
}

type AmountWrapper struct {
	Amount Money `json:"amount"`
}

type ReceiptDetail struct {
	ID               string             `json:"id"`
	MemberID         string             `json:"memberId"`
	StoreInfo        StringList         `json:"storeInfo"`
	Products         []ReceiptProduct   `json:"products"`
	SubtotalProducts *AmountWrapper     `json:"subtotalProducts"`
	Discounts        []ReceiptDiscount  `json:"discounts"`
	DiscountTotal    *Money             `json:"discountTotal"`
	Total            Money              `json:"total"`
	Payments         []ReceiptPayment   `json:"payments"`
	Transaction      ReceiptTransaction `json:"transaction"`
	Address          *StoreAddress      `json:"address"`
	VAT              *VATSummary        `json:"vat"`
}
