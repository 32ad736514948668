package bonnyclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoneyUnmarshal(t *testing.T) {
	var m Money
	assert.NoError(t, json.Unmarshal([]byte(`{"amount": 1.5, "formatted": "1,50"}`), &m))
	assert.Equal(t, 1.5, m.Amount)
	assert.Equal(t, "1,50", m.Formatted)

	assert.NoError(t, json.Unmarshal([]byte(`2.75`), &m))
	assert.Equal(t, 2.75, m.Amount)
	assert.Equal(t, "", m.Formatted)

	assert.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, 0.0, m.Amount)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestFlexIntUnmarshal(t *testing.T) {
	var f FlexInt
	assert.NoError(t, json.Unmarshal([]byte(`1234`), &f))
	assert.Equal(t, FlexInt(1234), f)

	assert.NoError(t, json.Unmarshal([]byte(`"5678"`), &f))
	assert.Equal(t, FlexInt(5678), f)

	assert.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Equal(t, FlexInt(0), f)

	assert.NoError(t, json.Unmarshal([]byte(`""`), &f))
	assert.Equal(t, FlexInt(0), f)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &f))
}

func TestStringListUnmarshal(t *testing.T) {
	var s StringList
	assert.NoError(t, json.Unmarshal([]byte(`"Filiaal 1"`), &s))
	assert.Equal(t, StringList{"Filiaal 1"}, s)
	assert.Equal(t, "Filiaal 1", s.First())

	assert.NoError(t, json.Unmarshal([]byte(`["a", "b"]`), &s))
	assert.Equal(t, StringList{"a", "b"}, s)
	assert.Equal(t, "a", s.First())

	assert.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Nil(t, s)
	assert.Equal(t, "", s.First())
}

func TestReceiptDetailDecodeMixedShapes(t *testing.T) {
	payload := []byte(`{
		"id": "abc",
		"memberId": "m1",
		"storeInfo": "Filiaal 1234",
		"total": 12.5,
		"discountTotal": {"amount": -1.25},
		"transaction": {"dateTime": "2024-05-01T10:00:00Z", "store": "1234", "lane": 7},
		"products": [
			{"id": "p1", "name": "Melk", "quantity": 2, "price": 1.5, "amount": {"amount": 3.0}}
		]
	}`)

	var detail ReceiptDetail
	assert.NoError(t, json.Unmarshal(payload, &detail))
	assert.Equal(t, "abc", detail.ID)
	assert.Equal(t, "Filiaal 1234", detail.StoreInfo.First())
	assert.Equal(t, 12.5, detail.Total.Amount)
	if assert.NotNil(t, detail.DiscountTotal) {
		assert.Equal(t, -1.25, detail.DiscountTotal.Amount)
	}
	assert.Equal(t, FlexInt(1234), detail.Transaction.Store)
	assert.Equal(t, FlexInt(7), detail.Transaction.Lane)
	if assert.Len(t, detail.Products, 1) {
		assert.Equal(t, 1.5, detail.Products[0].Price.Amount)
		assert.Equal(t, 3.0, detail.Products[0].Amount.Amount)
	}
}
