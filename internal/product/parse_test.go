package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return data
}

func TestParseProductDetailObjectPrice(t *testing.T) {
	data := decode(t, `{
		"hqId": 12345,
		"webshopId": "wi67890",
		"title": "Halfvolle melk",
		"brand": "Huismerk",
		"mainCategory": "Zuivel",
		"priceBeforeBonus": {"now": 1.49, "unitPriceDescription": "1.49/l"},
		"salesUnitSize": "1 l",
		"images": [{"url": "https://img/1.png", "width": 200, "height": 200}, "https://img/2.png"],
		"isBonus": false
	}`)

	detail := parseProductDetail(data)

	assert.Equal(t, "12345", detail.ProductID)
	assert.Equal(t, "wi67890", detail.WebshopID)
	assert.Equal(t, "Halfvolle melk", detail.Title)
	if assert.NotNil(t, detail.Price) {
		assert.Equal(t, 1.49, detail.Price.Amount)
		if assert.NotNil(t, detail.Price.UnitPriceDescription) {
			assert.Equal(t, "1.49/l", *detail.Price.UnitPriceDescription)
		}
	}
	if assert.Len(t, detail.Images, 2) {
		assert.Equal(t, "https://img/1.png", detail.Images[0].URL)
		if assert.NotNil(t, detail.Images[0].Width) {
			assert.Equal(t, 200, *detail.Images[0].Width)
		}
		assert.Equal(t, "https://img/2.png", detail.Images[1].URL)
	}
	assert.True(t, detail.IsAvailable)
	assert.False(t, detail.IsBonus)
	assert.Equal(t, data, detail.RawData)
}

func TestParseProductDetailProductCardNesting(t *testing.T) {
	data := decode(t, `{
		"productCard": {
			"id": "77",
			"name": "Kaas",
			"price": 5.99,
			"isAvailable": false
		}
	}`)

	detail := parseProductDetail(data)

	// No hqId: the plain id is the fallback, and "name" stands in for
	// the missing "title".
	assert.Equal(t, "77", detail.ProductID)
	assert.Equal(t, "Kaas", detail.Title)
	if assert.NotNil(t, detail.Price) {
		assert.Equal(t, 5.99, detail.Price.Amount)
	}
	assert.False(t, detail.IsAvailable)
}

func TestParseProductDetailBonus(t *testing.T) {
	data := decode(t, `{
		"hqId": "1",
		"title": "Koffie",
		"priceBeforeBonus": 8.99,
		"bonus": true,
		"bonusPrice": {"now": 6.49}
	}`)

	detail := parseProductDetail(data)

	assert.True(t, detail.IsBonus)
	if assert.NotNil(t, detail.BonusPrice) {
		assert.Equal(t, 6.49, *detail.BonusPrice)
	}
}

func TestParseProductDetailBonusPriceFromPriceObject(t *testing.T) {
	data := decode(t, `{
		"hqId": "1",
		"title": "Koffie",
		"isBonus": true,
		"price": {"amount": 6.49}
	}`)

	detail := parseProductDetail(data)

	if assert.NotNil(t, detail.BonusPrice) {
		assert.Equal(t, 6.49, *detail.BonusPrice)
	}
}

func TestParseNutritionNestedAndBare(t *testing.T) {
	data := decode(t, `{
		"hqId": "1",
		"title": "Melk",
		"nutritionInfo": {
			"energyKcal": {"amount": 46},
			"protein": {"value": 3.4},
			"salt": 0.13
		}
	}`)

	detail := parseProductDetail(data)

	if assert.NotNil(t, detail.Nutrition) {
		if assert.NotNil(t, detail.Nutrition.EnergyKcal) {
			assert.Equal(t, 46.0, *detail.Nutrition.EnergyKcal)
		}
		if assert.NotNil(t, detail.Nutrition.Protein) {
			assert.Equal(t, 3.4, *detail.Nutrition.Protein)
		}
		if assert.NotNil(t, detail.Nutrition.Salt) {
			assert.Equal(t, 0.13, *detail.Nutrition.Salt)
		}
		assert.Nil(t, detail.Nutrition.Fat)
	}
}

func TestParseSearchResponse(t *testing.T) {
	data := decode(t, `{
		"products": [
			{"hqId": 1, "webshopId": 100, "title": "Melk", "price": {"now": 1.49}, "images": ["https://img/1.png"]},
			{"id": "2", "name": "Kaas", "priceBeforeBonus": 5.99, "bonus": true},
			"not-a-product"
		],
		"page": {"totalElements": 240}
	}`)

	resp := parseSearchResponse(data, "melk", 0, 20)

	assert.Equal(t, "melk", resp.Query)
	assert.Equal(t, 240, resp.TotalResults)
	assert.Equal(t, 0, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	if assert.Len(t, resp.Products, 2) {
		assert.Equal(t, "1", resp.Products[0].ProductID)
		assert.Equal(t, "100", resp.Products[0].WebshopID)
		if assert.NotNil(t, resp.Products[0].Price) {
			assert.Equal(t, 1.49, *resp.Products[0].Price)
		}
		if assert.NotNil(t, resp.Products[0].ImageURL) {
			assert.Equal(t, "https://img/1.png", *resp.Products[0].ImageURL)
		}
		assert.Equal(t, "2", resp.Products[1].ProductID)
		assert.Equal(t, "Kaas", resp.Products[1].Title)
		assert.True(t, resp.Products[1].IsBonus)
	}
}

func TestParseSearchResponseTotalFallsBackToLength(t *testing.T) {
	data := decode(t, `{"products": [{"id": "1", "title": "Melk"}]}`)

	resp := parseSearchResponse(data, "melk", 0, 20)

	assert.Equal(t, 1, resp.TotalResults)
}
