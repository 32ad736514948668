package product

import (
	"strconv"

	"github.com/pantrysense/pantrysense/internal/product/domain"
)

// The catalog API is not consistent about shapes: prices arrive as bare
// numbers or objects, images as strings or objects, ids as numbers or
// strings, and the product itself may be nested under "productCard".
// Everything here decodes defensively from the raw payload.

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringPtrField(m map[string]any, keys ...string) *string {
	if s := stringField(m, keys...); s != "" {
		return &s
	}
	return nil
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

func intPtrValue(v any) *int {
	if f, ok := floatValue(v); ok {
		n := int(f)
		return &n
	}
	return nil
}

func boolField(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if b, ok := m[key].(bool); ok && b {
			return true
		}
	}
	return false
}

// priceAmount handles both shapes: a bare number or an object carrying
// "now" or "amount".
func priceAmount(v any) (float64, *string, bool) {
	if f, ok := floatValue(v); ok {
		return f, nil, true
	}
	if m, ok := v.(map[string]any); ok {
		desc := stringPtrField(m, "unitPriceDescription")
		if f, ok := floatValue(m["now"]); ok {
			return f, desc, true
		}
		if f, ok := floatValue(m["amount"]); ok {
			return f, desc, true
		}
		return 0, desc, true
	}
	return 0, nil, false
}

func parseImages(v any) []domain.ProductImage {
	images := []domain.ProductImage{}
	list, ok := v.([]any)
	if !ok {
		return images
	}
	for _, entry := range list {
		switch img := entry.(type) {
		case map[string]any:
			images = append(images, domain.ProductImage{
				URL:    stringField(img, "url"),
				Width:  intPtrValue(img["width"]),
				Height: intPtrValue(img["height"]),
			})
		case string:
			images = append(images, domain.ProductImage{URL: img})
		}
	}
	return images
}

// nutritionValue unwraps values that arrive either bare or nested under
// "amount"/"value".
func nutritionValue(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	if nested, ok := v.(map[string]any); ok {
		if f, ok := floatValue(nested["amount"]); ok {
			return &f
		}
		if f, ok := floatValue(nested["value"]); ok {
			return &f
		}
		return nil
	}
	if f, ok := floatValue(v); ok {
		return &f
	}
	return nil
}

func parseNutrition(v any) *domain.NutritionInfo {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	return &domain.NutritionInfo{
		EnergyKJ:      nutritionValue(m, "energyKj"),
		EnergyKcal:    nutritionValue(m, "energyKcal"),
		Fat:           nutritionValue(m, "fat"),
		SaturatedFat:  nutritionValue(m, "saturatedFat"),
		Carbohydrates: nutritionValue(m, "carbohydrates"),
		Sugars:        nutritionValue(m, "sugars"),
		Fiber:         nutritionValue(m, "fiber"),
		Protein:       nutritionValue(m, "protein"),
		Salt:          nutritionValue(m, "salt"),
	}
}

func parseProductDetail(data map[string]any) domain.ProductDetail {
	product := data
	if card, ok := data["productCard"].(map[string]any); ok {
		product = card
	}

	var price *domain.ProductPrice
	priceInfo := product["priceBeforeBonus"]
	if priceInfo == nil {
		priceInfo = product["price"]
	}
	if amount, desc, ok := priceAmount(priceInfo); ok {
		unitSize := stringPtrField(product, "salesUnitSize", "unitSize")
		if desc == nil {
			desc = stringPtrField(product, "unitPriceDescription")
		}
		price = &domain.ProductPrice{
			Amount:               amount,
			UnitSize:             unitSize,
			UnitPriceDescription: desc,
		}
	}

	nutritionData := product["nutritionInfo"]
	if nutritionData == nil {
		nutritionData = product["nutrition"]
	}

	isBonus := boolField(product, "isBonus", "bonus")
	var bonusPrice *float64
	if isBonus {
		bonusData, ok := product["bonusPrice"].(map[string]any)
		if !ok {
			bonusData, _ = product["price"].(map[string]any)
		}
		if bonusData != nil {
			if f, ok := floatValue(bonusData["now"]); ok {
				bonusPrice = &f
			} else if f, ok := floatValue(bonusData["amount"]); ok {
				bonusPrice = &f
			}
		}
	}

	productID := idString(product["hqId"])
	if productID == "" {
		productID = idString(product["id"])
	}

	isAvailable := true
	if v, ok := product["isAvailable"].(bool); ok {
		isAvailable = v
	}

	return domain.ProductDetail{
		ProductID:   productID,
		WebshopID:   idString(product["webshopId"]),
		Title:       stringField(product, "title", "name"),
		Brand:       stringPtrField(product, "brand"),
		Category:    stringPtrField(product, "mainCategory", "category"),
		Subcategory: stringPtrField(product, "subCategory"),
		Description: stringPtrField(product, "description", "productDescription"),
		Price:       price,
		UnitSize:    stringPtrField(product, "unitSize", "salesUnitSize"),
		Images:      parseImages(product["images"]),
		Nutrition:   parseNutrition(nutritionData),
		IsAvailable: isAvailable,
		IsBonus:     isBonus,
		BonusPrice:  bonusPrice,
		RawData:     data,
	}
}

func parseSearchResponse(data map[string]any, query string, page, size int) domain.ProductSearchResponse {
	products := []domain.ProductSearchResult{}
	rawProducts, _ := data["products"].([]any)

	for _, entry := range rawProducts {
		p, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		var imageURL *string
		if images, ok := p["images"].([]any); ok && len(images) > 0 {
			switch img := images[0].(type) {
			case map[string]any:
				imageURL = stringPtrField(img, "url")
			case string:
				imageURL = &img
			}
		}

		var price *float64
		priceInfo := p["priceBeforeBonus"]
		if priceInfo == nil {
			priceInfo = p["price"]
		}
		if amount, _, ok := priceAmount(priceInfo); ok {
			price = &amount
		}

		productID := idString(p["hqId"])
		if productID == "" {
			productID = idString(p["id"])
		}

		products = append(products, domain.ProductSearchResult{
			ProductID: productID,
			WebshopID: idString(p["webshopId"]),
			Title:     stringField(p, "title", "name"),
			Brand:     stringPtrField(p, "brand"),
			Price:     price,
			UnitSize:  stringPtrField(p, "unitSize"),
			ImageURL:  imageURL,
			IsBonus:   boolField(p, "isBonus", "bonus"),
		})
	}

	totalResults := len(products)
	if pageInfo, ok := data["page"].(map[string]any); ok {
		if f, ok := floatValue(pageInfo["totalElements"]); ok {
			totalResults = int(f)
		}
	}

	return domain.ProductSearchResponse{
		Query:        query,
		TotalResults: totalResults,
		Page:         page,
		PageSize:     size,
		Products:     products,
	}
}
