package service

import (
	"encoding/json"
	"time"

	"github.com/pantrysense/pantrysense/internal/product/domain"
	"gorm.io/datatypes"
)

func detailToRow(detail domain.ProductDetail, fetchedAt, expiresAt time.Time) domain.CachedProduct {
	row := domain.CachedProduct{
		ProductID:   detail.ProductID,
		WebshopID:   detail.WebshopID,
		Title:       detail.Title,
		Brand:       detail.Brand,
		Category:    detail.Category,
		Subcategory: detail.Subcategory,
		UnitSize:    detail.UnitSize,
		Description: detail.Description,
		FetchedAt:   fetchedAt,
		ExpiresAt:   expiresAt,
	}
	if detail.Price != nil {
		amount := detail.Price.Amount
		row.Price = &amount
	}
	if len(detail.Images) > 0 {
		url := detail.Images[0].URL
		row.ImageURL = &url
	}
	if detail.RawData != nil {
		if raw, err := json.Marshal(detail.RawData); err == nil {
			row.RawJSON = datatypes.JSON(raw)
		}
	}
	return row
}

func rawFromRow(row domain.CachedProduct) map[string]any {
	if len(row.RawJSON) == 0 {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(row.RawJSON, &raw); err != nil {
		return nil
	}
	return raw
}

func rowToDetail(row domain.CachedProduct) domain.ProductDetail {
	detail := domain.ProductDetail{
		ProductID:   row.ProductID,
		WebshopID:   row.WebshopID,
		Title:       row.Title,
		Brand:       row.Brand,
		Category:    row.Category,
		Subcategory: row.Subcategory,
		Description: row.Description,
		UnitSize:    row.UnitSize,
		Images:      []domain.ProductImage{},
		IsAvailable: true,
		RawData:     rawFromRow(row),
	}
	if row.Price != nil {
		detail.Price = &domain.ProductPrice{Amount: *row.Price, UnitSize: row.UnitSize}
	}
	if row.ImageURL != nil {
		detail.Images = append(detail.Images, domain.ProductImage{URL: *row.ImageURL})
	}
	return detail
}

func rowToEntry(row domain.CachedProduct) domain.ProductCacheEntry {
	return domain.ProductCacheEntry{
		ProductID: row.ProductID,
		WebshopID: row.WebshopID,
		Title:     row.Title,
		Brand:     row.Brand,
		Category:  row.Category,
		Price:     row.Price,
		UnitSize:  row.UnitSize,
		ImageURL:  row.ImageURL,
		FetchedAt: row.FetchedAt,
		RawJSON:   rawFromRow(row),
	}
}

func detailToEntry(detail domain.ProductDetail, fetchedAt time.Time) domain.ProductCacheEntry {
	entry := domain.ProductCacheEntry{
		ProductID: detail.ProductID,
		WebshopID: detail.WebshopID,
		Title:     detail.Title,
		Brand:     detail.Brand,
		Category:  detail.Category,
		UnitSize:  detail.UnitSize,
		FetchedAt: fetchedAt,
		RawJSON:   detail.RawData,
	}
	if detail.Price != nil {
		amount := detail.Price.Amount
		entry.Price = &amount
	}
	if len(detail.Images) > 0 {
		url := detail.Images[0].URL
		entry.ImageURL = &url
	}
	return entry
}
