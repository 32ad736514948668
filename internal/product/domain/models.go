package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ProductPrice carries the regular shelf price for a catalog product.
type ProductPrice struct {
	Amount               float64 `json:"amount"`
	UnitSize             *string `json:"unit_size,omitempty"`
	UnitPriceDescription *string `json:"unit_price_description,omitempty"`
}

type ProductImage struct {
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// NutritionInfo holds per-serving values as reported by the catalog.
type NutritionInfo struct {
	EnergyKJ      *float64 `json:"energy_kj,omitempty"`
	EnergyKcal    *float64 `json:"energy_kcal,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	SaturatedFat  *float64 `json:"saturated_fat,omitempty"`
	Carbohydrates *float64 `json:"carbohydrates,omitempty"`
	Sugars        *float64 `json:"sugars,omitempty"`
	Fiber         *float64 `json:"fiber,omitempty"`
	Protein       *float64 `json:"protein,omitempty"`
	Salt          *float64 `json:"salt,omitempty"`
}

// ProductDetail is the full catalog record for a single product.
type ProductDetail struct {
	ProductID   string         `json:"product_id"`
	WebshopID   string         `json:"webshop_id"`
	Title       string         `json:"title"`
	Brand       *string        `json:"brand,omitempty"`
	Category    *string        `json:"category,omitempty"`
	Subcategory *string        `json:"subcategory,omitempty"`
	Description *string        `json:"description,omitempty"`
	Price       *ProductPrice  `json:"price,omitempty"`
	UnitSize    *string        `json:"unit_size,omitempty"`
	Images      []ProductImage `json:"images"`
	Nutrition   *NutritionInfo `json:"nutrition,omitempty"`
	IsAvailable bool           `json:"is_available"`
	IsBonus     bool           `json:"is_bonus"`
	BonusPrice  *float64       `json:"bonus_price,omitempty"`
	RawData     map[string]any `json:"raw_data,omitempty"`
}

type ProductSearchResult struct {
	ProductID string   `json:"product_id"`
	WebshopID string   `json:"webshop_id"`
	Title     string   `json:"title"`
	Brand     *string  `json:"brand,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	UnitSize  *string  `json:"unit_size,omitempty"`
	ImageURL  *string  `json:"image_url,omitempty"`
	IsBonus   bool     `json:"is_bonus"`
}

type ProductSearchResponse struct {
	Query        string                `json:"query"`
	TotalResults int                   `json:"total_results"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	Products     []ProductSearchResult `json:"products"`
}

// ProductCacheEntry is the slim projection returned by batch lookups.
type ProductCacheEntry struct {
	ProductID string         `json:"product_id"`
	WebshopID string         `json:"webshop_id"`
	Title     string         `json:"title"`
	Brand     *string        `json:"brand,omitempty"`
	Category  *string        `json:"category,omitempty"`
	Price     *float64       `json:"price,omitempty"`
	UnitSize  *string        `json:"unit_size,omitempty"`
	ImageURL  *string        `json:"image_url,omitempty"`
	FetchedAt time.Time      `json:"fetched_at"`
	RawJSON   map[string]any `json:"raw_json,omitempty"`
}

type CacheStats struct {
	TotalCached       int64 `json:"total_cached"`
	Valid             int64 `json:"valid"`
	Expired           int64 `json:"expired"`
	CacheDurationDays int   `json:"cache_duration_days"`
}

type PurgeResult struct {
	Deleted int64 `json:"deleted"`
}

// CachedProduct is the persisted cache row. The full upstream payload is
// kept verbatim in raw_json so richer fields survive a cache round trip.
type CachedProduct struct {
	ProductID   string         `gorm:"column:product_id;primaryKey"`
	WebshopID   string         `gorm:"column:webshop_id;index"`
	Title       string         `gorm:"column:title;not null"`
	Brand       *string        `gorm:"column:brand"`
	Category    *string        `gorm:"column:category"`
	Subcategory *string        `gorm:"column:subcategory"`
	Price       *float64       `gorm:"column:price"`
	UnitSize    *string        `gorm:"column:unit_size"`
	ImageURL    *string        `gorm:"column:image_url"`
	Description *string        `gorm:"column:description"`
	RawJSON     datatypes.JSON `gorm:"column:raw_json"`
	FetchedAt   time.Time      `gorm:"column:fetched_at"`
	ExpiresAt   time.Time      `gorm:"column:expires_at"`
}

func (CachedProduct) TableName() string {
	return "product_cache"
}

// Valid reports whether the cache row is still fresh at the given time.
func (c CachedProduct) Valid(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.After(now)
}
