package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateProductRequest registers a product. Category and Supplier are names;
// unknown names are created on the fly.
type CreateProductRequest struct {
	Name         string          `json:"name"          validate:"required,min=2,max=200"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"         validate:"gte=0"`
	CostPrice    decimal.Decimal `json:"cost_price"    validate:"gte=0"`
	Quantity     int             `json:"quantity"      validate:"min=0"`
	ReorderLevel *int            `json:"reorder_level" validate:"omitempty,min=0"`
	ImageURL     *string         `json:"image_url"     validate:"omitempty,url"`
	Category     string          `json:"category"      validate:"max=100"`
	Supplier     string          `json:"supplier"      validate:"max=200"`
}

// UpdateProductRequest edits a product. Quantity and SKU are not editable here.
type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=2,max=200"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"         validate:"omitempty,gte=0"`
	CostPrice    *decimal.Decimal `json:"cost_price"    validate:"omitempty,gte=0"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,min=0"`
	ImageURL     *string          `json:"image_url"     validate:"omitempty,url"`
	Category     *string          `json:"category"      validate:"omitempty,max=100"`
	Supplier     *string          `json:"supplier"      validate:"omitempty,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProductSearchItem is one hit of GET /v1/products/search.
type ProductSearchItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL *string         `json:"image_url"`
}

type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	IsLowStock   bool            `json:"is_low_stock"`
	ImageURL     *string         `json:"image_url"`
	Category     *string         `json:"category"`
	Supplier     *string         `json:"supplier"`
	Active       bool            `json:"active"`
}

// PriceCheckResponse is returned by the public price check endpoint (no auth required).
type PriceCheckResponse struct {
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Available int             `json:"available"`
	Category  string          `json:"category"`
}

// PriceHistoryItem is one row in the price-history list.
type PriceHistoryItem struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	CostPriceBefore decimal.Decimal `json:"cost_price_before"`
	CostPriceAfter  decimal.Decimal `json:"cost_price_after"`
	PriceBefore     decimal.Decimal `json:"price_before"`
	PriceAfter      decimal.Decimal `json:"price_after"`
	ChangedBy       *string         `json:"changed_by"`
	CreatedAt       string          `json:"created_at"`
}

// PriceHistoryListResponse is returned by GET /v1/products/:id/price-history.
type PriceHistoryListResponse struct {
	Data  []PriceHistoryItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
