package dto

// AdjustStockRequest is the body of PATCH /v1/products/:id/stock.
// Type "in" needs a positive delta; "adjustment" accepts either sign.
type AdjustStockRequest struct {
	Type      string `json:"type"      validate:"required,oneof=in adjustment"`
	Delta     int    `json:"delta"     validate:"required"`
	Reference string `json:"reference" validate:"max=100"`
	Notes     string `json:"notes"`
}

// MovementFilter is bound from the query string of GET /v1/inventory/movements.
type MovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=in out adjustment"`
	Reference string `form:"reference"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockMovementResponse struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Type           string  `json:"type"`
	Quantity       int     `json:"quantity"`
	QuantityBefore int     `json:"quantity_before"`
	QuantityAfter  int     `json:"quantity_after"`
	Reference      string  `json:"reference"`
	Notes          string  `json:"notes"`
	CreatedBy      *string `json:"created_by"`
	CreatedAt      string  `json:"created_at"`
}

type MovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// LowStockItem is one product at or below its reorder level.
type LowStockItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}
