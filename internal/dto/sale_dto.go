package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CartItem is one line of a cart as sent by the POS. Price and Total are
// supplied by the client; Total is trusted when the sale subtotal is computed.
type CartItem struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  int              `json:"quantity"   validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price"      validate:"required,gte=0"`
	Discount  decimal.Decimal  `json:"discount"   validate:"gte=0"`
	Total     *decimal.Decimal `json:"total"      validate:"required,gte=0"`
}

type ProcessSaleRequest struct {
	Items         []CartItem      `json:"items"          validate:"dive"`
	CustomerName  string          `json:"customer_name"  validate:"max=200"`
	CustomerPhone string          `json:"customer_phone" validate:"max=15"`
	AmountPaid    decimal.Decimal `json:"amount_paid"    validate:"gte=0"`
	// CustomerEmail: optional; when present the receipt worker mails the PDF.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

// UpdateReceiptRequest edits the customer fields printed on a receipt.
type UpdateReceiptRequest struct {
	CustomerName  string `json:"customer_name"  validate:"max=200"`
	CustomerPhone string `json:"customer_phone" validate:"max=15"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// DebtorFilter is bound from the query string of GET /v1/debtors.
type DebtorFilter struct {
	Customer string `form:"customer"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProcessSaleResponse struct {
	Success       bool   `json:"success"`
	InvoiceNumber string `json:"invoice_number"`
	SaleID        int64  `json:"sale_id"`
}

type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

type SaleResponse struct {
	ID            int64              `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	StaffID       *string            `json:"staff_id"`
	StaffName     string             `json:"staff_name,omitempty"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Balance       decimal.Decimal    `json:"balance"`
	PaymentStatus string             `json:"payment_status"`
	Items         []SaleItemResponse `json:"items"`
	Payments      []PaymentResponse  `json:"payments"`
	CreatedAt     string             `json:"created_at"`
}

// DebtorItem is one row of the debtor list; items and payments are omitted.
type DebtorItem struct {
	SaleID        int64           `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Balance       decimal.Decimal `json:"balance"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     string          `json:"created_at"`
}

type DebtorListResponse struct {
	Data         []DebtorItem    `json:"data"`
	Total        int64           `json:"total"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Page         int             `json:"page"`
	Limit        int             `json:"limit"`
}
