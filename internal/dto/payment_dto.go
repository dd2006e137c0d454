package dto

import "github.com/shopspring/decimal"

// PaymentRequest is the body of POST /v1/sales/:id/payments. Amount bounds
// are checked by the payment ledger, not here, so that overpayment and
// non-positive amounts surface with their own error kinds.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"    validate:"omitempty,oneof=cash card transfer"`
	Reference string          `json:"reference" validate:"max=100"`
	Notes     string          `json:"notes"`
}

type PaymentResponse struct {
	ID        string          `json:"id"`
	SaleID    int64           `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	CreatedBy *string         `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

// RecordPaymentResponse reports the sale state after a payment was applied.
type RecordPaymentResponse struct {
	Success       bool            `json:"success"`
	Payment       PaymentResponse `json:"payment"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Balance       decimal.Decimal `json:"balance"`
	PaymentStatus string          `json:"payment_status"`
}
