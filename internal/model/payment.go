package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment methods accepted by the payment ledger.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// Payment is an immutable receipt of money against a sale.
// Payments are never modified; the sale row carries the running balance.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    int64           `gorm:"not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method    string          `gorm:"type:varchar(20);not null;default:'cash'"`
	Reference string          `gorm:"not null;default:'';size:100"`
	Notes     string          `gorm:"not null;default:''"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time       `gorm:"index"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
