package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment status values stored on Sale.PaymentStatus.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusUnpaid  = "unpaid"
)

// Sale is the invoice header. ID is a plain autoincrement because invoice
// numbers are derived from the highest existing id.
//
// Invariants: Total = Subtotal - Discount, Balance = max(Total - AmountPaid, 0),
// PaymentStatus = PaymentStatusFor(AmountPaid, Balance).
type Sale struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	InvoiceNumber string          `gorm:"uniqueIndex;not null;size:50"`
	StaffID       *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName  string          `gorm:"not null;size:200"`
	CustomerPhone string          `gorm:"not null;size:15"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Balance       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;index"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'paid'"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time

	Staff    *User      `gorm:"foreignKey:StaffID;constraint:OnDelete:SET NULL"`
	Items    []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments []Payment  `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// IsDebtor reports whether the sale still has an outstanding balance.
func (s *Sale) IsDebtor() bool { return s.Balance.IsPositive() }

// ApplyAmountPaid recomputes Balance and PaymentStatus from Total and
// AmountPaid. A non-positive balance is clamped to zero.
func (s *Sale) ApplyAmountPaid() {
	balance := s.Total.Sub(s.AmountPaid)
	if !balance.IsPositive() {
		balance = decimal.Zero
	}
	s.Balance = balance
	s.PaymentStatus = PaymentStatusFor(s.AmountPaid, s.Balance)
}

// PaymentStatusFor derives the status of a sale from what has been paid and
// what is still owed.
func PaymentStatusFor(amountPaid, balance decimal.Decimal) string {
	switch {
	case !balance.IsPositive():
		return PaymentStatusPaid
	case amountPaid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// SaleItem is an immutable snapshot of one cart line. ProductName and Price
// are copied at sale time so later product edits never rewrite history.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      int64           `gorm:"not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"not null;size:200"`
	Quantity    int             `gorm:"not null;check:chk_sale_items_quantity,quantity >= 1"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
}

// BeforeCreate assigns the id and derives Total from price, quantity and discount.
func (i *SaleItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.Total = i.Price.Mul(decimal.NewFromInt(int64(i.Quantity))).Sub(i.Discount)
	return nil
}
