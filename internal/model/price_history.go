package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceHistory records each change to a product's price or cost price.
// Rows are immutable.
type PriceHistory struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostPriceBefore decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostPriceAfter  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceBefore     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceAfter      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ChangedBy       *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (h *PriceHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
