package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Movement types.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
)

// StockMovement records every change to a product's quantity.
// Rows are append-only: corrections are new movements, never edits.
type StockMovement struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type           string     `gorm:"type:varchar(20);not null"` // "in" | "out" | "adjustment"
	Quantity       int        `gorm:"not null"`                  // positive = in, negative = out
	QuantityBefore int        `gorm:"not null"`
	QuantityAfter  int        `gorm:"not null"`
	Reference      string     `gorm:"not null;default:'';size:100;index"`
	Notes          string     `gorm:"not null;default:''"`
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (m *StockMovement) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
