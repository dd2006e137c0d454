package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item. Quantity is owned by the stock ledger: nothing
// else writes it after registration.
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name         string          `gorm:"index;not null"`
	SKU          string          `gorm:"column:sku;uniqueIndex;not null;size:50"`
	Description  string          `gorm:"not null;default:''"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Quantity     int             `gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0"`
	ReorderLevel int             `gorm:"not null"`
	ImageURL     *string
	CategoryID   *uuid.UUID `gorm:"type:uuid;index"`
	SupplierID   *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:SET NULL"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the product is at or below its reorder level.
func (p *Product) IsLowStock() bool { return p.Quantity <= p.ReorderLevel }
