package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier represents a vendor products are bought from.
type Supplier struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"uniqueIndex;not null;size:200"`
	ContactPerson string    `gorm:"not null;default:''"`
	Email         string    `gorm:"not null;default:''"`
	Phone         string    `gorm:"not null;default:'';size:15"`
	Address       string    `gorm:"not null;default:''"`
	CreatedAt     time.Time

	Products []Product `gorm:"foreignKey:SupplierID"`
}

func (s *Supplier) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
