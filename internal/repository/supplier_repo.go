package repository

import (
	"strings"

	"inventorypos/internal/model"

	"gorm.io/gorm"
)

type SupplierRepository interface {
	FirstOrCreateTx(tx *gorm.DB, name string) (*model.Supplier, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) FirstOrCreateTx(tx *gorm.DB, name string) (*model.Supplier, error) {
	var s model.Supplier
	err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).
		Attrs(model.Supplier{Name: name}).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
