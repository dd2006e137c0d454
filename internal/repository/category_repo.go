package repository

import (
	"context"
	"strings"

	"inventorypos/internal/model"

	"gorm.io/gorm"
)

// CategoryRepository resolves categories by name. Categories have no CRUD
// surface of their own; they are created when a product names a new one.
type CategoryRepository interface {
	FirstOrCreateTx(tx *gorm.DB, name string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

type categoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FirstOrCreateTx(tx *gorm.DB, name string) (*model.Category, error) {
	var c model.Category
	err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).
		Attrs(model.Category{Name: name}).
		FirstOrCreate(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, err
}
