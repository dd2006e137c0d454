package repository

import (
	"context"

	"inventorypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// editableProductColumns are the columns a product edit may write.
// quantity belongs to the stock ledger and sku is immutable.
var editableProductColumns = []string{
	"name", "description", "price", "cost_price", "reorder_level",
	"image_url", "category_id", "supplier_id", "updated_at",
}

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)
	ListLowStock(ctx context.Context, limit int) ([]model.Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error)
	UpdateTx(tx *gorm.DB, p *model.Product) error

	// UpdateStockTx applies delta only if the result stays non-negative and
	// returns the number of rows it changed (0 or 1).
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Preload("Category").Preload("Supplier").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Where("sku = ? AND active = ?", sku, true).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) SKUExists(ctx context.Context, sku string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("sku = ?", sku).Count(&n).Error
	return n > 0, err
}

// Search matches the query as a substring of name or description, ignoring case.
func (r *productRepo) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	like := likePattern(query)
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListLowStock(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).
		Where("active = ? AND quantity <= reorder_level", true).
		Order("quantity ASC, name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("active", false).Error
}

// LockByIDsTx loads the given products with a row lock, acquiring locks in
// id order so that two carts sharing products cannot deadlock.
func (r *productRepo) LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	out := make(map[uuid.UUID]*model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []model.Product
	err := ForUpdate(tx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Model(p).Select(editableProductColumns).Updates(p).Error
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	return res.RowsAffected, res.Error
}
