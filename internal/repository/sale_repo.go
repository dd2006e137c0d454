package repository

import (
	"context"

	"inventorypos/internal/dto"
	"inventorypos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	CreateItemTx(tx *gorm.DB, item *model.SaleItem) error
	FindByID(ctx context.Context, id int64) (*model.Sale, error)
	FindByIDForUpdateTx(tx *gorm.DB, id int64) (*model.Sale, error)
	MaxIDTx(tx *gorm.DB) (int64, error)
	UpdateBalanceTx(tx *gorm.DB, s *model.Sale) error
	UpdateCustomer(ctx context.Context, id int64, name, phone string) error
	ListDebtors(ctx context.Context, filter dto.DebtorFilter) ([]model.Sale, int64, decimal.Decimal, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts the sale header only; items are written one by one so
// each line can be paired with its stock movement.
func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Omit("Items", "Payments", "Staff").Create(s).Error
}

func (r *saleRepo) CreateItemTx(tx *gorm.DB, item *model.SaleItem) error {
	return tx.Omit("Product").Create(item).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id int64) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Staff").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) FindByIDForUpdateTx(tx *gorm.DB, id int64) (*model.Sale, error) {
	var s model.Sale
	if err := ForUpdate(tx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// MaxIDTx returns the highest sale id, or 0 when there are no sales.
func (r *saleRepo) MaxIDTx(tx *gorm.DB) (int64, error) {
	var max int64
	err := tx.Model(&model.Sale{}).Select("COALESCE(MAX(id), 0)").Scan(&max).Error
	return max, err
}

func (r *saleRepo) UpdateBalanceTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Model(s).Select("amount_paid", "balance", "payment_status", "updated_at").Updates(s).Error
}

func (r *saleRepo) UpdateCustomer(ctx context.Context, id int64, name, phone string) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", id).Updates(map[string]interface{}{
		"customer_name":  name,
		"customer_phone": phone,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDebtors returns sales that still carry a balance, newest first, plus
// the total count and the summed outstanding balance across all pages.
func (r *saleRepo) ListDebtors(ctx context.Context, filter dto.DebtorFilter) ([]model.Sale, int64, decimal.Decimal, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 50, 200)

	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("balance > 0")
	if filter.Customer != "" {
		like := likePattern(filter.Customer)
		q = q.Where(`(LOWER(customer_name) LIKE ? ESCAPE '\' OR customer_phone LIKE ? ESCAPE '\')`, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, decimal.Zero, err
	}

	var agg struct{ Outstanding decimal.Decimal }
	if err := q.Session(&gorm.Session{}).
		Select("COALESCE(SUM(balance), 0) AS outstanding").
		Scan(&agg).Error; err != nil {
		return nil, 0, decimal.Zero, err
	}

	var sales []model.Sale
	err := q.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, 0, decimal.Zero, err
	}
	return sales, total, agg.Outstanding, nil
}
