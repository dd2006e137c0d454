package service

import (
	"testing"

	"inventorypos/internal/infra"
	"inventorypos/internal/model"
	"inventorypos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires every ledger against a private in-memory SQLite database.
type testEnv struct {
	db        *gorm.DB
	actor     uuid.UUID
	saleRepo  repository.SaleRepository
	sales     SaleService
	payments  PaymentService
	inventory InventoryService
	products  ProductService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, SaleOptions{})
}

func newTestEnvWithOptions(t *testing.T, opts SaleOptions) *testEnv {
	t.Helper()
	db, err := infra.NewSQLite("file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	user := &model.User{Username: "cashier", FullName: "Test Cashier", PasswordHash: "x", Role: model.RoleStaff, Active: true}
	require.NoError(t, db.Create(user).Error)

	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	inventory := NewInventoryService(productRepo, movementRepo, nil)
	if opts.Receipt.StoreName == "" {
		opts.Receipt = infra.ReceiptOptions{StoreName: "Test Store", Currency: "NGN"}
	}
	return &testEnv{
		db:        db,
		actor:     user.ID,
		saleRepo:  saleRepo,
		inventory: inventory,
		sales:     NewSaleService(saleRepo, productRepo, paymentRepo, inventory, nil, nil, opts),
		payments:  NewPaymentService(paymentRepo, saleRepo),
		products: NewProductService(productRepo,
			repository.NewCategoryRepository(db),
			repository.NewSupplierRepository(db),
			repository.NewPriceHistoryRepository(db),
			nil),
	}
}

// seedProduct inserts an active product directly, bypassing the ledger.
func (e *testEnv) seedProduct(t *testing.T, name string, quantity int, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:         name,
		SKU:          "TST-" + uuid.NewString()[:8],
		Price:        decimal.RequireFromString(price),
		CostPrice:    decimal.Zero,
		Quantity:     quantity,
		ReorderLevel: 1,
		Active:       true,
	}
	require.NoError(t, e.db.Omit("Category", "Supplier").Create(p).Error)
	return p
}

func (e *testEnv) quantityOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.Quantity
}

// movementSum is the net stock change recorded in the ledger for a product.
func (e *testEnv) movementSum(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var sum int
	require.NoError(t, e.db.Model(&model.StockMovement{}).
		Where("product_id = ?", id).
		Select("COALESCE(SUM(quantity), 0)").Scan(&sum).Error)
	return sum
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
