package service

import (
	"context"
	"strings"
	"time"

	"inventorypos/internal/dto"
	"inventorypos/internal/model"
	"inventorypos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	searchLimit       = 20
	skuInsertAttempts = 5
)

// ProductService defines the business logic contract for products.
type ProductService interface {
	Register(ctx context.Context, actorID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Search(ctx context.Context, query string) ([]dto.ProductSearchItem, error)
	Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	PriceHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error)
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	history    repository.PriceHistoryRepository
	rdb        *redis.Client
}

func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	history repository.PriceHistoryRepository,
	rdb *redis.Client,
) ProductService {
	return &productService{
		repo:       repo,
		categories: categories,
		suppliers:  suppliers,
		history:    history,
		rdb:        rdb,
	}
}

// Register creates a product with a generated SKU. The initial quantity is
// taken as the opening balance and is not recorded as a movement.
func (s *productService) Register(ctx context.Context, actorID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(KindInvalidInput, "Product name is required")
	}
	if req.Quantity < 0 {
		return nil, newError(KindInvalidInput, "Initial quantity cannot be negative")
	}

	var product *model.Product
	for attempt := 0; attempt < skuInsertAttempts; attempt++ {
		sku, err := GenerateSKU(ctx, s.repo.SKUExists)
		if err != nil {
			return nil, transactionError(err)
		}
		product = &model.Product{
			Name:         name,
			SKU:          sku,
			Description:  strings.TrimSpace(req.Description),
			Price:        req.Price,
			CostPrice:    req.CostPrice,
			Quantity:     req.Quantity,
			ReorderLevel: 10,
			ImageURL:     req.ImageURL,
			Active:       true,
		}
		if req.ReorderLevel != nil {
			product.ReorderLevel = *req.ReorderLevel
		}

		err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			if err := s.resolveRelations(tx, product, req.Category, req.Supplier); err != nil {
				return err
			}
			return tx.Omit("Category", "Supplier").Create(product).Error
		})
		if err == nil {
			break
		}
		if !repository.IsUniqueViolation(err) {
			return nil, asServiceError(err)
		}
		// Lost a race for the SKU (or the category/supplier name); draw again.
		log.Warn().Err(err).Str("sku", sku).Msg("product insert collided, retrying")
		product = nil
	}
	if product == nil {
		return nil, newError(KindConflict, "Could not assign a unique SKU, please retry")
	}

	log.Info().Str("product_id", product.ID.String()).Str("sku", product.SKU).
		Str("actor", actorID.String()).Msg("product registered")
	return s.Get(ctx, product.ID)
}

// resolveRelations looks up or creates the named category and supplier.
// Empty names leave the relation unset.
func (s *productService) resolveRelations(tx *gorm.DB, p *model.Product, category, supplier string) error {
	if name := strings.TrimSpace(category); name != "" {
		c, err := s.categories.FirstOrCreateTx(tx, name)
		if err != nil {
			return err
		}
		p.CategoryID = &c.ID
	}
	if name := strings.TrimSpace(supplier); name != "" {
		sp, err := s.suppliers.FirstOrCreateTx(tx, name)
		if err != nil {
			return err
		}
		p.SupplierID = &sp.ID
	}
	return nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, transactionError(err)
	}
	if !p.Active {
		return nil, ErrProductNotFound
	}
	return productToResponse(p), nil
}

// Search returns at most 20 active products whose name or description
// contains query, ignoring case. A blank query matches nothing.
func (s *productService) Search(ctx context.Context, query string) ([]dto.ProductSearchItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.ProductSearchItem{}, nil
	}
	products, err := s.repo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, transactionError(err)
	}
	out := make([]dto.ProductSearchItem, len(products))
	for i, p := range products {
		out[i] = dto.ProductSearchItem{
			ID:       p.ID.String(),
			Name:     p.Name,
			SKU:      p.SKU,
			Price:    p.Price,
			Quantity: p.Quantity,
			ImageURL: p.ImageURL,
		}
	}
	return out, nil
}

// Update edits descriptive fields and prices. A price or cost change appends
// a PriceHistory row in the same transaction.
func (s *productService) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var sku string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDsTx(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		p, ok := locked[id]
		if !ok || !p.Active {
			return ErrProductNotFound
		}
		sku = p.SKU
		oldPrice, oldCost := p.Price, p.CostPrice

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return newError(KindInvalidInput, "Product name is required")
			}
			p.Name = name
		}
		if req.Description != nil {
			p.Description = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.CostPrice != nil {
			p.CostPrice = *req.CostPrice
		}
		if req.ReorderLevel != nil {
			p.ReorderLevel = *req.ReorderLevel
		}
		if req.ImageURL != nil {
			p.ImageURL = req.ImageURL
		}
		category, supplier := "", ""
		if req.Category != nil {
			category = *req.Category
		}
		if req.Supplier != nil {
			supplier = *req.Supplier
		}
		if err := s.resolveRelations(tx, p, category, supplier); err != nil {
			return err
		}

		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}

		if !oldPrice.Equal(p.Price) || !oldCost.Equal(p.CostPrice) {
			actor := actorID
			h := &model.PriceHistory{
				ProductID:       p.ID,
				CostPriceBefore: oldCost,
				CostPriceAfter:  p.CostPrice,
				PriceBefore:     oldPrice,
				PriceAfter:      p.Price,
				ChangedBy:       &actor,
			}
			if err := s.history.CreateTx(tx, h); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	invalidatePriceCache(ctx, s.rdb, sku)
	return s.Get(ctx, id)
}

// Deactivate hides a product from search, price checks and new sales.
// Sales that reference it keep their snapshot.
func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrProductNotFound
		}
		return transactionError(err)
	}
	if !p.Active {
		return ErrProductNotFound
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return transactionError(err)
	}
	invalidatePriceCache(ctx, s.rdb, p.SKU)
	return nil
}

func (s *productService) PriceHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, transactionError(err)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, total, err := s.history.ListByProduct(ctx, id, page, limit)
	if err != nil {
		return nil, transactionError(err)
	}
	data := make([]dto.PriceHistoryItem, len(rows))
	for i, h := range rows {
		item := dto.PriceHistoryItem{
			ID:              h.ID.String(),
			ProductID:       h.ProductID.String(),
			CostPriceBefore: h.CostPriceBefore,
			CostPriceAfter:  h.CostPriceAfter,
			PriceBefore:     h.PriceBefore,
			PriceAfter:      h.PriceAfter,
			CreatedAt:       h.CreatedAt.Format(time.RFC3339),
		}
		if h.ChangedBy != nil {
			by := h.ChangedBy.String()
			item.ChangedBy = &by
		}
		data[i] = item
	}
	return &dto.PriceHistoryListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		SKU:          p.SKU,
		Description:  p.Description,
		Price:        p.Price,
		CostPrice:    p.CostPrice,
		Quantity:     p.Quantity,
		ReorderLevel: p.ReorderLevel,
		IsLowStock:   p.IsLowStock(),
		ImageURL:     p.ImageURL,
		Active:       p.Active,
	}
	if p.Category != nil {
		resp.Category = &p.Category.Name
	}
	if p.Supplier != nil {
		resp.Supplier = &p.Supplier.Name
	}
	return resp
}
