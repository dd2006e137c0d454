package service

import (
	"context"
	"fmt"
	"time"

	"inventorypos/internal/dto"
	"inventorypos/internal/model"
	"inventorypos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MovementInput describes one change to a product's quantity.
type MovementInput struct {
	ProductID uuid.UUID
	Type      string // model.MovementIn | MovementOut | MovementAdjustment
	Delta     int
	Reference string
	Notes     string
	ActorID   *uuid.UUID
}

// InventoryService is the stock ledger: the only writer of Product.Quantity.
type InventoryService interface {
	// ApplyMovement is called within a caller-owned transaction — requires a live *gorm.DB tx.
	ApplyMovement(ctx context.Context, tx *gorm.DB, in MovementInput) (*model.StockMovement, error)
	CheckAvailability(p *model.Product, requested int) error
	AdjustStock(ctx context.Context, actorID uuid.UUID, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	LowStock(ctx context.Context, limit int) ([]dto.LowStockItem, error)
}

type inventoryService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	rdb       *redis.Client
}

func NewInventoryService(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	rdb *redis.Client,
) InventoryService {
	return &inventoryService{products: products, movements: movements, rdb: rdb}
}

func validateMovement(in MovementInput) error {
	switch in.Type {
	case model.MovementOut:
		if in.Delta < 0 {
			return nil
		}
	case model.MovementIn:
		if in.Delta > 0 {
			return nil
		}
	case model.MovementAdjustment:
		if in.Delta != 0 {
			return nil
		}
	default:
		return newError(KindInvalidMovement, "Unknown movement type %q", in.Type)
	}
	return newError(KindInvalidMovement, "Quantity %d is not valid for a %q movement", in.Delta, in.Type)
}

func (s *inventoryService) ApplyMovement(ctx context.Context, tx *gorm.DB, in MovementInput) (*model.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}

	locked, err := s.products.LockByIDsTx(tx, []uuid.UUID{in.ProductID})
	if err != nil {
		return nil, fmt.Errorf("lock product %s: %w", in.ProductID, err)
	}
	p, ok := locked[in.ProductID]
	if !ok || !p.Active {
		return nil, ErrProductNotFound
	}

	before := p.Quantity
	if before+in.Delta < 0 {
		return nil, insufficientStock(p.Name, before, -in.Delta)
	}

	// Guarded update: the WHERE clause refuses to go negative even if the
	// row changed since it was read.
	rows, err := s.products.UpdateStockTx(tx, p.ID, in.Delta)
	if err != nil {
		return nil, fmt.Errorf("update stock of %s: %w", p.ID, err)
	}
	if rows != 1 {
		return nil, insufficientStock(p.Name, before, -in.Delta)
	}

	mov := &model.StockMovement{
		ProductID:      p.ID,
		Type:           in.Type,
		Quantity:       in.Delta,
		QuantityBefore: before,
		QuantityAfter:  before + in.Delta,
		Reference:      in.Reference,
		Notes:          in.Notes,
		CreatedBy:      in.ActorID,
	}
	if err := s.movements.CreateTx(tx, mov); err != nil {
		return nil, fmt.Errorf("record movement: %w", err)
	}
	p.Quantity = mov.QuantityAfter
	mov.Product = p
	return mov, nil
}

func (s *inventoryService) CheckAvailability(p *model.Product, requested int) error {
	if p.Quantity <= 0 {
		return outOfStock(p.Name)
	}
	if p.Quantity < requested {
		return insufficientStock(p.Name, p.Quantity, requested)
	}
	return nil
}

// AdjustStock records a standalone restock or correction in its own transaction.
func (s *inventoryService) AdjustStock(ctx context.Context, actorID uuid.UUID, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	actor := actorID
	in := MovementInput{
		ProductID: productID,
		Type:      req.Type,
		Delta:     req.Delta,
		Reference: req.Reference,
		Notes:     req.Notes,
		ActorID:   &actor,
	}
	if in.Type == model.MovementOut {
		// Outbound movements belong to sales.
		return nil, newError(KindInvalidMovement, "Use a sale to remove stock")
	}

	var mov *model.StockMovement
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.ApplyMovement(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	log.Info().
		Str("product_id", productID.String()).
		Str("type", mov.Type).
		Int("delta", mov.Quantity).
		Int("quantity_after", mov.QuantityAfter).
		Str("actor", actorID.String()).
		Msg("stock adjusted")

	if mov.Product != nil {
		invalidatePriceCache(ctx, s.rdb, mov.Product.SKU)
	}
	resp := movementToResponse(mov)
	return &resp, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	f := repository.MovementFilter{
		Type:      filter.Type,
		Reference: filter.Reference,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, newError(KindProductNotFound, "Invalid product id")
		}
		f.ProductID = &pid
	}

	movements, total, err := s.movements.List(ctx, f)
	if err != nil {
		return nil, transactionError(err)
	}
	data := make([]dto.StockMovementResponse, len(movements))
	for i := range movements {
		data[i] = movementToResponse(&movements[i])
	}
	return &dto.MovementListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *inventoryService) LowStock(ctx context.Context, limit int) ([]dto.LowStockItem, error) {
	products, err := s.products.ListLowStock(ctx, limit)
	if err != nil {
		return nil, transactionError(err)
	}
	out := make([]dto.LowStockItem, len(products))
	for i, p := range products {
		out[i] = dto.LowStockItem{
			ID:           p.ID.String(),
			Name:         p.Name,
			SKU:          p.SKU,
			Quantity:     p.Quantity,
			ReorderLevel: p.ReorderLevel,
		}
	}
	return out, nil
}

func movementToResponse(m *model.StockMovement) dto.StockMovementResponse {
	resp := dto.StockMovementResponse{
		ID:             m.ID.String(),
		ProductID:      m.ProductID.String(),
		Type:           m.Type,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reference:      m.Reference,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
	if m.Product != nil {
		resp.ProductName = m.Product.Name
	}
	if m.CreatedBy != nil {
		s := m.CreatedBy.String()
		resp.CreatedBy = &s
	}
	return resp
}
