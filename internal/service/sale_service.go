package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"inventorypos/internal/dto"
	"inventorypos/internal/infra"
	"inventorypos/internal/model"
	"inventorypos/internal/repository"
	"inventorypos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultInvoiceRetryLimit = 5

type SaleService interface {
	ProcessSale(ctx context.Context, actorID uuid.UUID, req dto.ProcessSaleRequest) (*dto.ProcessSaleResponse, error)
	GetSale(ctx context.Context, id int64) (*dto.SaleResponse, error)
	UpdateReceipt(ctx context.Context, id int64, req dto.UpdateReceiptRequest) (*dto.SaleResponse, error)
	ListDebtors(ctx context.Context, filter dto.DebtorFilter) (*dto.DebtorListResponse, error)
	ReceiptPDF(ctx context.Context, id int64) ([]byte, string, error)
}

// SaleOptions carries the settings the engine reads from configuration.
type SaleOptions struct {
	InvoiceRetryLimit int
	Receipt           infra.ReceiptOptions
}

type saleService struct {
	repo       repository.SaleRepository
	products   repository.ProductRepository
	payments   repository.PaymentRepository
	inventory  InventoryService
	dispatcher *worker.Dispatcher
	rdb        *redis.Client
	opts       SaleOptions
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	payments repository.PaymentRepository,
	inventory InventoryService,
	dispatcher *worker.Dispatcher,
	rdb *redis.Client,
	opts SaleOptions,
) SaleService {
	if opts.InvoiceRetryLimit < 1 {
		opts.InvoiceRetryLimit = defaultInvoiceRetryLimit
	}
	return &saleService{
		repo:       repo,
		products:   products,
		payments:   payments,
		inventory:  inventory,
		dispatcher: dispatcher,
		rdb:        rdb,
		opts:       opts,
	}
}

// cartLine is a validated cart item.
type cartLine struct {
	productID uuid.UUID
	quantity  int
	price     decimal.Decimal
	discount  decimal.Decimal
	total     decimal.Decimal
}

type saleTotals struct {
	subtotal   decimal.Decimal
	discount   decimal.Decimal
	total      decimal.Decimal
	amountPaid decimal.Decimal
}

// committedSale is what a successful attempt hands back for post-commit work.
type committedSale struct {
	sale     *model.Sale
	skus     []string
	lowStock []worker.LowStockJobPayload
}

func parseCart(items []dto.CartItem) ([]cartLine, error) {
	lines := make([]cartLine, 0, len(items))
	for i, item := range items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, newError(KindInvalidCartItem, "Item %d: invalid product id", i+1)
		}
		if item.Quantity < 1 {
			return nil, newError(KindInvalidCartItem, "Item %d: quantity must be at least 1", i+1)
		}
		if item.Price == nil || item.Total == nil {
			return nil, newError(KindInvalidCartItem, "Item %d: price and total are required", i+1)
		}
		if item.Price.IsNegative() || item.Discount.IsNegative() || item.Total.IsNegative() {
			return nil, newError(KindInvalidCartItem, "Item %d: amounts cannot be negative", i+1)
		}
		lines = append(lines, cartLine{
			productID: pid,
			quantity:  item.Quantity,
			price:     *item.Price,
			discount:  item.Discount,
			total:     *item.Total,
		})
	}
	return lines, nil
}

// computeTotals trusts the per-item totals sent by the POS: the subtotal is
// the sum of line totals with their discounts added back.
func computeTotals(lines []cartLine, amountPaid decimal.Decimal) saleTotals {
	t := saleTotals{subtotal: decimal.Zero, discount: decimal.Zero, amountPaid: amountPaid}
	for _, l := range lines {
		t.subtotal = t.subtotal.Add(l.total.Add(l.discount))
		t.discount = t.discount.Add(l.discount)
	}
	t.total = t.subtotal.Sub(t.discount)
	return t
}

// sortedProductIDs returns the distinct product ids of the cart in ascending
// order, the order in which row locks are taken.
func sortedProductIDs(lines []cartLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.productID]; ok {
			continue
		}
		seen[l.productID] = struct{}{}
		ids = append(ids, l.productID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func requireCustomer(name, phone string) (string, string, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return "", "", newError(KindMissingCustomerInfo, "Customer name is required")
	}
	if phone == "" {
		return "", "", newError(KindMissingCustomerInfo, "Customer phone is required")
	}
	return name, phone, nil
}

// ── ProcessSale ───────────────────────────────────────────────────────────────
// One transaction per attempt:
//   1. Lock every product in the cart (id order)
//   2. Validate existence and availability line by line, first failure wins
//   3. Allocate the invoice number and insert the sale header
//   4. Insert each line and apply its outbound stock movement
//   5. Record the initial cash payment, if any
// A unique violation (invoice number taken) restarts the attempt.

func (s *saleService) ProcessSale(ctx context.Context, actorID uuid.UUID, req dto.ProcessSaleRequest) (*dto.ProcessSaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	name, phone, err := requireCustomer(req.CustomerName, req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	lines, err := parseCart(req.Items)
	if err != nil {
		return nil, err
	}
	if req.AmountPaid.IsNegative() {
		return nil, newError(KindInvalidPaymentAmount, "Amount paid cannot be negative")
	}
	totals := computeTotals(lines, req.AmountPaid)

	var (
		done    *committedSale
		lastErr error
	)
	for attempt := 0; attempt < s.opts.InvoiceRetryLimit; attempt++ {
		done, err = s.processOnce(ctx, actorID, name, phone, lines, totals, attempt)
		if err == nil {
			break
		}
		if !repository.IsUniqueViolation(err) {
			log.Warn().Err(err).Str("actor", actorID.String()).Str("customer", name).Msg("sale rejected")
			return nil, asServiceError(err)
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("invoice number collision, retrying sale")
	}
	if done == nil {
		log.Error().Err(lastErr).Int("attempts", s.opts.InvoiceRetryLimit).Msg("could not allocate invoice number")
		return nil, &Error{Kind: KindTransaction, Msg: "Could not allocate an invoice number, please retry", Err: lastErr}
	}

	sale := done.sale
	log.Info().
		Str("invoice", sale.InvoiceNumber).
		Int64("sale_id", sale.ID).
		Str("actor", actorID.String()).
		Str("total", sale.Total.StringFixed(2)).
		Str("status", sale.PaymentStatus).
		Msg("sale committed")

	s.afterCommit(ctx, done, req.CustomerEmail)

	return &dto.ProcessSaleResponse{
		Success:       true,
		InvoiceNumber: sale.InvoiceNumber,
		SaleID:        sale.ID,
	}, nil
}

func (s *saleService) processOnce(
	ctx context.Context,
	actorID uuid.UUID,
	name, phone string,
	lines []cartLine,
	totals saleTotals,
	attempt int,
) (*committedSale, error) {
	var out *committedSale
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.products.LockByIDsTx(tx, sortedProductIDs(lines))
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		// Quantities still available to later lines of the same cart.
		remaining := make(map[uuid.UUID]int, len(locked))
		for _, l := range lines {
			p, ok := locked[l.productID]
			if !ok || !p.Active {
				return ErrProductNotFound
			}
			avail, seen := remaining[p.ID]
			if !seen {
				avail = p.Quantity
			}
			view := *p
			view.Quantity = avail
			if err := s.inventory.CheckAvailability(&view, l.quantity); err != nil {
				return err
			}
			remaining[p.ID] = avail - l.quantity
		}

		invoice, err := NextInvoiceNumber(tx, s.repo, attempt)
		if err != nil {
			return err
		}

		actor := actorID
		sale := &model.Sale{
			InvoiceNumber: invoice,
			StaffID:       &actor,
			CustomerName:  name,
			CustomerPhone: phone,
			Subtotal:      totals.subtotal,
			Discount:      totals.discount,
			Total:         totals.total,
			AmountPaid:    totals.amountPaid,
		}
		sale.ApplyAmountPaid()
		if err := s.repo.CreateTx(tx, sale); err != nil {
			return err
		}

		out = &committedSale{sale: sale}
		finalQty := make(map[uuid.UUID]int, len(locked))
		for _, l := range lines {
			p := locked[l.productID]
			pid := p.ID
			item := &model.SaleItem{
				SaleID:      sale.ID,
				ProductID:   &pid,
				ProductName: p.Name,
				Quantity:    l.quantity,
				Price:       l.price,
				Discount:    l.discount,
			}
			if err := s.repo.CreateItemTx(tx, item); err != nil {
				return fmt.Errorf("create sale item: %w", err)
			}
			sale.Items = append(sale.Items, *item)

			mov, err := s.inventory.ApplyMovement(ctx, tx, MovementInput{
				ProductID: pid,
				Type:      model.MovementOut,
				Delta:     -l.quantity,
				Reference: invoice,
				Notes:     "Sale to " + name,
				ActorID:   &actor,
			})
			if err != nil {
				return err
			}
			finalQty[pid] = mov.QuantityAfter
		}
		for _, pid := range sortedProductIDs(lines) {
			p := locked[pid]
			out.skus = append(out.skus, p.SKU)
			if qty := finalQty[pid]; qty <= p.ReorderLevel {
				out.lowStock = append(out.lowStock, worker.LowStockJobPayload{
					ProductID:    pid.String(),
					Name:         p.Name,
					SKU:          p.SKU,
					Quantity:     qty,
					ReorderLevel: p.ReorderLevel,
				})
			}
		}

		if totals.amountPaid.IsPositive() {
			pay := &model.Payment{
				SaleID:    sale.ID,
				Amount:    totals.amountPaid,
				Method:    model.PaymentMethodCash,
				Reference: invoice,
				Notes:     "Initial payment",
				CreatedBy: &actor,
			}
			if err := s.payments.CreateTx(tx, pay); err != nil {
				return fmt.Errorf("create payment: %w", err)
			}
			sale.Payments = append(sale.Payments, *pay)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// afterCommit runs the best-effort side effects of a committed sale. None of
// them may fail the sale.
func (s *saleService) afterCommit(ctx context.Context, done *committedSale, customerEmail *string) {
	invalidatePriceCache(ctx, s.rdb, done.skus...)

	if s.dispatcher == nil {
		return
	}
	payload := worker.ReceiptJobPayload{SaleID: done.sale.ID}
	if customerEmail != nil {
		payload.CustomerEmail = strings.TrimSpace(*customerEmail)
	}
	if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
		log.Warn().Err(err).Int64("sale_id", done.sale.ID).Msg("enqueue receipt job failed")
	}
	for _, alert := range done.lowStock {
		if err := s.dispatcher.EnqueueLowStock(ctx, alert); err != nil {
			log.Warn().Err(err).Str("sku", alert.SKU).Msg("enqueue low-stock alert failed")
		}
	}
}

// ── Receipt view / edit ──────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, transactionError(err)
	}
	return saleToResponse(sale), nil
}

// UpdateReceipt changes the customer printed on a receipt. Amounts, items and
// payments are never touched here.
func (s *saleService) UpdateReceipt(ctx context.Context, id int64, req dto.UpdateReceiptRequest) (*dto.SaleResponse, error) {
	name, phone, err := requireCustomer(req.CustomerName, req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCustomer(ctx, id, name, phone); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, transactionError(err)
	}
	return s.GetSale(ctx, id)
}

func (s *saleService) ListDebtors(ctx context.Context, filter dto.DebtorFilter) (*dto.DebtorListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	sales, total, outstanding, err := s.repo.ListDebtors(ctx, filter)
	if err != nil {
		return nil, transactionError(err)
	}
	data := make([]dto.DebtorItem, len(sales))
	for i, sale := range sales {
		data[i] = dto.DebtorItem{
			SaleID:        sale.ID,
			InvoiceNumber: sale.InvoiceNumber,
			CustomerName:  sale.CustomerName,
			CustomerPhone: sale.CustomerPhone,
			Total:         sale.Total,
			AmountPaid:    sale.AmountPaid,
			Balance:       sale.Balance,
			PaymentStatus: sale.PaymentStatus,
			CreatedAt:     sale.CreatedAt.Format(time.RFC3339),
		}
	}
	return &dto.DebtorListResponse{
		Data:         data,
		Total:        total,
		TotalBalance: outstanding,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}, nil
}

// ReceiptPDF renders the receipt of a sale and returns it with a file name.
func (s *saleService) ReceiptPDF(ctx context.Context, id int64) ([]byte, string, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", ErrSaleNotFound
		}
		return nil, "", transactionError(err)
	}
	var buf bytes.Buffer
	if err := infra.RenderReceiptPDF(&buf, sale, s.opts.Receipt); err != nil {
		return nil, "", transactionError(err)
	}
	return buf.Bytes(), infra.ReceiptFileName(sale), nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		CustomerName:  sale.CustomerName,
		CustomerPhone: sale.CustomerPhone,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Total:         sale.Total,
		AmountPaid:    sale.AmountPaid,
		Balance:       sale.Balance,
		PaymentStatus: sale.PaymentStatus,
		Items:         make([]dto.SaleItemResponse, len(sale.Items)),
		Payments:      make([]dto.PaymentResponse, len(sale.Payments)),
		CreatedAt:     sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.StaffID != nil {
		id := sale.StaffID.String()
		resp.StaffID = &id
	}
	if sale.Staff != nil {
		resp.StaffName = sale.Staff.FullName
	}
	for i, item := range sale.Items {
		r := dto.SaleItemResponse{
			ID:          item.ID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Discount:    item.Discount,
			Total:       item.Total,
		}
		if item.ProductID != nil {
			pid := item.ProductID.String()
			r.ProductID = &pid
		}
		resp.Items[i] = r
	}
	for i := range sale.Payments {
		resp.Payments[i] = paymentToResponse(&sale.Payments[i])
	}
	return resp
}
