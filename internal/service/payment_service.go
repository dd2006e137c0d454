package service

import (
	"context"
	"strings"
	"time"

	"inventorypos/internal/dto"
	"inventorypos/internal/model"
	"inventorypos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PaymentService is the payment ledger. It is the only writer of a sale's
// amount_paid, balance and payment_status after the sale is created.
type PaymentService interface {
	RecordPayment(ctx context.Context, actorID uuid.UUID, saleID int64, req dto.PaymentRequest) (*dto.RecordPaymentResponse, error)
	PaymentHistory(ctx context.Context, saleID int64) ([]dto.PaymentResponse, error)
}

type paymentService struct {
	repo  repository.PaymentRepository
	sales repository.SaleRepository
}

func NewPaymentService(repo repository.PaymentRepository, sales repository.SaleRepository) PaymentService {
	return &paymentService{repo: repo, sales: sales}
}

// RecordPayment applies a payment under the sale's row lock. Overpayment is
// checked before the amount's sign, so an amount above the balance always
// reports as overpayment.
func (s *paymentService) RecordPayment(ctx context.Context, actorID uuid.UUID, saleID int64, req dto.PaymentRequest) (*dto.RecordPaymentResponse, error) {
	method := strings.TrimSpace(req.Method)
	switch method {
	case "":
		method = model.PaymentMethodCash
	case model.PaymentMethodCash, model.PaymentMethodCard, model.PaymentMethodTransfer:
	default:
		return nil, newError(KindInvalidInput, "Unknown payment method: %s", method)
	}

	var (
		sale    *model.Sale
		payment *model.Payment
	)
	err := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.sales.FindByIDForUpdateTx(tx, saleID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrSaleNotFound
			}
			return err
		}

		if req.Amount.GreaterThan(sale.Balance) {
			return newError(KindOverpayment, "Payment amount (%s) exceeds balance due (%s)",
				req.Amount.StringFixed(2), sale.Balance.StringFixed(2))
		}
		if !req.Amount.IsPositive() {
			return ErrInvalidPaymentAmount
		}

		actor := actorID
		payment = &model.Payment{
			SaleID:    sale.ID,
			Amount:    req.Amount,
			Method:    method,
			Reference: req.Reference,
			Notes:     req.Notes,
			CreatedBy: &actor,
		}
		if err := s.repo.CreateTx(tx, payment); err != nil {
			return err
		}

		sale.AmountPaid = sale.AmountPaid.Add(req.Amount)
		sale.ApplyAmountPaid()
		return s.sales.UpdateBalanceTx(tx, sale)
	})
	if err != nil {
		if KindOf(err) == KindOverpayment || KindOf(err) == KindInvalidPaymentAmount {
			log.Warn().Int64("sale_id", saleID).Str("amount", req.Amount.String()).Msg("payment rejected")
		}
		return nil, asServiceError(err)
	}

	log.Info().
		Int64("sale_id", sale.ID).
		Str("invoice", sale.InvoiceNumber).
		Str("amount", payment.Amount.StringFixed(2)).
		Str("balance", sale.Balance.StringFixed(2)).
		Str("status", sale.PaymentStatus).
		Str("actor", actorID.String()).
		Msg("payment recorded")

	return &dto.RecordPaymentResponse{
		Success:       true,
		Payment:       paymentToResponse(payment),
		AmountPaid:    sale.AmountPaid,
		Balance:       sale.Balance,
		PaymentStatus: sale.PaymentStatus,
	}, nil
}

// PaymentHistory lists the payments of a sale, newest first.
func (s *paymentService) PaymentHistory(ctx context.Context, saleID int64) ([]dto.PaymentResponse, error) {
	if _, err := s.sales.FindByID(ctx, saleID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, transactionError(err)
	}
	payments, err := s.repo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, transactionError(err)
	}
	out := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		out[i] = paymentToResponse(&payments[i])
	}
	return out, nil
}

func paymentToResponse(p *model.Payment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:        p.ID.String(),
		SaleID:    p.SaleID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.CreatedBy != nil {
		id := p.CreatedBy.String()
		resp.CreatedBy = &id
	}
	return resp
}
