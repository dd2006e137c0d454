package worker

// receipt_worker.go processes QueueReceipt: renders the PDF receipt of a
// committed sale and, when the customer left an address, queues the e-mail.

import (
	"context"
	"encoding/json"
	"fmt"

	"inventorypos/internal/infra"
	"inventorypos/internal/model"

	"github.com/rs/zerolog/log"
)

// SaleLoader loads a sale with its items, payments and staff.
type SaleLoader interface {
	FindByID(ctx context.Context, id int64) (*model.Sale, error)
}

// EmailEnqueuer queues an e-mail job.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReceiptWorker struct {
	sales       SaleLoader
	emails      EmailEnqueuer
	storagePath string
	opts        infra.ReceiptOptions
}

func NewReceiptWorker(sales SaleLoader, emails EmailEnqueuer, storagePath string, opts infra.ReceiptOptions) *ReceiptWorker {
	return &ReceiptWorker{sales: sales, emails: emails, storagePath: storagePath, opts: opts}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}

	sale, err := w.sales.FindByID(ctx, payload.SaleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale %d: %w", payload.SaleID, err)
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.opts, w.storagePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("invoice", sale.InvoiceNumber).Msg("receipt_worker: PDF generated")

	if payload.CustomerEmail == "" {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: payload.CustomerEmail,
		Subject: fmt.Sprintf("%s receipt %s", w.opts.StoreName, sale.InvoiceNumber),
		Body: fmt.Sprintf("Dear %s,\n\nPlease find attached your receipt.\nTotal: %s %s\nBalance due: %s %s\n",
			sale.CustomerName,
			w.opts.Currency, sale.Total.StringFixed(2),
			w.opts.Currency, sale.Balance.StringFixed(2)),
		AttachmentPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		return fmt.Errorf("receipt_worker: enqueue email: %w", err)
	}
	log.Info().Str("email", payload.CustomerEmail).Str("invoice", sale.InvoiceNumber).Msg("receipt_worker: email job enqueued")
	return nil
}
