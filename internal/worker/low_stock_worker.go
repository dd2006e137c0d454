package worker

// low_stock_worker.go processes QueueLowStock: turns a low-stock report into
// an alert e-mail, at most once per product per alertCooldown.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const alertCooldown = 24 * time.Hour

func alertKey(productID string) string { return "alert:low_stock:" + productID }

type LowStockWorker struct {
	rdb        *redis.Client
	emails     EmailEnqueuer
	alertEmail string
}

func NewLowStockWorker(rdb *redis.Client, emails EmailEnqueuer, alertEmail string) *LowStockWorker {
	return &LowStockWorker{rdb: rdb, emails: emails, alertEmail: alertEmail}
}

func (w *LowStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload LowStockJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("low_stock_worker: invalid payload: %w", err)
	}
	if w.alertEmail == "" {
		log.Debug().Str("sku", payload.SKU).Msg("low_stock_worker: no alert address, skipping")
		return nil
	}

	first, err := w.rdb.SetNX(ctx, alertKey(payload.ProductID), payload.Quantity, alertCooldown).Result()
	if err != nil {
		return fmt.Errorf("low_stock_worker: cooldown check: %w", err)
	}
	if !first {
		return nil
	}

	job := EmailJobPayload{
		ToEmail: w.alertEmail,
		Subject: fmt.Sprintf("Low stock: %s (%s)", payload.Name, payload.SKU),
		Body: fmt.Sprintf("%s (%s) is down to %d units; reorder level is %d.\n",
			payload.Name, payload.SKU, payload.Quantity, payload.ReorderLevel),
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// Release the cooldown so the next report tries again.
		_ = w.rdb.Del(ctx, alertKey(payload.ProductID)).Err()
		return fmt.Errorf("low_stock_worker: enqueue email: %w", err)
	}
	log.Info().Str("sku", payload.SKU).Int("quantity", payload.Quantity).Msg("low_stock_worker: alert queued")
	return nil
}
