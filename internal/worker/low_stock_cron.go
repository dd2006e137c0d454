package worker

// low_stock_cron.go periodically sweeps for products at or below their
// reorder level and queues a low-stock job for each. Restocks done outside
// a sale never trigger an alert on their own, and the sweep covers products
// that were already low when the server started.

import (
	"context"
	"time"

	"inventorypos/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	lowStockSweepInterval = time.Hour
	lowStockSweepBatch    = 200
)

// LowStockLister lists active products at or below their reorder level.
type LowStockLister interface {
	ListLowStock(ctx context.Context, limit int) ([]model.Product, error)
}

// LowStockEnqueuer queues a low-stock job.
type LowStockEnqueuer interface {
	EnqueueLowStock(ctx context.Context, payload LowStockJobPayload) error
}

type LowStockCronConfig struct {
	Products   LowStockLister
	Dispatcher LowStockEnqueuer
	Interval   time.Duration
}

// StartLowStockCron launches the sweep goroutine. It runs once immediately
// and then every Interval until ctx is cancelled.
func StartLowStockCron(ctx context.Context, cfg LowStockCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = lowStockSweepInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("low_stock_cron: started")
		sweepLowStock(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("low_stock_cron: shutting down")
				return
			case <-ticker.C:
				sweepLowStock(ctx, cfg)
			}
		}
	}()
}

func sweepLowStock(ctx context.Context, cfg LowStockCronConfig) int {
	products, err := cfg.Products.ListLowStock(ctx, lowStockSweepBatch)
	if err != nil {
		log.Error().Err(err).Msg("low_stock_cron: failed to list products")
		return 0
	}
	queued := 0
	for _, p := range products {
		payload := LowStockJobPayload{
			ProductID:    p.ID.String(),
			Name:         p.Name,
			SKU:          p.SKU,
			Quantity:     p.Quantity,
			ReorderLevel: p.ReorderLevel,
		}
		if err := cfg.Dispatcher.EnqueueLowStock(ctx, payload); err != nil {
			log.Warn().Err(err).Str("sku", p.SKU).Msg("low_stock_cron: enqueue failed")
			continue
		}
		queued++
	}
	if queued > 0 {
		log.Info().Int("count", queued).Msg("low_stock_cron: low-stock jobs queued")
	}
	return queued
}
