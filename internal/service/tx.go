package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PriceCacheTTL bounds how stale a cached price check may be.
const PriceCacheTTL = 5 * time.Minute

// PriceCacheKey is the Redis key of the public price check for sku.
func PriceCacheKey(sku string) string { return "price:" + sku }

// runTx executes fn inside a GORM transaction bound to ctx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// invalidatePriceCache drops cached price checks. Best effort: a failure
// only means the entry lives until its TTL.
func invalidatePriceCache(ctx context.Context, rdb *redis.Client, skus ...string) {
	if rdb == nil || len(skus) == 0 {
		return
	}
	keys := make([]string, len(skus))
	for i, sku := range skus {
		keys[i] = PriceCacheKey(sku)
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("skus", skus).Msg("price cache invalidation failed")
	}
}
