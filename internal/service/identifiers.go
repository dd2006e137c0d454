package service

import (
	"context"
	"fmt"
	"strings"

	"inventorypos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	skuPrefix     = "PRD-"
	invoicePrefix = "INV-"
)

// skuSuffix returns six random uppercase hex characters. Tests replace it to
// force collisions.
var skuSuffix = func() string {
	return strings.ToUpper(uuid.NewString()[:6])
}

// SKUExistsFunc reports whether a SKU is already assigned.
type SKUExistsFunc func(ctx context.Context, sku string) (bool, error)

// GenerateSKU draws candidates until one is free. The keyspace is large
// enough that the loop is not bounded; it stops only when ctx is cancelled.
func GenerateSKU(ctx context.Context, exists SKUExistsFunc) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		sku := skuPrefix + skuSuffix()
		taken, err := exists(ctx, sku)
		if err != nil {
			return "", fmt.Errorf("check sku %s: %w", sku, err)
		}
		if !taken {
			return sku, nil
		}
	}
}

// NextInvoiceNumber derives the next invoice number from the highest sale id
// visible to tx. attempt moves the candidate past numbers that collided on
// earlier tries.
func NextInvoiceNumber(tx *gorm.DB, sales repository.SaleRepository, attempt int) (string, error) {
	max, err := sales.MaxIDTx(tx)
	if err != nil {
		return "", fmt.Errorf("read max sale id: %w", err)
	}
	return FormatInvoiceNumber(max + 1 + int64(attempt)), nil
}

// FormatInvoiceNumber renders n as INV-000123.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%s%06d", invoicePrefix, n)
}
