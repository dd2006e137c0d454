package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-000001", FormatInvoiceNumber(1))
	assert.Equal(t, "INV-000042", FormatInvoiceNumber(42))
	assert.Equal(t, "INV-1234567", FormatInvoiceNumber(1234567))
}

func TestGenerateSKU(t *testing.T) {
	ctx := context.Background()

	sku, err := GenerateSKU(ctx, func(context.Context, string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Regexp(t, `^PRD-[0-9A-F]{6}$`, sku)

	calls := 0
	sku, err = GenerateSKU(ctx, func(context.Context, string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotEmpty(t, sku)

	boom := errors.New("db down")
	_, err = GenerateSKU(ctx, func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = GenerateSKU(cancelled, func(context.Context, string) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorKinds(t *testing.T) {
	err := insufficientStock("Milk", 1, 4)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrOutOfStock))
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	wrapped := asServiceError(errors.New("connection reset"))
	assert.Equal(t, KindTransaction, KindOf(wrapped))
	assert.Equal(t, "Transaction failed", wrapped.Error())
	assert.Equal(t, "connection reset", errors.Unwrap(wrapped).Error())

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
