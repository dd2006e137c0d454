package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPaymentStatusFor(t *testing.T) {
	cases := []struct {
		paid, balance, want string
	}{
		{"200", "0", PaymentStatusPaid},
		{"0", "0", PaymentStatusPaid},
		{"50", "150", PaymentStatusPartial},
		{"0", "200", PaymentStatusUnpaid},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, PaymentStatusFor(d(tc.paid), d(tc.balance)), "paid=%s balance=%s", tc.paid, tc.balance)
	}
}

func TestSale_ApplyAmountPaid(t *testing.T) {
	s := &Sale{Total: d("200"), AmountPaid: d("50")}
	s.ApplyAmountPaid()
	assert.True(t, d("150").Equal(s.Balance))
	assert.Equal(t, PaymentStatusPartial, s.PaymentStatus)
	assert.True(t, s.IsDebtor())

	s.AmountPaid = d("260")
	s.ApplyAmountPaid()
	assert.True(t, s.Balance.IsZero(), "balance never goes negative")
	assert.Equal(t, PaymentStatusPaid, s.PaymentStatus)
	assert.False(t, s.IsDebtor())
}

func TestSaleItem_BeforeCreateDerivesTotal(t *testing.T) {
	item := &SaleItem{Price: d("12.50"), Quantity: 3, Discount: d("2.50")}
	require.NoError(t, item.BeforeCreate(nil))
	assert.NotEmpty(t, item.ID)
	assert.True(t, d("35").Equal(item.Total))
}

func TestProduct_IsLowStock(t *testing.T) {
	assert.True(t, (&Product{Quantity: 5, ReorderLevel: 5}).IsLowStock())
	assert.False(t, (&Product{Quantity: 6, ReorderLevel: 5}).IsLowStock())
}
