package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inventorypos/internal/dto"
	"inventorypos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDebt creates a sale of total 200 with amountPaid already paid.
func newDebt(t *testing.T, env *testEnv, amountPaid string) int64 {
	t.Helper()
	a := env.seedProduct(t, "Rice 5kg", 10, "100")
	resp, err := env.sales.ProcessSale(context.Background(), env.actor, saleRequest(amountPaid, line(a, 2, "100", "0", "200")))
	require.NoError(t, err)
	return resp.SaleID
}

func TestRecordPayment_OverpaymentLeavesSaleUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saleID := newDebt(t, env, "0")

	_, err := env.payments.RecordPayment(ctx, env.actor, saleID, dto.PaymentRequest{Amount: dec("250")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverpayment))
	assert.Equal(t, "Payment amount (250.00) exceeds balance due (200.00)", err.Error())

	sale, err := env.sales.GetSale(ctx, saleID)
	require.NoError(t, err)
	assertDecimal(t, "0", sale.AmountPaid)
	assertDecimal(t, "200", sale.Balance)
	assert.Equal(t, model.PaymentStatusUnpaid, sale.PaymentStatus)
	assert.Equal(t, int64(0), env.count(t, &model.Payment{}))
}

func TestRecordPayment_SettlesPartialSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saleID := newDebt(t, env, "50")

	resp, err := env.payments.RecordPayment(ctx, env.actor, saleID, dto.PaymentRequest{
		Amount: dec("150"), Method: model.PaymentMethodTransfer, Reference: "TRF-1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assertDecimal(t, "200", resp.AmountPaid)
	assertDecimal(t, "0", resp.Balance)
	assert.Equal(t, model.PaymentStatusPaid, resp.PaymentStatus)
	assert.Equal(t, model.PaymentMethodTransfer, resp.Payment.Method)

	sale, err := env.sales.GetSale(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, sale.PaymentStatus)
	assertDecimal(t, "0", sale.Balance)

	// Paid is terminal: any further amount is an overpayment.
	_, err = env.payments.RecordPayment(ctx, env.actor, saleID, dto.PaymentRequest{Amount: dec("1")})
	assert.True(t, errors.Is(err, ErrOverpayment))
}

func TestRecordPayment_UnpaidToPartial(t *testing.T) {
	env := newTestEnv(t)
	saleID := newDebt(t, env, "0")

	resp, err := env.payments.RecordPayment(context.Background(), env.actor, saleID, dto.PaymentRequest{Amount: dec("20.50")})
	require.NoError(t, err)
	assertDecimal(t, "179.50", resp.Balance)
	assert.Equal(t, model.PaymentStatusPartial, resp.PaymentStatus)
	assert.Equal(t, model.PaymentMethodCash, resp.Payment.Method)
}

func TestRecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	saleID := newDebt(t, env, "0")

	for _, amount := range []string{"0", "-5"} {
		_, err := env.payments.RecordPayment(context.Background(), env.actor, saleID, dto.PaymentRequest{Amount: dec(amount)})
		assert.Truef(t, errors.Is(err, ErrInvalidPaymentAmount), "amount %s", amount)
	}
	assert.Equal(t, int64(0), env.count(t, &model.Payment{}))
}

func TestRecordPayment_UnknownSale(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.payments.RecordPayment(context.Background(), env.actor, 31337, dto.PaymentRequest{Amount: dec("10")})
	assert.True(t, errors.Is(err, ErrSaleNotFound))
}

func TestRecordPayment_ConcurrentPaymentsCannotOverpay(t *testing.T) {
	env := newTestEnv(t)
	saleID := newDebt(t, env, "50")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.payments.RecordPayment(context.Background(), env.actor, saleID, dto.PaymentRequest{Amount: dec("100")})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.True(t, errors.Is(err, ErrOverpayment))
				rejected++
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 3, rejected)
	sale, err := env.sales.GetSale(context.Background(), saleID)
	require.NoError(t, err)
	assertDecimal(t, "150", sale.AmountPaid)
	assertDecimal(t, "50", sale.Balance)
}

func TestPaymentHistory_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saleID := newDebt(t, env, "10")

	time.Sleep(10 * time.Millisecond)
	_, err := env.payments.RecordPayment(ctx, env.actor, saleID, dto.PaymentRequest{Amount: dec("20"), Reference: "second"})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = env.payments.RecordPayment(ctx, env.actor, saleID, dto.PaymentRequest{Amount: dec("30"), Reference: "third"})
	require.NoError(t, err)

	history, err := env.payments.PaymentHistory(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].Reference)
	assert.Equal(t, "second", history[1].Reference)
	assert.Equal(t, "Initial payment", history[2].Notes)

	_, err = env.payments.PaymentHistory(ctx, 999)
	assert.True(t, errors.Is(err, ErrSaleNotFound))
}

func TestRecordPayment_RejectsUnknownMethod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saleID := newDebt(t, env, "0")

	_, err := env.payments.RecordPayment(ctx, env.actor, saleID, dto.PaymentRequest{Amount: dec("50"), Method: "bitcoin"})
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Equal(t, "Unknown payment method: bitcoin", err.Error())
	assert.Equal(t, int64(0), env.count(t, &model.Payment{}))

	resp, err := env.payments.RecordPayment(ctx, env.actor, saleID, dto.PaymentRequest{Amount: dec("50"), Method: model.PaymentMethodCard})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentMethodCard, resp.Payment.Method)
}
