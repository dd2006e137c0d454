package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inventorypos/internal/infra"
	"inventorypos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	backoffUnit = time.Millisecond
	pollErrorBackoff = 50 * time.Millisecond
}

type fakeMailer struct {
	enabled bool
	fail    int
	sent    []infra.Message
	calls   int
	err     error
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) Send(msg infra.Message) error {
	m.calls++
	if m.calls <= m.fail {
		if m.err != nil {
			return m.err
		}
		return errors.New("421 try again later")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeQueue struct {
	emails   []EmailJobPayload
	lowStock []LowStockJobPayload
	err      error
}

func (q *fakeQueue) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	if q.err != nil {
		return q.err
	}
	q.emails = append(q.emails, p)
	return nil
}

func (q *fakeQueue) EnqueueLowStock(_ context.Context, p LowStockJobPayload) error {
	if q.err != nil {
		return q.err
	}
	q.lowStock = append(q.lowStock, p)
	return nil
}

type fakeSales map[int64]*model.Sale

func (f fakeSales) FindByID(_ context.Context, id int64) (*model.Sale, error) {
	s, ok := f[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

type fakeProducts []model.Product

func (f fakeProducts) ListLowStock(context.Context, int) ([]model.Product, error) { return f, nil }

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func testSale() *model.Sale {
	pid := uuid.New()
	return &model.Sale{
		ID: 7, InvoiceNumber: "INV-000007", CustomerName: "Ada", CustomerPhone: "0803",
		Subtotal: decimal.NewFromInt(300), Total: decimal.NewFromInt(300),
		AmountPaid: decimal.NewFromInt(100), Balance: decimal.NewFromInt(200),
		PaymentStatus: model.PaymentStatusPartial, CreatedAt: time.Now(),
		Items: []model.SaleItem{{
			ProductID: &pid, ProductName: "Rice 5kg", Quantity: 3,
			Price: decimal.NewFromInt(100), Total: decimal.NewFromInt(300),
		}},
	}
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	err := withRetry(ctx, 3, func(int) error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)

	err = withRetry(ctx, 2, func(i int) error { return errors.New("always") })
	assert.EqualError(t, err, "always")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = withRetry(cancelled, 3, func(int) error { return errors.New("x") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmailWorker(t *testing.T) {
	ctx := context.Background()
	payload := raw(t, EmailJobPayload{ToEmail: "ada@example.com", Subject: "Receipt", Body: "hi"})

	m := &fakeMailer{enabled: true, fail: 2}
	require.NoError(t, NewEmailWorker(m).Process(ctx, payload))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "ada@example.com", m.sent[0].To)

	down := &fakeMailer{enabled: true, fail: 10}
	assert.Error(t, NewEmailWorker(down).Process(ctx, payload))
	assert.Equal(t, maxAttempts, down.calls)

	off := &fakeMailer{}
	assert.NoError(t, NewEmailWorker(off).Process(ctx, payload))
	assert.Zero(t, off.calls)

	assert.Error(t, NewEmailWorker(m).Process(ctx, json.RawMessage(`{not json`)))
}

func TestReceiptWorker(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	q := &fakeQueue{}
	w := NewReceiptWorker(fakeSales{7: testSale()}, q, dir, infra.ReceiptOptions{StoreName: "Corner Shop", Currency: "NGN"})

	require.NoError(t, w.Process(ctx, raw(t, ReceiptJobPayload{SaleID: 7, CustomerEmail: "ada@example.com"})))
	pdfPath := filepath.Join(dir, "receipt_INV-000007.pdf")
	_, err := os.Stat(pdfPath)
	require.NoError(t, err)

	require.Len(t, q.emails, 1)
	assert.Equal(t, "ada@example.com", q.emails[0].ToEmail)
	assert.Equal(t, pdfPath, q.emails[0].AttachmentPath)
	assert.Contains(t, q.emails[0].Subject, "INV-000007")
	assert.Contains(t, q.emails[0].Body, "NGN 200.00")

	// No address: the PDF is still written, nothing is mailed.
	require.NoError(t, w.Process(ctx, raw(t, ReceiptJobPayload{SaleID: 7})))
	assert.Len(t, q.emails, 1)

	assert.Error(t, w.Process(ctx, raw(t, ReceiptJobPayload{SaleID: 99})))
}

func TestSweepLowStock(t *testing.T) {
	q := &fakeQueue{}
	products := fakeProducts{
		{ID: uuid.New(), Name: "Salt", SKU: "PRD-AAAAAA", Quantity: 0, ReorderLevel: 5},
		{ID: uuid.New(), Name: "Sugar", SKU: "PRD-BBBBBB", Quantity: 3, ReorderLevel: 5},
	}
	n := sweepLowStock(context.Background(), LowStockCronConfig{Products: products, Dispatcher: q})
	assert.Equal(t, 2, n)
	require.Len(t, q.lowStock, 2)
	assert.Equal(t, "PRD-AAAAAA", q.lowStock[0].SKU)
	assert.Equal(t, 5, q.lowStock[1].ReorderLevel)

	failing := &fakeQueue{err: errors.New("redis down")}
	assert.Zero(t, sweepLowStock(context.Background(), LowStockCronConfig{Products: products, Dispatcher: failing}))
}
