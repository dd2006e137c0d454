package infra

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"testing"
	"time"

	"inventorypos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiptSale(items int) *model.Sale {
	sale := &model.Sale{
		ID: 12, InvoiceNumber: "INV-000012",
		CustomerName: "Ngozi Okafor", CustomerPhone: "08031234567",
		Subtotal: decimal.NewFromInt(1250), Discount: decimal.NewFromInt(50),
		Total: decimal.NewFromInt(1200), AmountPaid: decimal.NewFromInt(700),
		Balance: decimal.NewFromInt(500), PaymentStatus: model.PaymentStatusPartial,
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Staff:     &model.User{FullName: "Tunde Bakare"},
	}
	for i := 0; i < items; i++ {
		pid := uuid.New()
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID: &pid, ProductName: fmt.Sprintf("Long product name number %d with extras", i),
			Quantity: 2, Price: decimal.RequireFromString("12.50"), Total: decimal.NewFromInt(25),
		})
	}
	sale.Payments = []model.Payment{
		{Amount: decimal.NewFromInt(700), Method: model.PaymentMethodCash, CreatedAt: sale.CreatedAt},
	}
	return sale
}

func TestRenderReceiptPDF(t *testing.T) {
	var buf bytes.Buffer
	err := RenderReceiptPDF(&buf, receiptSale(3), ReceiptOptions{StoreName: "Corner Shop", Currency: "NGN"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderReceiptPDF_ManyItemsStayOnePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReceiptPDF(&buf, receiptSale(60), ReceiptOptions{StoreName: "Corner Shop", Currency: "NGN"}))
	pages := regexp.MustCompile(`/Type /Page[^s]`).FindAll(buf.Bytes(), -1)
	assert.Len(t, pages, 1)
}

func TestGenerateReceiptPDF_WritesFile(t *testing.T) {
	dir := t.TempDir() + "/nested"
	path, err := GenerateReceiptPDF(receiptSale(1), ReceiptOptions{StoreName: "Corner Shop", Currency: "NGN"}, dir)
	require.NoError(t, err)
	assert.Equal(t, dir+"/receipt_INV-000012.pdf", path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
}
