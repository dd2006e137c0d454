package infra

// pdf.go renders sale receipts with go-pdf/fpdf on narrow thermal-style paper:
// store header, invoice and customer, item table, totals with the outstanding
// balance, and the payments received so far.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"inventorypos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReceiptOptions carries the store details printed on every receipt.
type ReceiptOptions struct {
	StoreName string
	Currency  string
}

const (
	receiptWidth     = 74.0 // mm, close to 80mm thermal paper
	receiptMargin    = 4.0
	receiptBaseH     = 90.0
	receiptItemRowH  = 5.0
	receiptPayRowH   = 4.0
	receiptMaxNameCh = 22
)

// ReceiptFileName is the file name used for a sale's receipt.
func ReceiptFileName(sale *model.Sale) string {
	return fmt.Sprintf("receipt_%s.pdf", sale.InvoiceNumber)
}

// GenerateReceiptPDF writes the receipt of sale into storagePath (created if
// needed) and returns the path of the file.
func GenerateReceiptPDF(sale *model.Sale, opts ReceiptOptions, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, ReceiptFileName(sale))

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := RenderReceiptPDF(f, sale, opts); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("pdf: close file: %w", err)
	}
	return filePath, nil
}

// RenderReceiptPDF writes the receipt of sale to w. The page grows with the
// number of items so a receipt never spills onto a second page.
func RenderReceiptPDF(w io.Writer, sale *model.Sale, opts ReceiptOptions) error {
	height := receiptBaseH +
		receiptItemRowH*float64(len(sale.Items)) +
		receiptPayRowH*float64(len(sale.Payments))

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(receiptMargin, receiptMargin, receiptMargin)
	pdf.SetAutoPageBreak(false, receiptMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string { return opts.Currency + " " + d.StringFixed(2) }

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*receiptMargin
	separator := func() {
		pdf.Ln(2)
		pdf.Line(receiptMargin, pdf.GetY(), pageW-receiptMargin, pdf.GetY())
		pdf.Ln(2)
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(opts.StoreName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Invoice / customer ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Invoice "+sale.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Customer: "+sale.CustomerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Phone: "+sale.CustomerPhone, "", 1, "L", false, 0, "")
	if sale.Staff != nil {
		pdf.CellFormat(contentW, 4, tr("Served by: "+sale.Staff.FullName), "", 1, "L", false, 0, "")
	}
	separator()

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := []rune(item.ProductName)
		if len(name) > receiptMaxNameCh {
			name = append(name[:receiptMaxNameCh-1], '.')
		}
		pdf.CellFormat(col1, receiptItemRowH, tr(string(name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, receiptItemRowH, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, receiptItemRowH, money(item.Total), "", 1, "R", false, 0, "")
	}
	separator()

	// ── Totals ───────────────────────────────────────────────────────────────
	row := func(label, value string, h float64) {
		pdf.CellFormat(col1+col2, h, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, h, value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	row("Subtotal:", money(sale.Subtotal), 4)
	if !sale.Discount.IsZero() {
		row("Discount:", "-"+money(sale.Discount), 4)
	}
	pdf.SetFont("Helvetica", "B", 9)
	row("TOTAL:", money(sale.Total), 6)
	pdf.SetFont("Helvetica", "", 7)
	row("Paid:", money(sale.AmountPaid), 4)
	if sale.Balance.IsPositive() {
		pdf.SetFont("Helvetica", "B", 7)
		row("Balance due:", money(sale.Balance), 4)
	}

	// ── Payments ─────────────────────────────────────────────────────────────
	if len(sale.Payments) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 7)
		for _, p := range sale.Payments {
			row(p.CreatedAt.Format("02/01 15:04")+" ("+p.Method+")", money(p.Amount), receiptPayRowH)
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your patronage!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render receipt %s: %w", sale.InvoiceNumber, err)
	}
	return nil
}
