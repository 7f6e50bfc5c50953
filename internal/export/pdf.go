package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"go-inventory-ledger/internal/models"
)

const (
	fontFamily = "Helvetica"
	rowHeight  = 7.0
)

func newDocument(orientation, title string, at time.Time) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(at)
	pdf.SetModificationDate(at)
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

// fit shortens s with an ellipsis until it fits in width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(s)+pad <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...")+pad > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func renderPDF(w io.Writer, d Dataset, generatedAt time.Time) error {
	header, records, err := d.table()
	if err != nil {
		return err
	}

	pdf, tr := newDocument("L", d.Title, generatedAt)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 10, tr(d.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(header))

	align := func(col int) string {
		if d.isNumeric(header[col]) {
			return "R"
		}
		return "L"
	}

	pdf.SetDrawColor(221, 221, 221)
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(242, 242, 242)
	for col, name := range header {
		pdf.CellFormat(colW, rowHeight, tr(name), "1", 0, align(col), true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 9)
	pdf.SetFillColor(249, 249, 249)
	for i, record := range records {
		for col, value := range record {
			pdf.CellFormat(colW, rowHeight, fit(pdf, tr(value), colW), "1", 0, align(col), i%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont(fontFamily, "I", 8)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, "Generated on "+generatedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render %s pdf: %w", d.Name, err)
	}
	return nil
}

// Company is printed in the invoice header.
type Company struct {
	Name    string
	Address string
}

// Invoice renders a single sale as a printable invoice.
func Invoice(w io.Writer, sale models.Sale, company Company) error {
	pdf, tr := newDocument("P", "Invoice "+sale.ID, sale.Date)
	pdf.AddPage()

	// 1. Letterhead
	pdf.SetFont(fontFamily, "B", 20)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 11)
	pdf.SetTextColor(75, 85, 99)
	pdf.CellFormat(0, 6, tr(company.Name), "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(0, 5, tr(company.Address), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(8)

	// 2. Bill to / invoice details
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	half := (pageW - left - right) / 2

	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(half, 6, "Bill To:", "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(half, 6, tr("Invoice #: "+sale.ID), "", 1, "R", false, 0, "")
	pdf.CellFormat(half, 6, tr(sale.CustomerName), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, "Date: "+sale.Date.Format("2006-01-02"), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	// 3. Line item
	widths := []float64{half, half / 3, half / 3, half / 3}
	pdf.SetDrawColor(209, 213, 219)
	pdf.SetFillColor(249, 250, 251)
	pdf.SetFont(fontFamily, "B", 10)
	for i, h := range []string{"Product", "Qty", "Unit Price", "Total"} {
		a := "R"
		if i == 0 {
			a = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, a, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(widths[0], 8, fit(pdf, tr(sale.ProductName), widths[0]), "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[1], 8, fmt.Sprint(sale.Quantity), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[2], 8, "$"+sale.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, "$"+sale.TotalAmount.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	// 4. Total and footer
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 8, "Total: $"+sale.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 6, "Thank you for your business!", "T", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %s: %w", sale.ID, err)
	}
	return nil
}
