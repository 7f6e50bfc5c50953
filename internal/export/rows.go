package export

import (
	"strconv"
	"strings"
	"time"

	"go-inventory-ledger/internal/models"
)

// Row types fix the column set and header of each dataset. Values are
// pre-formatted strings so every renderer shows the same text.

type ProductRow struct {
	Name     string `csv:"Name"`
	Category string `csv:"Category"`
	Price    string `csv:"Price"`
	Stock    string `csv:"Stock"`
	MinStock string `csv:"Min Stock"`
	Supplier string `csv:"Supplier"`
	Barcode  string `csv:"Barcode"`
	Status   string `csv:"Status"`
	Created  string `csv:"Created"`
}

type SaleRow struct {
	ID        string `csv:"Invoice"`
	Date      string `csv:"Date"`
	Product   string `csv:"Product"`
	Quantity  string `csv:"Quantity"`
	UnitPrice string `csv:"Unit Price"`
	Total     string `csv:"Total"`
	Customer  string `csv:"Customer"`
}

type PurchaseRow struct {
	ID        string `csv:"Purchase"`
	Date      string `csv:"Date"`
	Product   string `csv:"Product"`
	Quantity  string `csv:"Quantity"`
	UnitPrice string `csv:"Unit Price"`
	Total     string `csv:"Total"`
	Supplier  string `csv:"Supplier"`
}

const dateLayout = "2006-01-02 15:04"

// text neutralises free text that a spreadsheet would evaluate as a formula.
func text(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Products builds the product table from an already filtered listing.
func Products(products []models.Product) Dataset {
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		status := "In Stock"
		if p.LowStock() {
			status = "Low Stock"
		}
		rows = append(rows, ProductRow{
			Name:     text(p.Name),
			Category: text(p.Category),
			Price:    p.Price.StringFixed(2),
			Stock:    strconv.Itoa(p.Stock),
			MinStock: strconv.Itoa(p.MinStock),
			Supplier: text(p.Supplier),
			Barcode:  text(p.Barcode),
			Status:   status,
			Created:  formatTime(p.CreatedAt),
		})
	}
	return Dataset{
		Name:    "products",
		Title:   "Products List",
		rows:    rows,
		count:   len(rows),
		numeric: []string{"Price", "Stock", "Min Stock"},
	}
}

// Sales builds the sales table from an already filtered sale set.
func Sales(sales []models.Sale) Dataset {
	rows := make([]SaleRow, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, SaleRow{
			ID:        s.ID,
			Date:      formatTime(s.Date),
			Product:   text(s.ProductName),
			Quantity:  strconv.Itoa(s.Quantity),
			UnitPrice: s.UnitPrice.StringFixed(2),
			Total:     s.TotalAmount.StringFixed(2),
			Customer:  text(s.CustomerName),
		})
	}
	return Dataset{
		Name:    "sales",
		Title:   "Sales Report",
		rows:    rows,
		count:   len(rows),
		numeric: []string{"Quantity", "Unit Price", "Total"},
	}
}

// Purchases builds the purchase table from an already filtered purchase set.
func Purchases(purchases []models.Purchase) Dataset {
	rows := make([]PurchaseRow, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, PurchaseRow{
			ID:        p.ID,
			Date:      formatTime(p.Date),
			Product:   text(p.ProductName),
			Quantity:  strconv.Itoa(p.Quantity),
			UnitPrice: p.UnitPrice.StringFixed(2),
			Total:     p.TotalAmount.StringFixed(2),
			Supplier:  text(p.Supplier),
		})
	}
	return Dataset{
		Name:    "purchases",
		Title:   "Purchase Report",
		rows:    rows,
		count:   len(rows),
		numeric: []string{"Quantity", "Unit Price", "Total"},
	}
}
