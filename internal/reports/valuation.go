package reports

import (
	"github.com/shopspring/decimal"

	"go-inventory-ledger/internal/models"
)

// ValuationItem represents a single row in the valuation table
type ValuationItem struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// CategoryGroup represents one table of the report (e.g., "Electronics")
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Valuation is the monetary value of everything on the shelves
type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// StockValuation values every product's stock at its catalog price, grouped by
// category in catalog order.
func StockValuation(products []models.Product) Valuation {
	res := Valuation{Categories: []CategoryGroup{}, GrandTotal: decimal.Zero}
	// index into res.Categories so subtotals can be updated in place
	groups := make(map[string]int)

	for _, p := range products {
		// Safety check: If an item has no category, group it as "Uncategorized"
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}

		i, exists := groups[catName]
		if !exists {
			i = len(res.Categories)
			groups[catName] = i
			res.Categories = append(res.Categories, CategoryGroup{
				CategoryName: catName,
				Items:        []ValuationItem{},
				Subtotal:     decimal.Zero,
			})
		}

		itemTotal := p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
		res.Categories[i].Items = append(res.Categories[i].Items, ValuationItem{
			Name:       p.Name,
			Quantity:   p.Stock,
			UnitPrice:  p.Price,
			TotalValue: itemTotal,
		})
		res.Categories[i].Subtotal = res.Categories[i].Subtotal.Add(itemTotal)
		res.GrandTotal = res.GrandTotal.Add(itemTotal)
	}
	return res
}
