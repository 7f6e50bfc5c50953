package reports

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"go-inventory-ledger/internal/models"
)

// TopLimit is how many best sellers Summarize returns.
const TopLimit = 5

// CategoryRevenue is one slice of the revenue-by-category chart.
type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// TopProduct is one row of the best sellers table.
type TopProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Sold      int             `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Summary holds the aggregates shown on the dashboard for a set of sales.
type Summary struct {
	TotalRevenue      decimal.Decimal   `json:"total_revenue"`
	TotalOrders       int               `json:"total_orders"`
	AverageOrderValue decimal.Decimal   `json:"average_order_value"`
	UnitsSold         int               `json:"units_sold"`
	RevenueByCategory []CategoryRevenue `json:"revenue_by_category"`
	TopSelling        []TopProduct      `json:"top_selling"`
}

// Summarize aggregates an already filtered sale set against the catalog.
// Revenue by category and the best sellers only count sales whose product is
// still in the catalog; totals count every sale.
func Summarize(products []models.Product, sales []models.Sale) Summary {
	sum := Summary{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		RevenueByCategory: []CategoryRevenue{},
		TopSelling:        []TopProduct{},
	}

	// 1. Totals
	sold := make(map[string]int)
	revenue := make(map[string]decimal.Decimal)
	for _, s := range sales {
		sum.TotalRevenue = sum.TotalRevenue.Add(s.TotalAmount)
		sum.TotalOrders++
		sum.UnitsSold += s.Quantity
		sold[s.ProductID] += s.Quantity
		revenue[s.ProductID] = revenue[s.ProductID].Add(s.TotalAmount)
	}
	if sum.TotalOrders > 0 {
		sum.AverageOrderValue = sum.TotalRevenue.Div(decimal.NewFromInt(int64(sum.TotalOrders))).Round(2)
	}

	// 2. Revenue by category, in order of first appearance in the catalog
	byCategory := make(map[string]int)
	for _, p := range products {
		r, ok := revenue[p.ID]
		if !ok || !r.IsPositive() {
			continue
		}
		if i, seen := byCategory[p.Category]; seen {
			sum.RevenueByCategory[i].Revenue = sum.RevenueByCategory[i].Revenue.Add(r)
			continue
		}
		byCategory[p.Category] = len(sum.RevenueByCategory)
		sum.RevenueByCategory = append(sum.RevenueByCategory, CategoryRevenue{Category: p.Category, Revenue: r})
	}

	// 3. Best sellers: every catalog product ranked by units, stable so ties keep catalog order
	ranked := make([]TopProduct, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, TopProduct{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Sold:      sold[p.ID],
			Revenue:   revenue[p.ID],
		})
	}
	slices.SortStableFunc(ranked, func(a, b TopProduct) int { return b.Sold - a.Sold })
	if len(ranked) > TopLimit {
		ranked = ranked[:TopLimit]
	}
	sum.TopSelling = ranked
	return sum
}

// DailyPoint is one bucket of the trailing revenue series.
type DailyPoint struct {
	Day     string          `json:"day"`
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DailyRevenue buckets sales into the last days calendar days ending today,
// oldest first. Days without sales are zero.
func DailyRevenue(sales []models.Sale, now time.Time, days int) []DailyPoint {
	if days <= 0 {
		return []DailyPoint{}
	}
	today := startOfDay(now)
	points := make([]DailyPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, i-(days-1))
		key := d.Format(time.DateOnly)
		points[i] = DailyPoint{Day: d.Format("Mon"), Date: key, Revenue: decimal.Zero}
		index[key] = i
	}
	for _, s := range sales {
		key := s.Date.In(now.Location()).Format(time.DateOnly)
		if i, ok := index[key]; ok {
			points[i].Revenue = points[i].Revenue.Add(s.TotalAmount)
		}
	}
	return points
}

// Overview is the row of stat cards at the top of the dashboard.
type Overview struct {
	TotalProducts int      `json:"total_products"`
	TotalStock    int      `json:"total_stock"`
	LowStock      int      `json:"low_stock"`
	Categories    []string `json:"categories"`
}

// NewOverview counts products, units on hand and low stock items, and lists the
// distinct categories in catalog order.
func NewOverview(products []models.Product) Overview {
	ov := Overview{TotalProducts: len(products), Categories: []string{}}
	for _, p := range products {
		ov.TotalStock += p.Stock
		if p.LowStock() {
			ov.LowStock++
		}
		if p.Category != "" && !slices.Contains(ov.Categories, p.Category) {
			ov.Categories = append(ov.Categories, p.Category)
		}
	}
	return ov
}
