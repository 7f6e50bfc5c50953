package reports

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-ledger/internal/models"
)

var now = time.Date(2024, 12, 10, 15, 30, 0, 0, time.UTC)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sale(id, productID string, qty int, total string, at time.Time) models.Sale {
	return models.Sale{ID: id, ProductID: productID, Quantity: qty, TotalAmount: money(total), Date: at}
}

func catalog() []models.Product {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: "p1", Name: "Laptop", Category: "Electronics", Price: money("999.99"), Stock: 15, MinStock: 5, Barcode: "111", CreatedAt: base},
		{ID: "p2", Name: "mouse", Category: "Electronics", Price: money("29.99"), Stock: 3, MinStock: 10, Barcode: "222", CreatedAt: base.Add(time.Hour)},
		{ID: "p3", Name: "Desk Chair", Category: "Furniture", Price: money("199.99"), Stock: 8, MinStock: 3, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "p4", Name: "Notebook", Category: "Stationery", Price: money("2.50"), Stock: 0, MinStock: 0, Barcode: "444", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "p5", Name: "Pen", Category: "Stationery", Price: money("1.00"), Stock: 100, MinStock: 20, CreatedAt: base.Add(4 * time.Hour)},
		{ID: "p6", Name: "Lamp", Category: "", Price: money("15"), Stock: 2, MinStock: 1, CreatedAt: base.Add(5 * time.Hour)},
	}
}

func TestResolveRangeWeekBoundaries(t *testing.T) {
	r := ResolveRange(PresetWeek, time.Time{}, time.Time{}, now)
	sales := []models.Sale{
		sale("seven", "p1", 1, "1", now.AddDate(0, 0, -7)),
		sale("eight", "p1", 1, "1", now.AddDate(0, 0, -8)),
		sale("now", "p1", 1, "1", now),
		sale("future", "p1", 1, "1", now.Add(time.Second)),
	}

	got := FilterSales(sales, r)
	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"seven", "now"}, ids)
}

func TestResolveRangePresets(t *testing.T) {
	today := ResolveRange(PresetToday, time.Time{}, time.Time{}, now)
	assert.Equal(t, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC), today.Start)
	assert.True(t, today.Contains(time.Date(2024, 12, 10, 23, 59, 59, 0, time.UTC)))
	assert.False(t, today.Contains(time.Date(2024, 12, 11, 0, 0, 0, 0, time.UTC)))

	year := ResolveRange(PresetYear, time.Time{}, time.Time{}, now)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), year.Start)
	assert.True(t, year.Contains(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, year.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	month := ResolveRange(PresetMonth, time.Time{}, time.Time{}, now)
	assert.Equal(t, now.AddDate(0, 0, -30), month.Start)
	quarter := ResolveRange(PresetQuarter, time.Time{}, time.Time{}, now)
	assert.Equal(t, now.AddDate(0, 0, -90), quarter.Start)
	assert.Equal(t, now, quarter.End)
}

func TestResolveRangeFallsBackToAll(t *testing.T) {
	from := now.AddDate(0, 0, -3)
	assert.True(t, ResolveRange(PresetCustom, from, time.Time{}, now).All())
	assert.True(t, ResolveRange(PresetCustom, time.Time{}, now, now).All())
	assert.True(t, ResolveRange("fortnight", from, now, now).All())
	assert.True(t, ResolveRange(PresetAll, time.Time{}, time.Time{}, now).All())

	custom := ResolveRange(PresetCustom, from, now, now)
	assert.Equal(t, Range{Start: from, End: now}, custom)

	sales := []models.Sale{sale("old", "p1", 1, "1", now.AddDate(-5, 0, 0))}
	assert.Len(t, FilterSales(sales, Range{}), 1)
}

func TestSummarize(t *testing.T) {
	products := catalog()
	sales := []models.Sale{
		sale("s1", "p1", 2, "1999.98", now),
		sale("s2", "p2", 5, "149.95", now),
		sale("s3", "p3", 1, "199.99", now),
		sale("s4", "p2", 1, "29.99", now),
		sale("s5", "gone", 9, "90", now),
	}

	sum := Summarize(products, sales)
	assert.True(t, money("2469.91").Equal(sum.TotalRevenue), sum.TotalRevenue.String())
	assert.Equal(t, 5, sum.TotalOrders)
	assert.Equal(t, 18, sum.UnitsSold)
	assert.True(t, money("493.98").Equal(sum.AverageOrderValue), sum.AverageOrderValue.String())

	require.Len(t, sum.RevenueByCategory, 2)
	assert.Equal(t, "Electronics", sum.RevenueByCategory[0].Category)
	assert.True(t, money("2179.92").Equal(sum.RevenueByCategory[0].Revenue))
	assert.Equal(t, "Furniture", sum.RevenueByCategory[1].Category)

	require.Len(t, sum.TopSelling, TopLimit)
	assert.Equal(t, "p2", sum.TopSelling[0].ProductID)
	assert.Equal(t, 6, sum.TopSelling[0].Sold)
	assert.Equal(t, "p1", sum.TopSelling[1].ProductID)
	assert.Equal(t, "p3", sum.TopSelling[2].ProductID)
	// unsold products keep catalog order
	assert.Equal(t, "p4", sum.TopSelling[3].ProductID)
	assert.Equal(t, "p5", sum.TopSelling[4].ProductID)
}

func TestSummarizeWithoutSales(t *testing.T) {
	sum := Summarize(catalog(), nil)
	assert.True(t, sum.AverageOrderValue.IsZero())
	assert.True(t, sum.TotalRevenue.IsZero())
	assert.Zero(t, sum.TotalOrders)
	assert.Empty(t, sum.RevenueByCategory)
}

func TestDailyRevenue(t *testing.T) {
	sales := []models.Sale{
		sale("a", "p1", 1, "10", now),
		sale("b", "p1", 1, "5.50", time.Date(2024, 12, 10, 0, 0, 1, 0, time.UTC)),
		sale("c", "p1", 1, "7", time.Date(2024, 12, 4, 23, 59, 0, 0, time.UTC)),
		sale("d", "p1", 1, "100", time.Date(2024, 12, 3, 12, 0, 0, 0, time.UTC)),
	}

	points := DailyRevenue(sales, now, 7)
	require.Len(t, points, 7)
	assert.Equal(t, "2024-12-04", points[0].Date)
	assert.Equal(t, "Wed", points[0].Day)
	assert.True(t, money("7").Equal(points[0].Revenue))
	assert.True(t, points[3].Revenue.IsZero())
	assert.Equal(t, "2024-12-10", points[6].Date)
	assert.True(t, money("15.50").Equal(points[6].Revenue))
}

func TestNewOverview(t *testing.T) {
	ov := NewOverview(catalog())
	assert.Equal(t, 6, ov.TotalProducts)
	assert.Equal(t, 128, ov.TotalStock)
	// mouse (3 <= 10) and notebook (0 <= 0)
	assert.Equal(t, 2, ov.LowStock)
	assert.Equal(t, []string{"Electronics", "Furniture", "Stationery"}, ov.Categories)
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestFilterProducts(t *testing.T) {
	products := catalog()

	tests := []struct {
		name  string
		query ProductQuery
		want  []string
	}{
		{"default sorts by name ignoring case", ProductQuery{}, []string{"Desk Chair", "Lamp", "Laptop", "mouse", "Notebook", "Pen"}},
		{"search matches barcode", ProductQuery{Search: "44"}, []string{"Notebook"}},
		{"search matches category", ProductQuery{Search: "ELECTRO"}, []string{"Laptop", "mouse"}},
		{"category all", ProductQuery{Category: "all", Sort: "stock"}, []string{"Notebook", "Lamp", "mouse", "Desk Chair", "Laptop", "Pen"}},
		{"category and low stock", ProductQuery{Category: "Electronics", Stock: "low"}, []string{"mouse"}},
		{"normal stock by price desc", ProductQuery{Stock: "normal", Sort: "price", Order: "desc"}, []string{"Laptop", "Desk Chair", "Lamp", "Pen"}},
		{"created_at desc", ProductQuery{Sort: "created_at", Order: "desc", Search: "n"}, []string{"Pen", "Notebook", "Desk Chair", "mouse", "Laptop"}},
		{"no match", ProductQuery{Search: "tablet"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterProducts(products, tt.query)))
		})
	}
	assert.Equal(t, "p1", products[0].ID)
}

func TestListProductsPaginates(t *testing.T) {
	var products []models.Product
	for i := 0; i < 23; i++ {
		products = append(products, models.Product{ID: string(rune('a' + i)), Name: string(rune('a' + i))})
	}

	first := ListProducts(products, ProductQuery{})
	assert.Equal(t, 23, first.Total)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, DefaultPerPage, first.PerPage)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, "a", first.Items[0].Name)

	last := ListProducts(products, ProductQuery{Page: 3})
	assert.Len(t, last.Items, 3)
	assert.Equal(t, "u", last.Items[0].Name)

	past := ListProducts(products, ProductQuery{Page: 9, PerPage: 5})
	assert.Empty(t, past.Items)
	assert.Equal(t, 5, past.TotalPages)
}

func TestListProductsHugePageNumbers(t *testing.T) {
	products := catalog()

	assert.NotPanics(t, func() {
		page := ListProducts(products, ProductQuery{Page: math.MaxInt64 / 5})
		assert.Empty(t, page.Items)
		assert.Equal(t, len(products), page.Total)
	})
	assert.NotPanics(t, func() {
		page := ListProducts(products, ProductQuery{Page: math.MaxInt, PerPage: math.MaxInt})
		assert.Empty(t, page.Items)
		assert.Equal(t, MaxPerPage, page.PerPage)
	})

	capped := ListProducts(products, ProductQuery{PerPage: 1000})
	assert.Equal(t, MaxPerPage, capped.PerPage)
	assert.Len(t, capped.Items, len(products))
	assert.Equal(t, 1, capped.TotalPages)
}

func TestStockValuation(t *testing.T) {
	v := StockValuation(catalog())

	require.Len(t, v.Categories, 4)
	assert.Equal(t, "Electronics", v.Categories[0].CategoryName)
	assert.True(t, money("15089.82").Equal(v.Categories[0].Subtotal), v.Categories[0].Subtotal.String())
	assert.Equal(t, "Uncategorized", v.Categories[3].CategoryName)
	assert.True(t, money("30").Equal(v.Categories[3].Subtotal))
	// 14999.85 + 89.97 + 1599.92 + 0 + 100 + 30
	assert.True(t, money("16819.74").Equal(v.GrandTotal), v.GrandTotal.String())
}
