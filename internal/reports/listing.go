package reports

import (
	"cmp"
	"slices"
	"strings"

	"go-inventory-ledger/internal/models"
)

// DefaultPerPage is the product table page size; MaxPerPage caps what a
// caller may ask for.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Stock buckets.
const (
	StockLow    = "low"
	StockNormal = "normal"
)

// ProductQuery describes one view of the product table. Empty (or "all")
// filters match everything.
type ProductQuery struct {
	Search   string `form:"q"`
	Category string `form:"category"`
	Stock    string `form:"stock"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// ProductPage is one page of the filtered and sorted product table.
type ProductPage struct {
	Items      []models.Product `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// Match reports whether p passes every filter of q.
func (q ProductQuery) Match(p models.Product) bool {
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Category), term) &&
			!strings.Contains(strings.ToLower(p.Barcode), term) {
			return false
		}
	}
	if !isAll(q.Category) && p.Category != q.Category {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(q.Stock)) {
	case StockLow:
		return p.LowStock()
	case StockNormal:
		return !p.LowStock()
	}
	return true
}

func compareProducts(key string) func(a, b models.Product) int {
	switch key {
	case "category":
		return func(a, b models.Product) int {
			return cmp.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		}
	case "price":
		return func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	case "stock":
		return func(a, b models.Product) int { return cmp.Compare(a.Stock, b.Stock) }
	case "created_at", "createdAt":
		return func(a, b models.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b models.Product) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
}

// FilterProducts applies the filters and the sort of q, leaving products
// untouched. Unknown sort keys sort by name.
func FilterProducts(products []models.Product, q ProductQuery) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q.Match(p) {
			out = append(out, p)
		}
	}

	compare := compareProducts(strings.TrimSpace(q.Sort))
	if strings.EqualFold(q.Order, "desc") {
		asc := compare
		compare = func(a, b models.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// ListProducts filters, sorts and paginates. Pages are 1-based; a page past
// the end is empty.
func ListProducts(products []models.Product, q ProductQuery) ProductPage {
	filtered := FilterProducts(products, q)

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	page := max(q.Page, 1)

	res := ProductPage{
		Items:      []models.Product{},
		Total:      len(filtered),
		Page:       page,
		PerPage:    perPage,
		TotalPages: (len(filtered) + perPage - 1) / perPage,
	}
	// compare page numbers before multiplying so huge pages cannot overflow
	if page > res.TotalPages {
		return res
	}
	start := (page - 1) * perPage
	res.Items = filtered[start:min(start+perPage, len(filtered))]
	return res
}
