package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-inventory-ledger/internal/models"
)

// SalesReportResult holds the totals the assistant reports back
type SalesReportResult struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCount   int64           `json:"total_count"`
	UnitsSold    int64           `json:"units_sold"`
}

// Reporter runs aggregate queries straight against the database.
type Reporter struct {
	db *gorm.DB
}

func NewReporter(db *gorm.DB) *Reporter {
	return &Reporter{db: db}
}

// SalesReport calculates sales within a specific date range, both ends inclusive.
func (r *Reporter) SalesReport(ctx context.Context, start, end time.Time) (*SalesReportResult, error) {
	var row struct {
		Revenue decimal.NullDecimal
		Orders  int64
		Units   int64
	}

	// SUM is NULL when nothing matches, so revenue scans into a NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Sale{}).
		Where("date BETWEEN ? AND ?", start, end).
		Select("SUM(total_amount) AS revenue, COUNT(*) AS orders, COALESCE(SUM(quantity), 0) AS units").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	result := &SalesReportResult{TotalRevenue: decimal.Zero, TotalCount: row.Orders, UnitsSold: row.Units}
	if row.Revenue.Valid {
		result.TotalRevenue = row.Revenue.Decimal
	}
	return result, nil
}
