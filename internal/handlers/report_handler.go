package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-inventory-ledger/internal/export"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/models"
	"go-inventory-ledger/internal/reports"
)

// trendDays is the length of the dashboard's daily revenue series.
const trendDays = 7

// DashboardData defines the shape of our analytics response
type DashboardData struct {
	Overview     reports.Overview     `json:"overview"`
	Summary      reports.Summary      `json:"summary"`
	DailyRevenue []reports.DailyPoint `json:"daily_revenue"`
	Activities   []models.Activity    `json:"activities"`
}

// --- GET: /api/activities ---
func (h *Handler) ListActivities(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Activities())
}

// --- GET: /api/dashboard ---
// Stat cards, range-filtered sales analytics, the trailing week of revenue and
// the activity feed, all derived from one snapshot.
func (h *Handler) Dashboard(c *gin.Context) {
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	snap := h.ledger.Snapshot()

	c.JSON(http.StatusOK, DashboardData{
		Overview:     reports.NewOverview(snap.Products),
		Summary:      reports.Summarize(snap.Products, reports.FilterSales(snap.Sales, rng)),
		DailyRevenue: reports.DailyRevenue(snap.Sales, h.now(), trendDays),
		Activities:   snap.Activities,
	})
}

// --- GET: /api/reports/valuation ---
// GetStockValuation calculates the total monetary value of all physical inventory
func (h *Handler) GetStockValuation(c *gin.Context) {
	c.JSON(http.StatusOK, reports.StockValuation(h.ledger.Snapshot().Products))
}

// --- GET: /api/export/:dataset?format=csv|xlsx|pdf ---
// Products take the listing filters (without paging), sales and purchases
// take the date range. Purchases are admin only.
func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. Build the already-filtered row set
	snap := h.ledger.Snapshot()
	var data export.Dataset
	switch c.Param("dataset") {
	case "products":
		var q reports.ProductQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
			return
		}
		data = export.Products(reports.FilterProducts(snap.Products, q))
	case "sales":
		rng, ok := h.dateRange(c)
		if !ok {
			return
		}
		data = export.Sales(reports.FilterSales(snap.Sales, rng))
	case "purchases":
		if role, _ := c.Get(middleware.KeyRole); role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		rng, ok := h.dateRange(c)
		if !ok {
			return
		}
		data = export.Purchases(reports.FilterPurchases(snap.Purchases, rng))
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown dataset"})
		return
	}

	// 2. Render it into the requested format
	var buf bytes.Buffer
	if err := export.Render(&buf, data, format, h.now()); err != nil {
		if errors.Is(err, export.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No data to export"})
			return
		}
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, data.Filename(format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
