package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-inventory-ledger/internal/export"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/reports"
)

// SaleRequest defines what the Frontend sends us
type SaleRequest struct {
	ProductID    string `json:"product_id"`
	Quantity     int    `json:"quantity"`
	CustomerName string `json:"customer_name"`
}

type PurchaseRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// --- POST: Sell a product ---
func (h *Handler) ProcessSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sale, err := h.ledger.ProcessSale(ctx(c), req.ProductID, req.Quantity, req.CustomerName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sale successful!", "sale": sale})
}

// --- POST: Book incoming stock ---
func (h *Handler) ProcessPurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	purchase, err := h.ledger.ProcessPurchase(ctx(c), req.ProductID, req.Quantity, req.UnitPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Purchase recorded", "purchase": purchase})
}

func (h *Handler) ListSales(c *gin.Context) {
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": reports.FilterSales(h.ledger.Snapshot().Sales, rng)})
}

func (h *Handler) ListPurchases(c *gin.Context) {
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": reports.FilterPurchases(h.ledger.Snapshot().Purchases, rng)})
}

// --- GET: Printable invoice for one sale ---
func (h *Handler) SaleInvoice(c *gin.Context) {
	sale, err := h.ledger.Sale(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Invoice(&buf, sale, h.company); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, sale.ID))
	c.Data(http.StatusOK, export.PDF.ContentType(), buf.Bytes())
}

// dateRange reads ?range=&from=&to=. Dates are YYYY-MM-DD or RFC 3339; a
// date-only "to" covers that whole day. Giving from/to without a range
// selects the custom preset. On a bad date it has already responded.
func (h *Handler) dateRange(c *gin.Context) (reports.Range, bool) {
	now := h.now()
	from, err := parseDate(c.Query("from"), now.Location(), false)
	if err != nil {
		respondError(c, ledger.NewValidationError("from", "must be YYYY-MM-DD or RFC 3339"))
		return reports.Range{}, false
	}
	to, err := parseDate(c.Query("to"), now.Location(), true)
	if err != nil {
		respondError(c, ledger.NewValidationError("to", "must be YYYY-MM-DD or RFC 3339"))
		return reports.Range{}, false
	}

	preset := c.Query("range")
	if preset == "" {
		preset = reports.DefaultPreset
		if !from.IsZero() || !to.IsZero() {
			preset = reports.PresetCustom
		}
	}
	return reports.ResolveRange(preset, from, to, now), true
}

func parseDate(v string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		if endOfDay {
			return reports.EndOfDay(t), nil
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
