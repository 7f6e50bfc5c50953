package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/reports"
)

// productsCacheKey identifies one listing view; the cache layer versions it.
func productsCacheKey(q reports.ProductQuery) string {
	return fmt.Sprintf("products:q=%s:cat=%s:stock=%s:sort=%s:%s:p=%d:n=%d",
		q.Search, q.Category, q.Stock, q.Sort, q.Order, q.Page, q.PerPage)
}

// --- GET: List products (filter, sort, paginate) ---
func (h *Handler) ListProducts(c *gin.Context) {
	var q reports.ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	// 1. Serve from the catalog cache when we can. The lookup happens before
	// the snapshot so the entry is pinned to a version no newer than the page.
	entry, err := h.cache.Get(ctx(c), productsCacheKey(q))
	if err != nil {
		logging.WithContext(ctx(c)).WithError(err).Warn("catalog cache read failed")
	} else if entry.Hit {
		c.Data(http.StatusOK, "application/json; charset=utf-8", entry.Value)
		return
	}

	// 2. Derive the page from the current ledger state
	page := reports.ListProducts(h.ledger.Snapshot().Products, q)
	body, err := json.Marshal(page)
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Remember it until the product set changes
	if err := h.cache.Set(ctx(c), entry, body); err != nil {
		logging.WithContext(ctx(c)).WithError(err).Warn("catalog cache write failed")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ledger.Product(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- GET: Barcode lookup used to pre-fill a sale ---
func (h *Handler) ScanProduct(c *gin.Context) {
	product, ok := h.ledger.FindByBarcode(c.Param("barcode"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	var input ledger.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	product, err := h.ledger.AddProduct(ctx(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// --- PUT: Update a product ---
// Only the fields present in the body change; the rest keep their current value.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	// 1. Find existing product
	product, err := h.ledger.Product(id)
	if err != nil {
		respondError(c, err)
		return
	}

	// 2. Overlay the JSON body on top of it
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	product.ID = id

	// 3. Save through the ledger
	updated, err := h.ledger.UpdateProduct(ctx(c), product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": updated})
}

// --- DELETE: Remove a product ---
// The caller confirms by repeating the product name: ?confirm=<name>.
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.ledger.DeleteProduct(ctx(c), c.Param("id"), c.Query("confirm")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
