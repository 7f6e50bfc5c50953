package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/models"
)

type RouterOptions struct {
	CORSOrigins       []string
	AllowRegistration bool
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Health)
	r.POST("/login", h.Login)

	// --- FEATURE FLAG: Registration ---
	// Only opens if we explicitly allow it in .env
	if opts.AllowRegistration {
		r.POST("/register", h.Register)
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.tokens))
	{
		// PUBLIC TO STAFF & ADMIN
		api.GET("/products", h.ListProducts)
		api.GET("/products/scan/:barcode", h.ScanProduct)
		api.GET("/products/:id", h.GetProduct)
		api.POST("/sales", h.ProcessSale)
		api.GET("/sales", h.ListSales)
		api.GET("/sales/:id/invoice", h.SaleInvoice)
		api.GET("/activities", h.ListActivities)
		api.GET("/dashboard", h.Dashboard)
		api.GET("/export/:dataset", h.Export)

		// ADMIN ONLY
		admin := api.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/purchases", h.ProcessPurchase)
			admin.GET("/purchases", h.ListPurchases)
			admin.GET("/reports/valuation", h.GetStockValuation)
			admin.POST("/ask", h.AskAI)
		}
	}
	return r
}
