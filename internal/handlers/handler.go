package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-inventory-ledger/internal/auth"
	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/export"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

// Accounts looks up and creates dashboard users.
type Accounts interface {
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	Create(ctx context.Context, username, password string, role models.Role) (models.User, error)
}

// Assistant answers free-form questions about the inventory.
type Assistant interface {
	Run(ctx context.Context, message string) (string, error)
}

// Deps are the collaborators the HTTP layer adapts. Cache, Assistant and Ping
// are optional.
type Deps struct {
	Ledger    *ledger.Ledger
	Accounts  Accounts
	Tokens    *auth.Manager
	Cache     cache.Catalog
	Assistant Assistant
	Company   export.Company
	Ping      func(ctx context.Context) error
	Now       func() time.Time
}

type Handler struct {
	ledger    *ledger.Ledger
	accounts  Accounts
	tokens    *auth.Manager
	cache     cache.Catalog
	assistant Assistant
	company   export.Company
	ping      func(ctx context.Context) error
	now       func() time.Time
}

// New builds the handler set and hooks catalog cache invalidation onto the
// ledger's product change events.
func New(d Deps) (*Handler, error) {
	h := &Handler{
		ledger:    d.Ledger,
		accounts:  d.Accounts,
		tokens:    d.Tokens,
		cache:     d.Cache,
		assistant: d.Assistant,
		company:   d.Company,
		ping:      d.Ping,
		now:       d.Now,
	}
	if h.cache == nil {
		h.cache = cache.Nop{}
	}
	if h.now == nil {
		h.now = time.Now
	}

	err := h.ledger.OnProductsChanged(func(ev ledger.ProductsChanged) {
		if err := h.cache.Invalidate(context.Background()); err != nil {
			logging.Logger().WithError(err).WithField("op", ev.Op).Warn("catalog cache invalidation failed")
		}
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// respondError maps ledger errors onto status codes.
func respondError(c *gin.Context, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": verr.Errors})
	case errors.Is(err, ledger.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrDuplicateName), errors.Is(err, ledger.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.WithContext(c.Request.Context()).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func ctx(c *gin.Context) context.Context {
	return c.Request.Context()
}
