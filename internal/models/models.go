package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is what an actor is allowed to do: 'admin' manages the catalog and
// purchases, 'staff' can only sell.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Actor - whoever is calling the ledger right now
type Actor struct {
	ID       string
	Username string
	Role     Role
}

// User - The person logging into the dashboard
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	Role         Role      `gorm:"size:16" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product - The Inventory
type Product struct {
	ID       string          `gorm:"primaryKey;size:36" json:"id"`
	Name     string          `gorm:"size:191;not null" json:"name"`
	NameKey  string          `gorm:"size:191;uniqueIndex" json:"-"` // lower(name), keeps names unique in the DB too
	Category string          `gorm:"size:100;index" json:"category"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
	Supplier string          `gorm:"size:191" json:"supplier"`
	Barcode  string          `gorm:"size:64;index" json:"barcode,omitempty"`
	// CreatedAt also defines catalog order.
	CreatedAt time.Time `json:"created_at"`
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// Sale - one product sold to one customer
type Sale struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	ProductID    string          `gorm:"size:36;index" json:"product_id"`
	ProductName  string          `gorm:"size:191" json:"product_name"` // Snapshot of name at time of sale
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"` // Snapshot of price at time of sale
	TotalAmount  decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_amount"`
	CustomerName string          `gorm:"size:191" json:"customer_name"`
	SoldBy       string          `gorm:"size:64" json:"sold_by,omitempty"` // Who processed it
	Date         time.Time       `gorm:"index" json:"date"`
}

// Purchase - stock bought in from a supplier
type Purchase struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	ProductID   string          `gorm:"size:36;index" json:"product_id"`
	ProductName string          `gorm:"size:191" json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"` // Supplied by the buyer, not the catalog
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_amount"`
	Supplier    string          `gorm:"size:191" json:"supplier"`
	Date        time.Time       `gorm:"index" json:"date"`
}

type ActivityType string

const (
	ActivitySale         ActivityType = "sale"
	ActivityPurchase     ActivityType = "purchase"
	ActivityProductAdded ActivityType = "product_added"
	ActivityLowStock     ActivityType = "low_stock"
)

// Activity - one line of the recent activity feed. Never created directly by a
// caller; the ledger emits them as a side effect of its operations.
type Activity struct {
	ID        string              `gorm:"primaryKey;size:36" json:"id"`
	Seq       int64               `gorm:"index" json:"seq"` // feed order, newest highest
	Type      ActivityType        `gorm:"size:32;index" json:"type"`
	Message   string              `gorm:"size:255" json:"message"`
	Timestamp time.Time           `gorm:"index" json:"timestamp"`
	Amount    decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"amount"`
	ProductID string              `gorm:"size:36" json:"product_id,omitempty"`
}
