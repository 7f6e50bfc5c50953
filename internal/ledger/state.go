package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-inventory-ledger/internal/models"
)

// FeedLimit is the number of activities kept in the recent activity feed.
const FeedLimit = 10

// State is the ledger's product/sale/purchase/activity state.
// Products are kept in catalog order, everything else newest first.
// Transitions never modify the receiver; they return the next State.
type State struct {
	Products   []models.Product
	Sales      []models.Sale
	Purchases  []models.Purchase
	Activities []models.Activity
}

// Clone returns a deep enough copy for callers to keep.
func (s State) Clone() State {
	return State{
		Products:   slices.Clone(s.Products),
		Sales:      slices.Clone(s.Sales),
		Purchases:  slices.Clone(s.Purchases),
		Activities: slices.Clone(s.Activities),
	}
}

// env carries what a transition needs from the outside world.
type env struct {
	actor models.Actor
	now   time.Time
	newID func() string
}

// ProductInput is the payload of AddProduct. Pointer fields distinguish
// "missing" from zero.
type ProductInput struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock"`
	MinStock *int             `json:"min_stock"`
	Supplier string           `json:"supplier"`
	Barcode  string           `json:"barcode"`
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s State) productIndex(id string) int {
	return slices.IndexFunc(s.Products, func(p models.Product) bool { return p.ID == id })
}

// CheckDuplicate reports whether another product (other than excludeID) is
// already called name, ignoring case.
func (s State) CheckDuplicate(name, excludeID string) bool {
	key := nameKey(name)
	return slices.ContainsFunc(s.Products, func(p models.Product) bool {
		return p.ID != excludeID && nameKey(p.Name) == key
	})
}

// FindByBarcode returns the first product in catalog order with the barcode.
func (s State) FindByBarcode(code string) (models.Product, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Product{}, false
	}
	for _, p := range s.Products {
		if p.Barcode == code {
			return p, true
		}
	}
	return models.Product{}, false
}

// pushActivity puts a at the head of the feed and trims it to FeedLimit.
func (s *State) pushActivity(cs *Changeset, a models.Activity) {
	a.Seq = 1
	if len(s.Activities) > 0 {
		a.Seq = s.Activities[0].Seq + 1
	}
	feed := make([]models.Activity, 0, len(s.Activities)+1)
	feed = append(feed, a)
	feed = append(feed, s.Activities...)
	var evicted []models.Activity
	if len(feed) > FeedLimit {
		evicted = feed[FeedLimit:]
		feed = feed[:FeedLimit]
	}
	s.Activities = feed
	cs.addActivity(a, evicted)
}

func (s *State) emit(cs *Changeset, e env, typ models.ActivityType, productID, message string, amount *decimal.Decimal) {
	a := models.Activity{
		ID:        e.newID(),
		Type:      typ,
		Message:   message,
		Timestamp: e.now,
		ProductID: productID,
	}
	if amount != nil {
		a.Amount = decimal.NewNullDecimal(*amount)
	}
	s.pushActivity(cs, a)
}

func requireRole(e env, action string, allowed ...models.Role) error {
	if !e.actor.Role.Valid() {
		return &AuthorizationError{Action: action}
	}
	if len(allowed) > 0 && !slices.Contains(allowed, e.actor.Role) {
		return &AuthorizationError{Action: action, Role: e.actor.Role}
	}
	return nil
}

// Money is stored with two decimal places: prices as decimal(12,2), totals as
// decimal(14,2). Both limits are exclusive.
var (
	maxPrice = decimal.New(1, 10)
	maxTotal = decimal.New(1, 12)
)

func storableMoney(d, limit decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(limit)
}

func checkMoney(v *validator, field string, d, limit decimal.Decimal) {
	v.check(d.Equal(d.Round(2)), field, "must have at most 2 decimal places")
	v.check(d.Abs().LessThan(limit), field, "is too large")
}

func validateProductFields(v *validator, name string, price decimal.Decimal, stock, minStock int) {
	v.check(strings.TrimSpace(name) != "", "name", "is required")
	v.check(!price.IsNegative(), "price", "must not be negative")
	checkMoney(v, "price", price, maxPrice)
	v.check(stock >= 0, "stock", "must not be negative")
	v.check(minStock >= 0, "min_stock", "must not be negative")
}

func (s State) addProduct(e env, in ProductInput) (State, Changeset, models.Product, error) {
	var cs Changeset
	if err := requireRole(e, "add products", models.RoleAdmin); err != nil {
		return s, cs, models.Product{}, err
	}

	v := &validator{}
	v.check(strings.TrimSpace(in.Name) != "", "name", "is required")
	v.check(in.Price != nil, "price", "is required")
	v.check(in.Stock != nil, "stock", "is required")
	if err := v.err(); err != nil {
		return s, cs, models.Product{}, err
	}

	minStock := 0
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	validateProductFields(v, in.Name, *in.Price, *in.Stock, minStock)
	if err := v.err(); err != nil {
		return s, cs, models.Product{}, err
	}

	name := strings.TrimSpace(in.Name)
	if s.CheckDuplicate(name, "") {
		return s, cs, models.Product{}, &DuplicateNameError{Name: name}
	}

	p := models.Product{
		ID:        e.newID(),
		Name:      name,
		NameKey:   nameKey(name),
		Category:  strings.TrimSpace(in.Category),
		Price:     *in.Price,
		Stock:     *in.Stock,
		MinStock:  minStock,
		Supplier:  strings.TrimSpace(in.Supplier),
		Barcode:   strings.TrimSpace(in.Barcode),
		CreatedAt: e.now,
	}

	next := s
	next.Products = append(slices.Clone(s.Products), p)
	cs.Created = append(cs.Created, p)
	next.emit(&cs, e, models.ActivityProductAdded, p.ID, fmt.Sprintf("New product added: %s", p.Name), nil)
	return next, cs, p, nil
}

func (s State) updateProduct(e env, p models.Product) (State, Changeset, models.Product, error) {
	var cs Changeset
	if err := requireRole(e, "edit products", models.RoleAdmin); err != nil {
		return s, cs, models.Product{}, err
	}

	v := &validator{}
	v.check(p.ID != "", "id", "is required")
	validateProductFields(v, p.Name, p.Price, p.Stock, p.MinStock)
	if err := v.err(); err != nil {
		return s, cs, models.Product{}, err
	}

	i := s.productIndex(p.ID)
	if i < 0 {
		return s, cs, models.Product{}, &NotFoundError{Kind: "product", ID: p.ID}
	}

	p.Name = strings.TrimSpace(p.Name)
	if s.CheckDuplicate(p.Name, p.ID) {
		return s, cs, models.Product{}, &DuplicateNameError{Name: p.Name}
	}

	p.NameKey = nameKey(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Supplier = strings.TrimSpace(p.Supplier)
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.CreatedAt = s.Products[i].CreatedAt

	next := s
	next.Products = slices.Clone(s.Products)
	next.Products[i] = p
	cs.Updated = append(cs.Updated, p)
	next.emit(&cs, e, models.ActivityProductAdded, p.ID, fmt.Sprintf("Product updated: %s", p.Name), nil)
	return next, cs, p, nil
}

// DeletePrompt is the confirmation a caller must acknowledge before a product
// is removed.
func DeletePrompt(name string) string {
	return fmt.Sprintf("Are you sure you want to delete %q?", name)
}

func (s State) deleteProduct(e env, id, confirmName string) (State, Changeset, error) {
	var cs Changeset
	if err := requireRole(e, "delete products", models.RoleAdmin); err != nil {
		return s, cs, err
	}

	i := s.productIndex(id)
	if i < 0 {
		return s, cs, &NotFoundError{Kind: "product", ID: id}
	}

	target := s.Products[i]
	if !strings.EqualFold(strings.TrimSpace(confirmName), target.Name) {
		return s, cs, NewValidationError("confirm", DeletePrompt(target.Name))
	}

	next := s
	next.Products = slices.Delete(slices.Clone(s.Products), i, i+1)
	cs.Deleted = append(cs.Deleted, id)
	return next, cs, nil
}

func (s State) processSale(e env, productID string, quantity int, customerName string) (State, Changeset, models.Sale, error) {
	var cs Changeset
	if err := requireRole(e, "record sales"); err != nil {
		return s, cs, models.Sale{}, err
	}

	customerName = strings.TrimSpace(customerName)
	v := &validator{}
	v.check(productID != "", "product_id", "is required")
	v.check(quantity > 0, "quantity", "must be a positive number")
	v.check(customerName != "", "customer_name", "is required")
	if err := v.err(); err != nil {
		return s, cs, models.Sale{}, err
	}

	i := s.productIndex(productID)
	if i < 0 {
		return s, cs, models.Sale{}, &NotFoundError{Kind: "product", ID: productID}
	}
	product := s.Products[i]
	if quantity > product.Stock {
		return s, cs, models.Sale{}, &InsufficientStockError{
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}
	total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if !storableMoney(total, maxTotal) {
		return s, cs, models.Sale{}, NewValidationError("quantity", "sale total is too large")
	}

	sale := models.Sale{
		ID:           e.newID(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		Quantity:     quantity,
		UnitPrice:    product.Price,
		TotalAmount:  total,
		CustomerName: customerName,
		SoldBy:       e.actor.ID,
		Date:         e.now,
	}

	product.Stock -= quantity
	next := s
	next.Products = slices.Clone(s.Products)
	next.Products[i] = product
	next.Sales = append([]models.Sale{sale}, s.Sales...)

	cs.Adjustments = append(cs.Adjustments, StockAdjustment{ProductID: product.ID, Delta: -quantity})
	cs.Sales = append(cs.Sales, sale)
	next.emit(&cs, e, models.ActivitySale, product.ID,
		fmt.Sprintf("Sale completed: %dx %s to %s", sale.Quantity, sale.ProductName, sale.CustomerName),
		&sale.TotalAmount)
	return next, cs, sale, nil
}

func (s State) processPurchase(e env, productID string, quantity int, unitPrice decimal.Decimal) (State, Changeset, models.Purchase, error) {
	var cs Changeset
	if err := requireRole(e, "record purchases", models.RoleAdmin); err != nil {
		return s, cs, models.Purchase{}, err
	}

	v := &validator{}
	v.check(productID != "", "product_id", "is required")
	v.check(quantity > 0, "quantity", "must be a positive number")
	v.check(unitPrice.IsPositive(), "unit_price", "must be a positive amount")
	checkMoney(v, "unit_price", unitPrice, maxPrice)
	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	v.check(storableMoney(total, maxTotal), "quantity", "purchase total is too large")
	if err := v.err(); err != nil {
		return s, cs, models.Purchase{}, err
	}

	i := s.productIndex(productID)
	if i < 0 {
		return s, cs, models.Purchase{}, &NotFoundError{Kind: "product", ID: productID}
	}
	product := s.Products[i]

	purchase := models.Purchase{
		ID:          e.newID(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: total,
		Supplier:    product.Supplier,
		Date:        e.now,
	}

	product.Stock += quantity
	next := s
	next.Products = slices.Clone(s.Products)
	next.Products[i] = product
	next.Purchases = append([]models.Purchase{purchase}, s.Purchases...)

	cs.Adjustments = append(cs.Adjustments, StockAdjustment{ProductID: product.ID, Delta: quantity})
	cs.Purchases = append(cs.Purchases, purchase)
	next.emit(&cs, e, models.ActivityPurchase, product.ID,
		fmt.Sprintf("Purchase recorded: %dx %s", purchase.Quantity, purchase.ProductName),
		&purchase.TotalAmount)
	return next, cs, purchase, nil
}

// flagged reports whether the feed still holds a low-stock warning for p.
func (s State) flagged(p models.Product) bool {
	return slices.ContainsFunc(s.Activities, func(a models.Activity) bool {
		return a.Type == models.ActivityLowStock && a.ProductID == p.ID
	})
}

func (s State) sweepLowStock(e env) (State, Changeset, []models.Activity) {
	var cs Changeset
	next := s
	var raised []models.Activity
	for _, p := range s.Products {
		if !p.LowStock() || next.flagged(p) {
			continue
		}
		next.emit(&cs, e, models.ActivityLowStock, p.ID,
			fmt.Sprintf("%s is running low on stock (%d remaining)", p.Name, p.Stock), nil)
		raised = append(raised, next.Activities[0])
	}
	return next, cs, raised
}
