package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

// Identity supplies the actor behind a call.
type Identity interface {
	Actor(ctx context.Context) (models.Actor, bool)
}

// IdentityFunc adapts a function to Identity.
type IdentityFunc func(ctx context.Context) (models.Actor, bool)

func (f IdentityFunc) Actor(ctx context.Context) (models.Actor, bool) { return f(ctx) }

// StaticIdentity always answers with the same actor.
func StaticIdentity(actor models.Actor) Identity {
	return IdentityFunc(func(context.Context) (models.Actor, bool) { return actor, true })
}

// Ledger owns the inventory state and is the only thing allowed to change it.
// Writers are serialized; a transition becomes visible only after the store
// committed it.
type Ledger struct {
	mu       sync.RWMutex
	state    State
	store    Store
	identity Identity
	bus      EventBus.Bus
	now      func() time.Time
	newID    func() string
}

type Option func(*Ledger)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// WithEventBus shares an existing bus instead of creating one.
func WithEventBus(bus EventBus.Bus) Option {
	return func(l *Ledger) { l.bus = bus }
}

// New loads the current state from store and returns a ready ledger.
func New(ctx context.Context, store Store, identity Identity, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:    store,
		identity: identity,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.bus == nil {
		l.bus = EventBus.New()
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}
	if len(state.Activities) > FeedLimit {
		state.Activities = state.Activities[:FeedLimit]
	}
	l.state = state
	return l, nil
}

type transition func(s State, e env) (State, Changeset, error)

func (l *Ledger) env(ctx context.Context) env {
	e := env{now: l.now(), newID: l.newID}
	if l.identity != nil {
		if actor, ok := l.identity.Actor(ctx); ok {
			e.actor = actor
		}
	}
	return e
}

// commit runs fn against the current state under the write lock and swaps the
// result in once the store accepted it.
func (l *Ledger) commit(ctx context.Context, fn transition) (Changeset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, cs, err := fn(l.state, l.env(ctx))
	if err != nil {
		return Changeset{}, err
	}
	if cs.Empty() {
		return cs, nil
	}
	if err := l.store.Commit(ctx, cs); err != nil {
		return Changeset{}, fmt.Errorf("commit ledger changes: %w", err)
	}
	l.state = next
	return cs, nil
}

// apply commits one operation, re-runs the low-stock sweep when the product set
// moved, then notifies subscribers. Subscribers must not call mutating ledger
// methods.
func (l *Ledger) apply(ctx context.Context, op string, fn transition) error {
	cs, err := l.commit(ctx, fn)
	if err != nil {
		logging.WithContext(ctx).WithError(err).WithField("op", op).Warn("ledger operation rejected")
		return err
	}

	done := []Changeset{cs}
	if cs.ProductsChanged() {
		sweep, err := l.commit(ctx, sweepTransition)
		if err != nil {
			logging.WithContext(ctx).WithError(err).Error("low stock sweep failed")
		} else {
			done = append(done, sweep)
		}
	}

	logging.WithContext(ctx).WithField("op", op).Info("ledger operation committed")
	for _, c := range done {
		publish(l.bus, op, c)
	}
	return nil
}

func sweepTransition(s State, e env) (State, Changeset, error) {
	next, cs, _ := s.sweepLowStock(e)
	return next, cs, nil
}

// AddProduct creates a catalog entry. Admin only.
func (l *Ledger) AddProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	var out models.Product
	err := l.apply(ctx, "add_product", func(s State, e env) (State, Changeset, error) {
		next, cs, p, err := s.addProduct(e, in)
		out = p
		return next, cs, err
	})
	return out, err
}

// UpdateProduct replaces the product with the same ID, keeping its creation
// time. Admin only.
func (l *Ledger) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var out models.Product
	err := l.apply(ctx, "update_product", func(s State, e env) (State, Changeset, error) {
		next, cs, updated, err := s.updateProduct(e, p)
		out = updated
		return next, cs, err
	})
	return out, err
}

// DeleteProduct removes a product once the caller confirmed by repeating its
// name (see DeletePrompt). Sales and purchases that reference it are kept.
// Admin only.
func (l *Ledger) DeleteProduct(ctx context.Context, id, confirmName string) error {
	return l.apply(ctx, "delete_product", func(s State, e env) (State, Changeset, error) {
		return s.deleteProduct(e, id, confirmName)
	})
}

// ProcessSale sells quantity units of a product at its current catalog price.
func (l *Ledger) ProcessSale(ctx context.Context, productID string, quantity int, customerName string) (models.Sale, error) {
	var out models.Sale
	err := l.apply(ctx, "process_sale", func(s State, e env) (State, Changeset, error) {
		next, cs, sale, err := s.processSale(e, productID, quantity, customerName)
		out = sale
		return next, cs, err
	})
	return out, err
}

// ProcessPurchase books incoming stock at the given unit price. Admin only.
func (l *Ledger) ProcessPurchase(ctx context.Context, productID string, quantity int, unitPrice decimal.Decimal) (models.Purchase, error) {
	var out models.Purchase
	err := l.apply(ctx, "process_purchase", func(s State, e env) (State, Changeset, error) {
		next, cs, purchase, err := s.processPurchase(e, productID, quantity, unitPrice)
		out = purchase
		return next, cs, err
	})
	return out, err
}

// SweepLowStock raises a low_stock activity for every product at or below its
// threshold that is not already flagged in the feed, and returns the new ones.
func (l *Ledger) SweepLowStock(ctx context.Context) ([]models.Activity, error) {
	var raised []models.Activity
	cs, err := l.commit(ctx, func(s State, e env) (State, Changeset, error) {
		next, cs, out := s.sweepLowStock(e)
		raised = out
		return next, cs, nil
	})
	if err != nil {
		return nil, err
	}
	publish(l.bus, "sweep_low_stock", cs)
	return raised, nil
}

// CheckDuplicate reports whether name is taken by a product other than excludeID.
func (l *Ledger) CheckDuplicate(name, excludeID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.CheckDuplicate(name, excludeID)
}

// FindByBarcode looks up the product a scanned code belongs to.
func (l *Ledger) FindByBarcode(code string) (models.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.FindByBarcode(code)
}

// Product returns one product by id.
func (l *Ledger) Product(id string) (models.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.state.productIndex(id); i >= 0 {
		return l.state.Products[i], nil
	}
	return models.Product{}, &NotFoundError{Kind: "product", ID: id}
}

// Sale returns one sale by id.
func (l *Ledger) Sale(id string) (models.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.state.Sales {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Sale{}, &NotFoundError{Kind: "sale", ID: id}
}

// Snapshot returns a copy of the current state for read-side derivations.
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

// Activities returns the recent activity feed, newest first.
func (l *Ledger) Activities() []models.Activity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone().Activities
}
