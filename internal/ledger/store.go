package ledger

import (
	"context"
	"slices"

	"go-inventory-ledger/internal/models"
)

// Store persists ledger state. Commit must apply the whole Changeset or nothing.
type Store interface {
	Load(ctx context.Context) (State, error)
	Commit(ctx context.Context, cs Changeset) error
}

// StockAdjustment moves a product's stock by Delta. Stores must refuse an
// adjustment that would leave the stock negative.
type StockAdjustment struct {
	ProductID string
	Delta     int
}

// Changeset is the store-side description of one ledger transition.
type Changeset struct {
	Created     []models.Product
	Updated     []models.Product
	Deleted     []string
	Adjustments []StockAdjustment
	Sales       []models.Sale
	Purchases   []models.Purchase
	Activities  []models.Activity
	// Evicted lists activity ids that fell out of the feed window.
	Evicted []string
}

// ProductsChanged reports whether the product set was touched.
func (cs Changeset) ProductsChanged() bool {
	return len(cs.Created) > 0 || len(cs.Updated) > 0 || len(cs.Deleted) > 0 || len(cs.Adjustments) > 0
}

// Empty reports whether there is nothing to commit.
func (cs Changeset) Empty() bool {
	return !cs.ProductsChanged() && len(cs.Sales) == 0 && len(cs.Purchases) == 0 &&
		len(cs.Activities) == 0 && len(cs.Evicted) == 0
}

// addActivity records a new activity and the ids it pushed out of the window.
// An activity both created and evicted within the same changeset is never
// written.
func (cs *Changeset) addActivity(a models.Activity, evicted []models.Activity) {
	cs.Activities = append(cs.Activities, a)
	for _, e := range evicted {
		if i := slices.IndexFunc(cs.Activities, func(p models.Activity) bool { return p.ID == e.ID }); i >= 0 {
			cs.Activities = slices.Delete(cs.Activities, i, i+1)
			continue
		}
		cs.Evicted = append(cs.Evicted, e.ID)
	}
}
