package ledger

import (
	"github.com/asaskevich/EventBus"

	"go-inventory-ledger/internal/models"
)

// Topics published on the ledger's event bus after a transition commits.
const (
	// TopicProductsChanged carries a ProductsChanged event.
	TopicProductsChanged = "ledger:products_changed"
	// TopicActivity carries each new models.Activity.
	TopicActivity = "ledger:activity"
)

// ProductsChanged tells subscribers the product set moved.
type ProductsChanged struct {
	Op         string
	ProductIDs []string
}

func productsChanged(op string, cs Changeset) ProductsChanged {
	ev := ProductsChanged{Op: op}
	for _, p := range cs.Created {
		ev.ProductIDs = append(ev.ProductIDs, p.ID)
	}
	for _, p := range cs.Updated {
		ev.ProductIDs = append(ev.ProductIDs, p.ID)
	}
	ev.ProductIDs = append(ev.ProductIDs, cs.Deleted...)
	for _, adj := range cs.Adjustments {
		ev.ProductIDs = append(ev.ProductIDs, adj.ProductID)
	}
	return ev
}

// publish runs synchronously; it must be called without holding the ledger lock
// because subscribers may call back into the ledger.
func publish(bus EventBus.Bus, op string, cs Changeset) {
	for _, a := range cs.Activities {
		bus.Publish(TopicActivity, a)
	}
	if cs.ProductsChanged() {
		bus.Publish(TopicProductsChanged, productsChanged(op, cs))
	}
}

// OnProductsChanged subscribes fn to product set changes.
func (l *Ledger) OnProductsChanged(fn func(ProductsChanged)) error {
	return l.bus.Subscribe(TopicProductsChanged, fn)
}

// OnActivity subscribes fn to every activity the ledger emits.
func (l *Ledger) OnActivity(fn func(models.Activity)) error {
	return l.bus.Subscribe(TopicActivity, fn)
}
