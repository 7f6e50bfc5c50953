package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/models"
)

// Store keeps the ledger in SQL. Every Commit runs in a single transaction.
type Store struct {
	db *gorm.DB
}

var _ ledger.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reads the catalog in creation order, sales and purchases newest first
// and the most recent activities.
func (s *Store) Load(ctx context.Context) (ledger.State, error) {
	var st ledger.State
	db := s.db.WithContext(ctx)

	if err := db.Order("created_at asc, id asc").Find(&st.Products).Error; err != nil {
		return st, fmt.Errorf("load products: %w", err)
	}
	if err := db.Order("date desc").Find(&st.Sales).Error; err != nil {
		return st, fmt.Errorf("load sales: %w", err)
	}
	if err := db.Order("date desc").Find(&st.Purchases).Error; err != nil {
		return st, fmt.Errorf("load purchases: %w", err)
	}
	if err := db.Order("seq desc, timestamp desc").Limit(ledger.FeedLimit).Find(&st.Activities).Error; err != nil {
		return st, fmt.Errorf("load activities: %w", err)
	}
	return st, nil
}

// Commit writes one ledger transition.
func (s *Store) Commit(ctx context.Context, cs ledger.Changeset) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Catalog changes
		for _, p := range cs.Created {
			if err := tx.Create(&p).Error; err != nil {
				return duplicateName(err, p.Name)
			}
		}
		for _, p := range cs.Updated {
			res := tx.Model(&p).Select("*").Omit("created_at").Updates(p)
			if res.Error != nil {
				return duplicateName(res.Error, p.Name)
			}
			if res.RowsAffected == 0 {
				return &ledger.NotFoundError{Kind: "product", ID: p.ID}
			}
		}
		for _, id := range cs.Deleted {
			res := tx.Delete(&models.Product{}, "id = ?", id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &ledger.NotFoundError{Kind: "product", ID: id}
			}
		}

		// 2. Stock moves. Lock the row to prevent race conditions
		for _, adj := range cs.Adjustments {
			var product models.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", adj.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ledger.NotFoundError{Kind: "product", ID: adj.ProductID}
			}
			if err != nil {
				return err
			}
			next := product.Stock + adj.Delta
			if next < 0 {
				return &ledger.InsufficientStockError{ProductName: product.Name, Requested: -adj.Delta, Available: product.Stock}
			}
			if err := tx.Model(&product).Update("stock", next).Error; err != nil {
				return err
			}
		}

		// 3. Ledger entries
		if len(cs.Sales) > 0 {
			if err := tx.Create(&cs.Sales).Error; err != nil {
				return err
			}
		}
		if len(cs.Purchases) > 0 {
			if err := tx.Create(&cs.Purchases).Error; err != nil {
				return err
			}
		}

		// 4. Activity feed
		if len(cs.Activities) > 0 {
			if err := tx.Create(&cs.Activities).Error; err != nil {
				return err
			}
		}
		if len(cs.Evicted) > 0 {
			if err := tx.Delete(&models.Activity{}, "id IN ?", cs.Evicted).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store commit: %w", err)
	}
	return nil
}

// duplicateName reports a unique index hit on products as the ledger's
// duplicate error; another writer won the race for the name.
func duplicateName(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ledger.DuplicateNameError{Name: name}
	}
	return err
}
