package database

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

var admin = models.Actor{ID: "1", Username: "admin", Role: models.RoleAdmin}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logging.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open("file::memory:"), Config("silent"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

type clock struct{ now time.Time }

func (c *clock) tick() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

func newLedger(t *testing.T, db *gorm.DB, c *clock) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(context.Background(), NewStore(db), ledger.StaticIdentity(admin), ledger.WithClock(c.tick))
	require.NoError(t, err)
	return l
}

func addProduct(t *testing.T, l *ledger.Ledger, name string, stock, minStock int) models.Product {
	t.Helper()
	price := decimal.RequireFromString("12.50")
	p, err := l.AddProduct(context.Background(), ledger.ProductInput{
		Name: name, Category: "Office", Price: &price, Stock: &stock, MinStock: &minStock, Supplier: "Paper Co",
	})
	require.NoError(t, err)
	return p
}

func TestStoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	c := &clock{now: time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	l := newLedger(t, db, c)
	paper := addProduct(t, l, "Paper", 10, 2)
	pens := addProduct(t, l, "Pens", 50, 5)
	_, err := l.ProcessSale(ctx, paper.ID, 9, "Alice")
	require.NoError(t, err)
	_, err = l.ProcessPurchase(ctx, pens.ID, 20, decimal.RequireFromString("0.75"))
	require.NoError(t, err)

	pens.Price = decimal.RequireFromString("1.10")
	_, err = l.UpdateProduct(ctx, pens)
	require.NoError(t, err)

	reloaded := newLedger(t, db, c)
	want, got := l.Snapshot(), reloaded.Snapshot()

	require.Len(t, got.Products, 2)
	assert.Equal(t, "Paper", got.Products[0].Name)
	assert.Equal(t, 1, got.Products[0].Stock)
	assert.Equal(t, 70, got.Products[1].Stock)
	assert.True(t, decimal.RequireFromString("1.10").Equal(got.Products[1].Price))
	assert.Equal(t, "pens", got.Products[1].NameKey)

	require.Len(t, got.Sales, 1)
	assert.True(t, decimal.RequireFromString("112.50").Equal(got.Sales[0].TotalAmount))
	assert.Equal(t, "Alice", got.Sales[0].CustomerName)
	require.Len(t, got.Purchases, 1)
	assert.Equal(t, "Paper Co", got.Purchases[0].Supplier)

	require.Len(t, got.Activities, len(want.Activities))
	for i := range want.Activities {
		assert.Equal(t, want.Activities[i].ID, got.Activities[i].ID)
		assert.Equal(t, want.Activities[i].Message, got.Activities[i].Message)
	}
	assert.Equal(t, models.ActivityLowStock, got.Activities[2].Type)
}

func TestStoreKeepsFeedBounded(t *testing.T) {
	db := newTestDB(t)
	l := newLedger(t, db, &clock{now: time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)})

	for i := 0; i < ledger.FeedLimit+3; i++ {
		addProduct(t, l, fmt.Sprintf("Item %02d", i), 100, 0)
	}

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	assert.EqualValues(t, ledger.FeedLimit, count)
}

func TestStoreKeepsFeedOrderForEqualTimestamps(t *testing.T) {
	db := newTestDB(t)
	at := time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	l, err := ledger.New(ctx, NewStore(db), ledger.StaticIdentity(admin), ledger.WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	for _, name := range []string{"Toner", "Staples", "Folders", "Binders"} {
		addProduct(t, l, name, 1, 5)
	}
	want := l.Activities()
	require.NotEmpty(t, want)
	for i := 1; i < len(want); i++ {
		require.Greater(t, want[i-1].Seq, want[i].Seq)
	}

	reloaded, err := ledger.New(ctx, NewStore(db), ledger.StaticIdentity(admin), ledger.WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	got := reloaded.Activities()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID, "position %d", i)
	}

	// the sequence continues from the reloaded head
	addProduct(t, reloaded, "Labels", 10, 0)
	assert.Equal(t, want[0].Seq+1, reloaded.Activities()[0].Seq)
}

func TestCommitRejectsDuplicateName(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	first := models.Product{ID: "a", Name: "Stapler", NameKey: "stapler", Price: decimal.NewFromInt(5), CreatedAt: time.Now()}
	require.NoError(t, store.Commit(ctx, ledger.Changeset{Created: []models.Product{first}}))

	// a second writer that never saw "a" in memory
	second := models.Product{ID: "b", Name: "STAPLER", NameKey: "stapler", Price: decimal.NewFromInt(5), CreatedAt: time.Now()}
	err := store.Commit(ctx, ledger.Changeset{
		Created:    []models.Product{second},
		Activities: []models.Activity{{ID: "act", Type: models.ActivityProductAdded, Message: "New product added: STAPLER", Timestamp: time.Now()}},
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateName)

	var activities int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&activities).Error)
	assert.Zero(t, activities)
}

func TestCommitRefusesNegativeStock(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	p := models.Product{ID: "a", Name: "Toner", NameKey: "toner", Price: decimal.NewFromInt(40), Stock: 2, CreatedAt: time.Now()}
	require.NoError(t, store.Commit(ctx, ledger.Changeset{Created: []models.Product{p}}))

	err := store.Commit(ctx, ledger.Changeset{
		Adjustments: []ledger.StockAdjustment{{ProductID: "a", Delta: -3}},
		Sales:       []models.Sale{{ID: "s", ProductID: "a", ProductName: "Toner", Quantity: 3, TotalAmount: decimal.NewFromInt(120), Date: time.Now()}},
	})
	var stockErr *ledger.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	var sales int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&sales).Error)
	assert.Zero(t, sales)

	err = store.Commit(ctx, ledger.Changeset{Deleted: []string{"missing"}})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSalesReport(t *testing.T) {
	db := newTestDB(t)
	c := &clock{now: time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)}
	l := newLedger(t, db, c)
	ctx := context.Background()

	p := addProduct(t, l, "Folder", 100, 0)
	_, err := l.ProcessSale(ctx, p.ID, 2, "Bob")
	require.NoError(t, err)
	c.now = c.now.AddDate(0, 0, 3)
	_, err = l.ProcessSale(ctx, p.ID, 4, "Carol")
	require.NoError(t, err)

	reporter := NewReporter(db)
	all, err := reporter.SalesReport(ctx, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)
	assert.EqualValues(t, 6, all.UnitsSold)
	assert.True(t, decimal.RequireFromString("75").Equal(all.TotalRevenue), all.TotalRevenue.String())

	first, err := reporter.SalesReport(ctx, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.TotalCount)

	none, err := reporter.SalesReport(ctx, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, none.TotalCount)
	assert.True(t, none.TotalRevenue.IsZero())
}
