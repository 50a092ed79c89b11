package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/greenmandi/storefront/internal/catalog/domain"
	"github.com/greenmandi/storefront/internal/catalog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	db.Exec(`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		image TEXT NOT NULL,
		gallery TEXT,
		category TEXT NOT NULL,
		in_stock BOOLEAN NOT NULL DEFAULT true,
		rating REAL NOT NULL DEFAULT 0,
		reviews INTEGER NOT NULL DEFAULT 0,
		organic BOOLEAN NOT NULL DEFAULT false,
		unit TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)

	s := New(Params{
		DB:   db,
		Log:  zaptest.NewLogger(t),
		Repo: repository.Provide(),
	})
	return s, db
}

func seedProduct(t *testing.T, db *gorm.DB, id, category string, price float64, inStock bool) {
	t.Helper()
	now := time.Now().UTC()
	p := domain.Product{
		ID:        id,
		Name:      datatypes.JSONMap{"en": id},
		Price:     price,
		Image:     "/img/" + id + ".jpg",
		Category:  category,
		InStock:   inStock,
		Unit:      "kg",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repository.Provide().Create(context.Background(), db, &p))
}

func TestInitializeIsIdempotent(t *testing.T) {
	s, db := newTestStore(t)
	seedProduct(t, db, "tomato", "vegetables", 40, true)

	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	require.Len(t, s.Products(), 1)

	// An edit applied after the first load must survive a second Initialize.
	price := 55.0
	_, err := s.BulkUpdate(ctx, []string{"tomato"}, domain.Patch{Price: &price})
	require.NoError(t, err)

	require.NoError(t, s.Initialize(ctx))
	got, ok := s.Get("tomato")
	require.True(t, ok)
	assert.Equal(t, 55.0, got.Price)
	assert.Len(t, s.Products(), 1)
}

func TestBulkUpdateTargetsOnlySelection(t *testing.T) {
	s, db := newTestStore(t)
	seedProduct(t, db, "apple", "fruits", 120, true)
	seedProduct(t, db, "banana", "fruits", 50, true)
	seedProduct(t, db, "spinach", "greens", 30, true)

	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	price := 50.0
	matched, err := s.BulkUpdate(ctx, []string{"apple", "banana"}, domain.Patch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 2, matched)

	apple, _ := s.Get("apple")
	banana, _ := s.Get("banana")
	spinach, _ := s.Get("spinach")
	assert.Equal(t, 50.0, apple.Price)
	assert.Equal(t, 50.0, banana.Price)
	assert.Equal(t, 30.0, spinach.Price, "untargeted product unchanged")

	// Persisted too, not just in memory.
	var dbPrice float64
	db.Raw(`SELECT price FROM products WHERE id = ?`, "apple").Scan(&dbPrice)
	assert.Equal(t, 50.0, dbPrice)
}

func TestBulkUpdateEmptySelectionIsNoop(t *testing.T) {
	s, db := newTestStore(t)
	seedProduct(t, db, "apple", "fruits", 120, true)

	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	before := s.Products()

	price := 1.0
	matched, err := s.BulkUpdate(ctx, nil, domain.Patch{Price: &price})
	require.NoError(t, err)
	assert.Zero(t, matched)
	assert.Equal(t, before, s.Products())
}

func TestBulkUpdateLeavesUnlistedFieldsUntouched(t *testing.T) {
	s, db := newTestStore(t)
	seedProduct(t, db, "apple", "fruits", 120, true)

	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	category := "seasonal"
	_, err := s.BulkUpdate(ctx, []string{"apple"}, domain.Patch{Category: &category})
	require.NoError(t, err)

	apple, _ := s.Get("apple")
	assert.Equal(t, "seasonal", apple.Category)
	assert.Equal(t, 120.0, apple.Price)
	assert.True(t, apple.InStock)
}

func TestStockRoundTrip(t *testing.T) {
	s, db := newTestStore(t)
	seedProduct(t, db, "apple", "fruits", 120, true)
	seedProduct(t, db, "banana", "fruits", 50, true)

	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	ids := []string{"apple", "banana"}
	out := false
	_, err := s.BulkUpdate(ctx, ids, domain.Patch{InStock: &out})
	require.NoError(t, err)
	for _, id := range ids {
		p, _ := s.Get(id)
		assert.False(t, p.InStock)
	}

	in := true
	_, err = s.BulkUpdate(ctx, ids, domain.Patch{InStock: &in})
	require.NoError(t, err)
	for _, id := range ids {
		p, _ := s.Get(id)
		assert.True(t, p.InStock, "round trip restores original stock flag")
	}
}

func TestWatchDeliversFullSnapshots(t *testing.T) {
	s, db := newTestStore(t)
	seedProduct(t, db, "apple", "fruits", 120, true)

	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	sub, snapshot, ok := s.Watch()
	defer sub.Close()
	require.True(t, ok)
	require.Len(t, snapshot, 1)

	price := 99.5
	_, err := s.BulkUpdate(ctx, []string{"apple"}, domain.Patch{Price: &price})
	require.NoError(t, err)

	u := <-sub.Updates()
	require.NoError(t, u.Err)
	require.Len(t, u.Snapshot, 1)
	assert.Equal(t, 99.5, u.Snapshot[0].Price)
}

func TestCategories(t *testing.T) {
	s, db := newTestStore(t)
	seedProduct(t, db, "apple", "fruits", 120, true)
	seedProduct(t, db, "banana", "fruits", 50, true)
	seedProduct(t, db, "spinach", "greens", 30, true)

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, []string{"fruits", "greens"}, s.Categories())
}
