package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
	catalogrepo "github.com/greenmandi/storefront/internal/catalog/repository"
	"github.com/greenmandi/storefront/internal/catalog/store"
	"github.com/greenmandi/storefront/internal/imageoverride/domain"
	"github.com/greenmandi/storefront/internal/imageoverride/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeObjects struct {
	blobs   map[string]string
	baseURL string
	putErr  error
}

func (f *fakeObjects) Put(_ context.Context, key, _ string, blob io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(blob)
	if err != nil {
		return "", err
	}
	f.blobs[key] = string(data)
	return f.baseURL + "/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeObjects) {
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
	db.Exec(`CREATE TABLE IF NOT EXISTS image_overrides (
		product_id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		object_key TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)

	now := time.Now().UTC()
	require.NoError(t, catalogrepo.Provide().Create(context.Background(), db, &catalogdomain.Product{
		ID:        "tomato",
		Name:      datatypes.JSONMap{"en": "Tomato"},
		Price:     40,
		Image:     "/img/tomato.jpg",
		Category:  "vegetables",
		InStock:   true,
		Unit:      "kg",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	catalog := store.New(store.Params{
		DB:   db,
		Log:  zaptest.NewLogger(t),
		Repo: catalogrepo.Provide(),
	})
	require.NoError(t, catalog.Initialize(context.Background()))

	objects := &fakeObjects{blobs: make(map[string]string), baseURL: "/media"}
	svc := New(Params{
		DB:      db,
		Log:     zaptest.NewLogger(t),
		Repo:    repository.Provide(),
		Objects: objects,
		Catalog: catalog,
	})
	require.NoError(t, svc.Initialize(context.Background()))
	return svc, objects
}

func TestResolveFallsBackWithoutOverride(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, "/img/tomato.jpg", svc.Resolve("tomato", "/img/tomato.jpg"))
	assert.Equal(t, "/img/unknown.jpg", svc.Resolve("no-such-product", "/img/unknown.jpg"))
}

func TestUploadThenResolve(t *testing.T) {
	svc, objects := newTestService(t)
	ctx := context.Background()

	override, err := svc.Upload(ctx, "tomato", "image/jpeg", strings.NewReader("blob"))
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, override.URL, svc.Resolve("tomato", "/img/tomato.jpg"))
	assert.Len(t, objects.blobs, 1)
}

func TestUploadReplacesPriorOverride(t *testing.T) {
	svc, objects := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "tomato", "image/jpeg", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "tomato", "image/png", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.URL, second.URL)
	assert.Equal(t, second.URL, svc.Resolve("tomato", "/img/tomato.jpg"))
	assert.Len(t, objects.blobs, 1, "replaced blob reclaimed")
}

func TestFailedUploadLeavesOverrideUnchanged(t *testing.T) {
	svc, objects := newTestService(t)
	ctx := context.Background()

	override, err := svc.Upload(ctx, "tomato", "image/jpeg", strings.NewReader("blob"))
	require.NoError(t, err)

	objects.putErr = errors.New("storage quota exceeded")
	_, err = svc.Upload(ctx, "tomato", "image/jpeg", strings.NewReader("blob2"))
	require.Error(t, err)

	assert.Equal(t, override.URL, svc.Resolve("tomato", "/img/tomato.jpg"))
}

func TestUploadUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upload(context.Background(), "no-such-product", "image/jpeg", strings.NewReader("blob"))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRemoveClearsOverride(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "tomato", "image/jpeg", strings.NewReader("blob"))
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "tomato"))
	assert.Equal(t, "/img/tomato.jpg", svc.Resolve("tomato", "/img/tomato.jpg"))

	// Removing again is a no-op.
	require.NoError(t, svc.Remove(ctx, "tomato"))
}

func TestUnsupportedContentType(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upload(context.Background(), "tomato", "text/plain", strings.NewReader("blob"))
	assert.Error(t, err)
}
