package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/greenmandi/storefront/internal/analytics"
	"github.com/greenmandi/storefront/internal/bulkedit"
	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
	catalogrepository "github.com/greenmandi/storefront/internal/catalog/repository"
	catalogservice "github.com/greenmandi/storefront/internal/catalog/service"
	catalogstore "github.com/greenmandi/storefront/internal/catalog/store"
	"github.com/greenmandi/storefront/internal/config"
	customerdomain "github.com/greenmandi/storefront/internal/customer/domain"
	customerrepository "github.com/greenmandi/storefront/internal/customer/repository"
	customerservice "github.com/greenmandi/storefront/internal/customer/service"
	farmerdomain "github.com/greenmandi/storefront/internal/farmer/domain"
	farmerrepository "github.com/greenmandi/storefront/internal/farmer/repository"
	farmerservice "github.com/greenmandi/storefront/internal/farmer/service"
	imagedomain "github.com/greenmandi/storefront/internal/imageoverride/domain"
	imagerepository "github.com/greenmandi/storefront/internal/imageoverride/repository"
	imageservice "github.com/greenmandi/storefront/internal/imageoverride/service"
	"github.com/greenmandi/storefront/internal/mirror"
	obsmetrics "github.com/greenmandi/storefront/internal/observability/metrics"
	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
	orderrepository "github.com/greenmandi/storefront/internal/order/repository"
	orderservice "github.com/greenmandi/storefront/internal/order/service"
)

type testObjects struct{}

func (testObjects) Put(_ context.Context, key, _ string, _ io.Reader) (string, error) {
	return "/media/" + key, nil
}

func (testObjects) Delete(_ context.Context, _ string) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&orderdomain.Order{},
		&customerdomain.Customer{},
		&farmerdomain.Farmer{},
		&imagedomain.Override{},
	))

	log := zaptest.NewLogger(t)
	runtime := &config.StorefrontConfigHolder{}
	cfg := config.Config{
		HTTPAddr:           ":0",
		MediaDir:           t.TempDir(),
		MediaPublicBaseURL: "/media",
	}

	catalogRepo := catalogrepository.Provide()
	now := time.Now().UTC()
	for _, p := range []catalogdomain.Product{
		{
			ID:       "tomato",
			Name:     datatypes.JSONMap{"en": "Tomato", "hi": "टमाटर", "kn": "ಟೊಮೆಟೊ"},
			Price:    40,
			Image:    "/media/catalog/tomato.jpg",
			Category: "vegetables",
			InStock:  true,
			Unit:     "kg",
		},
		{
			ID:       "mango",
			Name:     datatypes.JSONMap{"en": "Mango", "hi": "आम", "kn": "ಮಾವಿನ ಹಣ್ಣು"},
			Price:    120,
			Image:    "/media/catalog/mango.jpg",
			Category: "fruits",
			InStock:  true,
			Organic:  true,
			Unit:     "kg",
		},
	} {
		p.CreatedAt = now
		p.UpdatedAt = now
		require.NoError(t, catalogRepo.Create(context.Background(), db, &p))
	}

	store := catalogstore.New(catalogstore.Params{DB: db, Log: log, Repo: catalogRepo})
	require.NoError(t, store.Initialize(context.Background()))

	catalogSvc := catalogservice.New(catalogservice.Params{Log: log, Store: store, Runtime: runtime})

	imageSvc := imageservice.New(imageservice.Params{
		DB:      db,
		Log:     log,
		Repo:    imagerepository.Provide(),
		Objects: testObjects{},
		Catalog: store,
	})
	require.NoError(t, imageSvc.Initialize(context.Background()))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	orderTopic := mirror.NewTopic[orderdomain.Order]()
	orderMirror := mirror.NewMirror(orderTopic)
	orderSvc := orderservice.New(orderservice.Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Repo:    orderrepository.Provide(),
		Catalog: store,
		Runtime: runtime,
		Topic:   orderTopic,
		Mirror:  orderMirror,
	})

	customerSvc := customerservice.New(customerservice.Params{
		DB:     db,
		Log:    log,
		Repo:   customerrepository.Provide(),
		Mirror: mirror.NewMirror(mirror.NewTopic[customerdomain.Customer]()),
	})
	farmerSvc := farmerservice.New(farmerservice.Params{
		DB:     db,
		Log:    log,
		Repo:   farmerrepository.Provide(),
		Mirror: mirror.NewMirror(mirror.NewTopic[farmerdomain.Farmer]()),
	})

	analyticsSvc := analytics.New(analytics.Params{Log: log, Runtime: runtime, Mirror: orderMirror})
	sessions := bulkedit.NewSessionManager(bulkedit.Params{Log: log, Store: store})
	metrics := obsmetrics.New()

	engine := NewEngine(log, metrics)
	return NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		Runtime:      runtime,
		CatalogSvc:   catalogSvc,
		CatalogStore: store,
		ImageSvc:     imageSvc,
		OrderSvc:     orderSvc,
		OrderTopic:   orderTopic,
		CustomerSvc:  customerSvc,
		FarmerSvc:    farmerSvc,
		BulkSessions: sessions,
		AnalyticsSvc: analyticsSvc,
		Metrics:      metrics,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(encoded)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAdminSession, "test-admin")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProductsWithFilters(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeData[[]catalogdomain.Response](t, rec)
	assert.Len(t, products, 2)

	rec = doJSON(t, s, http.MethodGet, "/api/products?organic=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products = decodeData[[]catalogdomain.Response](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "mango", products[0].ID)

	rec = doJSON(t, s, http.MethodGet, "/api/products?q=tom", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products = decodeData[[]catalogdomain.Response](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "tomato", products[0].ID)

	rec = doJSON(t, s, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkEditFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/admin/products/bulk/toggle", gin.H{"product_id": "tomato"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeData[bulkedit.View](t, rec)
	assert.Equal(t, bulkedit.StateSelecting, view.State)

	rec = doJSON(t, s, http.MethodPost, "/admin/products/bulk/action", gin.H{"action": "price"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/admin/products/bulk/value", gin.H{"value": "-5"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/admin/products/bulk/apply", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The invalid value stays in place for correction.
	rec = doJSON(t, s, http.MethodGet, "/admin/products/bulk", nil)
	view = decodeData[bulkedit.View](t, rec)
	assert.Equal(t, bulkedit.StateActionChosen, view.State)
	assert.Equal(t, "-5", view.Value)

	rec = doJSON(t, s, http.MethodPost, "/admin/products/bulk/value", gin.H{"value": "99.5"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/admin/products/bulk/apply", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeData[bulkedit.View](t, rec)
	assert.Equal(t, bulkedit.StateIdle, view.State)

	rec = doJSON(t, s, http.MethodGet, "/api/products/tomato", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeData[catalogdomain.Response](t, rec)
	assert.Equal(t, 99.5, product.Price)

	// The untargeted product is untouched.
	rec = doJSON(t, s, http.MethodGet, "/api/products/mango", nil)
	product = decodeData[catalogdomain.Response](t, rec)
	assert.Equal(t, 120.0, product.Price)
}

func TestBulkSelectAllUsesFilteredView(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/admin/products/bulk/select-all?category=fruits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeData[bulkedit.View](t, rec)
	assert.Equal(t, []string{"mango"}, view.Selection)

	// Repeating against the same filtered set clears the selection.
	rec = doJSON(t, s, http.MethodPost, "/admin/products/bulk/select-all?category=fruits", nil)
	view = decodeData[bulkedit.View](t, rec)
	assert.Empty(t, view.Selection)
}

func TestPlaceOrderAndStatus(t *testing.T) {
	s := newTestServer(t)

	userID := "1234567890123456789"
	rec := doJSON(t, s, http.MethodPost, "/api/orders", gin.H{
		"user_id": userID,
		"items":   []gin.H{{"product_id": "tomato", "quantity": 3}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	placed := decodeData[orderdomain.Response](t, rec)
	assert.Equal(t, orderdomain.StatusProcessing, placed.Status)
	assert.Equal(t, 120.0, placed.Total)

	rec = doJSON(t, s, http.MethodPost, "/api/orders", gin.H{
		"user_id": userID,
		"items":   []gin.H{{"product_id": "ghost", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPatch, "/admin/orders/"+placed.ID+"/status", gin.H{"status": "packed"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[orderdomain.Response](t, rec)
	assert.Equal(t, orderdomain.StatusPacked, updated.Status)

	// packed cannot jump straight to delivered.
	rec = doJSON(t, s, http.MethodPatch, "/admin/orders/"+placed.ID+"/status", gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/admin/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decodeData[[]orderdomain.Response](t, rec)
	assert.Len(t, orders, 1)
}

func TestDashboardSummary(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeData[analytics.Summary](t, rec)
	assert.Zero(t, summary.TotalRevenue)
	assert.Zero(t, summary.OrderCount)
	assert.Equal(t, 0.0, summary.AvgOrderValue)
}
