package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/greenmandi/storefront/internal/analytics"
	"github.com/greenmandi/storefront/internal/bulkedit"
	"github.com/greenmandi/storefront/internal/catalog"
	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
	catalogstore "github.com/greenmandi/storefront/internal/catalog/store"
	"github.com/greenmandi/storefront/internal/config"
	"github.com/greenmandi/storefront/internal/customer"
	customerdomain "github.com/greenmandi/storefront/internal/customer/domain"
	"github.com/greenmandi/storefront/internal/farmer"
	farmerdomain "github.com/greenmandi/storefront/internal/farmer/domain"
	"github.com/greenmandi/storefront/internal/imageoverride"
	imagedomain "github.com/greenmandi/storefront/internal/imageoverride/domain"
	"github.com/greenmandi/storefront/internal/migration"
	"github.com/greenmandi/storefront/internal/mirror"
	obsmetrics "github.com/greenmandi/storefront/internal/observability/metrics"
	obstracing "github.com/greenmandi/storefront/internal/observability/tracing"
	"github.com/greenmandi/storefront/internal/order"
	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
	"github.com/greenmandi/storefront/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	migration.Module,
	catalog.Module,
	imageoverride.Module,
	order.Module,
	customer.Module,
	farmer.Module,
	bulkedit.Module,
	analytics.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(obstracing.GinMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	return r
}

func registerGin(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	runtime       *config.StorefrontConfigHolder
	catalogSvc    catalogdomain.Service
	catalogStore  *catalogstore.Store
	imageSvc      imagedomain.Service
	orderSvc      orderdomain.Service
	orderTopic    *mirror.Topic[orderdomain.Order]
	customerSvc   customerdomain.Service
	farmerSvc     farmerdomain.Service
	bulkSessions  *bulkedit.SessionManager
	analyticsSvc  *analytics.Service
	uploadLimiter *ratelimit.UploadLimiter
	metrics       *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Runtime       *config.StorefrontConfigHolder
	CatalogSvc    catalogdomain.Service
	CatalogStore  *catalogstore.Store
	ImageSvc      imagedomain.Service
	OrderSvc      orderdomain.Service
	OrderTopic    *mirror.Topic[orderdomain.Order]
	CustomerSvc   customerdomain.Service
	FarmerSvc     farmerdomain.Service
	BulkSessions  *bulkedit.SessionManager
	AnalyticsSvc  *analytics.Service
	UploadLimiter *ratelimit.UploadLimiter `optional:"true"`
	Metrics       *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		runtime:       p.Runtime,
		catalogSvc:    p.CatalogSvc,
		catalogStore:  p.CatalogStore,
		imageSvc:      p.ImageSvc,
		orderSvc:      p.OrderSvc,
		orderTopic:    p.OrderTopic,
		customerSvc:   p.CustomerSvc,
		farmerSvc:     p.FarmerSvc,
		bulkSessions:  p.BulkSessions,
		analyticsSvc:  p.AnalyticsSvc,
		uploadLimiter: p.UploadLimiter,
		metrics:       p.Metrics,
	}

	svc.registerStoreRoutes()
	svc.registerAdminRoutes()
	svc.registerMediaRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerStoreRoutes() {
	api := s.engine.Group("/api")

	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.GET("/categories", s.ListCategories)

	api.GET("/farmers", s.ListFarmers)
	api.GET("/farmers/:id", s.GetFarmerByID)

	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders/:id", s.GetOrderByID)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.GET("/orders", s.ListOrders)
	admin.PATCH("/orders/:id/status", s.UpdateOrderStatus)
	admin.GET("/orders/stream", s.StreamOrders)

	admin.GET("/customers", s.ListCustomers)
	admin.GET("/dashboard", s.DashboardSummary)

	bulk := admin.Group("/products/bulk")
	{
		bulk.GET("", s.BulkState)
		bulk.POST("/toggle", s.BulkToggle)
		bulk.POST("/select-all", s.BulkSelectAll)
		bulk.POST("/action", s.BulkChooseAction)
		bulk.POST("/cancel", s.BulkCancel)
		bulk.POST("/value", s.BulkSetValue)
		bulk.POST("/apply", s.BulkApply)
		bulk.POST("/clear", s.BulkClear)
	}
}

func (s *Server) registerMediaRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/products/:id/image", s.UploadProductImage)
	admin.DELETE("/products/:id/image", s.RemoveProductImage)

	s.engine.Static("/media", s.cfg.MediaDir)
}
