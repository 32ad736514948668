package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pantrysense/pantrysense/internal/analytics"
	analyticsdomain "github.com/pantrysense/pantrysense/internal/analytics/domain"
	"github.com/pantrysense/pantrysense/internal/bonnyclient"
	"github.com/pantrysense/pantrysense/internal/cache"
	"github.com/pantrysense/pantrysense/internal/config"
	"github.com/pantrysense/pantrysense/internal/forecast"
	forecastdomain "github.com/pantrysense/pantrysense/internal/forecast/domain"
	"github.com/pantrysense/pantrysense/internal/observability"
	obsmiddleware "github.com/pantrysense/pantrysense/internal/observability/logger"
	obstracing "github.com/pantrysense/pantrysense/internal/observability/tracing"
	"github.com/pantrysense/pantrysense/internal/product"
	productdomain "github.com/pantrysense/pantrysense/internal/product/domain"
	"github.com/pantrysense/pantrysense/internal/receipt"
	receiptsync "github.com/pantrysense/pantrysense/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	cache.Module,
	bonnyclient.Module,
	receipt.Module,
	receiptsync.Module,
	analytics.Module,
	forecast.Module,
	product.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine       *gin.Engine
	cfg          config.Config
	retail       *bonnyclient.Client
	syncSvc      *receiptsync.Service
	analyticsSvc analyticsdomain.Service
	forecastSvc  forecastdomain.Service
	productSvc   productdomain.Service
	locker       *cache.Locker
	respCache    *cache.ResponseCache
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Retail       *bonnyclient.Client
	SyncSvc      *receiptsync.Service
	AnalyticsSvc analyticsdomain.Service
	ForecastSvc  forecastdomain.Service
	ProductSvc   productdomain.Service
	Locker       *cache.Locker         `optional:"true"`
	RespCache    *cache.ResponseCache  `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		retail:       p.Retail,
		syncSvc:      p.SyncSvc,
		analyticsSvc: p.AnalyticsSvc,
		forecastSvc:  p.ForecastSvc,
		productSvc:   p.ProductSvc,
		locker:       p.Locker,
		respCache:    p.RespCache,
	}

	svc.registerReceiptRoutes()
	svc.registerSyncRoutes()
	svc.registerAnalyticsRoutes()
	svc.registerProductRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerReceiptRoutes() {
	receipts := s.engine.Group("/receipts")

	receipts.POST("/auth", s.Authenticate)
	receipts.DELETE("/auth", s.Logout)
	receipts.GET("/auth/status", s.AuthStatus)

	receipts.GET("", s.ListRemoteReceipts)
	receipts.GET("/:id", s.GetRemoteReceipt)
	receipts.GET("/:id/pdf", s.GetRemoteReceiptPDF)
}

func (s *Server) registerSyncRoutes() {
	s.engine.POST("/sync", s.RunSync)
}

func (s *Server) registerAnalyticsRoutes() {
	analytics := s.engine.Group("/analytics")

	analytics.GET("/summary", s.GetSummary)
	analytics.GET("/spending/over-time", s.GetSpendingOverTime)
	analytics.GET("/stores", s.GetStoreAnalytics)
	analytics.GET("/products", s.GetProductAnalytics)
	analytics.GET("/products/search", s.SearchProductAnalytics)
	analytics.GET("/savings", s.GetSavingsAnalytics)
	analytics.GET("/receipts", s.GetReceiptsList)
	analytics.GET("/receipts/:id", s.GetReceiptDetail)

	recommendations := analytics.Group("/recommendations")
	recommendations.GET("/patterns", s.GetConsumptionPatterns)
	recommendations.GET("/shopping-list", s.GetShoppingList)
	recommendations.GET("/product/:name", s.GetProductConsumptionDetail)
}

func (s *Server) registerProductRoutes() {
	products := s.engine.Group("/products")

	// Fixed segments before the :id wildcard.
	products.GET("/search", s.SearchCatalog)
	products.GET("/batch", s.GetProductsBatch)
	products.GET("/cache/stats", s.GetProductCacheStats)
	products.DELETE("/cache/expired", s.PurgeProductCache)

	products.GET("/webshop/:id", s.GetProductByWebshopID)
	products.GET("/barcode/:code", s.GetProductByBarcode)
	products.GET("/:id", s.GetProduct)
}
