// Package v1 provides HTTP API version 1.
package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"bizbooks/internal/domain/analytics"
	"bizbooks/internal/domain/auth"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/inventory"
	"bizbooks/internal/domain/journal"
	"bizbooks/internal/domain/reports"
	"bizbooks/internal/infrastructure/http/v1/handlers"
	"bizbooks/internal/infrastructure/http/v1/middleware"
	"bizbooks/internal/infrastructure/metrics"
	"bizbooks/internal/infrastructure/spreadsheet"
	"bizbooks/pkg/logger"
)

// RouterConfig holds the services the API exposes.
type RouterConfig struct {
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	DB      handlers.Pinger
	Version string

	AuthService      *auth.Service
	CatalogService   *catalog.Service
	InventoryService *inventory.Service
	JournalService   *journal.Service
	AnalyticsService *analytics.Service
	ReportService    *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	base := handlers.NewBaseHandler(cfg.Metrics)
	v1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		authenticated := middleware.Auth(cfg.AuthService)

		// Reachable while a password change is pending.
		authGroup := v1.Group("/auth")
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/change-password", authenticated, authHandler.ChangePassword)
		authGroup.GET("/me", authenticated, authHandler.Me)

		protected := v1.Group("")
		protected.Use(authenticated, middleware.RequireActive())

		registerAdminRoutes(protected, authHandler)
		registerCatalogRoutes(protected, base, cfg)
		registerInventoryRoutes(protected, base, cfg)
		registerJournalRoutes(protected, base, cfg)
		registerAnalyticsRoutes(protected, base, cfg)
	}

	return router
}

// Compress wraps h with gzip for clients that accept it. Workbooks are
// already zip-compressed and pass through untouched.
func Compress(h http.Handler) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.ExceptContentTypes([]string{spreadsheet.ContentType}),
	)
	if err != nil {
		return nil, fmt.Errorf("gzip wrapper: %w", err)
	}
	return wrap(h), nil
}

func registerAdminRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	users := rg.Group("/admin/users")
	users.Use(middleware.RequireAdmin())

	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.DELETE("/:id", h.DeleteUser)
	users.PUT("/:id/blocked", h.SetBlocked)
	users.PUT("/:id/admin", h.SetAdmin)
	users.POST("/:id/reset-password", h.ResetPassword)
	users.PUT("/:id/subscription", h.ExtendSubscription)
	users.DELETE("/:id/subscription", h.RevokeSubscription)
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(base, cfg.CatalogService)

	h.RegisterCategoryRoutes(rg.Group("/categories"), catalog.KindProduct)
	h.RegisterCategoryRoutes(rg.Group("/expense-categories"), catalog.KindExpense)

	RegisterResourceRoutes(rg.Group("/products"), ResourceRoutes{
		List:     h.ListProducts,
		LowStock: h.LowStockProducts,
		Create:   h.CreateProduct,
		Get:      h.GetProduct,
		Update:   h.UpdateProduct,
		Delete:   h.DeleteProduct,
		SetStock: h.SetProductStock,
	})
}

func registerInventoryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewInventoryHandler(base, cfg.InventoryService)

	materials := rg.Group("/materials")
	materials.POST("/bulk-delete", h.BulkDeleteMaterials)
	RegisterResourceRoutes(materials, ResourceRoutes{
		List:     h.ListMaterials,
		LowStock: h.LowStockMaterials,
		Create:   h.CreateMaterial,
		Get:      h.GetMaterial,
		Update:   h.UpdateMaterial,
		Delete:   h.DeleteMaterial,
		SetStock: h.OverrideStock,
	})
	materials.GET("/:id/purchases", h.ListMaterialPurchases)
	materials.POST("/:id/purchases", h.PostPurchase)

	rg.GET("/purchases", h.ListPurchases)
	rg.POST("/sales", h.PostSale)
	rg.DELETE("/sales/:id", h.ReverseSale)
}

func registerJournalRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewJournalHandler(base, cfg.JournalService)

	rg.GET("/sales", h.ListSales)
	rg.GET("/expenses", h.ListExpenses)
	rg.POST("/expenses", h.RecordExpense)
	rg.DELETE("/expenses/:id", h.DeleteExpense)

	imports := rg.Group("/import")
	imports.POST("/sales", h.ImportSales)
	imports.POST("/expenses", h.ImportExpenses)
}

func registerAnalyticsRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	a := handlers.NewAnalyticsHandler(base, cfg.AnalyticsService)
	rg.GET("/analytics/dashboard", a.Dashboard)
	rg.GET("/analytics/compare", a.Compare)

	r := handlers.NewReportsHandler(base, cfg.ReportService)
	rg.GET("/reports/workbook", r.Workbook)
}
