// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"paybatch/internal/domain/auth"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/contact"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/http/v1/handlers"
	"paybatch/internal/infrastructure/http/v1/middleware"
	"paybatch/pkg/logger"
)

// RouterConfig holds everything the router wires into handlers.
type RouterConfig struct {
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	// DB is pinged by the readiness probe; nil skips the check.
	DB      handlers.Pinger
	Driver  string
	Version string

	Allocator  *checkrange.Allocator
	Ledger     *ledger.Service
	Batches    *batch.Service
	References *reference.Service
	Contacts   *contact.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Recovery must wrap everything; ErrorHandler must see handler errors.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	health := handlers.NewHealthHandler(cfg.DB, cfg.Driver, cfg.Version)
	hg := router.Group("/health")
	{
		hg.GET("/live", health.Live)
		hg.GET("/ready", health.Ready)
		hg.GET("/info", health.Info)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))

	base := handlers.NewBaseHandler()
	anyRole := middleware.RequireRole(auth.RoleOperator, auth.RoleAdmin)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	registerRangeRoutes(api.Group("/ranges"), handlers.NewRangeHandler(base, cfg.Allocator), anyRole, adminOnly)
	registerCheckRoutes(api.Group("/checks"), handlers.NewCheckHandler(base, cfg.Ledger), anyRole)
	registerBatchRoutes(api.Group("/batches"), handlers.NewBatchHandler(base, cfg.Batches), anyRole)
	registerReferenceRoutes(api.Group("/references"), handlers.NewReferenceHandler(base, cfg.References), anyRole, adminOnly)
	registerContactRoutes(api.Group("/contacts"), handlers.NewContactHandler(base, cfg.Contacts), anyRole)

	validate := handlers.NewValidateHandler(base)
	vg := api.Group("/validate", anyRole)
	{
		vg.POST("/tax-id", validate.TaxID)
		vg.POST("/account-code", validate.AccountCode)
	}

	return router
}

func registerRangeRoutes(g *gin.RouterGroup, h *handlers.RangeHandler, read, write gin.HandlerFunc) {
	g.GET("", read, h.List)
	g.GET("/usage/:category", read, h.Usage)
	g.GET("/:id", read, h.Get)
	g.POST("", write, h.Create)
	g.POST("/:id/activate", write, h.Activate)
	g.POST("/:id/deactivate", write, h.Deactivate)
}

func registerCheckRoutes(g *gin.RouterGroup, h *handlers.CheckHandler, rw gin.HandlerFunc) {
	g.Use(rw)
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/by-number/:category/:number", h.GetByNumber)
	g.GET("/:id", h.Get)
	g.POST("/:id/transition", h.Transition)
}

func registerBatchRoutes(g *gin.RouterGroup, h *handlers.BatchHandler, rw gin.HandlerFunc) {
	g.Use(rw)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/stats", h.Stats)
	g.GET("/:id", h.Get)
	g.POST("/:id/items", h.AddItem)
	g.DELETE("/:id/items/:itemId", h.RemoveItem)
	g.POST("/:id/finalize", h.Finalize)
	g.GET("/:id/download", h.Download)
}

func registerReferenceRoutes(g *gin.RouterGroup, h *handlers.ReferenceHandler, read, write gin.HandlerFunc) {
	g.GET("", read, h.List)
	g.GET("/next-code/:prefix", read, h.NextCode)
	g.GET("/:id", read, h.Get)
	g.POST("", write, h.Create)
	g.PUT("/:id", write, h.Update)
	g.POST("/:id/activate", write, h.Activate)
	g.POST("/:id/deactivate", write, h.Deactivate)
	g.DELETE("/:id", write, h.Delete)
}

func registerContactRoutes(g *gin.RouterGroup, h *handlers.ContactHandler, rw gin.HandlerFunc) {
	g.Use(rw)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.POST("/:id/activate", h.Activate)
	g.POST("/:id/deactivate", h.Deactivate)
}
