package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/materials-backend/internal/http/handlers"
	httpMW "github.com/yungbote/materials-backend/internal/http/middleware"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

const (
	routeHealth  = "/healthcheck"
	routeMetrics = "/metrics"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string
	MaxBodyBytes   int64
	// Metrics is also served at /metrics when ServeMetrics is set.
	Metrics      *observability.Metrics
	ServeMetrics bool
	// MediaRoot is served read-only under MediaURL when the file store is local.
	MediaURL  string
	MediaRoot string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler    *httpH.AuthHandler
	UserHandler    *httpH.UserHandler
	CatalogHandler *httpH.CatalogHandler
	EntryHandler   *httpH.EntryHandler
	SearchHandler  *httpH.SearchHandler
	DatasetHandler *httpH.DatasetHandler
	ExportHandler  *httpH.ExportHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log, routeHealth, routeMetrics))
	}
	r.Use(httpMW.Metrics(cfg.Metrics, routeHealth, routeMetrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(httpMW.LimitRequestBody(cfg.MaxBodyBytes))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET(routeHealth, cfg.HealthHandler.HealthCheck)
	}
	if cfg.ServeMetrics && cfg.Metrics != nil {
		r.GET(routeMetrics, gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.MediaRoot != "" && cfg.MediaURL != "" {
		r.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		// Anonymous callers read everything. Form submissions answer them
		// with the login-required feedback.
		api.Use(cfg.AuthMiddleware.OptionalAuth())
	}
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Catalog
		if cfg.CatalogHandler != nil {
			api.GET("/systems", cfg.CatalogHandler.SearchSystems)
			api.POST("/systems", cfg.CatalogHandler.AddSystem)
			api.GET("/systems/:id", cfg.CatalogHandler.GetSystem)
			api.PUT("/systems/:id", cfg.CatalogHandler.UpdateSystem)
			api.GET("/authors", cfg.CatalogHandler.SearchAuthors)
			api.POST("/authors", cfg.CatalogHandler.AddAuthor)
			api.GET("/publications", cfg.CatalogHandler.SearchPublications)
			api.POST("/publications", cfg.CatalogHandler.AddPublication)
			api.GET("/publications/:id", cfg.CatalogHandler.GetPublication)
			api.POST("/properties", cfg.CatalogHandler.AddProperty)
			api.POST("/units", cfg.CatalogHandler.AddUnit)
			api.POST("/phases", cfg.CatalogHandler.AddPhase)
			api.POST("/tags", cfg.CatalogHandler.AddTag)
			api.GET("/form-options", cfg.CatalogHandler.FormOptions)
		}

		// Legacy entries
		if cfg.EntryHandler != nil {
			api.POST("/entries/atomic_positions", cfg.EntryHandler.AddAtomicPositions)
			api.POST("/entries/exciton_emission", cfg.EntryHandler.AddExcitonEmission)
			api.POST("/entries/synthesis", cfg.EntryHandler.AddSynthesis)
			api.POST("/entries/band_structure", cfg.EntryHandler.AddBandStructure)
			api.POST("/entries/material_prop", cfg.EntryHandler.AddMaterialProperty)
			api.GET("/systems/:id/entries/:kind", cfg.EntryHandler.ListEntries)
			api.GET("/systems/:id/overview", cfg.EntryHandler.Overview)
		}

		// Search
		if cfg.SearchHandler != nil {
			api.GET("/search", cfg.SearchHandler.Search)
			api.GET("/search/terms", cfg.SearchHandler.Terms)
		}

		// Datasets
		if cfg.DatasetHandler != nil {
			api.POST("/datasets", cfg.DatasetHandler.Submit)
			api.GET("/systems/:id/datasets", cfg.DatasetHandler.ListBySystem)
			api.GET("/datasets/:id/data.txt", cfg.DatasetHandler.Data)
			api.GET("/datasets/:id/image.png", cfg.DatasetHandler.Image)
			api.GET("/datasets/:id/files.zip", cfg.DatasetHandler.Files)
		}

		// Exports
		if cfg.ExportHandler != nil {
			api.GET("/downloads/:kind/:id", cfg.ExportHandler.EntryDownload)
			api.GET("/publications/:id/report", cfg.ExportHandler.PublicationReport)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateProfile)
		}

		if cfg.EntryHandler != nil {
			protected.PUT("/entries/:kind/:id", cfg.EntryHandler.UpdateEntry)
			protected.DELETE("/entries/:kind/:id", cfg.EntryHandler.DeleteEntry)
		}

		// Dataset admin
		if cfg.DatasetHandler != nil {
			protected.POST("/datasets/:id/toggle-visible", cfg.DatasetHandler.ToggleVisible)
			protected.POST("/datasets/:id/toggle-plotted", cfg.DatasetHandler.TogglePlotted)
			protected.DELETE("/datasets/:id", cfg.DatasetHandler.Delete)
		}
	}

	return r
}
