package app

import (
	"github.com/yungbote/materials-backend/internal/http"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) http.RouterConfig {
	var mediaURL, mediaRoot string
	if cfg.FileStore.Mode == filestore.ModeLocal {
		mediaURL, mediaRoot = cfg.FileStore.MediaURL, cfg.FileStore.Root
	}
	return http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		TracingEnabled: cfg.OtelEnabled,
		CORSOrigins:    cfg.CORSOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Metrics:        metrics,
		// Without a dedicated listener the registry is scraped from the API port.
		ServeMetrics:   cfg.MetricsAddr == "",
		MediaURL:       mediaURL,
		MediaRoot:      mediaRoot,
		AuthMiddleware: middleware.Auth,
		AuthHandler:    handlers.Auth,
		UserHandler:    handlers.User,
		CatalogHandler: handlers.Catalog,
		EntryHandler:   handlers.Entry,
		SearchHandler:  handlers.Search,
		DatasetHandler: handlers.Dataset,
		ExportHandler:  handlers.Export,
		HealthHandler:  handlers.Health,
	}
}
