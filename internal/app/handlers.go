package app

import (
	"context"

	httpH "github.com/yungbote/materials-backend/internal/http/handlers"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	User    *httpH.UserHandler
	Catalog *httpH.CatalogHandler
	Entry   *httpH.EntryHandler
	Search  *httpH.SearchHandler
	Dataset *httpH.DatasetHandler
	Export  *httpH.ExportHandler
}

func wireHandlers(log *logger.Logger, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	var ping httpH.Pinger
	if clients.DB != nil {
		gdb := clients.DB.DB()
		ping = func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	return Handlers{
		Health:  httpH.NewHealthHandler(ping),
		Auth:    httpH.NewAuthHandler(services.Auth),
		User:    httpH.NewUserHandler(log, services.User),
		Catalog: httpH.NewCatalogHandler(log, services.Catalog),
		Entry:   httpH.NewEntryHandler(log, services.Entries),
		Search:  httpH.NewSearchHandler(log, services.Search),
		Dataset: httpH.NewDatasetHandler(log, services.Ingestion, services.Datasets, services.Export, services.Plot),
		Export:  httpH.NewExportHandler(log, services.Export, services.Report),
	}
}
