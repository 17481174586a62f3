package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	User      services.UserService
	Catalog   services.CatalogService
	Entries   services.EntryService
	Ingestion services.IngestionService
	Datasets  services.DatasetService
	Search    services.SearchService
	Export    services.ExportService
	Report    services.ReportService
	Plot      services.PlotService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")
	var clock services.Clock
	return Services{
		Auth: services.NewAuthService(
			db,
			log,
			repos.User,
			repos.UserToken,
			cfg.JWTSecretKey,
			cfg.AccessTokenTTL,
			cfg.RefreshTokenTTL,
		),
		User: services.NewUserService(db, log, repos.User),
		Catalog: services.NewCatalogService(
			db,
			log,
			repos.System,
			repos.Publication,
			repos.Author,
			repos.Vocabulary,
			repos.Event,
			clients.Vocabulary,
			clock,
		),
		Entries: services.NewEntryService(
			db,
			log,
			repos.System,
			repos.Publication,
			repos.Vocabulary,
			repos.Entry,
			repos.Event,
			clients.Store,
			clients.Bus,
			clients.Metrics,
			clock,
		),
		Ingestion: services.NewIngestionService(
			db,
			log,
			repos.System,
			repos.Publication,
			repos.Vocabulary,
			repos.Dataset,
			repos.Event,
			clients.Vocabulary,
			clients.Store,
			clients.Bus,
			clients.Metrics,
			clock,
		),
		Datasets: services.NewDatasetService(
			db,
			log,
			repos.Dataset,
			repos.Event,
			clients.Store,
			clients.Bus,
			clients.Metrics,
			clock,
		),
		Search: services.NewSearchService(log, repos.System, repos.Entry, clients.Metrics),
		Export: services.NewExportService(
			log,
			repos.System,
			repos.Entry,
			repos.Dataset,
			clients.Store,
			clients.Metrics,
			clock,
		),
		Report: services.NewReportService(log, repos.Publication, repos.Dataset, clients.Store, clients.Metrics),
		Plot:   services.NewPlotService(log, repos.Dataset, clients.PlotFace, clients.Metrics),
	}
}
