package app

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/image/font"

	"github.com/yungbote/materials-backend/internal/catalog/vocabulary"
	"github.com/yungbote/materials-backend/internal/data/db"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/eventbus"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

type Clients struct {
	DB           *db.Service
	Store        filestore.FileStore
	Bus          eventbus.Bus
	Metrics      *observability.Metrics
	Vocabulary   *vocabulary.Vocabulary
	PlotFace     font.Face
	otelShutdown func(context.Context) error
}

// openDB connects the configured driver and migrates the schema.
func openDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	var (
		svc *db.Service
		err error
	)
	switch cfg.DBDriver {
	case DriverPostgres:
		svc, err = db.NewPostgresService(log, cfg.Postgres)
	case DriverSQLite:
		svc, err = db.NewSQLiteService(log, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (c Clients, err error) {
	log.Info("Wiring clients...")
	defer func() {
		if err != nil {
			err = multierr.Append(err, c.Close(context.Background()))
		}
	}()

	// Tracing
	otelCfg := observability.OtelConfigFromEnv(serviceName, cfg.LogMode)
	otelCfg.Enabled = cfg.OtelEnabled
	otelCfg.Endpoint = cfg.OtelEndpoint
	c.otelShutdown = observability.InitOTel(ctx, log, otelCfg)

	// Metrics
	c.Metrics = observability.Init(log)

	// Database
	if c.DB, err = openDB(log, cfg); err != nil {
		return c, fmt.Errorf("init database: %w", err)
	}

	// File store
	if c.Store, err = resolveFileStore(ctx, log, cfg.FileStore); err != nil {
		return c, err
	}

	// Redis
	c.Bus = eventbus.NewNop()
	if cfg.RedisAddr != "" {
		if c.Bus, err = eventbus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel); err != nil {
			return c, fmt.Errorf("init redis event bus: %w", err)
		}
	}

	// Vocabulary
	if c.Vocabulary, err = vocabulary.Load(cfg.VocabularyYAML); err != nil {
		return c, fmt.Errorf("load vocabulary: %w", err)
	}

	// Plot font
	if cfg.PlotFont != "" {
		face, ferr := services.LoadPlotFont(cfg.PlotFont, cfg.PlotFontSize)
		if ferr != nil {
			log.Warn("Plot font unavailable, using the built-in face", "path", cfg.PlotFont, "error", ferr)
		} else {
			c.PlotFace = face
		}
	}
	return c, nil
}

// Close releases every client that was opened. All failures are reported.
func (c Clients) Close(ctx context.Context) error {
	var err error
	if c.Bus != nil {
		err = multierr.Append(err, c.Bus.Close())
	}
	if c.DB != nil {
		err = multierr.Append(err, c.DB.Close())
	}
	if c.otelShutdown != nil {
		err = multierr.Append(err, c.otelShutdown(ctx))
	}
	return err
}
