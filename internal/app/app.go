package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	httpapi "github.com/yungbote/materials-backend/internal/http"
	"github.com/yungbote/materials-backend/internal/platform/envutil"
	"github.com/yungbote/materials-backend/internal/platform/eventbus"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *httpapi.Server
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := clients.DB.DB()

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients)
	handlerset := wireHandlers(log, serviceset, clients)
	middleware := wireMiddleware(log, serviceset)
	server := httpapi.NewServer(":"+cfg.Port, log, routerConfig(log, cfg, clients.Metrics, handlerset, middleware))

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
		Server:   server,
	}, nil
}

// Run serves the API, and the metrics listener when METRICS_ADDR is set,
// until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Server.Run(ctx)
	})

	if m := a.Clients.Metrics; m != nil {
		m.StartDBCollector(ctx, a.Log, a.DB)
		if rdb := eventbus.Client(a.Clients.Bus); rdb != nil {
			m.StartRedisCollector(ctx, a.Log, rdb)
		}
		if a.Cfg.MetricsAddr != "" {
			srv := &http.Server{Addr: a.Cfg.MetricsAddr, Handler: m.Handler()}
			g.Go(func() error {
				return httpapi.Serve(ctx, a.Log.With("component", "MetricsServer"), srv)
			})
		}
	}

	return g.Wait()
}

// Close releases the clients. It reports every failure, not only the first.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	err := a.Clients.Close(context.Background())
	if err != nil && a.Log != nil {
		for _, e := range multierr.Errors(err) {
			a.Log.Warn("Shutdown step failed", "error", e)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return err
}
