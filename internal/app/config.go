package app

import (
	"strings"
	"time"

	"github.com/yungbote/materials-backend/internal/data/db"
	"github.com/yungbote/materials-backend/internal/platform/envutil"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	serviceName = "materials-backend"
)

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	DBDriver   string
	Postgres   db.PostgresConfig
	SQLitePath string

	FileStore filestore.Config

	RedisAddr    string
	RedisChannel string

	MetricsEnabled bool
	MetricsAddr    string

	OtelEnabled  bool
	OtelEndpoint string

	CORSOrigins    []string
	MaxBodyBytes   int64
	VocabularyYAML string
	PlotFont       string
	PlotFontSize   float64
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "defaultsecret")
	if jwtSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		LogMode:         envutil.String("LOG_MODE", "development"),
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour),
		DBDriver:        strings.ToLower(envutil.String("DB_DRIVER", DriverPostgres)),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "materials"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		SQLitePath:     envutil.String("SQLITE_PATH", "materials.db"),
		FileStore:      filestore.ConfigFromEnv(),
		RedisAddr:      envutil.String("REDIS_ADDR", ""),
		RedisChannel:   envutil.String("REDIS_CHANNEL", "materials.catalog"),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ""),
		OtelEnabled:    envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:   envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CORSOrigins:    splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		MaxBodyBytes:   int64(envutil.Int("MAX_UPLOAD_MB", 64)) << 20,
		VocabularyYAML: envutil.String("CATALOG_VOCABULARY_YAML", ""),
		PlotFont:       envutil.String("PLOT_FONT", ""),
		PlotFontSize:   float64(envutil.Int("PLOT_FONT_SIZE", 12)),
	}
	log.Info(
		"Configuration loaded",
		"port", cfg.Port,
		"db_driver", cfg.DBDriver,
		"file_store_mode", cfg.FileStore.Mode,
		"redis", cfg.RedisAddr != "",
		"metrics", cfg.MetricsEnabled,
		"otel", cfg.OtelEnabled,
	)
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
