package db

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// NewSQLiteService opens a sqlite database at path. An empty path or ":memory:"
// opens a private in-memory database.
func NewSQLiteService(logg *logger.Logger, path string) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")
	db, err := OpenSQLite(path, gormConfig())
	if err != nil {
		return nil, err
	}
	serviceLog.Info("opened", "path", path)
	return &Service{db: db, log: serviceLog, driver: "sqlite"}, nil
}

func OpenSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	dsn := path
	if path == "" || path == ":memory:" {
		// Named shared-cache db: every pooled connection sees the same data,
		// and no two callers share one.
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	return db, nil
}
