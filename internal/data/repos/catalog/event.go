package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(dbc dbctx.Context, rows []*types.CatalogEvent) ([]*types.CatalogEvent, error)
	ListBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.CatalogEvent, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.CatalogEvent, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) Create(dbc dbctx.Context, rows []*types.CatalogEvent) ([]*types.CatalogEvent, error) {
	if len(rows) == 0 {
		return []*types.CatalogEvent{}, nil
	}
	if err := dbc.Resolve(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *eventRepo) ListBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.CatalogEvent, error) {
	var out []*types.CatalogEvent
	if subjectID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Where("subject_id = ?", subjectID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.CatalogEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []*types.CatalogEvent
	if err := dbc.Resolve(r.db).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
