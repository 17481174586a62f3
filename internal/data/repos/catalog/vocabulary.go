package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// VocabularyRepo covers the small lookup tables offered by the data-entry form.
type VocabularyRepo interface {
	CreateProperty(dbc dbctx.Context, row *types.Property) error
	CreateUnit(dbc dbctx.Context, row *types.Unit) error
	CreatePhase(dbc dbctx.Context, row *types.Phase) error
	CreateTag(dbc dbctx.Context, row *types.Tag) error
	CreateSpaceGroup(dbc dbctx.Context, row *types.SpaceGroup) error

	ListProperties(dbc dbctx.Context) ([]*types.Property, error)
	ListUnits(dbc dbctx.Context) ([]*types.Unit, error)
	ListPhases(dbc dbctx.Context) ([]*types.Phase, error)
	ListTags(dbc dbctx.Context) ([]*types.Tag, error)
	ListSpaceGroups(dbc dbctx.Context) ([]*types.SpaceGroup, error)

	GetPropertyByID(dbc dbctx.Context, id uuid.UUID) (*types.Property, error)
	GetUnitByID(dbc dbctx.Context, id uuid.UUID) (*types.Unit, error)
	GetPhaseByID(dbc dbctx.Context, id uuid.UUID) (*types.Phase, error)
	GetPropertyByName(dbc dbctx.Context, name string) (*types.Property, error)
	GetUnitByLabel(dbc dbctx.Context, label string) (*types.Unit, error)
	GetPhaseByName(dbc dbctx.Context, phase string) (*types.Phase, error)

	PropertyNameExists(dbc dbctx.Context, name string) (bool, error)
	UnitLabelExists(dbc dbctx.Context, label string) (bool, error)
	TagExists(dbc dbctx.Context, tag string) (bool, error)
}

type vocabularyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return &vocabularyRepo{db: db, log: baseLog.With("repo", "VocabularyRepo")}
}

func (r *vocabularyRepo) create(dbc dbctx.Context, row any) error {
	return dbc.Resolve(r.db).Create(row).Error
}

func (r *vocabularyRepo) CreateProperty(dbc dbctx.Context, row *types.Property) error {
	return r.create(dbc, row)
}
func (r *vocabularyRepo) CreateUnit(dbc dbctx.Context, row *types.Unit) error {
	return r.create(dbc, row)
}
func (r *vocabularyRepo) CreatePhase(dbc dbctx.Context, row *types.Phase) error {
	return r.create(dbc, row)
}
func (r *vocabularyRepo) CreateTag(dbc dbctx.Context, row *types.Tag) error {
	return r.create(dbc, row)
}
func (r *vocabularyRepo) CreateSpaceGroup(dbc dbctx.Context, row *types.SpaceGroup) error {
	return r.create(dbc, row)
}

func (r *vocabularyRepo) ListProperties(dbc dbctx.Context) ([]*types.Property, error) {
	var out []*types.Property
	if err := dbc.Resolve(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vocabularyRepo) ListUnits(dbc dbctx.Context) ([]*types.Unit, error) {
	var out []*types.Unit
	if err := dbc.Resolve(r.db).Order("label ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vocabularyRepo) ListPhases(dbc dbctx.Context) ([]*types.Phase, error) {
	var out []*types.Phase
	if err := dbc.Resolve(r.db).Order("phase ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vocabularyRepo) ListTags(dbc dbctx.Context) ([]*types.Tag, error) {
	var out []*types.Tag
	if err := dbc.Resolve(r.db).Order("tag ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vocabularyRepo) ListSpaceGroups(dbc dbctx.Context) ([]*types.SpaceGroup, error) {
	var out []*types.SpaceGroup
	if err := dbc.Resolve(r.db).Order("value ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// first returns the first row matched by q, or nil when there is none.
func first[T any](q *gorm.DB) (*T, error) {
	var out []*T
	if err := q.Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *vocabularyRepo) GetPropertyByID(dbc dbctx.Context, id uuid.UUID) (*types.Property, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first[types.Property](dbc.Resolve(r.db).Where("id = ?", id))
}

func (r *vocabularyRepo) GetUnitByID(dbc dbctx.Context, id uuid.UUID) (*types.Unit, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first[types.Unit](dbc.Resolve(r.db).Where("id = ?", id))
}

func (r *vocabularyRepo) GetPhaseByID(dbc dbctx.Context, id uuid.UUID) (*types.Phase, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first[types.Phase](dbc.Resolve(r.db).Where("id = ?", id))
}

func (r *vocabularyRepo) GetPropertyByName(dbc dbctx.Context, name string) (*types.Property, error) {
	return first[types.Property](dbc.Resolve(r.db).Where("name = ?", name))
}

func (r *vocabularyRepo) GetUnitByLabel(dbc dbctx.Context, label string) (*types.Unit, error) {
	return first[types.Unit](dbc.Resolve(r.db).Where("label = ?", label))
}

func (r *vocabularyRepo) GetPhaseByName(dbc dbctx.Context, phase string) (*types.Phase, error) {
	return first[types.Phase](dbc.Resolve(r.db).Where(iexact("phase"), norm(phase)))
}

func (r *vocabularyRepo) exists(dbc dbctx.Context, model any, column, value string) (bool, error) {
	var count int64
	if err := dbc.Resolve(r.db).
		Model(model).
		Where(iexact(column), norm(value)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *vocabularyRepo) PropertyNameExists(dbc dbctx.Context, name string) (bool, error) {
	return r.exists(dbc, &types.Property{}, "name", name)
}

func (r *vocabularyRepo) UnitLabelExists(dbc dbctx.Context, label string) (bool, error) {
	return r.exists(dbc, &types.Unit{}, "label", label)
}

func (r *vocabularyRepo) TagExists(dbc dbctx.Context, tag string) (bool, error) {
	return r.exists(dbc, &types.Tag{}, "tag", tag)
}
