package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/pkg/rangeparse"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// EntryIDs holds the first entry of each kind for one system; uuid.Nil when absent.
type EntryIDs struct {
	Synthesis       uuid.UUID
	AtomicPositions uuid.UUID
	BandStructure   uuid.UUID
}

// EntryRepo serves the legacy per-kind entry tables.
type EntryRepo interface {
	Create(dbc dbctx.Context, row any) error
	// Update rewrites a loaded entry row. Its id and creation stamp are kept.
	Update(dbc dbctx.Context, row any) error

	GetAtomicPositions(dbc dbctx.Context, id uuid.UUID) (*types.AtomicPositions, error)
	GetExcitonEmission(dbc dbctx.Context, id uuid.UUID) (*types.ExcitonEmission, error)
	GetSynthesis(dbc dbctx.Context, id uuid.UUID) (*types.SynthesisMethodOld, error)
	GetBandStructure(dbc dbctx.Context, id uuid.UUID) (*types.BandStructure, error)
	GetMaterialProperty(dbc dbctx.Context, id uuid.UUID) (*types.MaterialProperty, error)

	ListAtomicPositions(dbc dbctx.Context, systemID uuid.UUID) ([]*types.AtomicPositions, error)
	ListExcitonEmission(dbc dbctx.Context, systemID uuid.UUID) ([]*types.ExcitonEmission, error)
	ListSynthesis(dbc dbctx.Context, systemID uuid.UUID) ([]*types.SynthesisMethodOld, error)
	ListBandStructures(dbc dbctx.Context, systemID uuid.UUID) ([]*types.BandStructure, error)
	ListMaterialProperties(dbc dbctx.Context, systemID uuid.UUID) ([]*types.MaterialProperty, error)

	SetBandStructureFolder(dbc dbctx.Context, id uuid.UUID, folder string) error
	Delete(dbc dbctx.Context, kind catalog.EntryKind, id uuid.UUID) error

	// SearchExcitonEmission applies q to the peak value, highest first.
	SearchExcitonEmission(dbc dbctx.Context, q rangeparse.Query) ([]*types.ExcitonEmission, error)
	FirstIDs(dbc dbctx.Context, systemID uuid.UUID) (EntryIDs, error)
}

type entryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryRepo(db *gorm.DB, baseLog *logger.Logger) EntryRepo {
	return &entryRepo{db: db, log: baseLog.With("repo", "EntryRepo")}
}

func (r *entryRepo) Create(dbc dbctx.Context, row any) error {
	switch row.(type) {
	case *types.AtomicPositions, *types.ExcitonEmission, *types.SynthesisMethodOld,
		*types.BandStructure, *types.MaterialProperty:
	default:
		return fmt.Errorf("unsupported entry type %T", row)
	}
	return dbc.Resolve(r.db).Omit(clause.Associations).Create(row).Error
}

func (r *entryRepo) Update(dbc dbctx.Context, row any) error {
	switch row.(type) {
	case *types.AtomicPositions, *types.ExcitonEmission, *types.SynthesisMethodOld,
		*types.BandStructure, *types.MaterialProperty:
	default:
		return fmt.Errorf("unsupported entry type %T", row)
	}
	res := dbc.Resolve(r.db).
		Model(row).
		Select("*").
		Omit("id", "created_at", "created_by_id", "System", "Publication", "Phase").
		Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func withHeader(q *gorm.DB) *gorm.DB {
	return q.Preload("System").
		Preload("Phase").
		Preload("Publication").
		Preload("Publication.Authors", func(db *gorm.DB) *gorm.DB {
			return db.Order("author.created_at ASC").Order("author.last_name ASC")
		})
}

func getEntry[T any](r *entryRepo, dbc dbctx.Context, id uuid.UUID) (*T, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first[T](withHeader(dbc.Resolve(r.db)).Where("id = ?", id))
}

func listEntries[T any](r *entryRepo, dbc dbctx.Context, systemID uuid.UUID) ([]*T, error) {
	var out []*T
	if systemID == uuid.Nil {
		return out, nil
	}
	if err := withHeader(dbc.Resolve(r.db)).
		Where("system_id = ?", systemID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entryRepo) GetAtomicPositions(dbc dbctx.Context, id uuid.UUID) (*types.AtomicPositions, error) {
	return getEntry[types.AtomicPositions](r, dbc, id)
}
func (r *entryRepo) GetExcitonEmission(dbc dbctx.Context, id uuid.UUID) (*types.ExcitonEmission, error) {
	return getEntry[types.ExcitonEmission](r, dbc, id)
}
func (r *entryRepo) GetSynthesis(dbc dbctx.Context, id uuid.UUID) (*types.SynthesisMethodOld, error) {
	return getEntry[types.SynthesisMethodOld](r, dbc, id)
}
func (r *entryRepo) GetBandStructure(dbc dbctx.Context, id uuid.UUID) (*types.BandStructure, error) {
	return getEntry[types.BandStructure](r, dbc, id)
}
func (r *entryRepo) GetMaterialProperty(dbc dbctx.Context, id uuid.UUID) (*types.MaterialProperty, error) {
	return getEntry[types.MaterialProperty](r, dbc, id)
}

func (r *entryRepo) ListAtomicPositions(dbc dbctx.Context, systemID uuid.UUID) ([]*types.AtomicPositions, error) {
	return listEntries[types.AtomicPositions](r, dbc, systemID)
}
func (r *entryRepo) ListExcitonEmission(dbc dbctx.Context, systemID uuid.UUID) ([]*types.ExcitonEmission, error) {
	return listEntries[types.ExcitonEmission](r, dbc, systemID)
}
func (r *entryRepo) ListSynthesis(dbc dbctx.Context, systemID uuid.UUID) ([]*types.SynthesisMethodOld, error) {
	return listEntries[types.SynthesisMethodOld](r, dbc, systemID)
}
func (r *entryRepo) ListBandStructures(dbc dbctx.Context, systemID uuid.UUID) ([]*types.BandStructure, error) {
	return listEntries[types.BandStructure](r, dbc, systemID)
}
func (r *entryRepo) ListMaterialProperties(dbc dbctx.Context, systemID uuid.UUID) ([]*types.MaterialProperty, error) {
	return listEntries[types.MaterialProperty](r, dbc, systemID)
}

func (r *entryRepo) SetBandStructureFolder(dbc dbctx.Context, id uuid.UUID, folder string) error {
	return dbc.Resolve(r.db).
		Model(&types.BandStructure{}).
		Where("id = ?", id).
		Update("folder_location", folder).Error
}

func (r *entryRepo) Delete(dbc dbctx.Context, kind catalog.EntryKind, id uuid.UUID) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown entry kind %q", kind)
	}
	res := dbc.Resolve(r.db).Exec("DELETE FROM "+kind.Table()+" WHERE id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entryRepo) SearchExcitonEmission(dbc dbctx.Context, q rangeparse.Query) ([]*types.ExcitonEmission, error) {
	tx := dbc.Resolve(r.db).Preload("System")
	for _, b := range q.Bounds() {
		tx = tx.Where("exciton_emission "+string(b.Op)+" ?", b.Value)
	}
	var out []*types.ExcitonEmission
	if err := tx.Order("exciton_emission DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *entryRepo) FirstIDs(dbc dbctx.Context, systemID uuid.UUID) (EntryIDs, error) {
	var ids EntryIDs
	targets := []struct {
		table string
		dest  *uuid.UUID
	}{
		{catalog.EntrySynthesis.Table(), &ids.Synthesis},
		{catalog.EntryAtomicPositions.Table(), &ids.AtomicPositions},
		{catalog.EntryBandStructure.Table(), &ids.BandStructure},
	}
	for _, tgt := range targets {
		var found []uuid.UUID
		if err := dbc.Resolve(r.db).
			Table(tgt.table).
			Where("system_id = ?", systemID).
			Order("created_at ASC").
			Limit(1).
			Pluck("id", &found).Error; err != nil {
			return EntryIDs{}, err
		}
		if len(found) > 0 {
			*tgt.dest = found[0]
		}
	}
	return ids, nil
}
