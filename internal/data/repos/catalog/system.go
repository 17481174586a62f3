package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// SystemField selects the column family a system search runs against.
type SystemField string

const (
	SystemFieldFormula   SystemField = "formula"
	SystemFieldOrganic   SystemField = "organic"
	SystemFieldInorganic SystemField = "inorganic"
)

type SystemRepo interface {
	Create(dbc dbctx.Context, rows []*types.System) ([]*types.System, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.System, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.System, error)
	Update(dbc dbctx.Context, row *types.System) error
	ExistsByNameOrFormula(dbc dbctx.Context, compoundName, formula string) (bool, error)

	Search(dbc dbctx.Context, text string) ([]*types.System, error)
	SearchField(dbc dbctx.Context, field SystemField, text string) ([]*types.System, error)
	SearchByAuthorLastNames(dbc dbctx.Context, keywords []string) ([]*types.System, error)
}

type systemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSystemRepo(db *gorm.DB, baseLog *logger.Logger) SystemRepo {
	return &systemRepo{db: db, log: baseLog.With("repo", "SystemRepo")}
}

func (r *systemRepo) Create(dbc dbctx.Context, rows []*types.System) ([]*types.System, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.System{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *systemRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.System, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.System
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Tags").
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *systemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.System, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *systemRepo) Update(dbc dbctx.Context, row *types.System) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return fmt.Errorf("system update requires an id")
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.System{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"compound_name": row.CompoundName,
			"formula":       row.Formula,
			"group_name":    row.Group,
			"organic":       row.Organic,
			"inorganic":     row.Inorganic,
			"description":   row.Description,
			"updated_at":    row.UpdatedAt,
			"updated_by_id": row.UpdatedByID,
		}).Error
}

func (r *systemRepo) ExistsByNameOrFormula(dbc dbctx.Context, compoundName, formula string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.System{}).
		Where(iexact("compound_name")+" OR "+iexact("formula"), norm(compoundName), norm(formula)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Search backs the system dropdown: compound name, group or formula contains text.
func (r *systemRepo) Search(dbc dbctx.Context, text string) ([]*types.System, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	pat := containsPattern(text)
	var out []*types.System
	if err := t.WithContext(dbc.Ctx).
		Where(icontains("compound_name")+" OR "+icontains("group_name")+" OR "+icontains("formula"), pat, pat, pat).
		Order("compound_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *systemRepo) SearchField(dbc dbctx.Context, field SystemField, text string) ([]*types.System, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	pat := containsPattern(text)
	q := t.WithContext(dbc.Ctx)
	switch field {
	case SystemFieldFormula:
		q = q.Where(icontains("formula")+" OR "+icontains("group_name")+" OR "+icontains("compound_name"), pat, pat, pat).
			Order("formula ASC")
	case SystemFieldOrganic:
		q = q.Where(icontains("organic"), pat).Order("organic ASC")
	case SystemFieldInorganic:
		q = q.Where(icontains("inorganic"), pat).Order("inorganic ASC")
	default:
		return nil, fmt.Errorf("unknown system search field %q", field)
	}
	var out []*types.System
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// entryTables are the legacy entry kinds whose publications are scanned by author search.
var entryTables = []string{"atomic_positions", "synthesis_method_old", "exciton_emission", "band_structure"}

// SearchByAuthorLastNames returns distinct systems with at least one entry whose
// publication lists an author whose last name contains any keyword.
func (r *systemRepo) SearchByAuthorLastNames(dbc dbctx.Context, keywords []string) ([]*types.System, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.System
	var kw []string
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			kw = append(kw, k)
		}
	}
	if len(kw) == 0 {
		return out, nil
	}

	conds := make([]string, 0, len(kw))
	args := make([]any, 0, len(kw))
	for _, k := range kw {
		conds = append(conds, icontains("a.last_name"))
		args = append(args, containsPattern(k))
	}
	authorMatch := strings.Join(conds, " OR ")

	var ids []uuid.UUID
	for _, table := range entryTables {
		var found []uuid.UUID
		err := t.WithContext(dbc.Ctx).
			Table(table+" AS e").
			Distinct("e.system_id").
			Joins("JOIN publication_author pa ON pa.publication_id = e.publication_id").
			Joins("JOIN author a ON a.id = pa.author_id").
			Where(authorMatch, args...).
			Pluck("e.system_id", &found).Error
		if err != nil {
			return nil, err
		}
		ids = append(ids, found...)
	}
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("compound_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
