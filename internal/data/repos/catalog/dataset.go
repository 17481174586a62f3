package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type DatasetRepo interface {
	// CreateGraph inserts a dataset together with its detail blocks, comments,
	// series, datapoints, values and fixed values. Callers wrap it in a
	// transaction.
	CreateGraph(dbc dbctx.Context, ds *types.Dataset) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error)
	// GetWithSeries loads a dataset with its units, properties and every series
	// ordered by Seq, datapoints ordered by Seq.
	GetWithSeries(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error)
	ListBySystem(dbc dbctx.Context, systemID uuid.UUID, visibleOnly bool) ([]*types.Dataset, error)
	ListByPublication(dbc dbctx.Context, publicationID uuid.UUID) ([]*types.Dataset, error)

	UpdateFlags(dbc dbctx.Context, ds *types.Dataset) error
	DeleteCascade(dbc dbctx.Context, id uuid.UUID) error
}

type datasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return &datasetRepo{db: db, log: baseLog.With("repo", "DatasetRepo")}
}

func (r *datasetRepo) CreateGraph(dbc dbctx.Context, ds *types.Dataset) error {
	t := dbc.Resolve(r.db)

	// Children are written explicitly so ids are known for comments and values.
	series := ds.Dataseries
	synth, exp, comp := ds.SynthesisMethod, ds.ExperimentalDetails, ds.ComputationalDetails
	ds.Dataseries = nil
	ds.SynthesisMethod, ds.ExperimentalDetails, ds.ComputationalDetails = nil, nil, nil
	defer func() {
		ds.Dataseries = series
		ds.SynthesisMethod, ds.ExperimentalDetails, ds.ComputationalDetails = synth, exp, comp
	}()

	if err := t.Omit(clause.Associations).Create(ds).Error; err != nil {
		return err
	}

	if synth != nil {
		synth.DatasetID = ds.ID
		if err := r.createDetail(t, synth, &synth.ID, synth.Comments, catalog.CommentOwnerSynthesis); err != nil {
			return err
		}
	}
	if exp != nil {
		exp.DatasetID = ds.ID
		if err := r.createDetail(t, exp, &exp.ID, exp.Comments, catalog.CommentOwnerExperimental); err != nil {
			return err
		}
	}
	if comp != nil {
		comp.DatasetID = ds.ID
		if err := r.createDetail(t, comp, &comp.ID, comp.Comments, catalog.CommentOwnerComputational); err != nil {
			return err
		}
	}

	for i := range series {
		s := &series[i]
		s.DatasetID = ds.ID
		if err := t.Omit(clause.Associations).Create(s).Error; err != nil {
			return err
		}
		for j := range s.FixedValues {
			s.FixedValues[j].DataseriesID = s.ID
		}
		if len(s.FixedValues) > 0 {
			if err := t.Omit(clause.Associations).Create(&s.FixedValues).Error; err != nil {
				return err
			}
		}
		if len(s.Datapoints) == 0 {
			continue
		}
		for j := range s.Datapoints {
			s.Datapoints[j].DataseriesID = s.ID
		}
		if err := t.Omit(clause.Associations).CreateInBatches(&s.Datapoints, 500).Error; err != nil {
			return err
		}
		var values []catalog.NumericalValue
		for j := range s.Datapoints {
			for k := range s.Datapoints[j].Values {
				s.Datapoints[j].Values[k].DatapointID = s.Datapoints[j].ID
			}
			values = append(values, s.Datapoints[j].Values...)
		}
		if len(values) > 0 {
			if err := t.CreateInBatches(&values, 500).Error; err != nil {
				return err
			}
			// Copy assigned ids back onto the caller's datapoints.
			n := 0
			for j := range s.Datapoints {
				for k := range s.Datapoints[j].Values {
					s.Datapoints[j].Values[k] = values[n]
					n++
				}
			}
		}
	}
	return nil
}

func (r *datasetRepo) createDetail(t *gorm.DB, row any, id *uuid.UUID, comments []catalog.Comment, ownerType string) error {
	if err := t.Omit(clause.Associations).Create(row).Error; err != nil {
		return err
	}
	if len(comments) == 0 {
		return nil
	}
	for i := range comments {
		comments[i].OwnerID = *id
		comments[i].OwnerType = ownerType
	}
	return t.Create(&comments).Error
}

func (r *datasetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first[types.Dataset](dbc.Resolve(r.db).
		Preload("System").
		Preload("Publication").
		Preload("PrimaryProperty").
		Preload("PrimaryUnit").
		Preload("SecondaryProperty").
		Preload("SecondaryUnit").
		Where("id = ?", id))
}

func (r *datasetRepo) GetWithSeries(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return first[types.Dataset](dbc.Resolve(r.db).
		Preload("System").
		Preload("Publication").
		Preload("PrimaryProperty").
		Preload("PrimaryUnit").
		Preload("SecondaryProperty").
		Preload("SecondaryUnit").
		Preload("SynthesisMethod.Comments").
		Preload("ExperimentalDetails.Comments").
		Preload("ComputationalDetails.Comments").
		Preload("Dataseries", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Dataseries.FixedValues.Property").
		Preload("Dataseries.FixedValues.Unit").
		Preload("Dataseries.Datapoints", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Dataseries.Datapoints.Values").
		Where("id = ?", id))
}

func (r *datasetRepo) ListBySystem(dbc dbctx.Context, systemID uuid.UUID, visibleOnly bool) ([]*types.Dataset, error) {
	var out []*types.Dataset
	if systemID == uuid.Nil {
		return out, nil
	}
	q := dbc.Resolve(r.db).
		Preload("Publication").
		Preload("PrimaryProperty").
		Preload("PrimaryUnit").
		Preload("SecondaryProperty").
		Preload("SecondaryUnit").
		Where("system_id = ?", systemID)
	if visibleOnly {
		q = q.Where("visible = ?", true)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) ListByPublication(dbc dbctx.Context, publicationID uuid.UUID) ([]*types.Dataset, error) {
	var out []*types.Dataset
	if publicationID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Preload("PrimaryProperty").
		Preload("SecondaryProperty").
		Where("publication_id = ?", publicationID).
		Order("created_at ASC").
		Order("label ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) UpdateFlags(dbc dbctx.Context, ds *types.Dataset) error {
	return dbc.Resolve(r.db).
		Model(&types.Dataset{}).
		Where("id = ?", ds.ID).
		Updates(map[string]any{
			"visible":       ds.Visible,
			"plotted":       ds.Plotted,
			"updated_at":    ds.UpdatedAt,
			"updated_by_id": ds.UpdatedByID,
		}).Error
}

// DeleteCascade removes a dataset and every row it owns. Files are the
// caller's concern.
func (r *datasetRepo) DeleteCascade(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Resolve(r.db)

	seriesIDs := t.Session(&gorm.Session{}).Model(&catalog.Dataseries{}).Select("id").Where("dataset_id = ?", id)
	pointIDs := t.Session(&gorm.Session{}).Model(&catalog.Datapoint{}).Select("id").Where("dataseries_id IN (?)", seriesIDs)

	steps := []struct {
		model any
		where string
		arg   any
	}{
		{&catalog.NumericalValue{}, "datapoint_id IN (?)", pointIDs},
		{&catalog.Datapoint{}, "dataseries_id IN (?)", seriesIDs},
		{&catalog.NumericalValueFixed{}, "dataseries_id IN (?)", seriesIDs},
		{&catalog.Dataseries{}, "dataset_id = ?", id},
	}
	for _, s := range steps {
		if err := t.Session(&gorm.Session{}).Where(s.where, s.arg).Delete(s.model).Error; err != nil {
			return err
		}
	}

	details := []struct {
		model     any
		table     string
		ownerType string
	}{
		{&catalog.SynthesisMethod{}, "synthesis_method", catalog.CommentOwnerSynthesis},
		{&catalog.ExperimentalDetails{}, "experimental_details", catalog.CommentOwnerExperimental},
		{&catalog.ComputationalDetails{}, "computational_details", catalog.CommentOwnerComputational},
	}
	for _, d := range details {
		owners := t.Session(&gorm.Session{}).Table(d.table).Select("id").Where("dataset_id = ?", id)
		if err := t.Session(&gorm.Session{}).
			Where("owner_type = ? AND owner_id IN (?)", d.ownerType, owners).
			Delete(&catalog.Comment{}).Error; err != nil {
			return err
		}
		if err := t.Session(&gorm.Session{}).Where("dataset_id = ?", id).Delete(d.model).Error; err != nil {
			return err
		}
	}

	res := t.Session(&gorm.Session{}).Where("id = ?", id).Delete(&catalog.Dataset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
