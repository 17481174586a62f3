package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/catalog/vocabulary"
	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/eventbus"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type IngestResult struct {
	DatasetID   uuid.UUID
	Datapoints  int
	FailedFiles []string
}

// Text is the message shown to the contributor.
func (r *IngestResult) Text() string {
	plural := "s"
	if r.Datapoints == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d new data point%s successfully added to the database!", r.Datapoints, plural) +
		failedFilesText(r.FailedFiles)
}

type IngestionService interface {
	Ingest(ctx context.Context, sub *Submission, actor Actor) (*IngestResult, error)
}

type ingestionService struct {
	db        *gorm.DB
	log       *logger.Logger
	systems   repos.SystemRepo
	pubs      repos.PublicationRepo
	vocab     repos.VocabularyRepo
	datasets  repos.DatasetRepo
	events    repos.EventRepo
	choices   *vocabulary.Vocabulary
	files     fileSaver
	publisher publisher
	metrics   *observability.Metrics
	clock     Clock
}

func NewIngestionService(
	db *gorm.DB,
	log *logger.Logger,
	systems repos.SystemRepo,
	pubs repos.PublicationRepo,
	vocab repos.VocabularyRepo,
	datasets repos.DatasetRepo,
	events repos.EventRepo,
	choices *vocabulary.Vocabulary,
	store filestore.FileStore,
	bus eventbus.Bus,
	metrics *observability.Metrics,
	clock Clock,
) IngestionService {
	serviceLog := log.With("service", "IngestionService")
	return &ingestionService{
		db:        db,
		log:       serviceLog,
		systems:   systems,
		pubs:      pubs,
		vocab:     vocab,
		datasets:  datasets,
		events:    events,
		choices:   choices,
		files:     fileSaver{store: store, log: serviceLog, metrics: metrics},
		publisher: publisher{bus: bus, log: serviceLog, metrics: metrics},
		metrics:   metrics,
		clock:     clock,
	}
}

// Ingest writes the dataset graph in one transaction, then stores the
// uploaded files. A file that cannot be written does not undo the rows.
func (s *ingestionService) Ingest(ctx context.Context, sub *Submission, actor Actor) (*IngestResult, error) {
	if sub == nil {
		return nil, invalid(KindMissingField, fieldSystem)
	}
	if s.choices != nil {
		if !s.choices.ValidSampleType(sub.SampleType) {
			return nil, invalid(KindInvalidChoice, fieldSampleType)
		}
		if !s.choices.ValidCrystalSystem(sub.CrystalSystem) {
			return nil, invalid(KindInvalidChoice, fieldCrystalSystem)
		}
	}

	now := s.clock.now()
	attr := catalog.Attributed(actor.UserID, now)
	var (
		ds  *types.Dataset
		evt *types.CatalogEvent
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		fixed, err := s.checkReferences(dbc, sub)
		if err != nil {
			return err
		}
		ds = buildDataset(sub, fixed, attr)
		if err := s.datasets.CreateGraph(dbc, ds); err != nil {
			return fmt.Errorf("create dataset: %w", err)
		}
		evt = &types.CatalogEvent{
			Kind:      catalog.EventDatasetCreated,
			SubjectID: ds.ID,
			ActorID:   actor.UserID,
			Payload: eventPayload(map[string]any{
				"system_id":  sub.SystemID.String(),
				"datapoints": len(sub.Points),
				"has_files":  ds.HasFiles,
			}),
			CreatedAt: now,
		}
		_, err = s.events.Create(dbc, []*types.CatalogEvent{evt})
		return err
	})
	if err != nil {
		s.metrics.IncSubmission("dataset", outcomeOf(err))
		return nil, err
	}
	s.metrics.IncSubmission("dataset", "success")
	s.metrics.AddDatapoints(len(sub.Points))
	s.log.Info("Dataset created", "dataset_id", ds.ID, "actor_id", actor.UserID, "datapoints", len(sub.Points))

	res := &IngestResult{DatasetID: ds.ID, Datapoints: len(sub.Points)}
	if len(sub.Files) > 0 {
		res.FailedFiles = s.files.saveAll(ctx, ds.UploadDir(), sub.Files)
	}
	s.publisher.publish(ctx, evt)
	return res, nil
}

// resolvedFixed pairs a fixed input with the rows it names.
type resolvedFixed struct {
	in       FixedInput
	property *types.Property
	unit     *types.Unit
}

func (s *ingestionService) checkReferences(dbc dbctx.Context, sub *Submission) ([]resolvedFixed, error) {
	sys, err := s.systems.GetByID(dbc, sub.SystemID)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}
	if sys == nil {
		return nil, invalid(KindMissingReference, fieldSystem)
	}
	pub, err := s.pubs.GetByID(dbc, sub.PublicationID)
	if err != nil {
		return nil, fmt.Errorf("load publication: %w", err)
	}
	if pub == nil {
		return nil, invalid(KindMissingReference, fieldPublication)
	}

	props := []struct {
		id    *uuid.UUID
		field string
	}{
		{sub.PrimaryPropertyID, fieldPrimaryProperty},
		{sub.SecondaryPropertyID, fieldSecondaryProperty},
	}
	for _, p := range props {
		if p.id == nil {
			continue
		}
		row, err := s.vocab.GetPropertyByID(dbc, *p.id)
		if err != nil {
			return nil, fmt.Errorf("load property: %w", err)
		}
		if row == nil {
			return nil, invalid(KindMissingReference, p.field)
		}
	}
	units := []struct {
		id    *uuid.UUID
		field string
	}{
		{sub.PrimaryUnitID, fieldPrimaryUnit},
		{sub.SecondaryUnitID, fieldSecondaryUnit},
	}
	for _, u := range units {
		if u.id == nil {
			continue
		}
		row, err := s.vocab.GetUnitByID(dbc, *u.id)
		if err != nil {
			return nil, fmt.Errorf("load unit: %w", err)
		}
		if row == nil {
			return nil, invalid(KindMissingReference, u.field)
		}
	}
	if sub.SpaceGroupID != nil {
		groups, err := s.vocab.ListSpaceGroups(dbc)
		if err != nil {
			return nil, fmt.Errorf("list space groups: %w", err)
		}
		found := false
		for _, g := range groups {
			if g.ID == *sub.SpaceGroupID {
				found = true
				break
			}
		}
		if !found {
			return nil, invalid(KindMissingReference, fieldSpaceGroup)
		}
	}

	out := make([]resolvedFixed, 0, len(sub.Fixed))
	for _, fx := range sub.Fixed {
		prop, err := s.vocab.GetPropertyByName(dbc, fx.Property)
		if err != nil {
			return nil, fmt.Errorf("load fixed property: %w", err)
		}
		if prop == nil {
			return nil, invalid(KindMissingReference, fixedPropertyPrefix+fx.Suffix)
		}
		unit, err := s.vocab.GetUnitByLabel(dbc, fx.Unit)
		if err != nil {
			return nil, fmt.Errorf("load fixed unit: %w", err)
		}
		if unit == nil {
			return nil, invalid(KindMissingReference, fixedUnitPrefix+fx.Suffix)
		}
		out = append(out, resolvedFixed{in: fx, property: prop, unit: unit})
	}
	return out, nil
}

func comments(text *string, attr types.Attribution) []types.Comment {
	if text == nil {
		return nil
	}
	return []types.Comment{{Text: *text, Attribution: attr}}
}

func buildDataset(sub *Submission, fixed []resolvedFixed, attr types.Attribution) *types.Dataset {
	ds := &types.Dataset{
		Label:               sub.Label,
		SystemID:            sub.SystemID,
		PublicationID:       sub.PublicationID,
		PrimaryPropertyID:   sub.PrimaryPropertyID,
		PrimaryUnitID:       sub.PrimaryUnitID,
		SecondaryPropertyID: sub.SecondaryPropertyID,
		SecondaryUnitID:     sub.SecondaryUnitID,
		SpaceGroupID:        sub.SpaceGroupID,
		Visible:             sub.Visible,
		Plotted:             sub.Plotted,
		Experimental:        sub.Experimental,
		HasFiles:            len(sub.Files) > 0,
		Dimensionality:      sub.Dimensionality,
		SampleType:          sub.SampleType,
		CrystalSystem:       sub.CrystalSystem,
		Attribution:         attr,
	}
	if sub.Blocks.Synthesis {
		ds.SynthesisMethod = &types.SynthesisMethod{
			StartingMaterials: sub.Synthesis.StartingMaterials,
			Product:           sub.Synthesis.Product,
			Description:       sub.Synthesis.Description,
			Comments:          comments(sub.Synthesis.Comment, attr),
			Attribution:       attr,
		}
	}
	if sub.Blocks.Experimental {
		ds.ExperimentalDetails = &types.ExperimentalDetails{
			Method:      sub.Experiment.Method,
			Description: sub.Experiment.Description,
			Comments:    comments(sub.Experiment.Comment, attr),
			Attribution: attr,
		}
	}
	if sub.Blocks.Computational {
		c := sub.Computational
		ds.ComputationalDetails = &types.ComputationalDetails{
			Code:              c.Code,
			LevelOfTheory:     c.LevelOfTheory,
			XCFunctional:      c.XCFunctional,
			KGrid:             c.KGrid,
			RelativityLevel:   c.RelativityLevel,
			Basis:             c.Basis,
			NumericalAccuracy: c.NumericalAccuracy,
			Comments:          comments(c.Comment, attr),
			Attribution:       attr,
		}
	}

	series := types.Dataseries{Seq: 0, Label: sub.SeriesLabel, Attribution: attr}
	paired := sub.Paired()
	for i, p := range sub.Points {
		dp := types.Datapoint{Seq: i, Attribution: attr}
		if paired {
			dp.Values = append(dp.Values, types.NumericalValue{
				Qualifier:   catalog.QualifierSecondary,
				Value:       p.X,
				ValueType:   catalog.ValueAccurate,
				Attribution: attr,
			})
		}
		dp.Values = append(dp.Values, types.NumericalValue{
			Qualifier:   catalog.QualifierPrimary,
			Value:       p.Y,
			ValueType:   catalog.ValueAccurate,
			Attribution: attr,
		})
		series.Datapoints = append(series.Datapoints, dp)
	}
	for _, fx := range fixed {
		series.FixedValues = append(series.FixedValues, types.NumericalValueFixed{
			PropertyID:  fx.property.ID,
			UnitID:      fx.unit.ID,
			Value:       fx.in.Value,
			ValueType:   catalog.ValueAccurate,
			Attribution: attr,
		})
	}
	ds.Dataseries = []types.Dataseries{series}
	return ds
}
