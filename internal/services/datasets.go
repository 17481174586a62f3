package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/data/repos"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/eventbus"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type DatasetService interface {
	ToggleVisible(ctx context.Context, actor Actor, id uuid.UUID) (*types.Dataset, error)
	TogglePlotted(ctx context.Context, actor Actor, id uuid.UUID) (*types.Dataset, error)
	// Delete removes the dataset rows and then its upload directory. A file
	// store failure is returned after the rows are gone.
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	ListBySystem(ctx context.Context, systemID uuid.UUID, includeHidden bool) ([]*types.Dataset, error)
}

type datasetService struct {
	db        *gorm.DB
	log       *logger.Logger
	datasets  repos.DatasetRepo
	events    repos.EventRepo
	store     filestore.FileStore
	publisher publisher
	clock     Clock
}

func NewDatasetService(
	db *gorm.DB,
	log *logger.Logger,
	datasets repos.DatasetRepo,
	events repos.EventRepo,
	store filestore.FileStore,
	bus eventbus.Bus,
	metrics *observability.Metrics,
	clock Clock,
) DatasetService {
	serviceLog := log.With("service", "DatasetService")
	return &datasetService{
		db:        db,
		log:       serviceLog,
		datasets:  datasets,
		events:    events,
		store:     store,
		publisher: publisher{bus: bus, log: serviceLog, metrics: metrics},
		clock:     clock,
	}
}

func (s *datasetService) ToggleVisible(ctx context.Context, actor Actor, id uuid.UUID) (*types.Dataset, error) {
	return s.toggle(ctx, actor, id, "visible", func(ds *types.Dataset) bool {
		ds.Visible = !ds.Visible
		return ds.Visible
	})
}

func (s *datasetService) TogglePlotted(ctx context.Context, actor Actor, id uuid.UUID) (*types.Dataset, error) {
	return s.toggle(ctx, actor, id, "plotted", func(ds *types.Dataset) bool {
		ds.Plotted = !ds.Plotted
		return ds.Plotted
	})
}

func (s *datasetService) toggle(ctx context.Context, actor Actor, id uuid.UUID, flag string, flip func(*types.Dataset) bool) (*types.Dataset, error) {
	var (
		ds  *types.Dataset
		evt *types.CatalogEvent
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		ds, err = s.datasets.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		if ds == nil {
			return notFound("dataset", id)
		}
		value := flip(ds)
		ds.Touch(actor.UserID, s.clock.now())
		if err := s.datasets.UpdateFlags(dbc, ds); err != nil {
			return fmt.Errorf("update dataset flags: %w", err)
		}
		evt = &types.CatalogEvent{
			Kind:      catalog.EventDatasetUpdated,
			SubjectID: ds.ID,
			ActorID:   actor.UserID,
			Payload:   eventPayload(map[string]any{flag: value}),
			CreatedAt: s.clock.now(),
		}
		_, err = s.events.Create(dbc, []*types.CatalogEvent{evt})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.publish(ctx, evt)
	return ds, nil
}

func (s *datasetService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	var (
		dir string
		evt *types.CatalogEvent
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		ds, err := s.datasets.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		if ds == nil {
			return notFound("dataset", id)
		}
		dir = ds.UploadDir()
		if err := s.datasets.DeleteCascade(dbc, id); err != nil {
			return fmt.Errorf("delete dataset: %w", err)
		}
		evt = &types.CatalogEvent{
			Kind:      catalog.EventDatasetDeleted,
			SubjectID: id,
			ActorID:   actor.UserID,
			Payload:   eventPayload(map[string]any{"system_id": ds.SystemID.String(), "label": ds.Label}),
			CreatedAt: s.clock.now(),
		}
		_, err = s.events.Create(dbc, []*types.CatalogEvent{evt})
		return err
	})
	if err != nil {
		return err
	}
	s.publisher.publish(ctx, evt)

	if err := s.store.DeletePrefix(ctx, dir); err != nil {
		s.log.Error("Failed to remove dataset files", "dataset_id", id, "dir", dir, "error", err)
		return fmt.Errorf("delete %s: %w", dir, err)
	}
	return nil
}

func (s *datasetService) ListBySystem(ctx context.Context, systemID uuid.UUID, includeHidden bool) ([]*types.Dataset, error) {
	return s.datasets.ListBySystem(dbctx.Context{Ctx: ctx}, systemID, !includeHidden)
}
