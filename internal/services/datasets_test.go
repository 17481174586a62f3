package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
)

func (f *ingestFixture) datasetService() DatasetService {
	return NewDatasetService(f.db, f.log, f.data, f.events, f.store, f.bus, nil, f.clock)
}

func TestToggleDatasetFlags(t *testing.T) {
	f := newIngestFixture(t)
	res, err := f.ingest(t, f.baseForm, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc := f.datasetService()

	ds, err := svc.ToggleVisible(f.ctx, f.actor, res.DatasetID)
	if err != nil || !ds.Visible {
		t.Fatalf("ToggleVisible: %+v %v", ds, err)
	}
	ds, err = svc.TogglePlotted(f.ctx, f.actor, res.DatasetID)
	if err != nil || !ds.Plotted || !ds.Visible {
		t.Fatalf("TogglePlotted: %+v %v", ds, err)
	}
	ds, err = svc.ToggleVisible(f.ctx, f.actor, res.DatasetID)
	if err != nil || ds.Visible {
		t.Fatalf("second ToggleVisible: %+v %v", ds, err)
	}

	visible, err := svc.ListBySystem(f.ctx, f.sys.ID, false)
	if err != nil || len(visible) != 0 {
		t.Fatalf("hidden dataset listed: %v %v", visible, err)
	}
	all, err := svc.ListBySystem(f.ctx, f.sys.ID, true)
	if err != nil || len(all) != 1 || !all[0].Plotted {
		t.Fatalf("ListBySystem: %v %v", all, err)
	}

	kinds := f.bus.kinds()
	if len(kinds) != 4 || kinds[3] != catalog.EventDatasetUpdated {
		t.Fatalf("unexpected events %v", kinds)
	}
	if _, err := svc.TogglePlotted(f.ctx, f.actor, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteDatasetRemovesRowsAndFiles(t *testing.T) {
	f := newIngestFixture(t)
	res, err := f.ingest(t, f.baseForm, []Upload{BytesUpload("raw.dat", []byte("raw"))})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	svc := f.datasetService()
	if err := svc.Delete(f.ctx, f.actor, res.DatasetID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ds, err := f.data.GetByID(dbctx.Context{Ctx: f.ctx}, res.DatasetID)
	if err != nil || ds != nil {
		t.Fatalf("dataset still present: %v %v", ds, err)
	}
	for _, model := range []any{&types.Dataseries{}, &types.Datapoint{}, &types.NumericalValue{}} {
		if n := f.countRows(t, model); n != 0 {
			t.Fatalf("%T rows left: %d", model, n)
		}
	}
	names, err := f.store.List(f.ctx, catalog.DatasetUploadDir(res.DatasetID))
	if err != nil || len(names) != 0 {
		t.Fatalf("files left: %v %v", names, err)
	}
	if err := svc.Delete(f.ctx, f.actor, res.DatasetID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
