package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
)

func TestPublicationReport(t *testing.T) {
	f := newIngestFixture(t)
	first, err := f.ingest(t, f.baseForm, []Upload{BytesUpload("raw.dat", []byte("raw"))})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	single := f.form(map[string]string{"secondary-property": "-1", "main-data": "1", "dataset-plotted": "true", "dataset-label": "Zeta"}, "secondary-unit")
	second, err := f.ingest(t, single, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	svc := NewReportService(f.log, f.pubs, f.data, f.store, nil)
	rep, err := svc.PublicationReport(f.ctx, f.pub.ID, "materials.example.org")
	if err != nil {
		t.Fatalf("PublicationReport: %v", err)
	}
	if rep.Info.ServerPath != "materials.example.org" || rep.Info.IsPublic != "true" {
		t.Fatalf("unexpected info: %+v", rep.Info)
	}
	if want := f.pub.CreatedAt.UTC().Format(reportTimeLayout); rep.Info.TimeStamp != want {
		t.Fatalf("timeStamp=%q want publication creation time %q", rep.Info.TimeStamp, want)
	}
	if rep.Reference.Journal.Title != "Paper" || rep.Reference.Journal.Kind != "journal" {
		t.Fatalf("unexpected journal: %+v", rep.Reference.Journal)
	}
	if len(rep.Reference.Authors) != 1 || rep.Reference.Authors[0].LastName != "Blum" {
		t.Fatalf("unexpected authors: %+v", rep.Reference.Authors)
	}
	if len(rep.PIs) != 1 || len(rep.Collections) != 1 || len(rep.Charts) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	c1 := rep.Charts[0]
	if c1.Number != 1 || c1.Kind != "table" || c1.Caption != "Band gap vs temperature" {
		t.Fatalf("unexpected chart: %+v", c1)
	}
	if strings.Join(c1.Properties, ",") != "temperature,band gap" {
		t.Fatalf("unexpected properties %v", c1.Properties)
	}
	if len(c1.Files) != 2 || c1.Files[0] != DatasetDataPath(first.DatasetID) ||
		c1.Files[1] != "/media/uploads/dataset_"+first.DatasetID.String()+"/raw.dat" {
		t.Fatalf("unexpected files %v", c1.Files)
	}
	if c1.ImageFile != DatasetImagePath(first.DatasetID) {
		t.Fatalf("unexpected image %s", c1.ImageFile)
	}
	c2 := rep.Charts[1]
	if c2.Number != 2 || c2.Kind != "figure" || len(c2.Files) != 1 || strings.Join(c2.Properties, ",") != "band gap" {
		t.Fatalf("unexpected chart: %+v (%s)", c2, second.DatasetID)
	}

	raw, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"PIs":[{"firstname":"","lastname":""}]`, `"collections":[""]`, `"insertedBy":{"firstName":"","lastName":"","middleName":""}`, `"notebookFile":""`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("missing %s in %s", key, raw)
		}
	}

	if _, err := svc.PublicationReport(f.ctx, uuid.New(), "x"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
