package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/catalog/vocabulary"
	"github.com/yungbote/materials-backend/internal/data/repos/testutil"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
)

type ingestFixture struct {
	*harness
	svc      IngestionService
	sys      *types.System
	pub      *types.Publication
	bandGap  *types.Property
	temp     *types.Property
	eV       *types.Unit
	kelvin   *types.Unit
	baseForm map[string][]string
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	h := newHarness(t)
	f := &ingestFixture{harness: h}
	f.svc = f.service(h.store)
	f.sys = h.seedSystem(t, "MAPbI3", "CH3NH3PbI3", "CH3NH3", "PbI3")
	f.pub = h.seedPublication(t, "Paper", "10.1/x", [2]string{"Volker", "Blum"})
	f.bandGap = testutil.SeedProperty(t, h.ctx, h.db, h.actor.UserID, "band gap")
	f.temp = testutil.SeedProperty(t, h.ctx, h.db, h.actor.UserID, "temperature")
	f.eV = testutil.SeedUnit(t, h.ctx, h.db, h.actor.UserID, "eV")
	f.kelvin = testutil.SeedUnit(t, h.ctx, h.db, h.actor.UserID, "K")
	f.baseForm = map[string][]string{
		"system":                     {f.sys.ID.String()},
		"publication":                {f.pub.ID.String()},
		"dataset-label":              {"Band gap vs temperature"},
		"primary-property":           {f.bandGap.ID.String()},
		"primary-unit":               {f.eV.ID.String()},
		"secondary-property":         {f.temp.ID.String()},
		"secondary-unit":             {f.kelvin.ID.String()},
		"is-experimental":            {"true"},
		"is-3d-system":               {"false"},
		"sample-type":                {"1"},
		"crystal-system":             {"7"},
		"with-synthesis-details":     {"false"},
		"with-experimental-details":  {"false"},
		"with-computational-details": {"false"},
		"main-data":                  {"1.0 2.0\n3.0 4.5"},
	}
	return f
}

func (f *ingestFixture) service(store filestore.FileStore) IngestionService {
	choices, _ := vocabulary.Default()
	return NewIngestionService(f.db, f.log, f.systems, f.pubs, f.vocab, f.data, f.events, choices, store, f.bus, nil, f.clock)
}

func (f *ingestFixture) form(overrides map[string]string, drop ...string) map[string][]string {
	out := make(map[string][]string, len(f.baseForm))
	for k, v := range f.baseForm {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = []string{v}
	}
	for _, k := range drop {
		delete(out, k)
	}
	return out
}

func (f *ingestFixture) ingest(t *testing.T, form map[string][]string, files []Upload) (*IngestResult, error) {
	t.Helper()
	sub, err := DecodeSubmission(form, files)
	if err != nil {
		return nil, err
	}
	return f.svc.Ingest(f.ctx, sub, f.actor)
}

func (f *ingestFixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestIngestPairedData(t *testing.T) {
	f := newIngestFixture(t)
	res, err := f.ingest(t, f.baseForm, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Text() != "2 new data points successfully added to the database!" {
		t.Fatalf("unexpected text: %q", res.Text())
	}
	ds, err := f.data.GetWithSeries(dbctx.Context{Ctx: f.ctx}, res.DatasetID)
	if err != nil || ds == nil {
		t.Fatalf("GetWithSeries: %v %v", ds, err)
	}
	if ds.HasFiles || ds.Visible || !ds.Experimental || ds.Dimensionality != 2 {
		t.Fatalf("unexpected flags: %+v", ds)
	}
	if ds.CreatedByID != f.actor.UserID || !ds.CreatedAt.Equal(testutil.Now) {
		t.Fatalf("attribution not stamped: %+v", ds.Attribution)
	}
	pts := ds.Dataseries[0].Datapoints
	if len(pts) != 2 {
		t.Fatalf("expected 2 datapoints, got %d", len(pts))
	}
	want := [][2]float64{{1.0, 2.0}, {3.0, 4.5}}
	for i, p := range pts {
		if len(p.Values) != 2 {
			t.Fatalf("datapoint %d has %d values", i, len(p.Values))
		}
		x, _ := p.Value(catalog.QualifierSecondary)
		y, _ := p.Value(catalog.QualifierPrimary)
		if x != want[i][0] || y != want[i][1] {
			t.Fatalf("datapoint %d = (%v, %v)", i, x, y)
		}
	}
	if kinds := f.bus.kinds(); len(kinds) != 1 || kinds[0] != catalog.EventDatasetCreated {
		t.Fatalf("unexpected events: %v", kinds)
	}
}

func TestIngestSingleValue(t *testing.T) {
	f := newIngestFixture(t)
	form := f.form(map[string]string{"secondary-property": "-1", "main-data": "1.0"}, "secondary-unit")
	res, err := f.ingest(t, form, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Text() != "1 new data point successfully added to the database!" {
		t.Fatalf("unexpected text: %q", res.Text())
	}
	if n := f.countRows(t, &types.NumericalValue{}); n != 1 {
		t.Fatalf("expected 1 numerical value, got %d", n)
	}
}

func TestIngestSingleModeManyValues(t *testing.T) {
	f := newIngestFixture(t)
	form := f.form(map[string]string{"secondary-property": "-1", "main-data": "1 2\n3\t4  5"})
	res, err := f.ingest(t, form, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Datapoints != 5 || f.countRows(t, &types.NumericalValue{}) != 5 {
		t.Fatalf("expected 5 single-valued datapoints, got %d", res.Datapoints)
	}
}

func TestIngestMalformedLinePersistsNothing(t *testing.T) {
	f := newIngestFixture(t)
	_, err := f.ingest(t, f.form(map[string]string{"main-data": "1.0 2.0\n3.0 abc"}), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != KindInvalidNumber {
		t.Fatalf("expected invalid number, got %v", err)
	}
	_, err = f.ingest(t, f.form(map[string]string{"main-data": "1.0 2.0 3.0"}), nil)
	if !errors.As(err, &ve) || ve.Kind != KindInvalidNumber {
		t.Fatalf("expected invalid number for three tokens, got %v", err)
	}
	for _, model := range []any{&types.Dataset{}, &types.Datapoint{}, &types.NumericalValue{}} {
		if n := f.countRows(t, model); n != 0 {
			t.Fatalf("%T: expected no rows, got %d", model, n)
		}
	}
}

func TestIngestBlankLineInPairsRejected(t *testing.T) {
	f := newIngestFixture(t)
	for _, data := range []string{"1.0 2.0\n\n3.0 4.5\n", "\n1 2\n3 4", "1 2\n  \n3 4"} {
		_, err := f.ingest(t, f.form(map[string]string{"main-data": data}), nil)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Kind != KindInvalidNumber {
			t.Fatalf("%q: expected invalid number, got %v", data, err)
		}
	}
	for _, model := range []any{&types.Dataset{}, &types.Datapoint{}} {
		if n := f.countRows(t, model); n != 0 {
			t.Fatalf("%T: expected no rows, got %d", model, n)
		}
	}
}

func TestParsePairsToleratesTrailingNewline(t *testing.T) {
	points, err := ParsePairs("1.0 2.0\r\n3.0 4.5\r\n\n")
	if err != nil {
		t.Fatalf("ParsePairs: %v", err)
	}
	if len(points) != 2 || points[1] != (Point{X: 3.0, Y: 4.5}) {
		t.Fatalf("unexpected points: %+v", points)
	}
	if _, err := ParsePairs("1.0 2.0\n\n3.0 4.5\n"); err == nil {
		t.Fatalf("expected interior blank line to fail")
	}
}

func TestIngestMissingReferences(t *testing.T) {
	f := newIngestFixture(t)
	cases := map[string]map[string]string{
		"system":           {"system": uuid.NewString()},
		"publication":      {"publication": uuid.NewString()},
		"primary-property": {"primary-property": uuid.NewString()},
		"secondary-unit":   {"secondary-unit": uuid.NewString()},
		"fixed-property1":  {"fixed-property1": "pressure", "fixed-unit1": "eV", "fixed-value1": "1"},
	}
	for field, override := range cases {
		_, err := f.ingest(t, f.form(override), nil)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Kind != KindMissingReference || ve.Field != field {
			t.Fatalf("%s: expected missing reference, got %v", field, err)
		}
	}
	if n := f.countRows(t, &types.Dataset{}); n != 0 {
		t.Fatalf("expected no datasets, got %d", n)
	}
}

func TestDecodeSubmissionValidation(t *testing.T) {
	f := newIngestFixture(t)
	_, err := DecodeSubmission(f.form(nil, "dataset-label"), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != KindMissingField || ve.Field != "dataset-label" {
		t.Fatalf("expected missing dataset-label, got %v", err)
	}
	_, err = DecodeSubmission(f.form(map[string]string{"primary-property": "-1"}), nil)
	if !errors.As(err, &ve) || ve.Field != "primary-property" {
		t.Fatalf("secondary without primary must fail, got %v", err)
	}
	_, err = DecodeSubmission(f.form(map[string]string{"with-synthesis-details": "true"}), nil)
	if !errors.As(err, &ve) || ve.Field != "starting-materials" {
		t.Fatalf("expected missing synthesis field, got %v", err)
	}
	_, err = DecodeSubmission(f.form(map[string]string{"sample-type": "powder"}), nil)
	if !errors.As(err, &ve) || ve.Kind != KindInvalidNumber {
		t.Fatalf("expected invalid sample type number, got %v", err)
	}

	sub, err := DecodeSubmission(f.form(map[string]string{"primary-property": "-1", "secondary-property": "-1"}, "main-data"), nil)
	if err != nil {
		t.Fatalf("no properties should decode: %v", err)
	}
	if len(sub.Points) != 0 {
		t.Fatalf("expected no points, got %d", len(sub.Points))
	}
}

func TestIngestRejectsUnknownChoice(t *testing.T) {
	f := newIngestFixture(t)
	_, err := f.ingest(t, f.form(map[string]string{"crystal-system": "42"}), nil)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Kind != KindInvalidChoice {
		t.Fatalf("expected invalid choice, got %v", err)
	}
}

func TestIngestBlocksFixedValuesAndFiles(t *testing.T) {
	f := newIngestFixture(t)
	form := f.form(map[string]string{
		"with-synthesis-details":     "true",
		"starting-materials":         "PbI2, MAI",
		"synthesis-product":          "crystals",
		"synthesis-description":      "solution growth",
		"synthesis-comment":          "slow cooling",
		"with-computational-details": "true",
		"code-name":                  "FHI-aims",
		"level-of-theory":            "DFT",
		"xc-functional":              "HSE06",
		"k-grid":                     "4x4x4",
		"relativity-level":           "SOC",
		"basis-sets":                 "tight",
		"numerical-accuracy":         "1e-6",
		"dataseries-label":           "run 1",
		"dataset-visible":            "on",
		"fixed-property2":            "temperature",
		"fixed-unit2":                "K",
		"fixed-value2":               "300",
		"fixed-property1":            "band gap",
		"fixed-unit1":                "eV",
		"fixed-value1":               "1.5",
	})
	files := []Upload{BytesUpload("raw.csv", []byte("1,2")), BytesUpload("notes.txt", []byte("n"))}
	res, err := f.ingest(t, form, files)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	ds, err := f.data.GetWithSeries(dbctx.Context{Ctx: f.ctx}, res.DatasetID)
	if err != nil {
		t.Fatalf("GetWithSeries: %v", err)
	}
	if !ds.HasFiles || !ds.Visible {
		t.Fatalf("flags not set: %+v", ds)
	}
	if ds.SynthesisMethod == nil || len(ds.SynthesisMethod.Comments) != 1 || ds.SynthesisMethod.Comments[0].Text != "slow cooling" {
		t.Fatalf("synthesis block missing: %+v", ds.SynthesisMethod)
	}
	if ds.ExperimentalDetails != nil {
		t.Fatalf("experimental block should be absent")
	}
	if ds.ComputationalDetails == nil || ds.ComputationalDetails.XCFunctional != "HSE06" {
		t.Fatalf("computational block missing: %+v", ds.ComputationalDetails)
	}
	series := ds.Dataseries[0]
	if series.Label != "run 1" || len(series.FixedValues) != 2 {
		t.Fatalf("unexpected series: %+v", series)
	}
	names, err := f.store.List(f.ctx, ds.UploadDir())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(names, ",") != "notes.txt,raw.csv" {
		t.Fatalf("unexpected files: %v", names)
	}
}

func TestIngestKeepsRowsWhenFilesFail(t *testing.T) {
	f := newIngestFixture(t)
	svc := f.service(brokenStore{FileStore: f.store})
	sub, err := DecodeSubmission(f.baseForm, []Upload{BytesUpload("raw.csv", []byte("1,2"))})
	if err != nil {
		t.Fatalf("DecodeSubmission: %v", err)
	}
	res, err := svc.Ingest(f.ctx, sub, f.actor)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(res.FailedFiles) != 1 || !strings.Contains(res.Text(), "raw.csv") {
		t.Fatalf("failure not surfaced: %+v %q", res, res.Text())
	}
	ds, err := f.data.GetByID(dbctx.Context{Ctx: f.ctx}, res.DatasetID)
	if err != nil || ds == nil || !ds.HasFiles {
		t.Fatalf("dataset should remain with has_files set: %+v %v", ds, err)
	}
}

func TestParsePairs(t *testing.T) {
	pts, err := ParsePairs("1e3 -2.5\r\n0 0")
	if err != nil {
		t.Fatalf("ParsePairs: %v", err)
	}
	if len(pts) != 2 || pts[0].X != 1000 || pts[0].Y != -2.5 {
		t.Fatalf("unexpected points: %+v", pts)
	}
	if _, err := ParsePairs("1"); err == nil {
		t.Fatalf("single token line must fail")
	}
}
