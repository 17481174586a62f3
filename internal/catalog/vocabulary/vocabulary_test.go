package vocabulary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/data/repos"
	"github.com/yungbote/materials-backend/internal/data/repos/testutil"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
)

func TestDefaultVocabulary(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(v.SampleTypes) != 7 {
		t.Fatalf("sample types: got=%d", len(v.SampleTypes))
	}
	if len(v.CrystalSystems) != 8 {
		t.Fatalf("crystal systems: got=%d", len(v.CrystalSystems))
	}
	if !v.ValidSampleType(6) || v.ValidSampleType(7) {
		t.Fatalf("sample type codes should be 0..6")
	}
	if !v.ValidCrystalSystem(7) || v.ValidCrystalSystem(-1) {
		t.Fatalf("crystal system codes should be 0..7")
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	raw := []byte("sample_types:\n  - {code: 0, label: powder}\ncrystal_systems:\n  - {code: 0, label: cubic}\nunits: [eV]\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(v.SampleTypes) != 1 || v.SampleTypes[0].Label != "powder" || len(v.Units) != 1 {
		t.Fatalf("unexpected vocabulary: %+v", v)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseRejectsDuplicateCodes(t *testing.T) {
	raw := []byte("sample_types:\n  - {code: 1, label: a}\n  - {code: 1, label: b}\ncrystal_systems:\n  - {code: 0, label: cubic}\n")
	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected duplicate code error")
	}
	if _, err := Parse([]byte("sample_types: []\n")); err == nil {
		t.Fatalf("expected empty list error")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := repos.NewVocabularyRepo(db, log)
	dbc := dbctx.Context{Ctx: context.Background()}
	v, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	actor := uuid.New()

	first, err := Seed(dbc, store, v, actor, testutil.Now)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if first.Phases != len(v.Phases) || first.Properties != len(v.Properties) || first.Units != len(v.Units) {
		t.Fatalf("first seed: %+v", first)
	}
	second, err := Seed(dbc, store, v, actor, testutil.Now)
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if second != (SeedResult{}) {
		t.Fatalf("second seed should insert nothing: %+v", second)
	}
	props, err := store.ListProperties(dbc)
	if err != nil {
		t.Fatalf("ListProperties: %v", err)
	}
	if len(props) != len(v.Properties) {
		t.Fatalf("properties: got=%d", len(props))
	}
}
