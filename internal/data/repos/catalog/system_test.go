package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/data/repos/testutil"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
)

func TestSystemRepoSearch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSystemRepo(db, testutil.Logger(t))
	actor := uuid.New()

	pea := testutil.SeedSystem(t, ctx, tx, actor, "PEA lead iodide", "(C6H5C2H4NH3)2PbI4", "PEA", "PbI4")
	mapi := testutil.SeedSystem(t, ctx, tx, actor, "Methylammonium lead iodide", "CH3NH3PbI3", "MA", "PbI3")

	got, err := repo.SearchField(dbc, SystemFieldFormula, "pbi")
	if err != nil {
		t.Fatalf("SearchField formula: %v", err)
	}
	if len(got) != 2 || got[0].ID != pea.ID || got[1].ID != mapi.ID {
		t.Fatalf("expected both systems ordered by formula, got %+v", got)
	}

	got, err = repo.SearchField(dbc, SystemFieldOrganic, "ma")
	if err != nil {
		t.Fatalf("SearchField organic: %v", err)
	}
	if len(got) != 1 || got[0].ID != mapi.ID {
		t.Fatalf("organic search: got %+v", got)
	}

	got, err = repo.Search(dbc, "LEAD")
	if err != nil || len(got) != 2 {
		t.Fatalf("Search: err=%v len=%d", err, len(got))
	}

	if _, err := repo.SearchField(dbc, SystemField("colour"), "x"); err == nil {
		t.Fatalf("expected unknown field to fail")
	}

	exists, err := repo.ExistsByNameOrFormula(dbc, "other", "ch3nh3pbi3")
	if err != nil || !exists {
		t.Fatalf("ExistsByNameOrFormula formula match: exists=%v err=%v", exists, err)
	}
	exists, err = repo.ExistsByNameOrFormula(dbc, "nothing", "nothing")
	if err != nil || exists {
		t.Fatalf("ExistsByNameOrFormula miss: exists=%v err=%v", exists, err)
	}

	mapi.Description = "cubic at room temperature"
	if err := repo.Update(dbc, mapi); err != nil {
		t.Fatalf("Update: %v", err)
	}
	reloaded, err := repo.GetByID(dbc, mapi.ID)
	if err != nil || reloaded == nil || reloaded.Description != "cubic at room temperature" {
		t.Fatalf("GetByID after update: %+v err=%v", reloaded, err)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID miss: %+v err=%v", missing, err)
	}
}

func TestSystemRepoSearchByAuthorLastNames(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSystemRepo(db, testutil.Logger(t))
	actor := uuid.New()

	withEntry := testutil.SeedSystem(t, ctx, tx, actor, "A", "A1", "a", "b")
	withoutEntry := testutil.SeedSystem(t, ctx, tx, actor, "B", "B1", "c", "d")
	pub := testutil.SeedPublication(t, ctx, tx, actor, "Excitons", "10.1/x", [2]string{"Volker", "Blum"}, [2]string{"David", "Mitzi"})
	phase := testutil.SeedPhase(t, ctx, tx, actor, "cubic")
	testutil.SeedExcitonEmission(t, ctx, tx, actor, withEntry, pub, phase, 2.4)
	testutil.SeedExcitonEmission(t, ctx, tx, actor, withEntry, pub, phase, 2.5)
	_ = withoutEntry

	got, err := repo.SearchByAuthorLastNames(dbc, []string{"nobody", "mitz"})
	if err != nil {
		t.Fatalf("SearchByAuthorLastNames: %v", err)
	}
	if len(got) != 1 || got[0].ID != withEntry.ID {
		t.Fatalf("expected one distinct system, got %+v", got)
	}

	got, err = repo.SearchByAuthorLastNames(dbc, []string{"  "})
	if err != nil || len(got) != 0 {
		t.Fatalf("blank keywords: len=%d err=%v", len(got), err)
	}
}
