package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/data/repos/testutil"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
)

func TestPublicationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	pubs := NewPublicationRepo(db, log)
	authors := NewAuthorRepo(db, log)
	actor := uuid.New()

	seeded := testutil.SeedPublication(t, ctx, tx, actor, "Band gaps of layered perovskites", "10.1000/abc", [2]string{"Volker", "Blum"})

	if ok, err := pubs.ExistsByDOI(dbc, "10.1000/abc"); err != nil || !ok {
		t.Fatalf("ExistsByDOI: ok=%v err=%v", ok, err)
	}
	if ok, err := pubs.ExistsByDOI(dbc, "  "); err != nil || ok {
		t.Fatalf("ExistsByDOI blank: ok=%v err=%v", ok, err)
	}

	found, err := authors.FindExact(dbc, "VOLKER", "blum", "duke university")
	if err != nil || found == nil {
		t.Fatalf("FindExact: %+v err=%v", found, err)
	}
	if ok, err := authors.ExistsLike(dbc, "volker", "BLUM", "duke"); err != nil || !ok {
		t.Fatalf("ExistsLike: ok=%v err=%v", ok, err)
	}

	fresh := &types.Publication{Title: "Second", Journal: "Chem. Mater.", Attribution: catalog.Attributed(actor, testutil.Now)}
	if _, err := pubs.Create(dbc, []*types.Publication{fresh}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	newAuthor := &types.Author{FirstName: "Ruyi", LastName: "Song", Institution: "Duke", Attribution: catalog.Attributed(actor, testutil.Now)}
	if _, err := authors.Create(dbc, []*types.Author{newAuthor}); err != nil {
		t.Fatalf("Create author: %v", err)
	}
	if err := pubs.AttachAuthors(dbc, fresh, []*types.Author{found, newAuthor}); err != nil {
		t.Fatalf("AttachAuthors: %v", err)
	}

	got, err := pubs.GetByID(dbc, fresh.ID)
	if err != nil || got == nil || len(got.Authors) != 2 {
		t.Fatalf("GetByID: %+v err=%v", got, err)
	}

	byAuthor, err := pubs.SearchByAuthor(dbc, "blum")
	if err != nil || len(byAuthor) != 2 {
		t.Fatalf("SearchByAuthor: len=%d err=%v", len(byAuthor), err)
	}
	byTitle, err := pubs.SearchByTitleOrJournal(dbc, "perovskite")
	if err != nil || len(byTitle) != 1 || byTitle[0].ID != seeded.ID {
		t.Fatalf("SearchByTitleOrJournal: %+v err=%v", byTitle, err)
	}
	all, err := pubs.ListByYear(dbc)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByYear: len=%d err=%v", len(all), err)
	}
	if hits, err := authors.Search(dbc, "song"); err != nil || len(hits) != 1 {
		t.Fatalf("author Search: len=%d err=%v", len(hits), err)
	}
}
