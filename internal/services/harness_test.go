package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/catalog/vocabulary"
	"github.com/yungbote/materials-backend/internal/data/repos"
	"github.com/yungbote/materials-backend/internal/data/repos/testutil"
	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/platform/eventbus"
	"github.com/yungbote/materials-backend/internal/platform/filestore"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type harness struct {
	ctx     context.Context
	db      *gorm.DB
	log     *logger.Logger
	clock   Clock
	actor   Actor
	user    *types.User
	systems repos.SystemRepo
	pubs    repos.PublicationRepo
	authors repos.AuthorRepo
	vocab   repos.VocabularyRepo
	data    repos.DatasetRepo
	entries repos.EntryRepo
	events  repos.EventRepo
	store   filestore.FileStore
	bus     *recordingBus
	catalog CatalogService
	entry   EntryService
}

// recordingBus keeps published events in memory.
type recordingBus struct {
	mu        sync.Mutex
	published []*types.CatalogEvent
}

func (b *recordingBus) Publish(_ context.Context, evt *types.CatalogEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, evt)
	return nil
}

func (b *recordingBus) Subscribe(context.Context, func(eventbus.Message)) error { return nil }
func (b *recordingBus) Close() error                                          { return nil }

func (b *recordingBus) kinds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.Kind)
	}
	return out
}

// brokenStore fails every write.
type brokenStore struct {
	filestore.FileStore
}

func (brokenStore) Save(context.Context, string, io.Reader) error {
	return errors.New("disk full")
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		ctx:     context.Background(),
		db:      db,
		log:     log,
		clock:   func() time.Time { return testutil.Now },
		systems: repos.NewSystemRepo(db, log),
		pubs:    repos.NewPublicationRepo(db, log),
		authors: repos.NewAuthorRepo(db, log),
		vocab:   repos.NewVocabularyRepo(db, log),
		data:    repos.NewDatasetRepo(db, log),
		entries: repos.NewEntryRepo(db, log),
		events:  repos.NewEventRepo(db, log),
	}
	store, err := filestore.NewLocal(log, t.TempDir(), "/media/")
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	h.store = store
	h.bus = &recordingBus{}
	h.user = testutil.SeedUser(t, h.ctx, db, "contributor@example.org")
	h.actor = Actor{UserID: h.user.ID}
	choices, err := vocabulary.Default()
	if err != nil {
		t.Fatalf("vocabulary: %v", err)
	}
	h.catalog = NewCatalogService(db, log, h.systems, h.pubs, h.authors, h.vocab, h.events, choices, h.clock)
	h.entry = h.newEntryService(h.store)
	return h
}

func (h *harness) newEntryService(store filestore.FileStore) EntryService {
	return NewEntryService(h.db, h.log, h.systems, h.pubs, h.vocab, h.entries, h.events, store, h.bus, nil, h.clock)
}

func (h *harness) readFile(t *testing.T, key string) string {
	t.Helper()
	rc, err := h.store.Open(h.ctx, key)
	if err != nil {
		t.Fatalf("open %s: %v", key, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	return string(raw)
}

func (h *harness) seedSystem(t *testing.T, name, formula, organic, inorganic string) *types.System {
	t.Helper()
	return testutil.SeedSystem(t, h.ctx, h.db, h.actor.UserID, name, formula, organic, inorganic)
}

func (h *harness) seedPublication(t *testing.T, title, doi string, authors ...[2]string) *types.Publication {
	t.Helper()
	return testutil.SeedPublication(t, h.ctx, h.db, h.actor.UserID, title, doi, authors...)
}

func (h *harness) seedPhase(t *testing.T, phase string) *types.Phase {
	t.Helper()
	return testutil.SeedPhase(t, h.ctx, h.db, h.actor.UserID, phase)
}

func validationMsg(t *testing.T, err error) string {
	t.Helper()
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	return ve.Msg
}
