package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/materials-backend/internal/domain"
	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/http/response"
	pkgerrors "github.com/yungbote/materials-backend/internal/pkg/errors"
	"github.com/yungbote/materials-backend/internal/platform/ctxutil"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

// stubCatalog overrides the calls a test needs; the rest panic.
type stubCatalog struct {
	services.CatalogService
	addSystem func(actor services.Actor, in services.SystemInput) (*types.System, error)
	getSystem func(id uuid.UUID) (*types.System, error)
}

func (s *stubCatalog) AddSystem(_ context.Context, actor services.Actor, in services.SystemInput) (*types.System, error) {
	return s.addSystem(actor, in)
}

func (s *stubCatalog) GetSystem(_ context.Context, id uuid.UUID) (*types.System, error) {
	return s.getSystem(id)
}

type stubExports struct {
	services.ExportService
	entryDownload func(kind services.DownloadKind, id uuid.UUID) (*services.Download, error)
}

func (s *stubExports) EntryDownload(_ context.Context, kind services.DownloadKind, id uuid.UUID) (*services.Download, error) {
	return s.entryDownload(kind, id)
}

// withUser attaches an authenticated caller the way the auth middleware does.
func withUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: id})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeFeedback(t *testing.T, w *httptest.ResponseRecorder) response.Feedback {
	t.Helper()
	var fb response.Feedback
	if err := json.Unmarshal(w.Body.Bytes(), &fb); err != nil {
		t.Fatalf("decode feedback %q: %v", w.Body.String(), err)
	}
	return fb
}

func TestAddSystemAnonymousGetsLoginFeedback(t *testing.T) {
	h := NewCatalogHandler(newTestLogger(t), &stubCatalog{})
	r := gin.New()
	r.POST("/api/systems", h.AddSystem)

	w := postForm(r, "/api/systems", url.Values{"compound_name": {"Methylammonium lead iodide"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	fb := decodeFeedback(t, w)
	if fb.Feedback != response.FeedbackFailure || fb.Text != services.TextLoginRequired {
		t.Fatalf("feedback: got=%+v", fb)
	}
}

func TestAddSystemSuccess(t *testing.T) {
	user := uuid.New()
	sysID := uuid.New()
	var gotActor services.Actor
	var gotIn services.SystemInput
	h := NewCatalogHandler(newTestLogger(t), &stubCatalog{
		addSystem: func(actor services.Actor, in services.SystemInput) (*types.System, error) {
			gotActor, gotIn = actor, in
			return &types.System{ID: sysID}, nil
		},
	})
	r := gin.New()
	r.POST("/api/systems", withUser(user), h.AddSystem)

	w := postForm(r, "/api/systems", url.Values{
		"compound_name": {"Methylammonium lead iodide"},
		"formula":       {"CH3NH3PbI3"},
		"group":         {"perovskite"},
	})
	fb := decodeFeedback(t, w)
	if fb.Feedback != response.FeedbackSuccess || fb.Text != services.TextSystemAdded || fb.ID != sysID.String() {
		t.Fatalf("feedback: got=%+v", fb)
	}
	if gotActor.UserID != user {
		t.Fatalf("actor: want=%s got=%s", user, gotActor.UserID)
	}
	if gotIn.Formula != "CH3NH3PbI3" || gotIn.Group != "perovskite" {
		t.Fatalf("input: got=%+v", gotIn)
	}
}

func TestAddSystemValidationFailureIsFeedback(t *testing.T) {
	h := NewCatalogHandler(newTestLogger(t), &stubCatalog{
		addSystem: func(services.Actor, services.SystemInput) (*types.System, error) {
			return nil, &services.ValidationError{Kind: services.KindDuplicate, Field: "formula", Msg: "System already exists"}
		},
	})
	r := gin.New()
	r.POST("/api/systems", withUser(uuid.New()), h.AddSystem)

	w := postForm(r, "/api/systems", url.Values{"formula": {"PbI2"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	fb := decodeFeedback(t, w)
	if fb.Feedback != response.FeedbackFailure || fb.Text != "System already exists" {
		t.Fatalf("feedback: got=%+v", fb)
	}
}

func TestGetSystemRejectsMalformedID(t *testing.T) {
	h := NewCatalogHandler(newTestLogger(t), &stubCatalog{})
	r := gin.New()
	r.GET("/api/systems/:id", h.GetSystem)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/systems/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
	var env response.ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "invalid_id" {
		t.Fatalf("code: want=invalid_id got=%q", env.Error.Code)
	}
}

func TestGetSystemNotFound(t *testing.T) {
	h := NewCatalogHandler(newTestLogger(t), &stubCatalog{
		getSystem: func(uuid.UUID) (*types.System, error) {
			return nil, pkgerrors.ErrNotFound
		},
	})
	r := gin.New()
	r.GET("/api/systems/:id", h.GetSystem)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/systems/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d", w.Code)
	}
}

func TestEntryDownloadWritesAttachment(t *testing.T) {
	id := uuid.New()
	var gotKind services.DownloadKind
	h := NewExportHandler(newTestLogger(t), &stubExports{
		entryDownload: func(kind services.DownloadKind, gotID uuid.UUID) (*services.Download, error) {
			gotKind = kind
			if gotID != id {
				return nil, errors.New("unexpected id")
			}
			return &services.Download{Filename: "PbI2.txt", ContentType: "text/plain", Body: []byte("a b c\n")}, nil
		},
	}, nil)
	r := gin.New()
	r.GET("/api/downloads/:kind/:id", h.EntryDownload)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/downloads/band_gap/"+id.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", w.Code, w.Body.String())
	}
	if gotKind != services.DownloadBandGap {
		t.Fatalf("kind: got=%q", gotKind)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=PbI2.txt" {
		t.Fatalf("content-disposition: got=%q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain" {
		t.Fatalf("content-type: got=%q", got)
	}
	if w.Body.String() != "a b c\n" {
		t.Fatalf("body: got=%q", w.Body.String())
	}
}

func TestEntryDownloadInternalError(t *testing.T) {
	h := NewExportHandler(newTestLogger(t), &stubExports{
		entryDownload: func(services.DownloadKind, uuid.UUID) (*services.Download, error) {
			return nil, errors.New("disk gone")
		},
	}, nil)
	r := gin.New()
	r.GET("/api/downloads/:kind/:id", h.EntryDownload)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/downloads/synthesis/"+uuid.NewString(), nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name string
		db   Pinger
		want int
	}{
		{"no db", nil, http.StatusOK},
		{"db up", func(context.Context) error { return nil }, http.StatusOK},
		{"db down", func(context.Context) error { return errors.New("refused") }, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/healthcheck", NewHealthHandler(tc.db).HealthCheck)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
			if w.Code != tc.want {
				t.Fatalf("status: want=%d got=%d", tc.want, w.Code)
			}
		})
	}
}

func TestRequestHostHonoursForwardedProto(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "http://materials.example.org/api", nil)
	c.Request.Header.Set("X-Forwarded-Proto", "https")
	if got := requestHost(c); got != "https://materials.example.org" {
		t.Fatalf("host: got=%q", got)
	}
}

type stubEntries struct {
	services.EntryService
	updateEntry func(actor services.Actor, kind catalog.EntryKind, id uuid.UUID, in services.EntryUpdate) (*services.EntryResult, error)
}

func (s *stubEntries) UpdateEntry(_ context.Context, actor services.Actor, kind catalog.EntryKind, id uuid.UUID, in services.EntryUpdate) (*services.EntryResult, error) {
	return s.updateEntry(actor, kind, id, in)
}

func putForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateEntryDecodesKindForm(t *testing.T) {
	user, entryID, sysID := uuid.New(), uuid.New(), uuid.New()
	var (
		gotKind catalog.EntryKind
		gotID   uuid.UUID
		gotIn   services.EntryUpdate
	)
	h := NewEntryHandler(newTestLogger(t), &stubEntries{
		updateEntry: func(actor services.Actor, kind catalog.EntryKind, id uuid.UUID, in services.EntryUpdate) (*services.EntryResult, error) {
			if actor.UserID != user {
				t.Fatalf("actor: want=%s got=%s", user, actor.UserID)
			}
			gotKind, gotID, gotIn = kind, id, in
			return &services.EntryResult{ID: id, Kind: kind}, nil
		},
	})
	r := gin.New()
	r.PUT("/api/entries/:kind/:id", withUser(user), h.UpdateEntry)

	w := putForm(r, "/api/entries/material_prop/"+entryID.String(), url.Values{
		"system":      {sysID.String()},
		"temperature": {"300 K"},
		"property":    {"band gap"},
		"value":       {"1.6"},
	})
	fb := decodeFeedback(t, w)
	if fb.Feedback != response.FeedbackSuccess || fb.Text != services.TextSaveSuccess || fb.ID != entryID.String() {
		t.Fatalf("feedback: got=%+v", fb)
	}
	if gotKind != catalog.EntryMaterialProperty || gotID != entryID {
		t.Fatalf("target: got=%s %s", gotKind, gotID)
	}
	p := gotIn.MaterialProperty
	if p == nil || gotIn.Synthesis != nil || p.SystemID != sysID || p.Property != "band gap" || p.Value != "1.6" || p.Temperature != "300 K" {
		t.Fatalf("input: got=%+v", gotIn)
	}
}

func TestUpdateEntryRejectsUnknownKind(t *testing.T) {
	h := NewEntryHandler(newTestLogger(t), &stubEntries{})
	r := gin.New()
	r.PUT("/api/entries/:kind/:id", withUser(uuid.New()), h.UpdateEntry)

	w := putForm(r, "/api/entries/bogus/"+uuid.New().String(), url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
}
