package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/materials-backend/internal/http/handlers"
	httpMW "github.com/yungbote/materials-backend/internal/http/middleware"
	"github.com/yungbote/materials-backend/internal/observability"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

func newTestRouter(t *testing.T, serveMetrics bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	t.Setenv("METRICS_ENABLED", "true")

	return NewRouter(RouterConfig{
		Log:            log,
		ServiceName:    "materials-backend-test",
		MaxBodyBytes:   1 << 10,
		Metrics:        observability.Init(log),
		ServeMetrics:   serveMetrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, nil),
		UserHandler:    httpH.NewUserHandler(log, nil),
		DatasetHandler: httpH.NewDatasetHandler(log, nil, nil, nil, nil),
		EntryHandler:   httpH.NewEntryHandler(log, nil),
		HealthHandler:  httpH.NewHealthHandler(func(context.Context) error { return nil }),
	})
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouterHealthcheck(t *testing.T) {
	r := newTestRouter(t, false)
	w := serve(r, http.MethodGet, "/healthcheck")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthcheck: status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, false)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodPatch, "/api/me"},
		{http.MethodPost, "/api/datasets/00000000-0000-0000-0000-000000000001/toggle-visible"},
		{http.MethodDelete, "/api/datasets/00000000-0000-0000-0000-000000000001"},
		{http.MethodPut, "/api/entries/synthesis/00000000-0000-0000-0000-000000000001"},
		{http.MethodDelete, "/api/entries/synthesis/00000000-0000-0000-0000-000000000001"},
	} {
		if w := serve(r, tc.method, tc.path); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: want=401 got=%d", tc.method, tc.path, w.Code)
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, true)
	serve(r, http.MethodGet, "/api/me")

	w := serve(r, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "mat_api_requests_total") {
		t.Fatalf("metrics body missing request counter:\n%s", w.Body.String())
	}
}

func TestRouterMetricsNotServedOnAPIPortWhenSeparate(t *testing.T) {
	r := newTestRouter(t, false)
	if w := serve(r, http.MethodGet, "/metrics"); w.Code != http.StatusNotFound {
		t.Fatalf("metrics: want=404 got=%d", w.Code)
	}
}

func TestRouterServesLocalMedia(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	dir := filepath.Join(root, "datasets", "42")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.txt"), []byte("1 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewRouter(RouterConfig{MediaURL: "/media/", MediaRoot: root})

	w := serve(r, http.MethodGet, "/media/datasets/42/data.txt")
	if w.Code != http.StatusOK || w.Body.String() != "1 2\n" {
		t.Fatalf("media: status=%d body=%q", w.Code, w.Body.String())
	}
}
