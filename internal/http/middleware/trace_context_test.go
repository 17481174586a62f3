package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/materials-backend/internal/platform/ctxutil"
)

func TestAttachTraceContextPropagatesCallerIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/api/systems", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/systems", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderTraceID, "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID != "trace-1" {
		t.Fatalf("trace data: got=%+v", seen)
	}
	if w.Header().Get(HeaderRequestID) != "req-1" || w.Header().Get(HeaderTraceID) != "trace-1" {
		t.Fatalf("echoed headers: got=%v", w.Header())
	}
}

func TestAttachTraceContextMintsMissingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if w.Header().Get(HeaderRequestID) == "" || w.Header().Get(HeaderTraceID) == "" {
		t.Fatalf("expected minted ids, got=%v", w.Header())
	}
	if w.Header().Get(HeaderRequestID) == w.Header().Get(HeaderTraceID) {
		t.Fatalf("request and trace ids must differ")
	}
}
