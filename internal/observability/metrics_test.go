package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("GET", "/api/search", "200", 30*time.Millisecond)
	m.ObserveAPI("POST", "/api/datasets", "500", time.Second)
	m.IncSubmission("dataset", "success")
	m.AddDatapoints(2)
	m.ObserveDownload("band_gap", "ok", 120)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`mat_api_requests_total{method="GET",route="/api/search",status="200"} 1`,
		`mat_api_requests_error_total 1`,
		`mat_api_request_duration_seconds_bucket{method="GET",route="/api/search",status="200",le="0.05"} 1`,
		`mat_submissions_total{kind="dataset",outcome="success"} 1`,
		`mat_datapoints_ingested_total 2`,
		`mat_download_bytes_total{kind="band_gap"} 120`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncSubmission("dataset", "failure")
	m.AddDatapoints(1)
	m.IncSearch("formula", false)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil metrics write: %v", err)
	}
}
