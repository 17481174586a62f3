package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/platform/envutil"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqError *Counter

	submissions      *CounterVec
	datapoints       *Counter
	fileSaveFailures *Counter
	downloads        *CounterVec
	downloadBytes    *CounterVec
	searches         *CounterVec
	eventsPublished  *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	d := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Init creates the process-wide registry. It returns nil when metrics are disabled;
// every method on a nil *Metrics is a no-op.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("mat_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"mat_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("mat_api_inflight_requests", "In-flight API requests."),
		apiReqError: NewCounter("mat_api_requests_error_total", "Total API requests with 5xx status."),

		submissions:      NewCounterVec("mat_submissions_total", "Form submissions by kind/outcome.", []string{"kind", "outcome"}),
		datapoints:       NewCounter("mat_datapoints_ingested_total", "Datapoints persisted by dataset ingestion."),
		fileSaveFailures: NewCounter("mat_upload_save_failures_total", "Uploaded files that could not be stored after commit."),
		downloads:        NewCounterVec("mat_downloads_total", "Downloads by kind/status.", []string{"kind", "status"}),
		downloadBytes:    NewCounterVec("mat_download_bytes_total", "Bytes served by downloads per kind.", []string{"kind"}),
		searches:         NewCounterVec("mat_searches_total", "Searches by kind and whether a range filter applied.", []string{"kind", "range"}),
		eventsPublished:  NewCounterVec("mat_events_published_total", "Catalog events published by kind/status.", []string{"kind", "status"}),

		dbStats:   NewGaugeVec("mat_db_stats", "database/sql pool stats.", []string{"stat"}),
		redisUp:   NewGauge("mat_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("mat_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqError,
		m.submissions, m.datapoints, m.fileSaveFailures, m.downloads, m.downloadBytes,
		m.searches, m.eventsPublished,
		m.dbStats, m.redisUp, m.redisPing,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// Handler exposes the registry on its own listener.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(m.WriteHTTP)
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncSubmission(kind, outcome string) {
	if m == nil {
		return
	}
	m.submissions.Inc(kind, outcome)
}

func (m *Metrics) AddDatapoints(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.datapoints.Add(float64(n))
}

func (m *Metrics) AddFileSaveFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fileSaveFailures.Add(float64(n))
}

func (m *Metrics) ObserveDownload(kind, status string, size int) {
	if m == nil {
		return
	}
	m.downloads.Inc(kind, status)
	if size > 0 {
		m.downloadBytes.Add(float64(size), kind)
	}
}

func (m *Metrics) IncSearch(kind string, rangeApplied bool) {
	if m == nil {
		return
	}
	applied := "false"
	if rangeApplied {
		applied = "true"
	}
	m.searches.Inc(kind, applied)
}

func (m *Metrics) IncEventPublished(kind, status string) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc(kind, status)
}

// StartDBCollector samples the sql.DB pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

// StartRedisCollector pings the given client until ctx is done. The client is owned by the caller.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	return len(status) == 3 && status[0] == '5'
}
