package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/platform/envutil"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	aggregateOps      *CounterVec
	aggregateLatency  *HistogramVec
	aggregateConflict *CounterVec
	aggregateRetry    *CounterVec

	checkoutTransitions *CounterVec
	passScans           *CounterVec
	notifications       *CounterVec

	pgStats   *GaugeVec
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

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}

// Init builds the process-wide registry when METRICS_ENABLED is set.
// A nil *Metrics is valid everywhere and records nothing.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New returns an unregistered registry; tests use it directly.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("nishad_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"nishad_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("nishad_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("nishad_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("nishad_api_requests_error_total", "Total API requests with 5xx status."),

		aggregateOps: NewCounterVec("nishad_aggregate_operations_total", "Aggregate write operations by name/status.", []string{"operation", "status"}),
		aggregateLatency: NewHistogramVec(
			"nishad_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds by name/status.",
			[]string{"operation", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		aggregateConflict: NewCounterVec("nishad_aggregate_conflicts_total", "Aggregate conflicts by operation.", []string{"operation"}),
		aggregateRetry:    NewCounterVec("nishad_aggregate_retries_total", "Aggregate retries by operation.", []string{"operation"}),

		checkoutTransitions: NewCounterVec("nishad_checkout_transitions_total", "Committed checkout transitions by action/to status.", []string{"action", "to_status"}),
		passScans:           NewCounterVec("nishad_gatepass_scans_total", "Event pass scans by result.", []string{"result"}),
		notifications:       NewCounterVec("nishad_notifications_total", "Notifications emitted by kind/status.", []string{"kind", "status"}),

		pgStats:   NewGaugeVec("nishad_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:   NewGauge("nishad_redis_up", "Redis reachable (1/0)."),
		redisPing: NewGauge("nishad_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	all := []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflict, m.aggregateRetry,
		m.checkoutTransitions, m.passScans, m.notifications,
		m.pgStats, m.redisUp, m.redisPing,
	}
	for _, pw := range all {
		if err := pw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
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
	m.apiReqTotal.Inc()
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

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if name == "" {
		name = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.aggregateOps.Inc(name, status)
	m.aggregateLatency.Observe(dur.Seconds(), name, status)
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflict.Inc(name)
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetry.Inc(name)
}

func (m *Metrics) IncCheckoutTransition(action, toStatus string) {
	if m == nil {
		return
	}
	m.checkoutTransitions.Inc(action, toStatus)
}

// IncPassScan records a gate scan; result is "admitted" or the refusal reason.
func (m *Metrics) IncPassScan(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.passScans.Inc(result)
}

func (m *Metrics) IncNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notifications.Inc(kind, status)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
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
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	interval := scrapeInterval()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
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
