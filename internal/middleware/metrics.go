package middleware

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// MetricsConfig middleware ayarları
type MetricsConfig struct {
	SlowRequestThreshold time.Duration // Yavaş istek eşiği
	MaxStoredResponse    int           // Route başına saklanan response time sayısı
}

// DefaultMetricsConfig varsayılan config
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		SlowRequestThreshold: 2 * time.Second,
		MaxStoredResponse:    100,
	}
}

// Metrics in-memory request counters keyed by route template, so
// /point/1 and /point/2 share one entry.
type Metrics struct {
	config *MetricsConfig

	mutex            sync.Mutex
	totalRequests    int64
	activeRequests   int64
	slowRequests     int64
	statusCodeCounts map[int]int64
	routeCounts      map[string]int64
	responseTimes    map[string][]time.Duration
}

// MetricsSnapshot /metrics JSON formatı
type MetricsSnapshot struct {
	TotalRequests       int64                       `json:"total_requests"`
	ActiveRequests      int64                       `json:"active_requests"`
	SlowRequests        int64                       `json:"slow_requests"`
	StatusCodeCounts    map[int]int64               `json:"status_code_counts"`
	RouteCounts         map[string]int64            `json:"route_counts"`
	ResponseTimeSummary map[string]ResponseTimeStat `json:"response_time_summary"`
	LastUpdated         time.Time                   `json:"last_updated"`
}

// ResponseTimeStat route başına süre istatistikleri
type ResponseTimeStat struct {
	Count   int           `json:"count"`
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
}

// NewMetrics yeni metrics collector oluşturur
func NewMetrics(config *MetricsConfig) *Metrics {
	if config == nil {
		config = DefaultMetricsConfig()
	}
	return &Metrics{
		config:           config,
		statusCodeCounts: make(map[int]int64),
		routeCounts:      make(map[string]int64),
		responseTimes:    make(map[string][]time.Duration),
	}
}

// Middleware her isteği route template'ine göre sayar
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := routeTemplate(r)

		m.mutex.Lock()
		m.totalRequests++
		m.activeRequests++
		m.routeCounts[route]++
		m.mutex.Unlock()

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		elapsed := time.Since(start)
		m.observe(route, wrapped.statusCode, elapsed)

		if elapsed > m.config.SlowRequestThreshold {
			log.Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("response_time", elapsed).
				Msg("Slow request detected")
		}
	})
}

func (m *Metrics) observe(route string, status int, elapsed time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.activeRequests--
	m.statusCodeCounts[status]++
	if elapsed > m.config.SlowRequestThreshold {
		m.slowRequests++
	}

	times := append(m.responseTimes[route], elapsed)
	if len(times) > m.config.MaxStoredResponse {
		times = times[len(times)-m.config.MaxStoredResponse:]
	}
	m.responseTimes[route] = times
}

// Handler serves the current snapshot as JSON.
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.Snapshot()); err != nil {
		log.Error().Err(err).Msg("Metrics encoding failed")
	}
}

// Snapshot oluştur
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	summary := make(map[string]ResponseTimeStat, len(m.responseTimes))
	for route, times := range m.responseTimes {
		if len(times) > 0 {
			summary[route] = summarize(times)
		}
	}

	statusCodes := make(map[int]int64, len(m.statusCodeCounts))
	for code, n := range m.statusCodeCounts {
		statusCodes[code] = n
	}
	routes := make(map[string]int64, len(m.routeCounts))
	for route, n := range m.routeCounts {
		routes[route] = n
	}

	return MetricsSnapshot{
		TotalRequests:       m.totalRequests,
		ActiveRequests:      m.activeRequests,
		SlowRequests:        m.slowRequests,
		StatusCodeCounts:    statusCodes,
		RouteCounts:         routes,
		ResponseTimeSummary: summary,
		LastUpdated:         time.Now(),
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return r.Method + " " + tpl
		}
	}
	return r.Method + " unmatched"
}

func summarize(times []time.Duration) ResponseTimeStat {
	sorted := slices.Clone(times)
	slices.Sort(sorted)

	var total time.Duration
	for _, t := range sorted {
		total += t
	}

	return ResponseTimeStat{
		Count:   len(sorted),
		Average: total / time.Duration(len(sorted)),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		P95:     percentile(sorted, 95),
		P99:     percentile(sorted, 99),
	}
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	index := int(float64(len(sorted))*float64(p)/100.0 + 0.5)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
