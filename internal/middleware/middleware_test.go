package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/go-point-api/internal/models"
)

func panicking(w http.ResponseWriter, r *http.Request) {
	panic("boom")
}

func TestErrorHandlingMiddleware_RecoversPanic(t *testing.T) {
	tests := []struct {
		name    string
		config  *RecoveryConfig
		message string
	}{
		{"production hides details", DefaultRecoveryConfig(), "internal server error"},
		{"development shows panic", DevelopmentRecoveryConfig(), "panic: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ErrorHandlingMiddleware(tt.config)(http.HandlerFunc(panicking))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/point/1", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "500", resp.Code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestErrorHandlingMiddleware_PanicAfterWrite(t *testing.T) {
	handler := ErrorHandlingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRequestLoggingMiddleware_RequestID(t *testing.T) {
	handler := RequestLoggingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/point/1", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestShouldSkipLogging(t *testing.T) {
	skip := []string{"/health", "/debug/*"}

	assert.True(t, shouldSkipLogging("/health", skip))
	assert.True(t, shouldSkipLogging("/debug/pprof", skip))
	assert.False(t, shouldSkipLogging("/point/1", skip))
}

func TestRateLimitMiddleware_PerIPAndSkip(t *testing.T) {
	rlm := NewRateLimitMiddleware(t.Context(), &RateLimitConfig{
		RequestsPerMinute: 1,
		Burst:             1,
		SkipPaths:         []string{"/health"},
	})
	handler := rlm.Handler()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	request := func(path, remote string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request("/point/1", "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, request("/point/1", "10.0.0.1:1001"))
	assert.Equal(t, http.StatusOK, request("/point/1", "10.0.0.2:1000"))
	assert.Equal(t, http.StatusOK, request("/health", "10.0.0.1:1002"))
}

func TestRateLimitMiddleware_EvictIdle(t *testing.T) {
	rlm := NewRateLimitMiddleware(t.Context(), &RateLimitConfig{
		RequestsPerMinute: 60,
		Burst:             1,
		IdleTimeout:       time.Minute,
	})

	rlm.allow("10.0.0.1")
	rlm.evictIdle(time.Now())
	assert.Len(t, rlm.limiters, 1)

	rlm.evictIdle(time.Now().Add(2 * time.Minute))
	assert.Empty(t, rlm.limiters)
}

func TestMetrics_Snapshot(t *testing.T) {
	metrics := NewMetrics(&MetricsConfig{SlowRequestThreshold: time.Hour, MaxStoredResponse: 2})
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for range 3 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	}

	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(3), snapshot.TotalRequests)
	assert.Equal(t, int64(0), snapshot.ActiveRequests)
	assert.Equal(t, int64(3), snapshot.StatusCodeCounts[http.StatusNotFound])
	assert.Equal(t, int64(3), snapshot.RouteCounts["GET unmatched"])
	assert.Equal(t, 2, snapshot.ResponseTimeSummary["GET unmatched"].Count)
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, time.Duration(10), percentile(sorted, 95))
	assert.Equal(t, time.Duration(10), percentile(sorted, 99))
	assert.Equal(t, time.Duration(6), percentile(sorted, 50))
}
