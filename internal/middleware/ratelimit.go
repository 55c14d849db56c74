package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/onerilhan/go-point-api/internal/utils"
)

// RateLimitConfig rate limiting ayarları
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	SkipPaths         []string
	CleanupInterval   time.Duration
	IdleTimeout       time.Duration // bu süre görülmeyen IP'ler silinir
}

// DefaultRateLimitConfig varsayılan rate limit ayarları
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute: 600,
		Burst:             100,
		SkipPaths: []string{
			"/health",
			"/metrics",
		},
		CleanupInterval: 10 * time.Minute,
		IdleTimeout:     30 * time.Minute,
	}
}

// ipLimiter tek bir IP için rate limiter
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware IP başına token bucket uygular
type RateLimitMiddleware struct {
	config   *RateLimitConfig
	limit    rate.Limit
	limiters map[string]*ipLimiter
	mutex    sync.Mutex
}

// NewRateLimitMiddleware yeni rate limit middleware oluşturur. Idle limiters
// are evicted until ctx is done.
func NewRateLimitMiddleware(ctx context.Context, config *RateLimitConfig) *RateLimitMiddleware {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	rlm := &RateLimitMiddleware{
		config:   config,
		limit:    rate.Inf,
		limiters: make(map[string]*ipLimiter),
	}
	if config.RequestsPerMinute > 0 {
		rlm.limit = rate.Every(time.Minute / time.Duration(config.RequestsPerMinute))
	}

	if config.CleanupInterval > 0 {
		go rlm.cleanupLimiters(ctx)
	}

	return rlm
}

// Handler rate limiting middleware handler döner
func (rlm *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rlm.shouldSkipPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := utils.GetClientIP(r)
			allowed, remaining := rlm.allow(clientIP)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rlm.config.RequestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				log.Warn().Str("client_ip", clientIP).Msg("Request blocked - rate limit exceeded")
				retryAfter := time.Duration(float64(time.Second) / float64(rlm.limit))
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retryAfter.Seconds()))))
				writeErrorJSON(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rlm *RateLimitMiddleware) allow(ip string) (bool, int) {
	rlm.mutex.Lock()
	defer rlm.mutex.Unlock()

	now := time.Now()
	entry, exists := rlm.limiters[ip]
	if !exists {
		entry = &ipLimiter{limiter: rate.NewLimiter(rlm.limit, rlm.config.Burst)}
		rlm.limiters[ip] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	remaining := max(0, int(entry.limiter.TokensAt(now)))
	return allowed, remaining
}

// shouldSkipPath path kontrolü
func (rlm *RateLimitMiddleware) shouldSkipPath(path string) bool {
	for _, skipPath := range rlm.config.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	return false
}

// cleanupLimiters eski limiter'ları temizler
func (rlm *RateLimitMiddleware) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(rlm.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rlm.evictIdle(time.Now())
		}
	}
}

func (rlm *RateLimitMiddleware) evictIdle(now time.Time) {
	rlm.mutex.Lock()
	defer rlm.mutex.Unlock()

	for ip, entry := range rlm.limiters {
		if now.Sub(entry.lastSeen) > rlm.config.IdleTimeout {
			delete(rlm.limiters, ip)
		}
	}

	log.Debug().Int("active_limiters", len(rlm.limiters)).Msg("Rate limiter cleanup completed")
}
