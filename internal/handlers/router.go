package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-point-api/internal/middleware"
)

// RouterOptions router'a takılacak opsiyonel parçalar
type RouterOptions struct {
	Recovery  *middleware.RecoveryConfig
	Logging   *middleware.LoggingConfig
	Metrics   *middleware.Metrics
	RateLimit *middleware.RateLimitMiddleware
}

// NewRouter Gorilla Mux router'ını ayarlar
func NewRouter(pointHandler *PointHandler, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()

	router.NotFoundHandler = middleware.NotFoundJSONHandler()
	router.MethodNotAllowedHandler = middleware.MethodNotAllowedJSONHandler()

	// Sıra: recovery -> logging -> metrics -> rate limit
	router.Use(middleware.ErrorHandlingMiddleware(opts.Recovery))
	router.Use(middleware.RequestLoggingMiddleware(opts.Logging))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	if opts.RateLimit != nil {
		router.Use(opts.RateLimit.Handler())
	}

	router.HandleFunc("/health", Health).Methods(http.MethodGet)
	if opts.Metrics != nil {
		router.HandleFunc("/metrics", opts.Metrics.Handler).Methods(http.MethodGet)
	}

	// Root router üzerinde: subrouter route'ları 405 handler'ını görmez
	router.HandleFunc("/point/{id}", pointHandler.GetPoint).Methods(http.MethodGet)
	router.HandleFunc("/point/{id}/histories", pointHandler.GetHistories).Methods(http.MethodGet)
	router.HandleFunc("/point/{id}/charge", pointHandler.Charge).Methods(http.MethodPatch)
	router.HandleFunc("/point/{id}/use", pointHandler.Use).Methods(http.MethodPatch)

	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			methods, _ := route.GetMethods()
			log.Debug().
				Str("path", pathTemplate).
				Strs("methods", methods).
				Msg("Route registered")
		}
		return nil
	})

	return router
}

// Health liveness endpoint
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
