package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-point-api/internal/utils"
)

// RecoveryConfig panic recovery ayarları
type RecoveryConfig struct {
	LogStackTrace bool
	// ShowDetails exposes the panic value in the response; development only.
	ShowDetails bool
}

// DefaultRecoveryConfig production için güvenli ayarlar
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		LogStackTrace: true,
		ShowDetails:   false,
	}
}

// DevelopmentRecoveryConfig development ayarları
func DevelopmentRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		LogStackTrace: true,
		ShowDetails:   true,
	}
}

// ErrorHandlingMiddleware handler panic'lerini yakalar ve 500 JSON döner
func ErrorHandlingMiddleware(config *RecoveryConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultRecoveryConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				// net/http uses this to abort a response on purpose.
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				event := log.Error().
					Str("request_id", w.Header().Get(requestIDHeader)).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("client_ip", utils.GetClientIP(r)).
					Str("panic", fmt.Sprint(recovered))
				if config.LogStackTrace {
					event = event.Str("stack", string(debug.Stack()))
				}
				event.Msg("Panic recovered")

				if wrapped.wroteHeader {
					return
				}

				message := "internal server error"
				if config.ShowDetails {
					message = fmt.Sprintf("panic: %v", recovered)
				}
				writeErrorJSON(wrapped, http.StatusInternalServerError, message)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
