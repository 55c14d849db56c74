package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-point-api/internal/interfaces"
	"github.com/onerilhan/go-point-api/internal/models"
	"github.com/onerilhan/go-point-api/internal/services"
)

const maxAmountBodySize = 64

// PointHandler point HTTP isteklerini yönetir
type PointHandler struct {
	points         interfaces.PointDispatcher
	requestTimeout time.Duration
}

// NewPointHandler yeni handler oluşturur. requestTimeout bounds how long a
// request waits for its queued job; zero means no bound.
func NewPointHandler(points interfaces.PointDispatcher, requestTimeout time.Duration) *PointHandler {
	return &PointHandler{
		points:         points,
		requestTimeout: requestTimeout,
	}
}

func (h *PointHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

// GetPoint handles GET /point/{id}
func (h *PointHandler) GetPoint(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	point, err := h.points.GetBalance(ctx, userID)
	if err != nil {
		writeServiceError(w, err, userID)
		return
	}

	writeJSON(w, http.StatusOK, point)
}

// GetHistories handles GET /point/{id}/histories
func (h *PointHandler) GetHistories(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	histories, err := h.points.GetHistories(ctx, userID)
	if err != nil {
		writeServiceError(w, err, userID)
		return
	}

	writeJSON(w, http.StatusOK, histories)
}

// Charge handles PATCH /point/{id}/charge with the amount as a plain integer body.
func (h *PointHandler) Charge(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "charge", h.points.Charge)
}

// Use handles PATCH /point/{id}/use with the amount as a plain integer body.
func (h *PointHandler) Use(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "use", h.points.Use)
}

func (h *PointHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	call func(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error),
) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := parseAmount(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	point, err := call(ctx, userID, amount)
	if err != nil {
		writeServiceError(w, err, userID)
		return
	}

	log.Info().
		Str("op", op).
		Uint64("user_id", userID).
		Int64("amount", amount).
		Int64("point", point.Point).
		Msg("Point updated")

	writeJSON(w, http.StatusOK, point)
}

func parseUserID(r *http.Request) (uint64, error) {
	raw := mux.Vars(r)["id"]
	if raw == "" {
		return 0, errors.New("missing user id")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id: %q", raw)
	}
	return id, nil
}

func parseAmount(w http.ResponseWriter, r *http.Request) (int64, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAmountBodySize))
	if err != nil {
		return 0, errors.New("amount body too large")
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return 0, errors.New("amount is required")
	}

	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount must be an integer: %q", raw)
	}
	return amount, nil
}

// writeServiceError maps point errors to responses. Rejected amounts keep
// their message; everything else is hidden behind a generic one.
func writeServiceError(w http.ResponseWriter, err error, userID uint64) {
	switch {
	case services.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrQueueFull), errors.Is(err, services.ErrQueueStopped):
		log.Warn().Err(err).Uint64("user_id", userID).Msg("Point queue unavailable")
		writeError(w, http.StatusServiceUnavailable, "service is busy, please try again later")
		return
	case errors.Is(err, services.ErrInterrupted):
		// wraps the queue's context error, so it is checked before the caller's
		log.Error().Err(err).Uint64("user_id", userID).Msg("Point request interrupted")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// deadline or client gone; the queued job still runs
		log.Warn().Err(err).Uint64("user_id", userID).Msg("Point request timed out")
		writeError(w, http.StatusGatewayTimeout, "request timed out, the operation may still complete")
		return
	default:
		log.Error().Err(err).Uint64("user_id", userID).Msg("Point request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
