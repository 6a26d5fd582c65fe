package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/livingroomcafe/api/internal/database"
	"go.uber.org/zap"
)

const trackNotFound = "Order not found. Please check your details."

// TrackingStore defines the database methods needed by order tracking.
// Satisfied by *database.Queries; narrow interface for testability.
type TrackingStore interface {
	GetOrderByNumberAndPhone(ctx context.Context, arg database.GetOrderByNumberAndPhoneParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// TrackingHandler lets a customer look up an order by number and phone.
type TrackingHandler struct {
	store TrackingStore
	limit func(http.Handler) http.Handler
	log   *zap.Logger
}

// NewTrackingHandler creates a new TrackingHandler. limit wraps the lookup,
// typically with a rate limiter; nil leaves it unlimited.
func NewTrackingHandler(store TrackingStore, limit func(http.Handler) http.Handler, log *zap.Logger) *TrackingHandler {
	return &TrackingHandler{store: store, limit: limit, log: loggerOrNop(log)}
}

// RegisterRoutes registers the tracking endpoint on the given Chi router.
func (h *TrackingHandler) RegisterRoutes(r chi.Router) {
	if h.limit != nil {
		r.With(h.limit).Get("/track-order", h.Track)
		return
	}
	r.Get("/track-order", h.Track)
}

// Track handles GET /api/track-order?orderNumber=&phone=. The number is
// matched upper-cased and the phone exactly; a mismatch looks the same as an
// unknown order.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	number := strings.ToUpper(strings.TrimSpace(q.Get("orderNumber")))
	phone := strings.TrimSpace(q.Get("phone"))
	if number == "" || phone == "" {
		writeError(w, http.StatusBadRequest, "Order number and phone required")
		return
	}

	order, err := h.store.GetOrderByNumberAndPhone(r.Context(), database.GetOrderByNumberAndPhoneParams{
		OrderNumber:   number,
		CustomerPhone: phone,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, trackNotFound)
			return
		}
		h.log.Error("track order", zap.String("order_number", number), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := orderWithItems(r.Context(), h.store, order)
	if err != nil {
		h.log.Error("list order items", zap.String("order_number", number), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": resp})
}
