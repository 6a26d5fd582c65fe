package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"go.uber.org/zap"
)

// PaymentStore defines the database methods needed by payment handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type PaymentStore interface {
	ConfirmPayment(ctx context.Context, arg database.ConfirmPaymentParams) (database.Order, error)
}

// PaymentHandler records payments made after checkout.
type PaymentHandler struct {
	store  PaymentStore
	events Publisher
	log    *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler. events may be nil.
func NewPaymentHandler(store PaymentStore, events Publisher, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{store: store, events: publisherOrNop(events), log: loggerOrNop(log)}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted at /payment.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/confirm", h.Confirm)
}

type confirmPaymentRequest struct {
	OrderID       string `json:"orderId"`
	PaymentMethod string `json:"paymentMethod"`
	PaymentStatus string `json:"paymentStatus"`
	TransactionID string `json:"transactionId"`
}

// Confirm handles POST /api/payment/confirm. Payment fields change
// independently of the order status. A transaction id also replaces the
// special notes with "UPI Transaction ID: <id>".
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || strings.TrimSpace(req.PaymentMethod) == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.ConfirmPayment(r.Context(), database.ConfirmPaymentParams{
		ID:            orderID,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		PaymentStatus: nonEmptyText(strings.TrimSpace(req.PaymentStatus)),
		TransactionID: nonEmptyText(strings.TrimSpace(req.TransactionID)),
	})
	if err != nil {
		writeOrderWriteError(w, h.log, "confirm payment", orderID, err)
		return
	}

	h.log.Info("payment confirmed",
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_method", order.PaymentMethod),
		zap.String("payment_status", order.PaymentStatus),
	)
	resp := toOrderResponse(order, nil)
	h.events.Publish(enum.EventPaymentConfirmed, resp)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   resp,
		"message": "Payment confirmed successfully",
	})
}
