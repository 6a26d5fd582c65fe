package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/livingroomcafe/api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// AdminOrderStore defines the database methods needed by the admin order
// handlers. Satisfied by *database.Queries; narrow interface for testability.
type AdminOrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	CountOrders(ctx context.Context, arg database.CountOrdersParams) (int64, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderDetails(ctx context.Context, arg database.UpdateOrderDetailsParams) (database.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// AdminOrderHandler handles order management for the admin panel.
type AdminOrderHandler struct {
	svc    OrderServicer
	store  AdminOrderStore
	events Publisher
	log    *zap.Logger
	now    func() time.Time
}

// NewAdminOrderHandler creates a new AdminOrderHandler. events may be nil.
func NewAdminOrderHandler(svc OrderServicer, store AdminOrderStore, events Publisher, log *zap.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{
		svc:    svc,
		store:  store,
		events: publisherOrNop(events),
		log:    loggerOrNop(log),
		now:    time.Now,
	}
}

// RegisterRoutes registers admin order endpoints on the given Chi router.
// Expected to be mounted at /admin/orders.
func (h *AdminOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/", h.UpdateStatus)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Patch)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type adminCreateOrderRequest struct {
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerAddress string              `json:"customer_address"`
	SpecialNotes    string              `json:"special_notes"`
	Items           []cartItemRequest   `json:"items"`
	Subtotal        decimal.NullDecimal `json:"subtotal"`
	GstAmount       decimal.NullDecimal `json:"gst_amount"`
	TotalAmount     decimal.NullDecimal `json:"total_amount"`
	PaymentMethod   string              `json:"payment_method"`
}

type patchOrderRequest struct {
	Status       *string `json:"status"`
	AdminNotes   *string `json:"admin_notes"`
	CancelReason *string `json:"cancel_reason"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// --- Handlers ---

// List handles GET /api/admin/orders with status, search, date and page
// filters.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = p
	}
	limit := defaultOrderPageSize
	if v := q.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(l, maxOrderPageSize)
	}

	var status pgtype.Text
	if s := q.Get("status"); s != "" && s != "all" {
		status = pgtype.Text{String: s, Valid: true}
	}
	search := nonEmptyText(strings.TrimSpace(q.Get("search")))
	from, before := dateRange(q.Get("date"), h.now())

	total, err := h.store.CountOrders(r.Context(), database.CountOrdersParams{
		Status:        status,
		Search:        search,
		CreatedFrom:   from,
		CreatedBefore: before,
	})
	if err != nil {
		h.log.Error("count orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A page whose offset does not fit the query parameter is past the end.
	var orders []database.Order
	if page-1 <= math.MaxInt32/limit {
		orders, err = h.store.ListOrders(r.Context(), database.ListOrdersParams{
			Status:        status,
			Search:        search,
			CreatedFrom:   from,
			CreatedBefore: before,
			Limit:         int32(limit),
			Offset:        int32((page - 1) * limit),
		})
		if err != nil {
			h.log.Error("list orders", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	resp, err := ordersWithItems(r.Context(), h.store, orders)
	if err != nil {
		h.log.Error("list order items", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orders":  resp,
		"pagination": paginationResponse{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// dateRange turns a date filter into created_at bounds. Days start at
// midnight cafe time.
func dateRange(filter string, now time.Time) (from, before pgtype.Timestamptz) {
	local := now.In(enum.CafeTimeZone)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, enum.CafeTimeZone)

	switch filter {
	case "today":
		from = pgtype.Timestamptz{Time: midnight, Valid: true}
	case "yesterday":
		from = pgtype.Timestamptz{Time: midnight.AddDate(0, 0, -1), Valid: true}
		before = pgtype.Timestamptz{Time: midnight, Valid: true}
	case "week":
		from = pgtype.Timestamptz{Time: now.AddDate(0, 0, -7), Valid: true}
	}
	return from, before
}

// Create handles POST /api/admin/orders. Numbers come from the database
// sequence rather than the clock.
func (h *AdminOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req adminCreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	lines, err := toCartLines(req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.SpecialNotes,
		Items:           lines,
		Amounts: service.Amounts{
			Subtotal: req.Subtotal,
			GST:      req.GstAmount,
			Total:    req.TotalAmount,
		},
		PaymentMethod: req.PaymentMethod,
		Numbering:     service.NumberBySequence,
	})
	if err != nil {
		if isValidationError(err) {
			msg := err.Error()
			if errors.Is(err, service.ErrMissingFields) {
				msg = "Missing required fields"
			}
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		h.log.Error("create admin order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.events.Publish(enum.EventOrderCreated, resp)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   resp,
		"message": "Order placed successfully",
	})
}

// UpdateStatus handles PUT /api/admin/orders. Only the six known statuses
// are accepted; delivering an order also marks it paid.
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing orderId or status")
		return
	}
	if !enum.ValidOrderStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:          orderID,
		OrderStatus: req.Status,
		MarkPaid:    req.Status == enum.OrderStatusDelivered,
	})
	if err != nil {
		writeOrderWriteError(w, h.log, "update order status", orderID, err)
		return
	}

	h.log.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.OrderStatus),
	)
	resp := toOrderResponse(order, nil)
	h.events.Publish(statusEvent(order.OrderStatus), resp)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   resp,
		"message": fmt.Sprintf("Order status updated to %s", req.Status),
	})
}

// Get handles GET /api/admin/orders/{id}.
func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.log.Error("get order", zap.String("order_id", orderID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := orderWithItems(r.Context(), h.store, order)
	if err != nil {
		h.log.Error("list order items", zap.String("order_id", orderID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": resp})
}

// Patch handles PATCH /api/admin/orders/{id}: any of status, admin_notes and
// cancel_reason. The status is not validated and payment is left alone.
func (h *AdminOrderHandler) Patch(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req patchOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := database.UpdateOrderDetailsParams{
		ID:           orderID,
		AdminNotes:   optionalText(req.AdminNotes),
		CancelReason: optionalText(req.CancelReason),
	}
	if req.Status != nil && *req.Status != "" {
		params.OrderStatus = pgtype.Text{String: *req.Status, Valid: true}
	}

	order, err := h.store.UpdateOrderDetails(r.Context(), params)
	if err != nil {
		writeOrderWriteError(w, h.log, "update order", orderID, err)
		return
	}

	resp := toOrderResponse(order, nil)
	h.events.Publish(statusEvent(order.OrderStatus), resp)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   resp,
		"message": "Order updated successfully",
	})
}

// Cancel handles DELETE /api/admin/orders/{id} as a soft cancel.
func (h *AdminOrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.CancelOrder(r.Context(), orderID)
	if err != nil {
		writeOrderWriteError(w, h.log, "cancel order", orderID, err)
		return
	}

	h.events.Publish(enum.EventOrderCancelled, toOrderResponse(order, nil))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order cancelled successfully",
	})
}
