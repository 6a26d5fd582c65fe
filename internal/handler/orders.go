package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/livingroomcafe/api/internal/cart"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/livingroomcafe/api/internal/notify"
	"github.com/livingroomcafe/api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderNotifier announces a new order to the cafe.
// Satisfied by *notify.Notifier.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, o notify.OrderSummary) notify.OrderNotice
}

// OrderStore defines the database methods needed by the storefront order
// handlers. Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (database.Order, error)
	ListOrdersByPhone(ctx context.Context, customerPhone string) ([]database.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// OrderHandler handles the storefront order endpoints.
type OrderHandler struct {
	svc      OrderServicer
	store    OrderStore
	notifier OrderNotifier
	events   Publisher
	log      *zap.Logger
}

// NewOrderHandler creates a new OrderHandler. events may be nil.
func NewOrderHandler(svc OrderServicer, store OrderStore, notifier OrderNotifier, events Publisher, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		store:    store,
		notifier: notifier,
		events:   publisherOrNop(events),
		log:      loggerOrNop(log),
	}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /api.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders", h.GetByNumber)
	r.Put("/orders", h.UpdateStatus)
	r.Delete("/orders", h.Cancel)
	r.Get("/order-history", h.History)
	r.Get("/my-orders", h.MyOrders)
}

// --- Request types ---

type cartItemRequest struct {
	ID       flexString      `json:"id"`
	Name     string          `json:"name"`
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
	Quantity flexInt         `json:"quantity"`
	IsVeg    *bool           `json:"is_veg"`
}

var errQuantityTooLarge = errors.New("quantity is too large")

func (c cartItemRequest) line() (cart.Line, error) {
	name := c.Name
	if name == "" {
		name = c.ItemName
	}
	var qty int32
	if c.Quantity.Value > 0 {
		n, ok := c.Quantity.int32()
		if !ok {
			return cart.Line{}, errQuantityTooLarge
		}
		qty = n
	}
	return cart.Line{
		ID:       string(c.ID),
		Name:     name,
		Price:    c.Price,
		Quantity: qty,
		IsVeg:    c.IsVeg == nil || *c.IsVeg,
	}, nil
}

// toCartLines converts request items. Quantities below one are left for the
// order service to reject.
func toCartLines(items []cartItemRequest) ([]cart.Line, error) {
	lines := make([]cart.Line, len(items))
	for i, item := range items {
		l, err := item.line()
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		lines[i] = l
	}
	return lines, nil
}

type checkoutRequest struct {
	CustomerDetails struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		Notes   string `json:"notes"`
	} `json:"customerDetails"`
	CartItems []cartItemRequest `json:"cartItems"`
	Amounts   struct {
		Subtotal decimal.NullDecimal `json:"subtotal"`
		GST      decimal.NullDecimal `json:"gst"`
		Total    decimal.NullDecimal `json:"total"`
	} `json:"amounts"`
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`
}

type orderStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// --- Handlers ---

// Create handles POST /api/orders, the storefront checkout.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var userID uuid.NullUUID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user ID")
			return
		}
		userID = uuid.NullUUID{UUID: id, Valid: true}
	}

	lines, err := toCartLines(req.CartItems)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerName:    req.CustomerDetails.Name,
		CustomerPhone:   req.CustomerDetails.Phone,
		CustomerAddress: req.CustomerDetails.Address,
		Notes:           req.CustomerDetails.Notes,
		UserID:          userID,
		Items:           lines,
		Amounts: service.Amounts{
			Subtotal: req.Amounts.Subtotal,
			GST:      req.Amounts.GST,
			Total:    req.Amounts.Total,
		},
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Numbering:     service.NumberByTimestamp,
	})
	if err != nil {
		h.writeCreateError(w, err)
		return
	}

	order := result.Order
	notice := h.notifier.OrderPlaced(r.Context(), notify.OrderSummary{
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		Notes:           order.SpecialNotes.String,
		Items:           lines,
		Subtotal:        database.NumericToDecimal(order.Subtotal),
		GST:             database.NumericToDecimal(order.GstAmount),
		Total:           database.NumericToDecimal(order.TotalAmount),
		PaymentMethod:   order.PaymentMethod,
		TransactionID:   order.TransactionID.String,
	})

	resp := toOrderResponse(order, result.Items)
	h.events.Publish(enum.EventOrderCreated, resp)

	body := map[string]any{
		"success":     true,
		"order":       resp,
		"orderNumber": order.OrderNumber,
		"orderId":     order.ID,
		"whatsappUrl": notice.WhatsAppURL,
		"emailSent":   notice.EmailSent,
	}
	if notice.CustomerWhatsAppURL != "" {
		body["customerWhatsappUrl"] = notice.CustomerWhatsAppURL
	}
	writeJSON(w, http.StatusOK, body)
}

// writeCreateError maps order service errors to responses.
func (h *OrderHandler) writeCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, service.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "Cart is empty")
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("create order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// GetByNumber handles GET /api/orders?orderNumber=. Anyone holding the
// number can read the order.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("orderNumber")
	if number == "" {
		writeError(w, http.StatusBadRequest, "Order number required")
		return
	}

	order, err := h.store.GetOrderByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.log.Error("get order by number", zap.String("order_number", number), zap.Error(err))
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

// UpdateStatus handles PUT /api/orders. The status is written as given;
// payment status is left alone.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing orderId or status")
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
	})
	if err != nil {
		writeOrderWriteError(w, h.log, "update order status", orderID, err)
		return
	}

	resp := toOrderResponse(order, nil)
	h.events.Publish(statusEvent(order.OrderStatus), resp)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   resp,
		"message": fmt.Sprintf("Order status updated to %s", order.OrderStatus),
	})
}

// Cancel handles DELETE /api/orders?orderId=. Orders are never removed, only
// marked cancelled.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("orderId")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing orderId")
		return
	}
	orderID, err := uuid.Parse(raw)
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

// History handles GET /api/order-history?phone=.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		writeError(w, http.StatusBadRequest, "Phone number required")
		return
	}

	orders, err := h.store.ListOrdersByPhone(r.Context(), phone)
	if err != nil {
		h.log.Error("list orders by phone", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeOrderList(w, r, orders)
}

// MyOrders handles GET /api/my-orders?userId=.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "User ID required")
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	orders, err := h.store.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("list orders by user", zap.String("user_id", raw), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeOrderList(w, r, orders)
}

func (h *OrderHandler) writeOrderList(w http.ResponseWriter, r *http.Request, orders []database.Order) {
	resp, err := ordersWithItems(r.Context(), h.store, orders)
	if err != nil {
		h.log.Error("list order items", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": resp})
}

// --- Helpers ---

type orderItemLister interface {
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

func orderWithItems(ctx context.Context, store orderItemLister, order database.Order) (orderResponse, error) {
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return orderResponse{}, err
	}
	if items == nil {
		items = []database.OrderItem{}
	}
	return toOrderResponse(order, items), nil
}

func ordersWithItems(ctx context.Context, store orderItemLister, orders []database.Order) ([]orderResponse, error) {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		one, err := orderWithItems(ctx, store, o)
		if err != nil {
			return nil, err
		}
		resp = append(resp, one)
	}
	return resp, nil
}

// writeOrderWriteError reports a failed update of a single order.
func writeOrderWriteError(w http.ResponseWriter, log *zap.Logger, op string, orderID uuid.UUID, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	log.Error(op, zap.String("order_id", orderID.String()), zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func statusEvent(status string) string {
	if status == enum.OrderStatusCancelled {
		return enum.EventOrderCancelled
	}
	return enum.EventOrderUpdated
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrMissingFields) ||
		errors.Is(err, service.ErrEmptyCart) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidItemName) ||
		errors.Is(err, service.ErrInvalidPrice)
}
