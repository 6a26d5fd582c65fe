package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/livingroomcafe/api/internal/handler"
	"github.com/livingroomcafe/api/internal/notify"
	"github.com/livingroomcafe/api/internal/service"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	createFn func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	lastReq  service.CreateOrderRequest
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	m.lastReq = req
	return m.createFn(ctx, req)
}

// --- Mock order store ---

// mockOrderDB is an in-memory orders table shared by the order, tracking,
// payment and dashboard handler tests.
type mockOrderDB struct {
	orders  map[uuid.UUID]database.Order
	items   map[uuid.UUID][]database.OrderItem
	err     error
	lastLst database.ListOrdersParams
}

func newMockOrderDB() *mockOrderDB {
	return &mockOrderDB{
		orders: make(map[uuid.UUID]database.Order),
		items:  make(map[uuid.UUID][]database.OrderItem),
	}
}

func (m *mockOrderDB) add(number, phone, status string, created time.Time) database.Order {
	o := database.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		CustomerName:    "Asha",
		CustomerPhone:   phone,
		CustomerAddress: "12 MG Road",
		Subtotal:        numeric("200"),
		GstAmount:       numeric("10"),
		TotalAmount:     numeric("210"),
		PaymentMethod:   enum.PaymentMethodCOD,
		PaymentStatus:   enum.PaymentStatusPending,
		OrderStatus:     status,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	m.orders[o.ID] = o
	m.items[o.ID] = []database.OrderItem{{
		ID: uuid.New(), OrderID: o.ID, ItemName: "Margherita", Price: numeric("100"), Quantity: 2, IsVeg: true,
	}}
	return o
}

func (m *mockOrderDB) sorted(keep func(database.Order) bool) []database.Order {
	var result []database.Order
	for _, o := range m.orders {
		if keep(o) {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (m *mockOrderDB) GetOrderByNumber(_ context.Context, number string) (database.Order, error) {
	if m.err != nil {
		return database.Order{}, m.err
	}
	for _, o := range m.orders {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderDB) GetOrderByNumberAndPhone(_ context.Context, arg database.GetOrderByNumberAndPhoneParams) (database.Order, error) {
	if m.err != nil {
		return database.Order{}, m.err
	}
	for _, o := range m.orders {
		if o.OrderNumber == arg.OrderNumber && o.CustomerPhone == arg.CustomerPhone {
			return o, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderDB) GetOrderByID(_ context.Context, id uuid.UUID) (database.Order, error) {
	if m.err != nil {
		return database.Order{}, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderDB) ListOrdersByPhone(_ context.Context, phone string) ([]database.Order, error) {
	return m.sorted(func(o database.Order) bool { return o.CustomerPhone == phone }), m.err
}

func (m *mockOrderDB) ListOrdersByUser(_ context.Context, userID uuid.UUID) ([]database.Order, error) {
	return m.sorted(func(o database.Order) bool { return o.UserID.Valid && o.UserID.Bytes == userID }), m.err
}

func (m *mockOrderDB) ListOrderItemsByOrder(_ context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *mockOrderDB) matches(o database.Order, status, search pgtype.Text, from, before pgtype.Timestamptz) bool {
	if status.Valid && o.OrderStatus != status.String {
		return false
	}
	if search.Valid {
		s := strings.ToLower(search.String)
		if !strings.Contains(strings.ToLower(o.OrderNumber), s) &&
			!strings.Contains(strings.ToLower(o.CustomerName), s) &&
			!strings.Contains(o.CustomerPhone, s) {
			return false
		}
	}
	if from.Valid && o.CreatedAt.Before(from.Time) {
		return false
	}
	if before.Valid && !o.CreatedAt.Before(before.Time) {
		return false
	}
	return true
}

func (m *mockOrderDB) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	m.lastLst = arg
	all := m.sorted(func(o database.Order) bool {
		return m.matches(o, arg.Status, arg.Search, arg.CreatedFrom, arg.CreatedBefore)
	})
	start := min(int(arg.Offset), len(all))
	end := min(start+int(arg.Limit), len(all))
	return all[start:end], m.err
}

func (m *mockOrderDB) CountOrders(_ context.Context, arg database.CountOrdersParams) (int64, error) {
	all := m.sorted(func(o database.Order) bool {
		return m.matches(o, arg.Status, arg.Search, arg.CreatedFrom, arg.CreatedBefore)
	})
	return int64(len(all)), m.err
}

func stamp(ts *pgtype.Timestamptz, status, want string) {
	if status == want && !ts.Valid {
		*ts = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}
}

func stampStatus(o *database.Order, status string) {
	o.OrderStatus = status
	stamp(&o.ConfirmedAt, status, enum.OrderStatusConfirmed)
	stamp(&o.PreparedAt, status, enum.OrderStatusPreparing)
	stamp(&o.DeliveredAt, status, enum.OrderStatusDelivered)
	stamp(&o.CancelledAt, status, enum.OrderStatusCancelled)
}

func (m *mockOrderDB) UpdateOrderStatus(_ context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	if m.err != nil {
		return database.Order{}, m.err
	}
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	stampStatus(&o, arg.OrderStatus)
	if arg.MarkPaid {
		o.PaymentStatus = enum.PaymentStatusPaid
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockOrderDB) UpdateOrderDetails(_ context.Context, arg database.UpdateOrderDetailsParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	if arg.OrderStatus.Valid {
		stampStatus(&o, arg.OrderStatus.String)
	}
	if arg.AdminNotes.Valid {
		o.AdminNotes = arg.AdminNotes
	}
	if arg.CancelReason.Valid {
		o.CancelReason = arg.CancelReason
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockOrderDB) CancelOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	stampStatus(&o, enum.OrderStatusCancelled)
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockOrderDB) ConfirmPayment(_ context.Context, arg database.ConfirmPaymentParams) (database.Order, error) {
	if m.err != nil {
		return database.Order{}, m.err
	}
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	o.PaymentMethod = arg.PaymentMethod
	if arg.PaymentStatus.Valid {
		o.PaymentStatus = arg.PaymentStatus.String
	}
	if arg.TransactionID.Valid {
		o.TransactionID = arg.TransactionID
		o.SpecialNotes = pgtype.Text{String: "UPI Transaction ID: " + arg.TransactionID.String, Valid: true}
	}
	m.orders[o.ID] = o
	return o, nil
}

// --- Helpers ---

type orderFixture struct {
	svc      *mockOrderService
	db       *mockOrderDB
	notifier *stubNotifier
	events   *recordingPublisher
	router   *chi.Mux
}

func setupOrderRouter() *orderFixture {
	f := &orderFixture{
		svc:      &mockOrderService{},
		db:       newMockOrderDB(),
		notifier: &stubNotifier{notice: notify.OrderNotice{WhatsAppURL: "https://wa.me/919285555002?text=x", EmailSent: true}},
		events:   &recordingPublisher{},
	}
	f.svc.createFn = func(_ context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
		o := f.db.add("ORD1700000000000", req.CustomerPhone, enum.OrderStatusPending, time.Now())
		o.PaymentMethod = req.PaymentMethod
		f.db.orders[o.ID] = o
		return &service.CreateOrderResult{Order: o, Items: f.db.items[o.ID]}, nil
	}
	h := handler.NewOrderHandler(f.svc, f.db, f.notifier, f.events, nil)
	f.router = chi.NewRouter()
	f.router.Route("/api", h.RegisterRoutes)
	return f
}

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"customerDetails": map[string]interface{}{
			"name": "Asha", "phone": "9876543210", "address": "12 MG Road", "notes": "ring twice",
		},
		"cartItems": []map[string]interface{}{
			{"id": 4, "name": "Margherita", "price": 100, "quantity": 2, "is_veg": true},
		},
		"amounts":       map[string]interface{}{"subtotal": 200, "gst": 10, "total": 210},
		"paymentMethod": "Cash on Delivery",
	}
}

// --- Create tests ---

func TestOrderCreate_Success(t *testing.T) {
	f := setupOrderRouter()

	rr := doRequest(t, f.router, "POST", "/api/orders", checkoutBody())
	assertStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["orderNumber"] != "ORD1700000000000" {
		t.Errorf("orderNumber: got %v", resp["orderNumber"])
	}
	if resp["whatsappUrl"] != "https://wa.me/919285555002?text=x" {
		t.Errorf("whatsappUrl: got %v", resp["whatsappUrl"])
	}
	if resp["emailSent"] != true {
		t.Errorf("emailSent: got %v", resp["emailSent"])
	}
	if _, ok := resp["customerWhatsappUrl"]; ok {
		t.Error("customerWhatsappUrl should be omitted for cash on delivery")
	}
	order := resp["order"].(map[string]interface{})
	if items := order["order_items"].([]interface{}); len(items) != 1 {
		t.Errorf("order_items: got %d, want 1", len(items))
	}

	req := f.svc.lastReq
	if req.Numbering != service.NumberByTimestamp {
		t.Errorf("numbering: got %v, want timestamp", req.Numbering)
	}
	if len(req.Items) != 1 || req.Items[0].Quantity != 2 || req.Items[0].ID != "4" {
		t.Errorf("items: got %+v", req.Items)
	}
	if !req.Amounts.Total.Valid || req.Amounts.Total.Decimal.String() != "210" {
		t.Errorf("total: got %+v", req.Amounts.Total)
	}
	if len(f.notifier.orders) != 1 {
		t.Errorf("notifier calls: got %d, want 1", len(f.notifier.orders))
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != enum.EventOrderCreated {
		t.Errorf("events: got %+v", f.events.events)
	}
}

func TestOrderCreate_OnlinePaymentReturnsCustomerLink(t *testing.T) {
	f := setupOrderRouter()
	f.notifier.notice.CustomerWhatsAppURL = "https://wa.me/919876543210?text=receipt"

	body := checkoutBody()
	body["paymentMethod"] = "online"
	body["transactionId"] = "UPI123"
	rr := doRequest(t, f.router, "POST", "/api/orders", body)
	assertStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["customerWhatsappUrl"] != "https://wa.me/919876543210?text=receipt" {
		t.Errorf("customerWhatsappUrl: got %v", resp["customerWhatsappUrl"])
	}
	if f.svc.lastReq.TransactionID != "UPI123" {
		t.Errorf("transaction id: got %q", f.svc.lastReq.TransactionID)
	}
}

func TestOrderCreate_QuantityTooLarge(t *testing.T) {
	f := setupOrderRouter()
	body := checkoutBody()
	body["cartItems"] = []map[string]interface{}{
		{"name": "Margherita", "price": 220, "quantity": 4294967298},
	}

	rr := doRequest(t, f.router, "POST", "/api/orders", body)
	assertError(t, rr, http.StatusBadRequest, "item[0]: quantity is too large")
	if f.svc.lastReq.Items != nil {
		t.Errorf("service called with %+v", f.svc.lastReq.Items)
	}
}

func TestOrderCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing fields", service.ErrMissingFields, "Missing required fields"},
		{"empty cart", service.ErrEmptyCart, "Cart is empty"},
		{"bad quantity", fmt.Errorf("item[0]: %w", service.ErrInvalidQuantity), "item[0]: quantity must be > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupOrderRouter()
			f.svc.createFn = func(context.Context, service.CreateOrderRequest) (*service.CreateOrderResult, error) {
				return nil, tt.err
			}
			rr := doRequest(t, f.router, "POST", "/api/orders", checkoutBody())
			assertError(t, rr, http.StatusBadRequest, tt.want)
			if len(f.notifier.orders) != 0 {
				t.Error("notifier must not run for a rejected order")
			}
		})
	}
}

func TestOrderCreate_StoreErrorIs500WithMessage(t *testing.T) {
	f := setupOrderRouter()
	f.svc.createFn = func(context.Context, service.CreateOrderRequest) (*service.CreateOrderResult, error) {
		return nil, errors.New("create order item: connection reset")
	}
	rr := doRequest(t, f.router, "POST", "/api/orders", checkoutBody())
	assertError(t, rr, http.StatusInternalServerError, "create order item: connection reset")
}

func TestOrderCreate_InvalidBody(t *testing.T) {
	f := setupOrderRouter()
	rr := doRequest(t, f.router, "POST", "/api/orders", "{not json")
	assertError(t, rr, http.StatusBadRequest, "invalid request body")
}

// --- Read tests ---

func TestOrderGetByNumber(t *testing.T) {
	f := setupOrderRouter()
	f.db.add("ORD1", "9876543210", enum.OrderStatusPending, time.Now())

	rr := doRequest(t, f.router, "GET", "/api/orders?orderNumber=ORD1", nil)
	assertStatus(t, rr, http.StatusOK)
	order := decodeResponse(t, rr)["order"].(map[string]interface{})
	if order["total_amount"] != "210.00" {
		t.Errorf("total_amount: got %v", order["total_amount"])
	}

	rr = doRequest(t, f.router, "GET", "/api/orders?orderNumber=ORD2", nil)
	assertError(t, rr, http.StatusNotFound, "Order not found")

	rr = doRequest(t, f.router, "GET", "/api/orders", nil)
	assertError(t, rr, http.StatusBadRequest, "Order number required")
}

func TestOrderHistory_NewestFirst(t *testing.T) {
	f := setupOrderRouter()
	now := time.Now()
	f.db.add("ORD1", "9876543210", enum.OrderStatusDelivered, now.Add(-time.Hour))
	f.db.add("ORD2", "9876543210", enum.OrderStatusPending, now)
	f.db.add("ORD3", "9000000000", enum.OrderStatusPending, now)

	rr := doRequest(t, f.router, "GET", "/api/order-history?phone=9876543210", nil)
	assertStatus(t, rr, http.StatusOK)

	orders := decodeResponse(t, rr)["orders"].([]interface{})
	if len(orders) != 2 {
		t.Fatalf("orders: got %d, want 2", len(orders))
	}
	if n := orders[0].(map[string]interface{})["order_number"]; n != "ORD2" {
		t.Errorf("first: got %v, want ORD2", n)
	}
}

func TestMyOrders(t *testing.T) {
	f := setupOrderRouter()
	userID := uuid.New()
	o := f.db.add("ORD1", "9876543210", enum.OrderStatusPending, time.Now())
	o.UserID = pgtype.UUID{Bytes: userID, Valid: true}
	f.db.orders[o.ID] = o
	f.db.add("ORD2", "9876543210", enum.OrderStatusPending, time.Now())

	rr := doRequest(t, f.router, "GET", "/api/my-orders?userId="+userID.String(), nil)
	assertStatus(t, rr, http.StatusOK)
	if orders := decodeResponse(t, rr)["orders"].([]interface{}); len(orders) != 1 {
		t.Errorf("orders: got %d, want 1", len(orders))
	}

	rr = doRequest(t, f.router, "GET", "/api/my-orders?userId=nope", nil)
	assertError(t, rr, http.StatusBadRequest, "invalid user ID")
}

// --- Update tests ---

func TestOrderUpdateStatus_AcceptsAnyString(t *testing.T) {
	f := setupOrderRouter()
	o := f.db.add("ORD1", "9876543210", enum.OrderStatusPending, time.Now())

	rr := doRequest(t, f.router, "PUT", "/api/orders", map[string]interface{}{
		"orderId": o.ID.String(), "status": "on_the_moon",
	})
	assertStatus(t, rr, http.StatusOK)

	got := f.db.orders[o.ID]
	if got.OrderStatus != "on_the_moon" {
		t.Errorf("status: got %s", got.OrderStatus)
	}
	if got.PaymentStatus != enum.PaymentStatusPending {
		t.Errorf("payment status changed to %s", got.PaymentStatus)
	}
}

func TestOrderUpdateStatus_DeliveredDoesNotMarkPaid(t *testing.T) {
	f := setupOrderRouter()
	o := f.db.add("ORD1", "9876543210", enum.OrderStatusPending, time.Now())

	rr := doRequest(t, f.router, "PUT", "/api/orders", map[string]interface{}{
		"orderId": o.ID.String(), "status": enum.OrderStatusDelivered,
	})
	assertStatus(t, rr, http.StatusOK)

	got := f.db.orders[o.ID]
	if !got.DeliveredAt.Valid {
		t.Error("delivered_at should be set")
	}
	if got.PaymentStatus != enum.PaymentStatusPending {
		t.Errorf("payment status: got %s, want pending", got.PaymentStatus)
	}
}

func TestOrderUpdateStatus_Missing(t *testing.T) {
	f := setupOrderRouter()
	rr := doRequest(t, f.router, "PUT", "/api/orders", map[string]interface{}{"status": "confirmed"})
	assertError(t, rr, http.StatusBadRequest, "Missing orderId or status")
}

func TestOrderUpdateStatus_NotFound(t *testing.T) {
	f := setupOrderRouter()
	rr := doRequest(t, f.router, "PUT", "/api/orders", map[string]interface{}{
		"orderId": uuid.New().String(), "status": "confirmed",
	})
	assertError(t, rr, http.StatusNotFound, "Order not found")
}

func TestOrderCancel_SoftCancels(t *testing.T) {
	f := setupOrderRouter()
	o := f.db.add("ORD1", "9876543210", enum.OrderStatusConfirmed, time.Now())

	rr := doRequest(t, f.router, "DELETE", "/api/orders?orderId="+o.ID.String(), nil)
	assertStatus(t, rr, http.StatusOK)

	got, ok := f.db.orders[o.ID]
	if !ok {
		t.Fatal("order row must survive a cancel")
	}
	if got.OrderStatus != enum.OrderStatusCancelled || !got.CancelledAt.Valid {
		t.Errorf("got status=%s cancelled_at=%v", got.OrderStatus, got.CancelledAt.Valid)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != enum.EventOrderCancelled {
		t.Errorf("events: got %+v", f.events.events)
	}

	rr = doRequest(t, f.router, "DELETE", "/api/orders", nil)
	assertError(t, rr, http.StatusBadRequest, "Missing orderId")
}
