package handler_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/livingroomcafe/api/internal/handler"
)

func setupPaymentRouter(db *mockOrderDB, events handler.Publisher) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/payment", handler.NewPaymentHandler(db, events, nil).RegisterRoutes)
	return r
}

func TestPaymentConfirm_WithTransaction(t *testing.T) {
	db := newMockOrderDB()
	events := &recordingPublisher{}
	o := db.add("ORD1", "9876543210", enum.OrderStatusConfirmed, time.Now())

	rr := doRequest(t, setupPaymentRouter(db, events), "POST", "/api/payment/confirm", map[string]interface{}{
		"orderId":       o.ID.String(),
		"paymentMethod": "online",
		"paymentStatus": "paid",
		"transactionId": "UPI998877",
	})
	assertStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["message"] != "Payment confirmed successfully" {
		t.Errorf("message: got %v", resp["message"])
	}
	order := resp["order"].(map[string]interface{})
	if order["special_notes"] != "UPI Transaction ID: UPI998877" {
		t.Errorf("special_notes: got %v", order["special_notes"])
	}
	if order["payment_status"] != enum.PaymentStatusPaid {
		t.Errorf("payment_status: got %v", order["payment_status"])
	}
	if order["order_status"] != enum.OrderStatusConfirmed {
		t.Errorf("order_status changed to %v", order["order_status"])
	}
	if len(events.events) != 1 || events.events[0].Type != enum.EventPaymentConfirmed {
		t.Errorf("events: got %+v", events.events)
	}
}

func TestPaymentConfirm_MethodOnlyKeepsStatus(t *testing.T) {
	db := newMockOrderDB()
	o := db.add("ORD1", "9876543210", enum.OrderStatusPending, time.Now())

	events := &recordingPublisher{}

	rr := doRequest(t, setupPaymentRouter(db, events), "POST", "/api/payment/confirm", map[string]interface{}{
		"orderId": o.ID.String(), "paymentMethod": "UPI",
	})
	assertStatus(t, rr, http.StatusOK)
	if len(events.events) != 1 {
		t.Errorf("events: got %d, want 1", len(events.events))
	}

	got := db.orders[o.ID]
	if got.PaymentMethod != "UPI" || got.PaymentStatus != enum.PaymentStatusPending {
		t.Errorf("method=%s status=%s", got.PaymentMethod, got.PaymentStatus)
	}
	if got.SpecialNotes.Valid {
		t.Errorf("special_notes: got %q, want untouched", got.SpecialNotes.String)
	}
}

func TestPaymentConfirm_WithoutPublisher(t *testing.T) {
	db := newMockOrderDB()
	o := db.add("ORD1", "9876543210", enum.OrderStatusPending, time.Now())

	rr := doRequest(t, setupPaymentRouter(db, nil), "POST", "/api/payment/confirm", map[string]interface{}{
		"orderId": o.ID.String(), "paymentMethod": "UPI", "paymentStatus": "paid",
	})
	assertStatus(t, rr, http.StatusOK)
	if db.orders[o.ID].PaymentStatus != enum.PaymentStatusPaid {
		t.Errorf("payment_status: got %s", db.orders[o.ID].PaymentStatus)
	}
}

func TestPaymentConfirm_Errors(t *testing.T) {
	db := newMockOrderDB()
	router := setupPaymentRouter(db, nil)

	rr := doRequest(t, router, "POST", "/api/payment/confirm", map[string]interface{}{"orderId": uuid.NewString()})
	assertError(t, rr, http.StatusBadRequest, "Missing required fields")

	rr = doRequest(t, router, "POST", "/api/payment/confirm", map[string]interface{}{"orderId": "x", "paymentMethod": "UPI"})
	assertError(t, rr, http.StatusBadRequest, "invalid order ID")

	rr = doRequest(t, router, "POST", "/api/payment/confirm", map[string]interface{}{"orderId": uuid.NewString(), "paymentMethod": "UPI"})
	assertError(t, rr, http.StatusNotFound, "Order not found")

	db.err = errors.New("deadlock detected")
	rr = doRequest(t, router, "POST", "/api/payment/confirm", map[string]interface{}{"orderId": uuid.NewString(), "paymentMethod": "UPI"})
	assertError(t, rr, http.StatusInternalServerError, "deadlock detected")
}
