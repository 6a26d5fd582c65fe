package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/notify"
	"github.com/shopspring/decimal"
)

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		var b []byte
		switch v := body.(type) {
		case string:
			b = []byte(v)
		default:
			var err error
			b, err = json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal request: %v", err)
			}
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assertStatus(t, rr, status)
	resp := decodeResponse(t, rr)
	if resp["success"] != false {
		t.Errorf("success: got %v, want false", resp["success"])
	}
	if resp["error"] != msg {
		t.Errorf("error: got %v, want %q", resp["error"], msg)
	}
}

func numeric(s string) pgtype.Numeric {
	return database.DecimalToNumeric(decimal.RequireFromString(s))
}

func fkViolation() error {
	return &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

// --- Recording collaborators ---

type publishedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload any) {
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
}

type stubNotifier struct {
	orders    []notify.OrderSummary
	catering  []notify.CateringSummary
	notice    notify.OrderNotice
	catNotice notify.CateringNotice
}

func (n *stubNotifier) OrderPlaced(_ context.Context, o notify.OrderSummary) notify.OrderNotice {
	n.orders = append(n.orders, o)
	return n.notice
}

func (n *stubNotifier) CateringReceived(_ context.Context, c notify.CateringSummary) notify.CateringNotice {
	n.catering = append(n.catering, c)
	return n.catNotice
}
