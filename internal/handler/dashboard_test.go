package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/livingroomcafe/api/internal/handler"
	"github.com/shopspring/decimal"
)

// mockDashboardStore computes the counters the SQL would from the in-memory
// orders.
type mockDashboardStore struct {
	*mockOrderDB
	menu      database.GetMenuCountsRow
	menuErr   error
	lastLimit int32
}

func (m *mockDashboardStore) GetOrderStats(_ context.Context, todayStart pgtype.Timestamptz) (database.GetOrderStatsRow, error) {
	var row database.GetOrderStatsRow
	revenue := decimal.Zero
	for _, o := range m.orders {
		row.TotalOrders++
		switch o.OrderStatus {
		case enum.OrderStatusPending:
			row.PendingOrders++
		case enum.OrderStatusDelivered:
			row.CompletedOrders++
		}
		if !o.CreatedAt.Before(todayStart.Time) {
			row.TodayOrders++
		}
		revenue = revenue.Add(database.NumericToDecimal(o.TotalAmount))
	}
	row.TotalRevenue = database.DecimalToNumeric(revenue)
	return row, nil
}

func (m *mockDashboardStore) GetMenuCounts(_ context.Context) (database.GetMenuCountsRow, error) {
	return m.menu, m.menuErr
}

func (m *mockDashboardStore) ListRecentOrders(_ context.Context, limit int32) ([]database.Order, error) {
	m.lastLimit = limit
	all := m.sorted(func(database.Order) bool { return true })
	return all[:min(int(limit), len(all))], nil
}

func setupDashboardRouter(store *mockDashboardStore) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/admin/dashboard", handler.NewDashboardHandler(store, nil).RegisterRoutes)
	return r
}

func TestDashboard_Counters(t *testing.T) {
	store := &mockDashboardStore{
		mockOrderDB: newMockOrderDB(),
		menu:        database.GetMenuCountsRow{TotalItems: 42, AvailableItems: 40},
	}
	now := time.Now()
	store.add("ORD1", "9876543210", enum.OrderStatusPending, now)
	store.add("ORD2", "9876543210", enum.OrderStatusDelivered, now.AddDate(0, 0, -3))
	cancelled := store.add("ORD3", "9876543210", enum.OrderStatusCancelled, now.AddDate(0, 0, -3))
	cancelled.TotalAmount = numeric("99.60")
	store.orders[cancelled.ID] = cancelled

	rr := doRequest(t, setupDashboardRouter(store), "GET", "/api/admin/dashboard", nil)
	assertStatus(t, rr, http.StatusOK)

	stats := decodeResponse(t, rr)["stats"].(map[string]interface{})
	want := map[string]float64{
		"totalOrders":     3,
		"pendingOrders":   1,
		"completedOrders": 1,
		"todayOrders":     1,
		"totalRevenue":    520, // 210 + 210 + 99.60, cancelled included
		"totalMenuItems":  42,
		"availableItems":  40,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("%s: got %v, want %v", k, stats[k], v)
		}
	}
	if recent := stats["recentOrders"].([]interface{}); len(recent) != 3 {
		t.Errorf("recentOrders: got %d, want 3", len(recent))
	}
	if store.lastLimit != 5 {
		t.Errorf("recent limit: got %d, want 5", store.lastLimit)
	}
}

func TestDashboard_EmptyDatabase(t *testing.T) {
	store := &mockDashboardStore{mockOrderDB: newMockOrderDB()}

	rr := doRequest(t, setupDashboardRouter(store), "GET", "/api/admin/dashboard", nil)
	assertStatus(t, rr, http.StatusOK)

	stats := decodeResponse(t, rr)["stats"].(map[string]interface{})
	if stats["totalRevenue"] != float64(0) {
		t.Errorf("totalRevenue: got %v, want 0", stats["totalRevenue"])
	}
	if recent := stats["recentOrders"].([]interface{}); len(recent) != 0 {
		t.Errorf("recentOrders: got %d, want 0", len(recent))
	}
}

func TestDashboard_StoreError(t *testing.T) {
	store := &mockDashboardStore{mockOrderDB: newMockOrderDB(), menuErr: errors.New("statement timeout")}
	rr := doRequest(t, setupDashboardRouter(store), "GET", "/api/admin/dashboard", nil)
	assertError(t, rr, http.StatusInternalServerError, "statement timeout")
}
