package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"go.uber.org/zap"
)

const recentOrderCount = 5

// DashboardStore defines the database methods needed by the admin dashboard.
// Satisfied by *database.Queries; narrow interface for testability.
type DashboardStore interface {
	GetOrderStats(ctx context.Context, todayStart pgtype.Timestamptz) (database.GetOrderStatsRow, error)
	GetMenuCounts(ctx context.Context) (database.GetMenuCountsRow, error)
	ListRecentOrders(ctx context.Context, limit int32) ([]database.Order, error)
}

// DashboardHandler serves the admin overview numbers.
type DashboardHandler struct {
	store DashboardStore
	log   *zap.Logger
	now   func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{store: store, log: loggerOrNop(log), now: time.Now}
}

// RegisterRoutes registers the dashboard endpoint.
// Expected to be mounted at /admin/dashboard.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

type dashboardStats struct {
	TotalOrders     int64           `json:"totalOrders"`
	PendingOrders   int64           `json:"pendingOrders"`
	CompletedOrders int64           `json:"completedOrders"`
	TotalRevenue    int64           `json:"totalRevenue"`
	TodayOrders     int64           `json:"todayOrders"`
	TotalMenuItems  int64           `json:"totalMenuItems"`
	AvailableItems  int64           `json:"availableItems"`
	RecentOrders    []orderResponse `json:"recentOrders"`
}

// Get returns order and menu counters. Revenue sums every order regardless
// of status and is rounded to whole rupees.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	local := h.now().In(enum.CafeTimeZone)
	todayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, enum.CafeTimeZone)

	orders, err := h.store.GetOrderStats(r.Context(), pgtype.Timestamptz{Time: todayStart, Valid: true})
	if err != nil {
		h.log.Error("order stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	menu, err := h.store.GetMenuCounts(r.Context())
	if err != nil {
		h.log.Error("menu counts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	recent, err := h.store.ListRecentOrders(r.Context(), recentOrderCount)
	if err != nil {
		h.log.Error("recent orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recentResp := make([]orderResponse, len(recent))
	for i, o := range recent {
		recentResp[i] = toOrderResponse(o, nil)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": dashboardStats{
			TotalOrders:     orders.TotalOrders,
			PendingOrders:   orders.PendingOrders,
			CompletedOrders: orders.CompletedOrders,
			TotalRevenue:    database.NumericToDecimal(orders.TotalRevenue).Round(0).IntPart(),
			TodayOrders:     orders.TodayOrders,
			TotalMenuItems:  menu.TotalItems,
			AvailableItems:  menu.AvailableItems,
			RecentOrders:    recentResp,
		},
	})
}
