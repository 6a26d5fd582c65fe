package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getOrderStats = `SELECT
	count(*)::bigint AS total_orders,
	count(*) FILTER (WHERE order_status = 'pending')::bigint AS pending_orders,
	count(*) FILTER (WHERE order_status = 'delivered')::bigint AS completed_orders,
	COALESCE(sum(total_amount), 0)::numeric AS total_revenue,
	count(*) FILTER (WHERE created_at >= $1)::bigint AS today_orders
FROM orders`

type GetOrderStatsRow struct {
	TotalOrders     int64
	PendingOrders   int64
	CompletedOrders int64
	TotalRevenue    pgtype.Numeric
	TodayOrders     int64
}

// GetOrderStats counts orders created at or after todayStart as today's.
func (q *Queries) GetOrderStats(ctx context.Context, todayStart pgtype.Timestamptz) (GetOrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getOrderStats, todayStart)
	var i GetOrderStatsRow
	err := row.Scan(
		&i.TotalOrders,
		&i.PendingOrders,
		&i.CompletedOrders,
		&i.TotalRevenue,
		&i.TodayOrders,
	)
	return i, err
}

const getMenuCounts = `SELECT
	count(*)::bigint AS total_items,
	count(*) FILTER (WHERE is_available)::bigint AS available_items
FROM menu_items`

type GetMenuCountsRow struct {
	TotalItems     int64
	AvailableItems int64
}

func (q *Queries) GetMenuCounts(ctx context.Context) (GetMenuCountsRow, error) {
	row := q.db.QueryRow(ctx, getMenuCounts)
	var i GetMenuCountsRow
	err := row.Scan(&i.TotalItems, &i.AvailableItems)
	return i, err
}

const listRecentOrders = `SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
LIMIT $1`

func (q *Queries) ListRecentOrders(ctx context.Context, limit int32) ([]Order, error) {
	rows, err := q.db.Query(ctx, listRecentOrders, limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}
