package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, user_id, customer_name, customer_phone, customer_address,
	special_notes, subtotal, gst_amount, total_amount, payment_method, payment_status,
	transaction_id, order_status, admin_notes, cancel_reason, created_at, updated_at,
	confirmed_at, prepared_at, delivered_at, cancelled_at`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.UserID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.SpecialNotes,
		&i.Subtotal,
		&i.GstAmount,
		&i.TotalAmount,
		&i.PaymentMethod,
		&i.PaymentStatus,
		&i.TransactionID,
		&i.OrderStatus,
		&i.AdminNotes,
		&i.CancelReason,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ConfirmedAt,
		&i.PreparedAt,
		&i.DeliveredAt,
		&i.CancelledAt,
	)
	return i, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const generateOrderNumber = `SELECT generate_order_number()`

func (q *Queries) GenerateOrderNumber(ctx context.Context) (string, error) {
	row := q.db.QueryRow(ctx, generateOrderNumber)
	var number string
	err := row.Scan(&number)
	return number, err
}

const createOrder = `INSERT INTO orders (
	order_number, user_id, customer_name, customer_phone, customer_address, special_notes,
	subtotal, gst_amount, total_amount, payment_method, payment_status, transaction_id, order_status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber     string
	UserID          pgtype.UUID
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	SpecialNotes    pgtype.Text
	Subtotal        pgtype.Numeric
	GstAmount       pgtype.Numeric
	TotalAmount     pgtype.Numeric
	PaymentMethod   string
	PaymentStatus   string
	TransactionID   pgtype.Text
	OrderStatus     string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.UserID,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerAddress,
		arg.SpecialNotes,
		arg.Subtotal,
		arg.GstAmount,
		arg.TotalAmount,
		arg.PaymentMethod,
		arg.PaymentStatus,
		arg.TransactionID,
		arg.OrderStatus,
	)
	return scanOrder(row)
}

const deleteOrder = `DELETE FROM orders WHERE id = $1`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrder, id)
	return err
}

const createOrderItem = `INSERT INTO order_items (order_id, item_name, price, quantity, is_veg)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, item_name, price, quantity, is_veg, created_at`

type CreateOrderItemParams struct {
	OrderID  uuid.UUID
	ItemName string
	Price    pgtype.Numeric
	Quantity int32
	IsVeg    bool
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ItemName,
		arg.Price,
		arg.Quantity,
		arg.IsVeg,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ItemName,
		&i.Price,
		&i.Quantity,
		&i.IsVeg,
		&i.CreatedAt,
	)
	return i, err
}

const listOrderItemsByOrder = `SELECT id, order_id, item_name, price, quantity, is_veg, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at, id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ItemName,
			&i.Price,
			&i.Quantity,
			&i.IsVeg,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getOrderByID = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrderByID(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByID, id))
}

const getOrderByNumber = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

func (q *Queries) GetOrderByNumber(ctx context.Context, orderNumber string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByNumber, orderNumber))
}

const getOrderByNumberAndPhone = `SELECT ` + orderColumns + `
FROM orders
WHERE order_number = $1 AND customer_phone = $2`

type GetOrderByNumberAndPhoneParams struct {
	OrderNumber   string
	CustomerPhone string
}

func (q *Queries) GetOrderByNumberAndPhone(ctx context.Context, arg GetOrderByNumberAndPhoneParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByNumberAndPhone, arg.OrderNumber, arg.CustomerPhone))
}

const listOrdersByPhone = `SELECT ` + orderColumns + `
FROM orders
WHERE customer_phone = $1
ORDER BY created_at DESC`

func (q *Queries) ListOrdersByPhone(ctx context.Context, customerPhone string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByPhone, customerPhone)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

const listOrdersByUser = `SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

const orderFilter = `
WHERE ($1::text IS NULL OR order_status = $1::text)
  AND ($2::text IS NULL
       OR order_number ILIKE '%' || $2::text || '%'
       OR customer_name ILIKE '%' || $2::text || '%'
       OR customer_phone ILIKE '%' || $2::text || '%')
  AND ($3::timestamptz IS NULL OR created_at >= $3::timestamptz)
  AND ($4::timestamptz IS NULL OR created_at < $4::timestamptz)`

const listOrders = `SELECT ` + orderColumns + `
FROM orders` + orderFilter + `
ORDER BY created_at DESC
LIMIT $5 OFFSET $6`

type ListOrdersParams struct {
	Status        pgtype.Text
	Search        pgtype.Text
	CreatedFrom   pgtype.Timestamptz
	CreatedBefore pgtype.Timestamptz
	Limit         int32
	Offset        int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.Status,
		arg.Search,
		arg.CreatedFrom,
		arg.CreatedBefore,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

const countOrders = `SELECT count(*) FROM orders` + orderFilter

type CountOrdersParams struct {
	Status        pgtype.Text
	Search        pgtype.Text
	CreatedFrom   pgtype.Timestamptz
	CreatedBefore pgtype.Timestamptz
}

func (q *Queries) CountOrders(ctx context.Context, arg CountOrdersParams) (int64, error) {
	row := q.db.QueryRow(ctx, countOrders,
		arg.Status,
		arg.Search,
		arg.CreatedFrom,
		arg.CreatedBefore,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// Status timestamps are written only the first time a status is reached.
const statusTimestamps = `
	confirmed_at = CASE WHEN $2::text = 'confirmed' THEN COALESCE(confirmed_at, now()) ELSE confirmed_at END,
	prepared_at  = CASE WHEN $2::text = 'preparing' THEN COALESCE(prepared_at, now()) ELSE prepared_at END,
	delivered_at = CASE WHEN $2::text = 'delivered' THEN COALESCE(delivered_at, now()) ELSE delivered_at END,
	cancelled_at = CASE WHEN $2::text = 'cancelled' THEN COALESCE(cancelled_at, now()) ELSE cancelled_at END`

const updateOrderStatus = `UPDATE orders SET
	order_status = $2::text,` + statusTimestamps + `,
	payment_status = CASE WHEN $3::boolean THEN 'paid' ELSE payment_status END,
	updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID          uuid.UUID
	OrderStatus string
	MarkPaid    bool
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.OrderStatus, arg.MarkPaid))
}

const updateOrderDetails = `UPDATE orders SET
	order_status = COALESCE($2::text, order_status),` + statusTimestamps + `,
	admin_notes = COALESCE($3::text, admin_notes),
	cancel_reason = COALESCE($4::text, cancel_reason),
	updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderDetailsParams struct {
	ID           uuid.UUID
	OrderStatus  pgtype.Text
	AdminNotes   pgtype.Text
	CancelReason pgtype.Text
}

func (q *Queries) UpdateOrderDetails(ctx context.Context, arg UpdateOrderDetailsParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderDetails,
		arg.ID,
		arg.OrderStatus,
		arg.AdminNotes,
		arg.CancelReason,
	))
}

const cancelOrder = `UPDATE orders SET
	order_status = 'cancelled',
	cancelled_at = COALESCE(cancelled_at, now()),
	updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) CancelOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, id))
}

const confirmPayment = `UPDATE orders SET
	payment_method = $2,
	payment_status = COALESCE($3::text, payment_status),
	transaction_id = COALESCE($4::text, transaction_id),
	special_notes = CASE WHEN $4::text IS NULL THEN special_notes
	                     ELSE 'UPI Transaction ID: ' || $4::text END,
	updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type ConfirmPaymentParams struct {
	ID            uuid.UUID
	PaymentMethod string
	PaymentStatus pgtype.Text
	TransactionID pgtype.Text
}

func (q *Queries) ConfirmPayment(ctx context.Context, arg ConfirmPaymentParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, confirmPayment,
		arg.ID,
		arg.PaymentMethod,
		arg.PaymentStatus,
		arg.TransactionID,
	))
}
