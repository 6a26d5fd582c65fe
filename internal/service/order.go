package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/cart"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Errors returned by the order service.
var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrInvalidItemName = errors.New("item name is required")
	ErrInvalidPrice    = errors.New("price must be >= 0")
)

const cleanupTimeout = 5 * time.Second

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries.
type OrderStore interface {
	GenerateOrderNumber(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// Numbering selects how a new order's number is generated.
type Numbering int

const (
	// NumberByTimestamp yields ORD<unix-millis>, used by the storefront.
	NumberByTimestamp Numbering = iota
	// NumberBySequence asks the database for the next LRC number.
	NumberBySequence
)

// Amounts are the client-computed totals. A field left null is computed
// from the items.
type Amounts struct {
	Subtotal decimal.NullDecimal
	GST      decimal.NullDecimal
	Total    decimal.NullDecimal
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Notes           string
	UserID          uuid.NullUUID
	Items           []cart.Line
	Amounts         Amounts
	PaymentMethod   string
	TransactionID   string
	Numbering       Numbering
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService writes new orders.
type OrderService struct {
	store OrderStore
	log   *zap.Logger
	now   func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(store OrderStore, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{store: store, log: log, now: time.Now}
}

// CreateOrder validates req, inserts the order row and then one row per item.
// The two steps are not atomic: when an item insert fails the order row is
// deleted again and the item error is returned. A failed delete is logged
// and leaves the order without items.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if strings.TrimSpace(req.CustomerName) == "" ||
		strings.TrimSpace(req.CustomerPhone) == "" ||
		strings.TrimSpace(req.CustomerAddress) == "" {
		return nil, ErrMissingFields
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidItemName)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidPrice)
		}
	}

	orderNumber, err := s.orderNumber(ctx, req.Numbering)
	if err != nil {
		return nil, err
	}

	subtotal, gst, total := resolveAmounts(req.Items, req.Amounts)

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = enum.PaymentMethodCOD
	}

	order, err := s.store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:     orderNumber,
		UserID:          pgtype.UUID{Bytes: req.UserID.UUID, Valid: req.UserID.Valid},
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		SpecialNotes:    optionalText(req.Notes),
		Subtotal:        decimalToNumeric(subtotal),
		GstAmount:       decimalToNumeric(gst),
		TotalAmount:     decimalToNumeric(total),
		PaymentMethod:   method,
		PaymentStatus:   InitialPaymentStatus(method, req.TransactionID),
		TransactionID:   optionalText(req.TransactionID),
		OrderStatus:     enum.OrderStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		item, err := s.store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  order.ID,
			ItemName: strings.TrimSpace(line.Name),
			Price:    decimalToNumeric(line.Price),
			Quantity: line.Quantity,
			IsVeg:    line.IsVeg,
		})
		if err != nil {
			s.discardOrder(ctx, order)
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("order_id", order.ID.String()),
		zap.Int("items", len(items)),
		zap.String("payment_status", order.PaymentStatus),
	)

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// discardOrder is the compensating delete. It runs even when the request
// context is already cancelled, and is attempted once.
func (s *OrderService) discardOrder(ctx context.Context, order database.Order) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.store.DeleteOrder(cleanupCtx, order.ID); err != nil {
		s.log.Error("compensating delete failed, order left without items",
			zap.String("order_number", order.OrderNumber),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return
	}
	s.log.Warn("order discarded after item insert failure",
		zap.String("order_number", order.OrderNumber),
	)
}

func (s *OrderService) orderNumber(ctx context.Context, n Numbering) (string, error) {
	if n == NumberBySequence {
		num, err := s.store.GenerateOrderNumber(ctx)
		if err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		return num, nil
	}
	return fmt.Sprintf("ORD%d", s.now().UnixMilli()), nil
}

// InitialPaymentStatus is pending for cash on delivery, paid for any other
// method that came with a transaction id, and pending otherwise.
func InitialPaymentStatus(method, transactionID string) string {
	if enum.IsCashOnDelivery(method) {
		return enum.PaymentStatusPending
	}
	if strings.TrimSpace(transactionID) != "" {
		return enum.PaymentStatusPaid
	}
	return enum.PaymentStatusPending
}

// resolveAmounts keeps each client-supplied amount and computes the rest.
func resolveAmounts(items []cart.Line, a Amounts) (subtotal, gst, total decimal.Decimal) {
	computed := cart.Compute(items)

	subtotal = computed.Subtotal
	if a.Subtotal.Valid {
		subtotal = a.Subtotal.Decimal
	}
	gst = cart.GST(subtotal)
	if a.GST.Valid {
		gst = a.GST.Decimal
	}
	total = subtotal.Add(gst).Add(computed.DeliveryFee)
	if a.Total.Valid {
		total = a.Total.Decimal
	}
	return subtotal, gst, total
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return database.DecimalToNumeric(d)
}
