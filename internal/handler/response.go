package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Publisher pushes an event to the admin live feed. Satisfied by *ws.Hub.
type Publisher interface {
	Publish(eventType string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func loggerOrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode JSON response", zap.Error(err))
	}
}

// writeError writes the {success:false, error} envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// --- Lenient JSON inputs ---

// flexInt accepts 3, 3.0, "3" or null. Fractions are truncated.
type flexInt struct {
	Value int64
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexInt{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = flexInt{}
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	d = d.Truncate(0)
	if d.LessThan(decimal.NewFromInt(math.MinInt64)) || d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return errNumberOutOfRange
	}
	*f = flexInt{Value: d.IntPart(), Set: true}
	return nil
}

var errNumberOutOfRange = errors.New("number out of range")

// int32 returns the value if it fits in an int32 column.
func (f flexInt) int32() (int32, bool) {
	if f.Value < math.MinInt32 || f.Value > math.MaxInt32 {
		return 0, false
	}
	return int32(f.Value), true
}

// flexString accepts a string or a bare number, e.g. a menu item id.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// --- Conversions ---

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	return database.NumericToDecimal(n).StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func nonEmptyText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func optionalBool(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}

func parseInt64Param(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

// --- Response types ---

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ItemName  string    `json:"item_name"`
	Price     string    `json:"price"`
	Quantity  int32     `json:"quantity"`
	IsVeg     bool      `json:"is_veg"`
	CreatedAt time.Time `json:"created_at"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          *uuid.UUID          `json:"user_id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerAddress string              `json:"customer_address"`
	SpecialNotes    *string             `json:"special_notes"`
	Subtotal        string              `json:"subtotal"`
	GstAmount       string              `json:"gst_amount"`
	TotalAmount     string              `json:"total_amount"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	TransactionID   *string             `json:"transaction_id"`
	OrderStatus     string              `json:"order_status"`
	AdminNotes      *string             `json:"admin_notes"`
	CancelReason    *string             `json:"cancel_reason"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	ConfirmedAt     *time.Time          `json:"confirmed_at"`
	PreparedAt      *time.Time          `json:"prepared_at"`
	DeliveredAt     *time.Time          `json:"delivered_at"`
	CancelledAt     *time.Time          `json:"cancelled_at"`
	OrderItems      []orderItemResponse `json:"order_items,omitzero"`
}

func toOrderItemResponse(item database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ItemName:  item.ItemName,
		Price:     numericToString(item.Price),
		Quantity:  item.Quantity,
		IsVeg:     item.IsVeg,
		CreatedAt: item.CreatedAt,
	}
}

// toOrderResponse converts o. items may be nil when they were not loaded.
func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		SpecialNotes:    textPtr(o.SpecialNotes),
		Subtotal:        numericToString(o.Subtotal),
		GstAmount:       numericToString(o.GstAmount),
		TotalAmount:     numericToString(o.TotalAmount),
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		TransactionID:   textPtr(o.TransactionID),
		OrderStatus:     o.OrderStatus,
		AdminNotes:      textPtr(o.AdminNotes),
		CancelReason:    textPtr(o.CancelReason),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		ConfirmedAt:     timePtr(o.ConfirmedAt),
		PreparedAt:      timePtr(o.PreparedAt),
		DeliveredAt:     timePtr(o.DeliveredAt),
		CancelledAt:     timePtr(o.CancelledAt),
	}
	if o.UserID.Valid {
		id := uuid.UUID(o.UserID.Bytes)
		resp.UserID = &id
	}
	if items != nil {
		resp.OrderItems = make([]orderItemResponse, len(items))
		for i, item := range items {
			resp.OrderItems[i] = toOrderItemResponse(item)
		}
	}
	return resp
}

type categoryResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Icon         *string   `json:"icon"`
	DisplayOrder int32     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Icon:         textPtr(c.Icon),
		DisplayOrder: c.DisplayOrder,
		CreatedAt:    c.CreatedAt,
	}
}

func toCategoryResponses(cats []database.Category) []categoryResponse {
	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = toCategoryResponse(c)
	}
	return resp
}

type menuItemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	CategoryID  int64     `json:"category_id"`
	IsVeg       bool      `json:"is_veg"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       numericToString(m.Price),
		CategoryID:  m.CategoryID,
		IsVeg:       m.IsVeg,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toMenuItemResponses(items []database.MenuItem) []menuItemResponse {
	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	return resp
}
