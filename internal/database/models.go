package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Category struct {
	ID           int64
	Name         string
	Icon         pgtype.Text
	DisplayOrder int32
	CreatedAt    time.Time
}

type MenuItem struct {
	ID          int64
	Name        string
	Description string
	Price       pgtype.Numeric
	CategoryID  int64
	IsVeg       bool
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID        uuid.UUID
	Phone     string
	Name      pgtype.Text
	Email     pgtype.Text
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Address struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Label        string
	AddressLine1 string
	AddressLine2 pgtype.Text
	City         string
	State        string
	Pincode      string
	Landmark     pgtype.Text
	IsDefault    bool
	CreatedAt    time.Time
}

type Order struct {
	ID              uuid.UUID
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
	AdminNotes      pgtype.Text
	CancelReason    pgtype.Text
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedAt     pgtype.Timestamptz
	PreparedAt      pgtype.Timestamptz
	DeliveredAt     pgtype.Timestamptz
	CancelledAt     pgtype.Timestamptz
}

// OrderItem is a snapshot of a menu line taken at checkout. It carries no
// reference to menu_items.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ItemName  string
	Price     pgtype.Numeric
	Quantity  int32
	IsVeg     bool
	CreatedAt time.Time
}

type CateringInquiry struct {
	ID            uuid.UUID
	InquiryNumber string
	CustomerName  string
	CustomerPhone string
	CustomerEmail pgtype.Text
	EventType     string
	EventDate     pgtype.Date
	GuestCount    pgtype.Int4
	Venue         pgtype.Text
	Budget        pgtype.Text
	Requirements  pgtype.Text
	Status        string
	CreatedAt     time.Time
}
