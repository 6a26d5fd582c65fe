package enum

import (
	"strings"
	"time"
)

// ── Order lifecycle (free text in DB) ──

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:        true,
	OrderStatusConfirmed:      true,
	OrderStatusPreparing:      true,
	OrderStatusOutForDelivery: true,
	OrderStatusDelivered:      true,
	OrderStatusCancelled:      true,
}

// ValidOrderStatus reports whether s is one of the six lifecycle states.
func ValidOrderStatus(s string) bool {
	return orderStatuses[s]
}

// ── Payment ──

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

const (
	PaymentMethodCOD    = "Cash on Delivery"
	PaymentMethodOnline = "online"
)

// IsCashOnDelivery accepts both spellings used by the storefront.
func IsCashOnDelivery(method string) bool {
	m := strings.TrimSpace(method)
	return strings.EqualFold(m, "cod") || strings.EqualFold(m, PaymentMethodCOD)
}

// ── Catering ──

const CateringStatusPending = "pending"

// ── Live feed events ──

const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderCancelled   = "order.cancelled"
	EventPaymentConfirmed = "payment.confirmed"
)

// CafeTimeZone is India Standard Time. Fixed offset, so no tzdata is needed.
var CafeTimeZone = time.FixedZone("IST", 5*60*60+30*60)
