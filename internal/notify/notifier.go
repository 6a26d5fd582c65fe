// Package notify builds the WhatsApp deep links and e-mails sent when an
// order or catering inquiry is placed. Delivery is best-effort: failures are
// logged and reported through EmailSent, never returned.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/livingroomcafe/api/internal/cart"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	CafePhone string
	CafeEmail string
	BaseURL   string
}

// Notifier renders and sends cafe notifications. A nil Mailer disables
// e-mail.
type Notifier struct {
	cfg    Config
	mailer Mailer
	log    *zap.Logger
	now    func() time.Time
}

func New(cfg Config, mailer Mailer, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{cfg: cfg, mailer: mailer, log: log, now: time.Now}
}

// OrderSummary is what the cafe is told about a new order.
type OrderSummary struct {
	OrderNumber     string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Notes           string
	Items           []cart.Line
	Subtotal        decimal.Decimal
	GST             decimal.Decimal
	Total           decimal.Decimal
	PaymentMethod   string
	TransactionID   string
}

type OrderNotice struct {
	WhatsAppURL string
	// CustomerWhatsAppURL is set for online payments only: a receipt the
	// customer can open in their own chat.
	CustomerWhatsAppURL string
	EmailSent           bool
}

type orderItemView struct {
	Index     int
	Name      string
	Quantity  int32
	Price     string
	LineTotal string
}

type orderView struct {
	OrderSummary
	Lines       []orderItemView
	SubtotalStr string
	GSTStr      string
	TotalStr    string
	IsCOD       bool
	PaymentText string
	PlacedAt    string
	TrackURL    string
}

func (n *Notifier) orderView(o OrderSummary) orderView {
	grouped := cart.Group(o.Items)
	lines := make([]orderItemView, len(grouped))
	for i, l := range grouped {
		lines[i] = orderItemView{
			Index:     i + 1,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price.String(),
			LineTotal: l.Total().String(),
		}
	}

	cod := enum.IsCashOnDelivery(o.PaymentMethod)
	paymentText := "Online Payment"
	if cod {
		paymentText = enum.PaymentMethodCOD
	}

	return orderView{
		OrderSummary: o,
		Lines:        lines,
		SubtotalStr:  o.Subtotal.String(),
		GSTStr:       o.GST.String(),
		TotalStr:     o.Total.String(),
		IsCOD:        cod,
		PaymentText:  paymentText,
		PlacedAt:     n.now().In(enum.CafeTimeZone).Format("02 Jan 2006, 03:04 PM"),
		TrackURL:     n.cfg.BaseURL + "/track-order?orderNumber=" + o.OrderNumber,
	}
}

// OrderPlaced returns the cafe WhatsApp link for o and e-mails the cafe.
func (n *Notifier) OrderPlaced(ctx context.Context, o OrderSummary) OrderNotice {
	v := n.orderView(o)
	var notice OrderNotice

	if msg, err := renderText("order_whatsapp.txt", v); err != nil {
		n.log.Error("render order whatsapp message", zap.String("order_number", o.OrderNumber), zap.Error(err))
	} else {
		notice.WhatsAppURL = WhatsAppLink(n.cfg.CafePhone, msg)
	}

	if !v.IsCOD && o.CustomerPhone != "" {
		if msg, err := renderText("customer_receipt.txt", v); err != nil {
			n.log.Error("render customer receipt", zap.String("order_number", o.OrderNumber), zap.Error(err))
		} else {
			notice.CustomerWhatsAppURL = WhatsAppLink("91"+digitsOnly(o.CustomerPhone), msg)
		}
	}

	notice.EmailSent = n.sendEmail(ctx, "order", fmt.Sprintf("New Order - %s", o.OrderNumber), v,
		zap.String("order_number", o.OrderNumber))
	return notice
}

// CateringSummary is what the cafe is told about a catering inquiry.
type CateringSummary struct {
	InquiryNumber string
	Name          string
	Phone         string
	Email         string
	EventType     string
	EventDate     time.Time
	GuestCount    int32
	Venue         string
	Budget        string
	Requirements  string
}

type CateringNotice struct {
	WhatsAppURL string
	EmailSent   bool
}

type cateringView struct {
	CateringSummary
	EventDateLong  string
	EventDateShort string
	Guests         string
	ReceivedAt     string
	CustomerChat   string
}

func (n *Notifier) cateringView(c CateringSummary) cateringView {
	guests := ""
	if c.GuestCount > 0 {
		guests = fmt.Sprintf("%d", c.GuestCount)
	}
	return cateringView{
		CateringSummary: c,
		EventDateLong:   c.EventDate.Format("02 January 2006"),
		EventDateShort:  c.EventDate.Format("2/1/2006"),
		Guests:          guests,
		ReceivedAt:      n.now().In(enum.CafeTimeZone).Format("Monday, 2 January 2006, 03:04 PM"),
		CustomerChat:    "https://wa.me/91" + digitsOnly(c.Phone),
	}
}

// CateringReceived returns the cafe WhatsApp link for c and e-mails the cafe.
func (n *Notifier) CateringReceived(ctx context.Context, c CateringSummary) CateringNotice {
	v := n.cateringView(c)
	var notice CateringNotice

	if msg, err := renderText("catering_whatsapp.txt", v); err != nil {
		n.log.Error("render catering whatsapp message", zap.String("inquiry_number", c.InquiryNumber), zap.Error(err))
	} else {
		notice.WhatsAppURL = WhatsAppLink(n.cfg.CafePhone, msg)
	}

	notice.EmailSent = n.sendEmail(ctx, "catering", fmt.Sprintf("New Catering Inquiry - %s", c.InquiryNumber), v,
		zap.String("inquiry_number", c.InquiryNumber))
	return notice
}

// sendEmail renders <kind>_email.{html,txt} and sends it to the cafe inbox.
func (n *Notifier) sendEmail(ctx context.Context, kind, subject string, data any, fields ...zap.Field) bool {
	if n.mailer == nil || n.cfg.CafeEmail == "" {
		n.log.Debug("email disabled, skipping", fields...)
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	htmlBody, err := renderHTML(kind+"_email.html", data)
	if err != nil {
		n.log.Error("render email html", append(fields, zap.Error(err))...)
		return false
	}
	plainBody, err := renderText(kind+"_email.txt", data)
	if err != nil {
		n.log.Error("render email text", append(fields, zap.Error(err))...)
		return false
	}

	if err := n.mailer.Send(n.cfg.CafeEmail, subject, htmlBody, plainBody); err != nil {
		n.log.Warn("email failed", append(fields, zap.Error(err))...)
		return false
	}
	n.log.Info("email sent", fields...)
	return true
}
