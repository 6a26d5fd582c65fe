package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/enum"
	"github.com/livingroomcafe/api/internal/notify"
	"go.uber.org/zap"
)

const cateringListLimit = 500

var tenDigitPhone = regexp.MustCompile(`^\d{10}$`)

// CateringStore defines the database methods needed by catering handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CateringStore interface {
	CreateCateringInquiry(ctx context.Context, arg database.CreateCateringInquiryParams) (database.CateringInquiry, error)
	ListCateringInquiries(ctx context.Context, limit int32) ([]database.CateringInquiry, error)
}

// CateringNotifier announces a new inquiry to the cafe.
// Satisfied by *notify.Notifier.
type CateringNotifier interface {
	CateringReceived(ctx context.Context, c notify.CateringSummary) notify.CateringNotice
}

// CateringHandler handles the catering inquiry form.
type CateringHandler struct {
	store    CateringStore
	notifier CateringNotifier
	log      *zap.Logger
	now      func() time.Time
	suffix   func() int
}

// NewCateringHandler creates a new CateringHandler.
func NewCateringHandler(store CateringStore, notifier CateringNotifier, log *zap.Logger) *CateringHandler {
	return &CateringHandler{
		store:    store,
		notifier: notifier,
		log:      loggerOrNop(log),
		now:      time.Now,
		suffix:   func() int { return rand.IntN(1000) },
	}
}

// RegisterRoutes registers the public intake endpoint. The admin listing is
// mounted separately behind the admin token.
func (h *CateringHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// --- Request / Response types ---

type cateringRequest struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	EventType    string  `json:"eventType"`
	EventDate    string  `json:"eventDate"`
	GuestCount   flexInt `json:"guestCount"`
	Venue        string  `json:"venue"`
	Budget       string  `json:"budget"`
	Requirements string  `json:"requirements"`
}

type cateringResponse struct {
	ID            uuid.UUID `json:"id"`
	InquiryNumber string    `json:"inquiry_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail *string   `json:"customer_email"`
	EventType     string    `json:"event_type"`
	EventDate     *string   `json:"event_date"`
	GuestCount    *int32    `json:"guest_count"`
	Venue         *string   `json:"venue"`
	Budget        *string   `json:"budget"`
	Requirements  *string   `json:"requirements"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toCateringResponse(c database.CateringInquiry) cateringResponse {
	resp := cateringResponse{
		ID:            c.ID,
		InquiryNumber: c.InquiryNumber,
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		CustomerEmail: textPtr(c.CustomerEmail),
		EventType:     c.EventType,
		Venue:         textPtr(c.Venue),
		Budget:        textPtr(c.Budget),
		Requirements:  textPtr(c.Requirements),
		Status:        c.Status,
		CreatedAt:     c.CreatedAt,
	}
	if c.EventDate.Valid {
		d := c.EventDate.Time.Format(time.DateOnly)
		resp.EventDate = &d
	}
	if c.GuestCount.Valid {
		n := c.GuestCount.Int32
		resp.GuestCount = &n
	}
	return resp
}

// parseEventDate accepts a calendar date or a full RFC 3339 timestamp.
func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.In(enum.CafeTimeZone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// --- Handlers ---

// Create handles POST /api/catering-inquiry.
func (h *CateringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cateringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" || strings.TrimSpace(req.EventDate) == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !tenDigitPhone.MatchString(phone) {
		writeError(w, http.StatusBadRequest, "Invalid phone number")
		return
	}
	eventDate, err := parseEventDate(strings.TrimSpace(req.EventDate))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event date")
		return
	}

	var guests pgtype.Int4
	if req.GuestCount.Set {
		n, ok := req.GuestCount.int32()
		if !ok || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid guest count")
			return
		}
		if n > 0 {
			guests = pgtype.Int4{Int32: n, Valid: true}
		}
	}

	number := fmt.Sprintf("CAT%d%03d", h.now().UnixMilli(), h.suffix())
	inquiry, err := h.store.CreateCateringInquiry(r.Context(), database.CreateCateringInquiryParams{
		InquiryNumber: number,
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: nonEmptyText(strings.TrimSpace(req.Email)),
		EventType:     strings.TrimSpace(req.EventType),
		EventDate:     pgtype.Date{Time: eventDate, Valid: true},
		GuestCount:    guests,
		Venue:         nonEmptyText(strings.TrimSpace(req.Venue)),
		Budget:        nonEmptyText(strings.TrimSpace(req.Budget)),
		Requirements:  nonEmptyText(strings.TrimSpace(req.Requirements)),
		Status:        enum.CateringStatusPending,
	})
	if err != nil {
		h.log.Error("create catering inquiry", zap.String("inquiry_number", number), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info("catering inquiry received", zap.String("inquiry_number", inquiry.InquiryNumber))

	notice := h.notifier.CateringReceived(r.Context(), notify.CateringSummary{
		InquiryNumber: inquiry.InquiryNumber,
		Name:          inquiry.CustomerName,
		Phone:         inquiry.CustomerPhone,
		Email:         inquiry.CustomerEmail.String,
		EventType:     inquiry.EventType,
		EventDate:     eventDate,
		GuestCount:    guests.Int32,
		Venue:         inquiry.Venue.String,
		Budget:        inquiry.Budget.String,
		Requirements:  inquiry.Requirements.String,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Inquiry submitted successfully",
		"inquiryNumber": inquiry.InquiryNumber,
		"data":          toCateringResponse(inquiry),
		"whatsappUrl":   notice.WhatsAppURL,
		"emailSent":     notice.EmailSent,
	})
}

// List handles GET /api/catering-inquiry, newest first.
func (h *CateringHandler) List(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.store.ListCateringInquiries(r.Context(), cateringListLimit)
	if err != nil {
		h.log.Error("list catering inquiries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]cateringResponse, len(inquiries))
	for i, c := range inquiries {
		resp[i] = toCateringResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": resp})
}
