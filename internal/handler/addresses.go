package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/livingroomcafe/api/internal/database"
	"go.uber.org/zap"
)

// AddressStore defines the database methods needed by address handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AddressStore interface {
	ListAddressesByUser(ctx context.Context, userID uuid.UUID) ([]database.Address, error)
	CreateAddress(ctx context.Context, arg database.CreateAddressParams) (database.Address, error)
	UpdateAddress(ctx context.Context, arg database.UpdateAddressParams) (database.Address, error)
	ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error
	DeleteAddress(ctx context.Context, arg database.DeleteAddressParams) (uuid.UUID, error)
}

// AddressHandler manages a customer's saved delivery addresses.
type AddressHandler struct {
	store AddressStore
	log   *zap.Logger
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(store AddressStore, log *zap.Logger) *AddressHandler {
	return &AddressHandler{store: store, log: loggerOrNop(log)}
}

// RegisterRoutes registers address endpoints on the given Chi router.
// Expected to be mounted at /addresses.
func (h *AddressHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createAddressRequest struct {
	UserID       string `json:"userId"`
	Label        string `json:"label"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Landmark     string `json:"landmark"`
	IsDefault    bool   `json:"is_default"`
}

type updateAddressRequest struct {
	UserID       string  `json:"userId"`
	Label        *string `json:"label"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Pincode      *string `json:"pincode"`
	Landmark     *string `json:"landmark"`
	IsDefault    *bool   `json:"is_default"`
}

type addressResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Label        string    `json:"label"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 *string   `json:"address_line2"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Pincode      string    `json:"pincode"`
	Landmark     *string   `json:"landmark"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAddressResponse(a database.Address) addressResponse {
	return addressResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		Label:        a.Label,
		AddressLine1: a.AddressLine1,
		AddressLine2: textPtr(a.AddressLine2),
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		Landmark:     textPtr(a.Landmark),
		IsDefault:    a.IsDefault,
		CreatedAt:    a.CreatedAt,
	}
}

// userIDFrom parses a required user id, writing the 400 itself on failure.
func userIDFrom(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	if raw == "" {
		writeError(w, http.StatusBadRequest, "User ID required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

// --- Handlers ---

// List handles GET /api/addresses?userId=, default address first.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	addresses, err := h.store.ListAddressesByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("list addresses", zap.String("user_id", userID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]addressResponse, len(addresses))
	for i, a := range addresses {
		resp[i] = toAddressResponse(a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "addresses": resp})
}

// Create handles POST /api/addresses. A new default address demotes the
// previous one.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, ok := userIDFrom(w, req.UserID)
	if !ok {
		return
	}

	label := strings.TrimSpace(req.Label)
	line1 := strings.TrimSpace(req.AddressLine1)
	city := strings.TrimSpace(req.City)
	state := strings.TrimSpace(req.State)
	pincode := strings.TrimSpace(req.Pincode)
	if label == "" || line1 == "" || city == "" || state == "" || pincode == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if req.IsDefault {
		if err := h.store.ClearDefaultAddress(r.Context(), userID); err != nil {
			h.log.Error("clear default address", zap.String("user_id", userID.String()), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	address, err := h.store.CreateAddress(r.Context(), database.CreateAddressParams{
		UserID:       userID,
		Label:        label,
		AddressLine1: line1,
		AddressLine2: nonEmptyText(strings.TrimSpace(req.AddressLine2)),
		City:         city,
		State:        state,
		Pincode:      pincode,
		Landmark:     nonEmptyText(strings.TrimSpace(req.Landmark)),
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error("create address", zap.String("user_id", userID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "address": toAddressResponse(address)})
}

// Update handles PUT /api/addresses/{id}; only fields present are written.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	addressID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address ID")
		return
	}

	var req updateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, ok := userIDFrom(w, req.UserID)
	if !ok {
		return
	}

	if req.IsDefault != nil && *req.IsDefault {
		if err := h.store.ClearDefaultAddress(r.Context(), userID); err != nil {
			h.log.Error("clear default address", zap.String("user_id", userID.String()), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	address, err := h.store.UpdateAddress(r.Context(), database.UpdateAddressParams{
		ID:           addressID,
		UserID:       userID,
		Label:        optionalText(req.Label),
		AddressLine1: optionalText(req.AddressLine1),
		AddressLine2: optionalText(req.AddressLine2),
		City:         optionalText(req.City),
		State:        optionalText(req.State),
		Pincode:      optionalText(req.Pincode),
		Landmark:     optionalText(req.Landmark),
		IsDefault:    optionalBool(req.IsDefault),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Address not found")
			return
		}
		h.log.Error("update address", zap.String("address_id", addressID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "address": toAddressResponse(address)})
}

// Delete handles DELETE /api/addresses/{id}?userId=.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	addressID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address ID")
		return
	}
	userID, ok := userIDFrom(w, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	if _, err := h.store.DeleteAddress(r.Context(), database.DeleteAddressParams{
		ID:     addressID,
		UserID: userID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Address not found")
			return
		}
		h.log.Error("delete address", zap.String("address_id", addressID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Address deleted"})
}
