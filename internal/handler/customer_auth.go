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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/livingroomcafe/api/internal/database"
	"go.uber.org/zap"
)

// CustomerStore defines the database methods needed by customer login and
// profile handlers. Satisfied by *database.Queries; narrow interface for
// testability.
type CustomerStore interface {
	GetUserByPhone(ctx context.Context, phone string) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
}

// CustomerAuthHandler identifies storefront customers by phone number.
// There is no OTP: knowing a phone number is enough.
type CustomerAuthHandler struct {
	store CustomerStore
	log   *zap.Logger
}

// NewCustomerAuthHandler creates a new CustomerAuthHandler.
func NewCustomerAuthHandler(store CustomerStore, log *zap.Logger) *CustomerAuthHandler {
	return &CustomerAuthHandler{store: store, log: loggerOrNop(log)}
}

// RegisterRoutes registers customer auth endpoints on the given Chi router.
// Expected to be mounted at /auth.
func (h *CustomerAuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Put("/update", h.Update)
}

// --- Request / Response types ---

type customerLoginRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type customerUpdateRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u database.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Phone:     u.Phone,
		Name:      textPtr(u.Name),
		Email:     textPtr(u.Email),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Handlers ---

// Login returns the user with the given phone, creating one on first use.
func (h *CustomerAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req customerLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	phone := strings.TrimSpace(req.Phone)
	if len(phone) != 10 {
		writeError(w, http.StatusBadRequest, "Invalid phone number")
		return
	}

	user, err := h.store.GetUserByPhone(r.Context(), phone)
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    toUserResponse(user),
			"message": "Login successful",
		})
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		h.log.Error("get user by phone", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	user, err = h.store.CreateUser(r.Context(), database.CreateUserParams{
		Phone: phone,
		Name:  nonEmptyText(strings.TrimSpace(req.Name)),
	})
	if err != nil {
		// Lost a race with a concurrent first login for the same phone.
		if isUniqueViolation(err) {
			if existing, getErr := h.store.GetUserByPhone(r.Context(), phone); getErr == nil {
				writeJSON(w, http.StatusOK, map[string]any{
					"success": true,
					"user":    toUserResponse(existing),
					"message": "Login successful",
				})
				return
			}
		}
		h.log.Error("create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info("customer account created", zap.String("user_id", user.ID.String()))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserResponse(user),
		"message": "Account created successfully",
	})
}

// Update changes name and/or e-mail. Empty fields are left as they are.
func (h *CustomerAuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req customerUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "User ID required")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:    userID,
		Name:  nonEmptyText(strings.TrimSpace(req.Name)),
		Email: nonEmptyText(strings.TrimSpace(req.Email)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error("update user", zap.String("user_id", req.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": toUserResponse(user)})
}
