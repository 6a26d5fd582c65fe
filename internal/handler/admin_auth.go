package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/livingroomcafe/api/internal/auth"
	"go.uber.org/zap"
)

// PasswordChecker verifies the admin password.
// Satisfied by *auth.PasswordChecker.
type PasswordChecker interface {
	Configured() bool
	Check(password string) bool
}

// AdminAuthHandler issues and verifies admin tokens.
type AdminAuthHandler struct {
	passwords PasswordChecker
	jwtSecret string
	log       *zap.Logger
}

// NewAdminAuthHandler creates a new AdminAuthHandler.
func NewAdminAuthHandler(passwords PasswordChecker, jwtSecret string, log *zap.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{passwords: passwords, jwtSecret: jwtSecret, log: loggerOrNop(log)}
}

// RegisterRoutes registers admin auth endpoints on the given Chi router.
// Expected to be mounted at /admin/auth, outside the token check.
func (h *AdminAuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Login)
	r.Get("/", h.Verify)
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the shared admin password for a 24-hour token.
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password required")
		return
	}

	if !h.passwords.Configured() {
		h.log.Warn("admin login attempted but no admin password is configured")
	}
	if !h.passwords.Check(req.Password) {
		h.log.Info("admin login rejected")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := auth.GenerateAdminToken(h.jwtSecret)
	if err != nil {
		h.log.Error("sign admin token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"message": "Login successful",
	})
}

// Verify handles GET /api/admin/auth?token=.
func (h *AdminAuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Token required")
		return
	}

	if _, err := auth.ValidateAdminToken(h.jwtSecret, token); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "valid": true})
}
