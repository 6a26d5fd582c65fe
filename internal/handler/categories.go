package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"go.uber.org/zap"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
	DeleteCategory(ctx context.Context, id int64) (int64, error)
}

// CategoryHandler handles category CRUD endpoints.
type CategoryHandler struct {
	store CategoryStore
	log   *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{store: store, log: loggerOrNop(log)}
}

// RegisterRoutes registers category CRUD endpoints on the given Chi router.
// Expected to be mounted at /admin/categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type createCategoryRequest struct {
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	DisplayOrder flexInt `json:"display_order"`
}

type updateCategoryRequest struct {
	Name         *string `json:"name"`
	Icon         *string `json:"icon"`
	DisplayOrder flexInt `json:"display_order"`
}

// --- Handlers ---

// List returns all categories in display order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.log.Error("list categories", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": toCategoryResponses(categories),
	})
}

// Create adds a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	displayOrder, ok := req.DisplayOrder.int32()
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid display order")
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		Name:         name,
		Icon:         nonEmptyText(strings.TrimSpace(req.Icon)),
		DisplayOrder: displayOrder,
	})
	if err != nil {
		h.log.Error("create category", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"category": toCategoryResponse(category),
	})
}

// Update modifies the fields present in the body.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseInt64Param(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	params := database.UpdateCategoryParams{
		ID:   id,
		Name: optionalText(req.Name),
		Icon: optionalText(req.Icon),
	}
	if req.DisplayOrder.Set {
		n, ok := req.DisplayOrder.int32()
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid display order")
			return
		}
		params.DisplayOrder = pgtype.Int4{Int32: n, Valid: true}
	}

	category, err := h.store.UpdateCategory(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.log.Error("update category", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"category": toCategoryResponse(category),
	})
}

// Delete removes a category that no menu item references.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseInt64Param(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if _, err := h.store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, "category still has menu items")
			return
		}
		h.log.Error("delete category", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Category deleted successfully",
	})
}
