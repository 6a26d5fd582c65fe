package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/livingroomcafe/api/internal/database"
	"go.uber.org/zap"
)

// MenuStore defines the database methods needed by the public menu.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
}

// MenuHandler serves the storefront catalog.
type MenuHandler struct {
	store MenuStore
	log   *zap.Logger
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, log *zap.Logger) *MenuHandler {
	return &MenuHandler{store: store, log: loggerOrNop(log)}
}

// RegisterRoutes registers the menu endpoint on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
}

// Get returns every category and menu item, unavailable ones included.
// A failed read still answers 200 with empty lists and the error text so the
// storefront can render an empty menu.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, catErr := h.store.ListCategories(ctx)
	if catErr != nil {
		h.log.Error("list categories", zap.Error(catErr))
	}
	items, itemErr := h.store.ListMenuItems(ctx)
	if itemErr != nil {
		h.log.Error("list menu items", zap.Error(itemErr))
	}

	err := catErr
	if err == nil {
		err = itemErr
	}
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    false,
			"categories": []categoryResponse{},
			"menuItems":  []menuItemResponse{},
			"error":      err.Error(),
		})
		return
	}

	resp := map[string]any{
		"success":    true,
		"categories": toCategoryResponses(categories),
		"menuItems":  toMenuItemResponses(items),
	}
	writeJSON(w, http.StatusOK, resp)
}
