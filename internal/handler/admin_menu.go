package handler

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdminMenuStore defines the database methods needed by the menu editor.
// Satisfied by *database.Queries; narrow interface for testability.
type AdminMenuStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) (int64, error)
}

// AdminMenuHandler handles menu item CRUD for the admin panel.
type AdminMenuHandler struct {
	store AdminMenuStore
	log   *zap.Logger
}

// NewAdminMenuHandler creates a new AdminMenuHandler.
func NewAdminMenuHandler(store AdminMenuStore, log *zap.Logger) *AdminMenuHandler {
	return &AdminMenuHandler{store: store, log: loggerOrNop(log)}
}

// RegisterRoutes registers menu editor endpoints on the given Chi router.
// Expected to be mounted at /admin/menu.
func (h *AdminMenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/", h.Update)
	r.Delete("/", h.Delete)
}

// --- Request types ---

type createMenuItemRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	CategoryID  flexInt             `json:"category_id"`
	IsVeg       *bool               `json:"is_veg"`
	IsAvailable *bool               `json:"is_available"`
}

// updateMenuItemRequest uses pointers and null-able types so that absent
// fields can be told apart from zero values.
type updateMenuItemRequest struct {
	ID          flexInt             `json:"id"`
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Price       decimal.NullDecimal `json:"price"`
	CategoryID  flexInt             `json:"category_id"`
	IsVeg       *bool               `json:"is_veg"`
	IsAvailable *bool               `json:"is_available"`
}

// --- Helpers ---

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var errNegativePrice = errors.New("price must be >= 0")

func priceParam(d decimal.Decimal) (pgtype.Numeric, error) {
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	return database.DecimalToNumeric(d), nil
}

// --- Handlers ---

// List returns categories by display order and items grouped by category id.
func (h *AdminMenuHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.log.Error("list categories", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		h.log.Error("list menu items", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slices.SortStableFunc(items, func(a, b database.MenuItem) int {
		return cmp.Compare(a.CategoryID, b.CategoryID)
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": toCategoryResponses(categories),
		"menuItems":  toMenuItemResponses(items),
	})
}

// Create adds a menu item. is_veg and is_available default to true.
func (h *AdminMenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || !req.Price.Valid || req.Price.Decimal.IsZero() || !req.CategoryID.Set || req.CategoryID.Value == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	price, err := priceParam(req.Price.Decimal)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	isVeg := req.IsVeg == nil || *req.IsVeg
	isAvailable := req.IsAvailable == nil || *req.IsAvailable

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        name,
		Description: req.Description,
		Price:       price,
		CategoryID:  req.CategoryID.Value,
		IsVeg:       isVeg,
		IsAvailable: isAvailable,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.log.Error("create menu item", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info("menu item created", zap.Int64("id", item.ID), zap.String("name", item.Name))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Menu item created successfully",
		"item":    toMenuItemResponse(item),
	})
}

// Update writes only the fields present in the body. Last write wins.
func (h *AdminMenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.ID.Set || req.ID.Value == 0 {
		writeError(w, http.StatusBadRequest, "Item ID required")
		return
	}

	params := database.UpdateMenuItemParams{
		ID:          req.ID.Value,
		Name:        optionalText(req.Name),
		Description: optionalText(req.Description),
		IsVeg:       optionalBool(req.IsVeg),
		IsAvailable: optionalBool(req.IsAvailable),
	}
	if req.Price.Valid {
		price, err := priceParam(req.Price.Decimal)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		params.Price = price
	}
	if req.CategoryID.Set {
		params.CategoryID = pgtype.Int8{Int64: req.CategoryID.Value, Valid: true}
	}

	item, err := h.store.UpdateMenuItem(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusBadRequest, "category not found")
			return
		}
		h.log.Error("update menu item", zap.Int64("id", req.ID.Value), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Menu item updated successfully",
		"item":    toMenuItemResponse(item),
	})
}

// Delete removes a menu item. Past order items keep their own copy of the
// name and price.
func (h *AdminMenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Item ID required")
		return
	}
	id, ok := parseInt64Param(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		h.log.Error("delete menu item", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info("menu item deleted", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Menu item deleted successfully",
	})
}
