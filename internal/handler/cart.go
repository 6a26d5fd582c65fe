package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/livingroomcafe/api/internal/cart"
)

// CartHandler prices a cart without storing it.
type CartHandler struct{}

// NewCartHandler creates a new CartHandler.
func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

// RegisterRoutes registers the quote endpoint. Expected to be mounted at /cart.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quote", h.Quote)
}

type quoteRequest struct {
	Items []cartItemRequest `json:"items"`
}

type quoteResponse struct {
	Subtotal    string `json:"subtotal"`
	GST         string `json:"gst"`
	DeliveryFee string `json:"deliveryFee"`
	Total       string `json:"total"`
	ItemCount   int32  `json:"itemCount"`
}

// Quote handles POST /api/cart/quote using the same rules as checkout.
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, item := range req.Items {
		if item.Quantity.Value <= 0 {
			writeError(w, http.StatusBadRequest, "quantity must be > 0")
			return
		}
		if item.Price.IsNegative() {
			writeError(w, http.StatusBadRequest, "price must be >= 0")
			return
		}
	}

	lines, err := toCartLines(req.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := cart.Compute(lines)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"totals": quoteResponse{
			Subtotal:    t.Subtotal.StringFixed(2),
			GST:         t.GST.StringFixed(2),
			DeliveryFee: t.DeliveryFee.StringFixed(2),
			Total:       t.Total.StringFixed(2),
			ItemCount:   t.ItemCount,
		},
	})
}
