package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest represents the cart item quantity payload
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// CartHandler handles HTTP requests for shopping carts. Anonymous
// visitors identify their cart with the X-Session-ID header,
// authenticated users by their token.
type CartHandler struct {
	carts  service.CartService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// RegisterRoutes registers all cart routes. Authentication is optional:
// guests carry a session header, logged-in users a token.
func (h *CartHandler) RegisterRoutes(r chi.Router, optionalAuth func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{itemID}", h.UpdateItem)
		r.Delete("/items/{itemID}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
	})
}

// resolveCart finds or creates the caller's cart from the token or the
// X-Session-ID header.
func (h *CartHandler) resolveCart(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var userID *uuid.UUID
	if raw, ok := middleware.GetUserID(r.Context()); ok {
		if id, err := uuid.Parse(raw); err == nil {
			userID = &id
		}
	}

	sessionID := ""
	if userID == nil {
		sessionID = r.Header.Get("X-Session-ID")
		if sessionID == "" {
			middleware.RespondWithError(w, http.StatusBadRequest, "X-Session-ID header is required for guest carts")
			return uuid.Nil, false
		}
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), userID, sessionID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to resolve cart")
		return uuid.Nil, false
	}

	return cart.ID, true
}

// GetCart returns the caller's cart with items and totals
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	view, err := h.carts.GetCart(r.Context(), cartID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddItem adds a product to the caller's cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	item, err := h.carts.AddItem(r.Context(), cartID, productID, req.Quantity)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add item to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// UpdateItem changes a cart item's quantity
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := urlUUID(w, r, "itemID")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.carts.UpdateItem(r.Context(), itemID, req.Quantity)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// RemoveItem deletes one item from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := urlUUID(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(r.Context(), itemID); err != nil {
		respondServiceError(w, h.logger, err, "failed to remove cart item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the caller's cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(r.Context(), cartID); err != nil {
		respondServiceError(w, h.logger, err, "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
