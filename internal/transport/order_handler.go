package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one requested line item
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderRequest represents the order placement payload
type PlaceOrderRequest struct {
	AddressID string             `json:"address_id" validate:"required,uuid"`
	Items     []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount  float64            `json:"discount" validate:"gte=0"`
	Notes     string             `json:"notes"`
	CartID    *string            `json:"cart_id,omitempty" validate:"omitempty,uuid"`
}

// OrderStatusRequest represents the status update payload
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes registers all order routes. Placing and reading orders
// requires authentication, listing everyone's orders and deletion are
// admin-only.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.PlaceOrder)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/status", h.UpdateStatus)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// PlaceOrder creates an order for the authenticated user
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	raw, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req PlaceOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address_id")
		return
	}

	input := service.PlaceOrderInput{
		UserID:    userID,
		AddressID: addressID,
		Discount:  req.Discount,
		Notes:     req.Notes,
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	if req.CartID != nil {
		cartID, err := uuid.Parse(*req.CartID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart_id")
			return
		}
		input.CartID = &cartID
	}

	view, err := h.orders.PlaceOrder(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to place order")
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", view.Order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", view.Order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

// List returns orders. Admins see every order, customers their own.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	role, _ := middleware.GetUserRole(r.Context())
	if role != "admin" {
		raw, ok := middleware.GetUserID(r.Context())
		if !ok {
			middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
			return
		}
		userID = &id
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get returns one order with its items
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get order")
		return
	}

	// Customers can only read their own orders
	if !requireOwnerOrAdmin(w, r, view.Order.UserID) {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// UpdateStatus moves an order through its lifecycle
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get order")
		return
	}
	if !requireOwnerOrAdmin(w, r, existing.Order.UserID) {
		return
	}

	var req OrderStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update order status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Delete removes an order
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
