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

// MovementRequest represents the stock movement payload
type MovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Type      string `json:"type" validate:"required,oneof=entry exit adjustment sale return"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Note      string `json:"note"`
}

// MinStockRequest represents the low-stock threshold payload
type MinStockRequest struct {
	MinStock int `json:"min_stock" validate:"gte=0"`
}

// MovementResponse pairs a recorded movement with the resulting stock
type MovementResponse struct {
	Movement  *domain.InventoryMovement `json:"movement"`
	Inventory *domain.Inventory         `json:"inventory"`
}

// InventoryHandler handles HTTP requests for stock management
type InventoryHandler struct {
	inventory service.InventoryService
	logger    *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, logger: logger}
}

// RegisterRoutes registers all inventory routes. Everything here is
// admin-only.
func (h *InventoryHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Use(adminOnly)
		r.Get("/", h.List)
		r.Get("/low-stock", h.ListLowStock)
		r.Get("/product/{productID}", h.GetByProduct)
		r.Put("/product/{productID}/min-stock", h.SetMinStock)
		r.Post("/movements", h.RecordMovement)
		r.Get("/movements", h.ListMovements)
		r.Get("/movements/{id}", h.GetMovement)
	})
}

// List returns every inventory record
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.inventory.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list inventory")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, inventories)
}

// ListLowStock returns products at or below their threshold
func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.inventory.ListLowStock(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list low stock")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, inventories)
}

// GetByProduct returns the inventory record for a product
func (h *InventoryHandler) GetByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	inventory, err := h.inventory.GetByProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get inventory")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, inventory)
}

// SetMinStock updates the low-stock threshold for a product
func (h *InventoryHandler) SetMinStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlUUID(w, r, "productID")
	if !ok {
		return
	}

	var req MinStockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	inventory, err := h.inventory.SetMinStock(r.Context(), productID, req.MinStock)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update inventory")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, inventory)
}

// RecordMovement appends a stock movement and returns the updated level
func (h *InventoryHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	input := service.MovementInput{
		ProductID: productID,
		Type:      domain.MovementType(req.Type),
		Quantity:  req.Quantity,
		Note:      req.Note,
	}
	if raw, ok := middleware.GetUserID(r.Context()); ok {
		if userID, err := uuid.Parse(raw); err == nil {
			input.CreatedBy = &userID
		}
	}

	movement, inventory, err := h.inventory.RecordMovement(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to record movement")
		return
	}

	h.logger.Info("Stock movement recorded",
		zap.String("product_id", productID.String()),
		zap.String("type", req.Type),
		zap.Int("quantity", req.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, MovementResponse{
		Movement:  movement,
		Inventory: inventory,
	})
}

// ListMovements returns the movement log, optionally for one product
func (h *InventoryHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	var productID *uuid.UUID
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		productID = &id
	}

	movements, err := h.inventory.ListMovements(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list movements")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, movements)
}

// GetMovement returns one movement by ID
func (h *InventoryHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	movement, err := h.inventory.GetMovement(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get movement")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, movement)
}
