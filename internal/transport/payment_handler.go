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

// CreatePaymentRequest represents the payment creation payload
type CreatePaymentRequest struct {
	OrderID      string `json:"order_id" validate:"required,uuid"`
	Method       string `json:"method" validate:"required"`
	Installments int    `json:"installments" validate:"required,gte=1,lte=12"`
}

// PaymentStatusRequest represents the payment status update payload
type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed refunded"`
}

// PaymentHandler handles HTTP requests for payments and installments
type PaymentHandler struct {
	payments service.PaymentService
	orders   service.OrderService
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments service.PaymentService, orders service.OrderService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, orders: orders, logger: logger}
}

// guardOrderOwner resolves the order and checks the caller owns it or
// is an admin. Writes the error response itself on failure.
func (h *PaymentHandler) guardOrderOwner(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) bool {
	view, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get order")
		return false
	}
	return requireOwnerOrAdmin(w, r, view.Order.UserID)
}

// RegisterRoutes registers all payment routes
func (h *PaymentHandler) RegisterRoutes(r chi.Router, authMiddleware, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Get("/order/{orderID}", h.GetByOrder)
		r.Post("/installments/{installmentID}/pay", h.PayInstallment)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", h.List)
			r.Put("/{id}/status", h.UpdateStatus)
		})
	})
}

// Create records a payment for an order, generating the installment
// schedule when the payment is split.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order_id")
		return
	}
	if !h.guardOrderOwner(w, r, orderID) {
		return
	}

	view, err := h.payments.CreatePayment(r.Context(), service.PaymentInput{
		OrderID:      orderID,
		Method:       req.Method,
		Installments: req.Installments,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create payment")
		return
	}

	h.logger.Info("Payment created",
		zap.String("payment_id", view.Payment.ID.String()),
		zap.String("order_id", orderID.String()),
		zap.Int("installments", view.Payment.Installments),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

// Get returns one payment with its installment schedule
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get payment")
		return
	}
	if !h.guardOrderOwner(w, r, view.Payment.OrderID) {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// GetByOrder returns the payment for an order
func (h *PaymentHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "orderID")
	if !ok {
		return
	}
	if !h.guardOrderOwner(w, r, orderID) {
		return
	}

	view, err := h.payments.GetByOrder(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get payment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// List returns all payments
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.ListPayments(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list payments")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, payments)
}

// UpdateStatus changes a payment's status
func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req PaymentStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	payment, err := h.payments.UpdateStatus(r.Context(), id, domain.PaymentStatus(req.Status))
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update payment status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, payment)
}

// PayInstallment marks one installment as paid
func (h *PaymentHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	installmentID, ok := urlUUID(w, r, "installmentID")
	if !ok {
		return
	}

	existing, err := h.payments.GetInstallment(r.Context(), installmentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get installment")
		return
	}
	payment, err := h.payments.GetPayment(r.Context(), existing.PaymentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get payment")
		return
	}
	if !h.guardOrderOwner(w, r, payment.Payment.OrderID) {
		return
	}

	installment, err := h.payments.PayInstallment(r.Context(), installmentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to pay installment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, installment)
}
