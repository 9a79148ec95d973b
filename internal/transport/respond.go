package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var notFoundErrors = []error{
	repository.ErrUserNotFound,
	repository.ErrAddressNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrProductNotFound,
	repository.ErrInventoryNotFound,
	repository.ErrMovementNotFound,
	repository.ErrCartNotFound,
	repository.ErrCartItemNotFound,
	repository.ErrOrderNotFound,
	repository.ErrPaymentNotFound,
	repository.ErrInstallmentNotFound,
}

var conflictErrors = []error{
	repository.ErrUserAlreadyExists,
	repository.ErrCategoryAlreadyExists,
	repository.ErrProductAlreadyExists,
	service.ErrPaymentExists,
}

// respondServiceError maps service and repository errors to HTTP
// responses. Business-rule violations become 400, missing resources
// 404, uniqueness conflicts 409, everything else 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			middleware.RespondWithError(w, http.StatusNotFound, target.Error())
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			middleware.RespondWithError(w, http.StatusConflict, target.Error())
			return
		}
	}
	if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrInsufficientStock) {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Error(fallback, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
}

// decodeBody handles request decoding plus validation, writing the
// error response itself. Returns false when the request was rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// urlUUID parses a UUID path parameter, writing a 400 on failure
func urlUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// requireOwnerOrAdmin writes a 403 unless the authenticated caller is
// the owner of the resource or holds the admin role
func requireOwnerOrAdmin(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) bool {
	if role, _ := middleware.GetUserRole(r.Context()); role == "admin" {
		return true
	}
	if raw, ok := middleware.GetUserID(r.Context()); ok && raw == ownerID.String() {
		return true
	}
	middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
	return false
}
