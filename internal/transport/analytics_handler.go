package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AnalyticsHandler handles HTTP requests for reporting. All routes are
// admin-only.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// RegisterRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(adminOnly)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/sales", h.Sales)
	})
}

// Dashboard returns the store-wide summary
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to build dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// Sales returns the sales report for a trailing period
func (h *AnalyticsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "month"
	}

	report, err := h.analytics.Sales(r.Context(), period)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to build sales report")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}
