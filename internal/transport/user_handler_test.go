package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var testShipping = config.ShippingConfig{FreeThreshold: 500, FlatRate: 50}

// newTestRouter wires the full API surface against an in-memory store
func newTestRouter(t *testing.T) (chi.Router, *repository.MemoryStore) {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewMemoryStore()

	users := service.NewUserService(store.Users(), store.Addresses(), store.TxManager(), testSecret, 15*time.Minute)
	carts := service.NewCartService(store.Carts(), store.CartItems(), store.Products(), store.TxManager(), testShipping)
	catalog := service.NewCatalogService(store.Categories(), store.Products(), store.Inventory(), store.TxManager())
	orders := service.NewOrderService(
		store.Orders(), store.OrderItems(), store.Products(), store.Inventory(), store.Movements(),
		store.Users(), store.Addresses(), store.CartItems(), store.TxManager(), testShipping,
	)
	payments := service.NewPaymentService(store.Payments(), store.Installments(), store.Orders(), store.TxManager())

	auth := middleware.AuthMiddleware(testSecret, logger)
	optionalAuth := middleware.OptionalAuthMiddleware(testSecret, logger)
	requireAdmin := middleware.RequireAdmin(logger)
	adminOnly := func(next http.Handler) http.Handler {
		return requireAdmin(next)
	}

	r := chi.NewRouter()
	NewUserHandler(users, logger).RegisterRoutes(r, auth, adminOnly)
	NewCartHandler(carts, logger).RegisterRoutes(r, optionalAuth)
	NewCategoryHandler(catalog, logger).RegisterRoutes(r, func(next http.Handler) http.Handler {
		return auth(requireAdmin(next))
	})
	NewOrderHandler(orders, logger).RegisterRoutes(r, auth, adminOnly)
	NewPaymentHandler(payments, orders, logger).RegisterRoutes(r, auth, adminOnly)
	return r, store
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, r chi.Router) (token string, userID string) {
	return registerUser(t, r, "Ana", "ana@example.com")
}

func registerUser(t *testing.T, r chi.Router, name, email string) (token string, userID string) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/users/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/users/login", map[string]any{
		"email":    email,
		"password": "secret1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token, resp.User.ID
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/users/register", map[string]any{
		"name":     "Ana",
		"email":    "not-an-email",
		"password": "secret1",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/users/register", map[string]any{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "12345",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short password status = %d, want 400", rec.Code)
	}
}

func TestLoginFailuresReturn401(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r)

	rec := doJSON(t, r, http.MethodPost, "/api/users/login", map[string]any{
		"email":    "ana@example.com",
		"password": "wrong-password",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/users/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever1",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", rec.Code)
	}
}

func TestProfileRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)
	token, userID := registerAndLogin(t, r)

	rec := doJSON(t, r, http.MethodGet, "/api/users/profile", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/users/profile", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d, body %s", rec.Code, rec.Body.String())
	}
	var profile UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if profile.ID != userID {
		t.Errorf("profile id = %s, want %s", profile.ID, userID)
	}
	if profile.Role != "customer" {
		t.Errorf("profile role = %q, want customer", profile.Role)
	}
}

func TestUserListIsAdminOnly(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r)

	rec := doJSON(t, r, http.MethodGet, "/api/users/", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("customer listing users status = %d, want 403", rec.Code)
	}
}

func TestGetUnknownUserReturns404(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r)

	rec := doJSON(t, r, http.MethodGet, "/api/users/00000000-0000-0000-0000-000000000001", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
}

func TestCategoryCreationRequiresAdmin(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := registerAndLogin(t, r)

	body := map[string]any{"name": "Beverages", "slug": "beverages"}

	rec := doJSON(t, r, http.MethodPost, "/api/categories/", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/categories/", body, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("customer create status = %d, want 403", rec.Code)
	}
}

func TestGuestCartFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/cart/", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cart without identity status = %d, want 400", rec.Code)
	}

	headers := map[string]string{"X-Session-ID": "guest-session-1"}
	rec = doJSON(t, r, http.MethodGet, "/api/cart/", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("guest cart status = %d, body %s", rec.Code, rec.Body.String())
	}

	var view service.CartView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode cart view: %v", err)
	}
	if view.Cart == nil || view.Cart.SessionID != "guest-session-1" {
		t.Errorf("cart not bound to session: %+v", view.Cart)
	}
	if len(view.Items) != 0 {
		t.Errorf("fresh cart not empty: %+v", view.Items)
	}
	if view.Totals.Subtotal != 0 || view.Totals.Total != testShipping.FlatRate {
		t.Errorf("fresh cart totals = %+v, want empty subtotal with flat shipping", view.Totals)
	}
}
