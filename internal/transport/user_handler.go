package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// UpdateUserRequest represents a partial user update payload
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}

// AddressRequest represents the address create/update payload
type AddressRequest struct {
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	ZipCode      string `json:"zip_code" validate:"required"`
	IsDefault    bool   `json:"is_default"`
}

// UserHandler handles HTTP requests for accounts and addresses
type UserHandler struct {
	users  service.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/profile", h.GetProfile)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Post("/{id}/addresses", h.CreateAddress)
			r.Get("/{id}/addresses", h.ListAddresses)
			r.Put("/addresses/{addressID}", h.UpdateAddress)
			r.Delete("/addresses/{addressID}", h.DeleteAddress)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", h.List)
				r.Delete("/{id}", h.Delete)
			})
		})
	})
}

// Register handles account creation
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to register user")
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, UserProfile{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  string(user.Role),
	})
}

// Login handles authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		respondServiceError(w, h.logger, err, "failed to login")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User: UserProfile{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
			Role:  string(user.Role),
		},
	})
}

// GetProfile returns the authenticated user's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get user profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// Get returns one user by ID
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// List returns all users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list users")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

// Update handles partial user updates
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if !requireOwnerOrAdmin(w, r, id) {
		return
	}

	var req UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, service.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// Delete removes a user and everything owned by the account
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete user")
		return
	}

	h.logger.Info("User deleted", zap.String("user_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// CreateAddress adds a delivery address for a user
func (h *UserHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if !requireOwnerOrAdmin(w, r, userID) {
		return
	}

	var req AddressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := h.users.CreateAddress(r.Context(), userID, service.AddressInput{
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to create address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

// ListAddresses returns a user's addresses
func (h *UserHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if !requireOwnerOrAdmin(w, r, userID) {
		return
	}

	addresses, err := h.users.ListAddresses(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list addresses")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, addresses)
}

// UpdateAddress replaces the writable fields of an address
func (h *UserHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	addressID, ok := urlUUID(w, r, "addressID")
	if !ok {
		return
	}

	existing, err := h.users.GetAddress(r.Context(), addressID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get address")
		return
	}
	if !requireOwnerOrAdmin(w, r, existing.UserID) {
		return
	}

	var req AddressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := h.users.UpdateAddress(r.Context(), addressID, service.AddressInput{
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, address)
}

// DeleteAddress removes an address
func (h *UserHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	addressID, ok := urlUUID(w, r, "addressID")
	if !ok {
		return
	}

	existing, err := h.users.GetAddress(r.Context(), addressID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to get address")
		return
	}
	if !requireOwnerOrAdmin(w, r, existing.UserID) {
		return
	}

	if err := h.users.DeleteAddress(r.Context(), addressID); err != nil {
		respondServiceError(w, h.logger, err, "failed to delete address")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
