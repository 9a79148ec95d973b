package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 10

// RegisterInput carries the fields for account creation
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     domain.UserRole
}

// UserUpdate carries optional fields for a partial user update
type UserUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// AddressInput carries the writable fields of an address
type AddressInput struct {
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
	IsDefault    bool
}

// Claims represents the JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// UserService defines the interface for account and address management
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateAddress(ctx context.Context, userID uuid.UUID, in AddressInput) (*domain.Address, error)
	GetAddress(ctx context.Context, id uuid.UUID) (*domain.Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, in AddressInput) (*domain.Address, error)
	DeleteAddress(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo     repository.UserRepository
	addressRepo  repository.AddressRepository
	txManager    repository.TxManager
	jwtSecret    string
	accessExpiry time.Duration
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	addressRepo repository.AddressRepository,
	txManager repository.TxManager,
	jwtSecret string,
	accessExpiry time.Duration,
) UserService {
	return &userService{
		userRepo:     userRepo,
		addressRepo:  addressRepo,
		txManager:    txManager,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

// Register creates a new account with a hashed password
func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashed),
		Phone:        in.Phone,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns a signed JWT
func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := &Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// UpdateUser applies a partial update to a user
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes an account and everything owned by it: addresses,
// carts with their items, and orders with their items, payments and
// installments. Inventory movements recorded by the user are kept with
// the author cleared.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// CreateAddress adds a delivery address for a user. Marking it as the
// default clears the flag on the user's other addresses.
func (s *userService) CreateAddress(ctx context.Context, userID uuid.UUID, in AddressInput) (*domain.Address, error) {
	if in.Street == "" || in.City == "" || in.State == "" || in.ZipCode == "" {
		return nil, fmt.Errorf("%w: street, city, state and zip code are required", ErrInvalidInput)
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	address := &domain.Address{
		ID:           uuid.New(),
		UserID:       userID,
		Street:       in.Street,
		Number:       in.Number,
		Complement:   in.Complement,
		Neighborhood: in.Neighborhood,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		IsDefault:    in.IsDefault,
		CreatedAt:    time.Now(),
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if in.IsDefault {
			if err := s.clearDefaultAddress(ctx, userID, uuid.Nil); err != nil {
				return err
			}
		}
		if err := s.addressRepo.Create(ctx, address); err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (s *userService) GetAddress(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	return s.addressRepo.FindByID(ctx, id)
}

func (s *userService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.addressRepo.ListByUser(ctx, userID)
}

// UpdateAddress replaces the writable fields of an address
func (s *userService) UpdateAddress(ctx context.Context, id uuid.UUID, in AddressInput) (*domain.Address, error) {
	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Street != "" {
		address.Street = in.Street
	}
	if in.Number != "" {
		address.Number = in.Number
	}
	if in.Complement != "" {
		address.Complement = in.Complement
	}
	if in.Neighborhood != "" {
		address.Neighborhood = in.Neighborhood
	}
	if in.City != "" {
		address.City = in.City
	}
	if in.State != "" {
		address.State = in.State
	}
	if in.ZipCode != "" {
		address.ZipCode = in.ZipCode
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if in.IsDefault && !address.IsDefault {
			if err := s.clearDefaultAddress(ctx, address.UserID, address.ID); err != nil {
				return err
			}
			address.IsDefault = true
		}
		if err := s.addressRepo.Update(ctx, address); err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (s *userService) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	return s.addressRepo.Delete(ctx, id)
}

// clearDefaultAddress unsets the default flag on every address of the
// user except the one being kept.
func (s *userService) clearDefaultAddress(ctx context.Context, userID, keep uuid.UUID) error {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list addresses: %w", err)
	}
	for _, a := range addresses {
		if a.ID != keep && a.IsDefault {
			a.IsDefault = false
			if err := s.addressRepo.Update(ctx, a); err != nil {
				return fmt.Errorf("failed to clear default address: %w", err)
			}
		}
	}
	return nil
}
