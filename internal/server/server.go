package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Repositories groups every repository behind one backing store
type Repositories struct {
	Users        repository.UserRepository
	Addresses    repository.AddressRepository
	Categories   repository.CategoryRepository
	Products     repository.ProductRepository
	Inventory    repository.InventoryRepository
	Movements    repository.MovementRepository
	Carts        repository.CartRepository
	CartItems    repository.CartItemRepository
	Orders       repository.OrderRepository
	OrderItems   repository.OrderItemRepository
	Payments     repository.PaymentRepository
	Installments repository.InstallmentRepository
	TxManager    repository.TxManager
}

// NewSQLRepositories builds the repository set on a postgres handle
func NewSQLRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Users:        repository.NewUserRepository(db),
		Addresses:    repository.NewAddressRepository(db),
		Categories:   repository.NewCategoryRepository(db),
		Products:     repository.NewProductRepository(db),
		Inventory:    repository.NewInventoryRepository(db),
		Movements:    repository.NewMovementRepository(db),
		Carts:        repository.NewCartRepository(db),
		CartItems:    repository.NewCartItemRepository(db),
		Orders:       repository.NewOrderRepository(db),
		OrderItems:   repository.NewOrderItemRepository(db),
		Payments:     repository.NewPaymentRepository(db),
		Installments: repository.NewInstallmentRepository(db),
		TxManager:    repository.NewSQLTxManager(db),
	}
}

// NewMemoryRepositories builds the repository set on an in-process store
func NewMemoryRepositories(store *repository.MemoryStore) *Repositories {
	return &Repositories{
		Users:        store.Users(),
		Addresses:    store.Addresses(),
		Categories:   store.Categories(),
		Products:     store.Products(),
		Inventory:    store.Inventory(),
		Movements:    store.Movements(),
		Carts:        store.Carts(),
		CartItems:    store.CartItems(),
		Orders:       store.Orders(),
		OrderItems:   store.OrderItems(),
		Payments:     store.Payments(),
		Installments: store.Installments(),
		TxManager:    store.TxManager(),
	}
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers onto a chi router.
// db may be nil when the memory storage driver is configured.
func NewServer(cfg *config.Config, logger *zap.Logger, repos *Repositories, db *sql.DB) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	// Optional redis-backed rate limiting
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize services
	catalogService := service.NewCatalogService(repos.Categories, repos.Products, repos.Inventory, repos.TxManager)
	inventoryService := service.NewInventoryService(repos.Inventory, repos.Movements, repos.TxManager)
	cartService := service.NewCartService(repos.Carts, repos.CartItems, repos.Products, repos.TxManager, cfg.Shipping)
	orderService := service.NewOrderService(
		repos.Orders, repos.OrderItems, repos.Products, repos.Inventory, repos.Movements,
		repos.Users, repos.Addresses, repos.CartItems, repos.TxManager, cfg.Shipping,
	)
	paymentService := service.NewPaymentService(repos.Payments, repos.Installments, repos.Orders, repos.TxManager)
	userService := service.NewUserService(
		repos.Users, repos.Addresses, repos.TxManager,
		cfg.JWT.Secret, time.Duration(cfg.JWT.AccessExpiry)*time.Minute,
	)
	analyticsService := service.NewAnalyticsService(repos.Orders, repos.Products, repos.Users, repos.Inventory)

	// Initialize handlers
	categoryHandler := transport.NewCategoryHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(catalogService, logger)
	inventoryHandler := transport.NewInventoryHandler(inventoryService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	paymentHandler := transport.NewPaymentHandler(paymentService, orderService, logger)
	userHandler := transport.NewUserHandler(userService, logger)
	analyticsHandler := transport.NewAnalyticsHandler(analyticsService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	optionalAuth := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)
	adminOnly := func(next http.Handler) http.Handler {
		return authMiddleware(requireAdmin(next))
	}

	// Register routes
	categoryHandler.RegisterRoutes(router, adminOnly)
	productHandler.RegisterRoutes(router, adminOnly)
	inventoryHandler.RegisterRoutes(router, adminOnly)
	cartHandler.RegisterRoutes(router, optionalAuth)
	orderHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	paymentHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	userHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	analyticsHandler.RegisterRoutes(router, adminOnly)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
