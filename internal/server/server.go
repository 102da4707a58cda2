package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"owzars-commerce/internal/config"
	custommiddleware "owzars-commerce/internal/middleware"
	"owzars-commerce/internal/payment"
	"owzars-commerce/internal/repository"
	"owzars-commerce/internal/service"
	"owzars-commerce/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, provider payment.Provider) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.CORSHosts, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret, cfg.Admin.Email)
	productService := service.NewProductService(productRepo)
	orderService := service.NewOrderService(orderRepo)
	checkoutService := service.NewCheckoutService(productRepo, orderRepo, provider, cfg.Server.BaseURL, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, logger)

	// Create shared middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	var checkoutRateLimit func(http.Handler) http.Handler
	if redisClient != nil {
		checkoutRateLimit = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 10,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:checkout",
		}, logger)
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	checkoutHandler.RegisterRoutes(router, authMiddleware, checkoutRateLimit)

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

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
