package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"german-butchery/internal/cart"
	"german-butchery/internal/config"
	"german-butchery/internal/database"
	custommiddleware "german-butchery/internal/middleware"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"
	"german-butchery/internal/storefront"
	"german-butchery/internal/transport"
	"german-butchery/internal/whatsapp"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, dbService database.Service) (*Server, error) {
	db := dbService.DB()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.RecoverMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))

	router.Get("/api/health", healthHandler(dbService, rdb))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	zoneRepo := repository.NewDeliveryZoneRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	cartStore := cart.NewRedisStore(rdb, cfg.Redis.CartTTL)

	var notifier service.Notifier
	if cfg.WhatsApp.APIURL != "" {
		notifier = whatsapp.NewClient(
			cfg.WhatsApp.APIURL,
			cfg.WhatsApp.Username,
			cfg.WhatsApp.Password,
			cfg.WhatsApp.Path,
			cfg.WhatsApp.CountryCode,
		)
		logger.Info("WhatsApp gateway enabled", zap.String("url", cfg.WhatsApp.APIURL))
	}

	// Initialize services
	userService := service.NewUserService(
		userRepo,
		refreshTokenRepo,
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshExpiry)*24*time.Hour,
		logger,
	)
	productService := service.NewProductService(productRepo, cfg.Store.Currency)
	categoryService := service.NewCategoryService(categoryRepo)
	zoneService := service.NewDeliveryZoneService(zoneRepo)
	settingService := service.NewSettingService(settingRepo, cfg.Store.Name)
	orderService := service.NewOrderService(orderRepo, productRepo, zoneRepo, cfg.WhatsApp.CountryCode)
	cartService := service.NewCartService(cartStore, productRepo)
	checkoutService := service.NewCheckoutService(orderService, settingService, cartStore, notifier, cfg.WhatsApp.CountryCode, logger)
	dashboardService := service.NewDashboardService(orderRepo, productRepo)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := userService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		cancel()
		if err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	checkoutLimiter := custommiddleware.RateLimitMiddleware(rdb, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:checkout",
	}, logger)
	guards := transport.NewGuards(cfg.JWT.Secret, checkoutLimiter, logger)

	// Register routes
	transport.NewUserHandler(userService, logger).RegisterRoutes(router, guards)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, guards)
	transport.NewCategoryHandler(categoryService, logger).RegisterRoutes(router, guards)
	transport.NewDeliveryZoneHandler(zoneService, logger).RegisterRoutes(router, guards)
	transport.NewSettingHandler(settingService, logger).RegisterRoutes(router, guards)
	transport.NewOrderHandler(orderService, checkoutService, logger).RegisterRoutes(router, guards)
	transport.NewCartHandler(cartService, checkoutService, logger).RegisterRoutes(router, guards)
	transport.NewDashboardHandler(dashboardService, logger).RegisterRoutes(router, guards)

	shop, err := storefront.New(storefront.Services{
		Products:   productService,
		Categories: categoryService,
		Zones:      zoneService,
		Settings:   settingService,
		Carts:      cartService,
		Checkout:   checkoutService,
	}, logger)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to load storefront templates: %w", err)
	}
	shop.RegisterRoutes(router, checkoutLimiter)

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
		db:     dbService,
		redis:  rdb,
	}

	return server, nil
}

// healthHandler reports database and redis status. Either being down turns
// the response into a 503.
func healthHandler(dbService database.Service, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbHealth := dbService.Health()
		redisStatus := "up"
		if err := rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}

		status := http.StatusOK
		overall := "ok"
		if dbHealth["status"] != "up" || redisStatus != "up" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status":   overall,
			"database": dbHealth,
			"redis":    redisStatus,
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
