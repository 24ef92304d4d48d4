package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/background"
	"github.com/BradenHooton/realty/internal/config"
	"github.com/BradenHooton/realty/internal/database"
	"github.com/BradenHooton/realty/internal/handlers"
	"github.com/BradenHooton/realty/internal/metrics"
	middlewareCustom "github.com/BradenHooton/realty/internal/middleware"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/repositories"
	"github.com/BradenHooton/realty/internal/routes"
	"github.com/BradenHooton/realty/internal/services"
	"github.com/BradenHooton/realty/internal/store"
	"github.com/BradenHooton/realty/internal/telemetry"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
	pkglogger "github.com/BradenHooton/realty/pkg/logger"
)

// stores bundles the persistence layer selected by STORE_DRIVER
type stores struct {
	listings  store.Listings
	favorites store.Favorites
	users     store.Users
	audit     store.AuditLogs
	health    func(ctx context.Context) error
	close     func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg.Server)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store", cfg.Store.Driver),
		slog.Any("tiers", cfg.Subscriptions.Tiers.Names()),
	)

	ctx := context.Background()

	// Tracing
	tel, err := telemetry.New(ctx, cfg.Telemetry, cfg.Server.Env)
	if err != nil {
		logger.Error("failed to initialize telemetry", slog.Any("error", err))
		os.Exit(1)
	}

	// Persistence
	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.close()

	// Email
	var emailService services.EmailService
	switch cfg.Email.Provider {
	case "ses":
		emailService, err = services.NewAWSSESEmailService(ctx, cfg.Email.Region, cfg.Email.From, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
	default:
		emailService = services.NewLogEmailService(logger)
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Services
	tiers := cfg.Subscriptions.Tiers
	enforcer := services.NewQuotaEnforcer(tiers, st.listings, tel.Tracer, logger)
	auditService := services.NewAuditService(st.audit, logger)
	listingService := services.NewListingService(st.listings, enforcer, auditService, cfg.Listings, tel.Tracer, logger)
	favoriteService := services.NewFavoriteService(st.favorites, listingService, logger)
	adminService := services.NewAdminService(st.listings, st.users, tiers, auditService, emailService, logger)

	// Bootstrap first admin user if configured
	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := ensureAdminUser(bootCtx, st.users, cfg.Auth.AdminEmail, tiers, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	validator := handlers.NewValidator(tiers)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(metrics.Middleware)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Register routes
	routes.RegisterRoutes(router, routes.Handlers{
		Listings:      handlers.NewListingHandler(listingService, validator, ipConfig, logger),
		Favorites:     handlers.NewFavoriteHandler(favoriteService, logger),
		Subscriptions: handlers.NewSubscriptionHandler(tiers, enforcer, logger),
		Admin:         handlers.NewAdminHandler(adminService, auditService, validator, logger),
	}, routes.Config{
		TokenManager: tokenManager,
		Users:        st.users,
		QuotaGate: middlewareCustom.QuotaGateConfig{
			Checker:  enforcer,
			Audit:    auditService,
			IPConfig: ipConfig,
			Logger:   logger,
		},
		PublicRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.PublicRateLimit, IPConfig: ipConfig},
		WriteRateLimit:  middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.WriteRateLimit, IPConfig: ipConfig},
		Logger:          logger,
	})

	// Health check with store
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.health(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "store": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "store": "up"})
	})

	if cfg.Metrics.Enabled {
		router.Handle("/metrics", metrics.Handler(cfg.Metrics.Username, cfg.Metrics.Password))
	}

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start featured expiry sweep
	expiryCtx, expiryCancel := context.WithCancel(ctx)
	defer expiryCancel()

	expiryManager := background.NewFeaturedExpiryManager(
		st.listings,
		st.users,
		emailService,
		auditService,
		logger,
		cfg.Background.FeaturedExpiryInterval,
	)
	go expiryManager.Start(expiryCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	expiryCancel()
	expiryManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped gracefully")
}

// newLogger picks a JSON handler outside development and honours LOG_LEVEL.
func newLogger(cfg config.ServerConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Env == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func openStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")

		favorites := repositories.NewMemoryFavoriteRepository()
		listings := repositories.NewMemoryListingRepository(favorites, cfg.Listings.CollationLocale)
		favorites.BindListings(listings)

		return &stores{
			listings:  listings,
			favorites: favorites,
			users:     repositories.NewMemoryUserRepository(),
			audit:     repositories.NewMemoryAuditLogRepository(),
			health:    func(context.Context) error { return nil },
			close:     func() {},
		}, nil
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Store.AutoMigrate {
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &stores{
		listings:  repositories.NewListingRepository(db),
		favorites: repositories.NewFavoriteRepository(db),
		users:     repositories.NewUserRepository(db),
		audit:     repositories.NewAuditLogRepository(db),
		health:    db.HealthCheck,
		close:     db.Close,
	}, nil
}

// ensureAdminUser creates the first admin user if ADMIN_EMAIL is set. Credentials
// are owned by the identity provider, so only the profile row is created here.
func ensureAdminUser(ctx context.Context, users store.Users, adminEmail string, tiers models.TierTable, logger *slog.Logger) error {
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" {
		logger.Info("no ADMIN_EMAIL set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := users.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	// Admins get the largest plan
	all := tiers.All()
	admin := &models.User{
		Email:            adminEmail,
		Name:             "Admin",
		Role:             models.RoleAdmin,
		SubscriptionType: all[len(all)-1].Name,
	}

	if _, err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully", slog.String("email", pkglogger.SanitizedEmail(adminEmail)))
	return nil
}
