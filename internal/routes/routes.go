package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/handlers"
	"github.com/BradenHooton/realty/internal/middleware"
	"github.com/BradenHooton/realty/internal/models"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Listings      *handlers.ListingHandler
	Favorites     *handlers.FavoriteHandler
	Subscriptions *handlers.SubscriptionHandler
	Admin         *handlers.AdminHandler
}

// Config carries what the route middleware needs
type Config struct {
	TokenManager    *auth.TokenManager
	Users           auth.UserRepository
	QuotaGate       middleware.QuotaGateConfig
	PublicRateLimit middleware.RateLimitConfig
	WriteRateLimit  middleware.RateLimitConfig
	Logger          *slog.Logger
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, cfg Config) {
	requireAuth := auth.AuthMiddleware(cfg.TokenManager, cfg.Users, cfg.Logger)
	writeLimit := middleware.RateLimitByUserID(cfg.WriteRateLimit)
	publishers := auth.RequireRole(models.RoleAgent, models.RoleAgencyAdmin, models.RoleAdmin)

	// Public routes - a bearer token only widens what GET /listings/{id} may show
	router.Get("/subscriptions/tiers", h.Subscriptions.ListTiers)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(cfg.PublicRateLimit))
		r.Use(auth.OptionalAuth(cfg.TokenManager, cfg.Users, cfg.Logger))
		r.Get("/listings", h.Listings.SearchListings)
		r.Get("/listings/{id}", h.Listings.GetListing)
	})

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(requireAuth)

		// Any authenticated user
		r.Get("/me/quota", h.Subscriptions.GetQuota)
		r.Get("/me/favourites", h.Favorites.ListFavourites)
		r.With(writeLimit).Post("/me/favourites/{id}", h.Favorites.AddFavourite)
		r.With(writeLimit).Delete("/me/favourites/{id}", h.Favorites.RemoveFavourite)

		// Listing owners
		r.Group(func(r chi.Router) {
			r.Use(publishers)
			r.Use(writeLimit)
			r.With(middleware.QuotaGate(cfg.QuotaGate, models.QuotaActionAddListing)).Post("/listings", h.Listings.CreateListing)
			r.Put("/listings/{id}", h.Listings.UpdateListing)
			r.Delete("/listings/{id}", h.Listings.DeleteListing)
			r.With(middleware.QuotaGate(cfg.QuotaGate, models.QuotaActionFeatureListing)).Post("/listings/{id}/feature", h.Listings.FeatureListing)
			r.Delete("/listings/{id}/feature", h.Listings.UnfeatureListing)
		})

		// Dashboards
		r.With(publishers).Get("/agent/listings", h.Listings.ListAgentListings)
		r.With(auth.RequireRole(models.RoleAgencyAdmin)).Get("/agency/listings", h.Listings.ListAgencyListings)

		// Admin-only routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))
			r.Get("/listings", h.Listings.ListAdminListings)
			r.Patch("/listings/{id}/status", h.Admin.ModerateListing)
			r.Put("/users/{id}/subscription", h.Admin.ChangeSubscription)
			r.Get("/stats", h.Admin.GetDashboardStats)
			r.Get("/audit-logs", h.Admin.ListAuditLogs)
		})
	})
}
