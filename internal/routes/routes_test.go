package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/config"
	"github.com/BradenHooton/realty/internal/handlers"
	"github.com/BradenHooton/realty/internal/middleware"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/repositories"
	"github.com/BradenHooton/realty/internal/routes"
	"github.com/BradenHooton/realty/internal/services"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

type apiFixture struct {
	router   chi.Router
	tokens   *auth.TokenManager
	users    *repositories.MemoryUserRepository
	listings *repositories.MemoryListingRepository
	audit    *repositories.MemoryAuditLogRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tiers, err := config.ParseTiers(config.DefaultSubscriptionTiers)
	require.NoError(t, err)

	favorites := repositories.NewMemoryFavoriteRepository()
	listings := repositories.NewMemoryListingRepository(favorites, "en")
	favorites.BindListings(listings)
	users := repositories.NewMemoryUserRepository()
	auditRepo := repositories.NewMemoryAuditLogRepository()

	listingCfg := config.ListingConfig{
		AdminPageSize:      10,
		AgentPageSize:      10,
		AgencyPageSize:     10,
		FavoritesPageSize:  12,
		SearchPageSize:     20,
		MaxPageSize:        100,
		CollationLocale:    "en",
		DefaultFeatureDays: 30,
		MaxFeatureDays:     90,
	}

	enforcer := services.NewQuotaEnforcer(tiers, listings, nil, logger)
	auditService := services.NewAuditService(auditRepo, logger)
	listingService := services.NewListingService(listings, enforcer, auditService, listingCfg, nil, logger)
	favoriteService := services.NewFavoriteService(favorites, listingService, logger)
	adminService := services.NewAdminService(listings, users, tiers, auditService, services.NewLogEmailService(logger), logger)

	ipConfig, err := pkghttp.NewIPConfig(nil)
	require.NoError(t, err)
	validator := handlers.NewValidator(tiers)
	tokens := auth.NewTokenManager("test-secret-that-is-long-enough-for-hs256", time.Hour)

	router := chi.NewRouter()
	routes.RegisterRoutes(router, routes.Handlers{
		Listings:      handlers.NewListingHandler(listingService, validator, ipConfig, logger),
		Favorites:     handlers.NewFavoriteHandler(favoriteService, logger),
		Subscriptions: handlers.NewSubscriptionHandler(tiers, enforcer, logger),
		Admin:         handlers.NewAdminHandler(adminService, auditService, validator, logger),
	}, routes.Config{
		TokenManager: tokens,
		Users:        users,
		QuotaGate: middleware.QuotaGateConfig{
			Checker:  enforcer,
			Audit:    auditService,
			IPConfig: ipConfig,
			Logger:   logger,
		},
		PublicRateLimit: middleware.RateLimitConfig{RequestsPerMinute: 1000, IPConfig: ipConfig},
		WriteRateLimit:  middleware.RateLimitConfig{RequestsPerMinute: 1000, IPConfig: ipConfig},
		Logger:          logger,
	})

	return &apiFixture{router: router, tokens: tokens, users: users, listings: listings, audit: auditRepo}
}

func (f *apiFixture) createUser(t *testing.T, email, role, tier string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &models.User{Email: email, Name: email, Role: role, SubscriptionType: tier})
	require.NoError(t, err)
	return u
}

func (f *apiFixture) seed(t *testing.T, agentID string, n int, status string) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.listings.Create(context.Background(), &models.Listing{
			AgentID:          agentID,
			Title:            fmt.Sprintf("Listing %d", i),
			Status:           status,
			PurchaseCategory: models.PurchaseCategorySale,
			Location:         "Lekki",
			State:            "Lagos",
			PropertyType:     "House",
		})
		require.NoError(t, err)
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := f.tokens.GenerateAccessToken(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func newListingBody() map[string]interface{} {
	return map[string]interface{}{
		"title":             "Two bed flat",
		"purchase_category": "Rent",
		"price":             "₦2,500,000",
		"location":          "Yaba",
		"state":             "Lagos",
		"property_type":     "Flat",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkghttp.ErrorResponse {
	t.Helper()
	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPublicSearch_HidesPendingListings(t *testing.T) {
	f := newAPIFixture(t)
	agent := f.createUser(t, "agent@example.com", models.RoleAgent, "pro")
	f.seed(t, agent.ID, 3, models.ListingStatusAvailable)
	f.seed(t, agent.ID, 2, models.ListingStatusPending)

	w := f.do(t, http.MethodGet, "/listings", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.ListListingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 1, resp.TotalPages)
	for _, l := range resp.Listings {
		assert.Equal(t, models.ListingStatusAvailable, l.Status)
	}
}

func TestCreateListing_RequiresPublisher(t *testing.T) {
	f := newAPIFixture(t)
	client := f.createUser(t, "client@example.com", models.RoleClient, "basic")

	w := f.do(t, http.MethodPost, "/listings", nil, newListingBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/listings", client, newListingBody())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeError(t, w).Code)
}

func TestCreateListing_StartsPendingAndCountsNothingYet(t *testing.T) {
	f := newAPIFixture(t)
	agent := f.createUser(t, "agent@example.com", models.RoleAgent, "basic")

	w := f.do(t, http.MethodPost, "/listings", agent, newListingBody())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created handlers.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.ListingStatusPending, created.Status)
	assert.Equal(t, agent.ID, created.AgentID)

	w = f.do(t, http.MethodGet, "/me/quota", agent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage handlers.QuotaUsageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, "basic", usage.Tier)
	assert.Equal(t, handlers.UsageCounter{Used: 0, Limit: 5}, usage.Listings)
	assert.Equal(t, handlers.UsageCounter{Used: 0, Limit: 0}, usage.Featured)
}

func TestCreateListing_BasicAgentAtLimit(t *testing.T) {
	f := newAPIFixture(t)
	agent := f.createUser(t, "agent@example.com", models.RoleAgent, "basic")
	f.seed(t, agent.ID, 5, models.ListingStatusAvailable)

	w := f.do(t, http.MethodPost, "/listings", agent, newListingBody())

	require.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "quota_exceeded", resp.Code)
	require.NotNil(t, resp.Limit)
	assert.Equal(t, 5, *resp.Limit)

	logs, total, err := f.audit.List(context.Background(), models.AuditLogFilter{EventType: models.AuditEventTypeQuotaDenied, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
}

func TestFeatureListing_BasicPlanForbidden(t *testing.T) {
	f := newAPIFixture(t)
	agent := f.createUser(t, "agent@example.com", models.RoleAgent, "basic")
	f.seed(t, agent.ID, 1, models.ListingStatusAvailable)

	w := f.do(t, http.MethodPost, "/listings/any-id/feature", agent, map[string]int{"days": 7})

	require.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "plan_feature_unavailable", resp.Code)
	require.NotNil(t, resp.Limit)
	assert.Equal(t, 0, *resp.Limit)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	f := newAPIFixture(t)
	agent := f.createUser(t, "agent@example.com", models.RoleAgent, "pro")
	admin := f.createUser(t, "admin@example.com", models.RoleAdmin, "enterprise")

	w := f.do(t, http.MethodGet, "/admin/stats", agent, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlanChange_AppliesOnNextRequest(t *testing.T) {
	f := newAPIFixture(t)
	agent := f.createUser(t, "agent@example.com", models.RoleAgent, "basic")
	admin := f.createUser(t, "admin@example.com", models.RoleAdmin, "enterprise")
	f.seed(t, agent.ID, 5, models.ListingStatusAvailable)

	w := f.do(t, http.MethodPost, "/listings", agent, newListingBody())
	require.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPut, "/admin/users/"+agent.ID+"/subscription", admin, map[string]string{"subscription_type": "pro"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/listings", agent, newListingBody())
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestFavourites_RoundTrip(t *testing.T) {
	f := newAPIFixture(t)
	agent := f.createUser(t, "agent@example.com", models.RoleAgent, "pro")
	client := f.createUser(t, "client@example.com", models.RoleClient, "basic")
	f.seed(t, agent.ID, 1, models.ListingStatusAvailable)

	w := f.do(t, http.MethodGet, "/listings", nil, nil)
	var search handlers.ListListingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &search))
	require.Len(t, search.Listings, 1)
	id := search.Listings[0].PropertyID

	w = f.do(t, http.MethodPost, "/me/favourites/"+id, client, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/me/favourites", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var favs handlers.ListFavouritesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &favs))
	assert.Equal(t, int64(1), favs.Total)
	require.Len(t, favs.Favourites, 1)
	assert.Equal(t, id, favs.Favourites[0].PropertyID)

	w = f.do(t, http.MethodDelete, "/me/favourites/"+id, client, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
