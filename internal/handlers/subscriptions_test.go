package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/realty/internal/handlers"
	"github.com/BradenHooton/realty/internal/models"
)

func testTierTable(t *testing.T) models.TierTable {
	tiers, err := models.NewTierTable(
		models.SubscriptionTier{Name: "enterprise", MaxListings: 100, MaxFeatured: 20},
		models.SubscriptionTier{Name: "basic", MaxListings: 5, MaxFeatured: 0},
		models.SubscriptionTier{Name: "pro", MaxListings: 25, MaxFeatured: 5},
	)
	require.NoError(t, err)
	return tiers
}

func TestListTiers_Ordered(t *testing.T) {
	h := handlers.NewSubscriptionHandler(testTierTable(t), &handlers.MockQuotaUsageService{}, handlers.NewTestLogger())

	w := httptest.NewRecorder()
	h.ListTiers(w, httptest.NewRequest(http.MethodGet, "/subscriptions/tiers", nil))

	var resp handlers.ListTiersResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp.Tiers, 3)
	assert.Equal(t, "basic", resp.Tiers[0].Name)
	assert.Equal(t, "pro", resp.Tiers[1].Name)
	assert.Equal(t, 5, resp.Tiers[1].MaxFeatured)
	assert.Equal(t, "enterprise", resp.Tiers[2].Name)
}

func TestGetQuota(t *testing.T) {
	svc := &handlers.MockQuotaUsageService{
		UsageFunc: func(ctx context.Context, user *models.User) (*models.QuotaUsage, error) {
			return &models.QuotaUsage{Tier: "pro", ListingsUsed: 7, ListingsLimit: 25, FeaturedUsed: 2, FeaturedLimit: 5}, nil
		},
	}
	h := handlers.NewSubscriptionHandler(testTierTable(t), svc, handlers.NewTestLogger())

	req := handlers.WithAuthContext(httptest.NewRequest(http.MethodGet, "/me/quota", nil), testAgent)
	w := httptest.NewRecorder()
	h.GetQuota(w, req)

	var resp handlers.QuotaUsageResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "pro", resp.Tier)
	assert.Equal(t, handlers.UsageCounter{Used: 7, Limit: 25}, resp.Listings)
	assert.Equal(t, handlers.UsageCounter{Used: 2, Limit: 5}, resp.Featured)
}

func TestGetQuota_StoreFailure(t *testing.T) {
	svc := &handlers.MockQuotaUsageService{
		UsageFunc: func(ctx context.Context, user *models.User) (*models.QuotaUsage, error) {
			return nil, models.NewStoreError("count listings", context.DeadlineExceeded)
		},
	}
	h := handlers.NewSubscriptionHandler(testTierTable(t), svc, handlers.NewTestLogger())

	req := handlers.WithAuthContext(httptest.NewRequest(http.MethodGet, "/me/quota", nil), testAgent)
	w := httptest.NewRecorder()
	h.GetQuota(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
}
