package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/models"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// QuotaUsageService reports a user's consumption against their plan
type QuotaUsageService interface {
	Usage(ctx context.Context, user *models.User) (*models.QuotaUsage, error)
}

// SubscriptionHandler serves the tier table and per-user usage
type SubscriptionHandler struct {
	tiers  models.TierTable
	quota  QuotaUsageService
	logger *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(tiers models.TierTable, quota QuotaUsageService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		tiers:  tiers,
		quota:  quota,
		logger: logger,
	}
}

// TierResponse represents one subscription tier
type TierResponse struct {
	Name        string `json:"name"`
	MaxListings int    `json:"max_listings"`
	MaxFeatured int    `json:"max_featured"`
}

// ListTiersResponse lists the configured tiers, smallest first
type ListTiersResponse struct {
	Tiers []TierResponse `json:"tiers"`
}

// UsageCounter is one used/limit pair
type UsageCounter struct {
	Used  int64 `json:"used"`
	Limit int   `json:"limit"`
}

// QuotaUsageResponse is the caller's usage against their plan
type QuotaUsageResponse struct {
	Tier     string       `json:"tier"`
	Listings UsageCounter `json:"listings"`
	Featured UsageCounter `json:"featured"`
}

// ListTiers returns the subscription tier table
//
// @Summary List subscription tiers
// @Produce json
// @Success 200 {object} ListTiersResponse
// @Router /subscriptions/tiers [get]
func (h *SubscriptionHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	all := h.tiers.All()
	resp := ListTiersResponse{Tiers: make([]TierResponse, 0, len(all))}
	for _, t := range all {
		resp.Tiers = append(resp.Tiers, TierResponse(t))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// GetQuota returns the caller's usage against their plan limits
//
// @Summary Get my quota usage
// @Produce json
// @Success 200 {object} QuotaUsageResponse
// @Failure 401 {object} ErrorResponse
// @Router /me/quota [get]
func (h *SubscriptionHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	usage, err := h.quota.Usage(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, QuotaUsageResponse{
		Tier:     usage.Tier,
		Listings: UsageCounter{Used: usage.ListingsUsed, Limit: usage.ListingsLimit},
		Featured: UsageCounter{Used: usage.FeaturedUsed, Limit: usage.FeaturedLimit},
	})
}
