package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

// DashboardStatsResponse contains aggregate admin metrics.
type DashboardStatsResponse struct {
	Listings            *models.ListingStats `json:"listings"`
	UsersBySubscription map[string]int64     `json:"users_by_subscription"`
	GeneratedAt         time.Time            `json:"generated_at"`
}

// AdminService backs the admin dashboard, moderation and plan management.
type AdminService struct {
	listings store.Listings
	users    store.Users
	tiers    models.TierTable
	audit    AuditRecorder
	email    EmailService
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	listings store.Listings,
	users store.Users,
	tiers models.TierTable,
	audit AuditRecorder,
	email EmailService,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		listings: listings,
		users:    users,
		tiers:    tiers,
		audit:    audit,
		email:    email,
		logger:   logger,
		now:      time.Now,
	}
}

// GetDashboardStats returns listing counts by status and users by plan.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStatsResponse, error) {
	now := s.now().UTC()

	listingStats, err := s.listings.Stats(ctx, now)
	if err != nil {
		s.logger.Error("dashboard: failed to count listings", slog.Any("error", err))
		return nil, models.NewStoreError("listing stats", err)
	}

	bySubscription, err := s.users.CountBySubscription(ctx)
	if err != nil {
		s.logger.Error("dashboard: failed to count users by subscription", slog.Any("error", err))
		return nil, models.NewStoreError("count users by subscription", err)
	}

	// every configured tier shows up, even with no users
	for _, name := range s.tiers.Names() {
		if _, ok := bySubscription[name]; !ok {
			bySubscription[name] = 0
		}
	}

	return &DashboardStatsResponse{
		Listings:            listingStats,
		UsersBySubscription: bySubscription,
		GeneratedAt:         now,
	}, nil
}

// ModerateListing sets a listing's status and emails its agent. A failed
// email is logged and does not undo the status change.
func (s *AdminService) ModerateListing(ctx context.Context, admin *models.User, propertyID, status string) (*models.Listing, error) {
	if !admin.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if !models.ValidModerationStatus(status) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	current, err := s.listings.GetByID(ctx, propertyID)
	if err != nil {
		return nil, wrapStoreError("get listing", err)
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := s.listings.SetStatus(ctx, propertyID, status)
	if err != nil {
		return nil, wrapStoreError("set listing status", err)
	}

	s.audit.LogListingEvent(ctx, models.AuditEventTypeModeration, admin.ID, models.AuditActionUpdate, propertyID,
		models.NewStatusChangeMetadata(current.Status, status))

	agent, err := s.users.GetByID(ctx, updated.AgentID)
	if err != nil {
		s.logger.WarnContext(ctx, "moderation: agent not found, skipping email",
			slog.String("listing_id", propertyID),
			slog.String("agent_id", updated.AgentID),
			slog.Any("error", err),
		)
		return updated, nil
	}
	if err := s.email.SendListingStatusEmail(ctx, agent, updated, current.Status, status); err != nil {
		s.logger.ErrorContext(ctx, "moderation: failed to email agent",
			slog.String("listing_id", propertyID),
			slog.Any("error", err),
		)
	}

	return updated, nil
}

// ChangeSubscription moves a user to another configured tier. Existing
// listings are untouched; the new limits apply from the next quota check.
func (s *AdminService) ChangeSubscription(ctx context.Context, admin *models.User, userID, tier string) (*models.User, error) {
	if !admin.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if !s.tiers.Has(tier) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownTier, tier)
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapStoreError("get user", err)
	}

	updated, err := s.users.UpdateSubscription(ctx, userID, tier)
	if err != nil {
		return nil, wrapStoreError("update subscription", err)
	}

	s.audit.LogPlanChange(ctx, admin.ID, userID, current.SubscriptionType, tier)
	return updated, nil
}
