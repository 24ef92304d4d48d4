package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/realty/internal/metrics"
	"github.com/BradenHooton/realty/internal/models"
)

const (
	featuredExpiryJob   = "featured_expiry"
	featuredExpiryBatch = 100
)

// ExpiringListings clears featured periods that have ended
type ExpiringListings interface {
	ExpireFeatured(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error)
}

// AgentLookup resolves a listing's agent for notification
type AgentLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ExpiryNotifier tells an agent their listing is no longer featured
type ExpiryNotifier interface {
	SendFeaturedExpiredEmail(ctx context.Context, agent *models.User, listing *models.Listing) error
}

// ExpiryRecorder writes the audit entry for a cleared listing
type ExpiryRecorder interface {
	LogListingEvent(ctx context.Context, eventType string, actorID string, action string, listingID string, metadata models.AuditMetadata)
}

// FeaturedExpiryManager periodically unfeatures listings whose featured
// period has ended, so the flag and its expiry never disagree for long.
type FeaturedExpiryManager struct {
	listings ExpiringListings
	users    AgentLookup
	notifier ExpiryNotifier
	audit    ExpiryRecorder
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewFeaturedExpiryManager creates a new featured expiry manager
func NewFeaturedExpiryManager(
	listings ExpiringListings,
	users AgentLookup,
	notifier ExpiryNotifier,
	audit ExpiryRecorder,
	logger *slog.Logger,
	interval time.Duration,
) *FeaturedExpiryManager {
	return &FeaturedExpiryManager{
		listings: listings,
		users:    users,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep. It blocks until Stop or ctx is done.
func (m *FeaturedExpiryManager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Run immediately on startup
	m.run(ctx)

	for {
		select {
		case <-ticker.C:
			m.run(ctx)
		case <-m.stopCh:
			m.logger.Info("featured expiry manager stopped")
			return
		case <-ctx.Done():
			m.logger.Info("featured expiry manager context cancelled")
			return
		}
	}
}

func (m *FeaturedExpiryManager) run(ctx context.Context) {
	start := time.Now()

	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	expired, err := m.RunOnce(sweepCtx)
	if err != nil {
		metrics.JobFailed(featuredExpiryJob)
		m.logger.Error("failed to expire featured listings",
			slog.Int("expired", expired),
			slog.Any("error", err),
		)
		return
	}

	metrics.JobCompleted(featuredExpiryJob, time.Since(start))
	if expired > 0 {
		m.logger.Info("featured expiry completed", slog.Int("expired", expired))
	}
}

// RunOnce clears every featured period that ended at or before now, in
// batches, and returns how many listings it changed.
func (m *FeaturedExpiryManager) RunOnce(ctx context.Context) (int, error) {
	now := m.now().UTC()
	total := 0

	for {
		batch, err := m.listings.ExpireFeatured(ctx, now, featuredExpiryBatch)
		if err != nil {
			return total, err
		}

		for _, l := range batch {
			m.afterExpiry(ctx, l)
		}
		total += len(batch)
		metrics.FeaturedExpiredTotal.Add(float64(len(batch)))

		if len(batch) < featuredExpiryBatch {
			return total, nil
		}
	}
}

// afterExpiry audits and notifies. Failures here never undo the expiry.
func (m *FeaturedExpiryManager) afterExpiry(ctx context.Context, l *models.Listing) {
	m.audit.LogListingEvent(ctx, models.AuditEventTypeFeaturedExpired, "", models.AuditActionUpdate, l.PropertyID,
		models.AuditMetadata{"agent_id": l.AgentID})

	agent, err := m.users.GetByID(ctx, l.AgentID)
	if err != nil {
		m.logger.Warn("featured expiry: agent lookup failed",
			slog.String("property_id", l.PropertyID),
			slog.String("agent_id", l.AgentID),
			slog.Any("error", err),
		)
		return
	}

	if err := m.notifier.SendFeaturedExpiredEmail(ctx, agent, l); err != nil {
		m.logger.Warn("featured expiry: notification failed",
			slog.String("property_id", l.PropertyID),
			slog.Any("error", err),
		)
	}
}

// Stop signals the manager to stop. Safe to call more than once.
func (m *FeaturedExpiryManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}
