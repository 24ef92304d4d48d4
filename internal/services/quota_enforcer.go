package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/BradenHooton/realty/internal/metrics"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
	"github.com/BradenHooton/realty/internal/telemetry"
)

// QuotaEnforcer gates addListing and featureListing behind per-tier limits,
// evaluated against live counts on every call. It holds no mutable state.
//
// Two concurrent checks for the same agent can both observe count < limit and
// both proceed. Callers that write run the check again inside the write
// transaction with WithCounter, which narrows but does not close that window.
type QuotaEnforcer struct {
	tiers   models.TierTable
	counter store.ListingCounter
	logger  *slog.Logger
	tracer  trace.Tracer
	stage   string
	now     func() time.Time
}

// NewQuotaEnforcer creates a QuotaEnforcer
func NewQuotaEnforcer(tiers models.TierTable, counter store.ListingCounter, tracer trace.Tracer, logger *slog.Logger) *QuotaEnforcer {
	if tracer == nil {
		tracer = telemetry.NoopTracer()
	}
	return &QuotaEnforcer{
		tiers:   tiers,
		counter: counter,
		logger:  logger,
		tracer:  tracer,
		stage:   metrics.QuotaStageGate,
		now:     time.Now,
	}
}

// WithCounter returns a copy of the enforcer that counts through counter,
// typically a store bound to the caller's write transaction.
func (e *QuotaEnforcer) WithCounter(counter store.ListingCounter) *QuotaEnforcer {
	c := *e
	c.counter = counter
	c.stage = metrics.QuotaStageTx
	return &c
}

// Tiers returns the tier table the enforcer was built with.
func (e *QuotaEnforcer) Tiers() models.TierTable {
	return e.tiers
}

// CheckQuota decides whether user may perform action. A Deny is returned as a
// Decision with a nil error; err is non-nil only for *models.ConfigError or
// *models.StoreError.
func (e *QuotaEnforcer) CheckQuota(ctx context.Context, user *models.User, action models.QuotaAction) (decision models.Decision, err error) {
	ctx, span := e.tracer.Start(ctx, "quota.check",
		trace.WithAttributes(
			attribute.String("quota.action", string(action)),
			attribute.String("user.id", user.ID),
		),
	)
	defer func() {
		outcome := "allow"
		switch {
		case err != nil:
			outcome = "error"
		case !decision.Allowed:
			outcome = "deny"
		}
		span.SetAttributes(
			attribute.String("quota.tier", decision.Tier),
			attribute.String("quota.outcome", outcome),
			attribute.String("quota.stage", e.stage),
		)
		metrics.QuotaDecision(string(action), outcome, e.stage)
		telemetry.EndSpan(span, err)
	}()

	tier, err := e.tiers.Resolve(user.SubscriptionType)
	if err != nil {
		return models.Decision{Action: action}, err
	}

	switch action {
	case models.QuotaActionAddListing:
		count, err := e.counter.CountAvailableByAgent(ctx, user.ID)
		if err != nil {
			e.logger.Error("failed to count listings for quota",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
			return models.Decision{Action: action, Tier: tier.Name}, models.NewStoreError("count available listings", err)
		}
		if count >= int64(tier.MaxListings) {
			d := models.Deny(action, tier.Name, models.ReasonListingLimitReached, tier.MaxListings, count)
			e.logDeny(user, d)
			return d, nil
		}
		return models.Allow(action, tier.Name), nil

	case models.QuotaActionFeatureListing:
		// plan capability, not a count: no query
		if tier.MaxFeatured == 0 {
			d := models.Deny(action, tier.Name, models.ReasonFeaturedForbidden, 0, 0)
			e.logDeny(user, d)
			return d, nil
		}
		count, err := e.counter.CountActiveFeaturedByAgent(ctx, user.ID, e.now())
		if err != nil {
			e.logger.Error("failed to count featured listings for quota",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
			return models.Decision{Action: action, Tier: tier.Name}, models.NewStoreError("count featured listings", err)
		}
		if count >= int64(tier.MaxFeatured) {
			d := models.Deny(action, tier.Name, models.ReasonFeaturedLimitReached, tier.MaxFeatured, count)
			e.logDeny(user, d)
			return d, nil
		}
		return models.Allow(action, tier.Name), nil

	default:
		e.logger.Warn("quota check for ungated action allowed",
			slog.String("action", string(action)),
			slog.String("user_id", user.ID),
		)
		return models.Allow(action, tier.Name), nil
	}
}

// Usage reports the user's consumption against their tier limits.
func (e *QuotaEnforcer) Usage(ctx context.Context, user *models.User) (*models.QuotaUsage, error) {
	tier, err := e.tiers.Resolve(user.SubscriptionType)
	if err != nil {
		return nil, err
	}

	listings, err := e.counter.CountAvailableByAgent(ctx, user.ID)
	if err != nil {
		return nil, models.NewStoreError("count available listings", err)
	}

	var featured int64
	if tier.MaxFeatured > 0 {
		featured, err = e.counter.CountActiveFeaturedByAgent(ctx, user.ID, e.now())
		if err != nil {
			return nil, models.NewStoreError("count featured listings", err)
		}
	}

	return &models.QuotaUsage{
		Tier:          tier.Name,
		ListingsUsed:  listings,
		ListingsLimit: tier.MaxListings,
		FeaturedUsed:  featured,
		FeaturedLimit: tier.MaxFeatured,
	}, nil
}

func (e *QuotaEnforcer) logDeny(user *models.User, d models.Decision) {
	e.logger.Info("quota denied",
		slog.String("user_id", user.ID),
		slog.String("action", string(d.Action)),
		slog.String("tier", d.Tier),
		slog.Int64("used", d.Used),
		slog.Int("limit", d.Limit),
	)
}
