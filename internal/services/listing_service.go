package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/BradenHooton/realty/internal/config"
	"github.com/BradenHooton/realty/internal/metrics"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
	"github.com/BradenHooton/realty/internal/telemetry"
)

// AuditRecorder is the subset of AuditService used outside the audit package.
type AuditRecorder interface {
	LogListingEvent(ctx context.Context, eventType string, actorID string, action string, listingID string, metadata models.AuditMetadata)
	LogQuotaDenied(ctx context.Context, user *models.User, d models.Decision, ipAddress *string)
	LogPlanChange(ctx context.Context, actorID, targetID, from, to string)
}

// domainErrors pass through the service layer unwrapped.
var domainErrors = []error{
	models.ErrNotFound,
	models.ErrConflict,
	models.ErrBadRequest,
	models.ErrForbidden,
	models.ErrUnauthorized,
	models.ErrInvalidStatus,
	models.ErrNoAgency,
	models.ErrUnknownTier,
	models.ErrAlreadyExpired,
}

// wrapStoreError keeps domain and typed errors and wraps everything else in a StoreError.
func wrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	var denied *models.QuotaDeniedError
	var cfgErr *models.ConfigError
	if errors.As(err, &denied) || errors.As(err, &cfgErr) {
		return err
	}
	return models.NewStoreError(op, err)
}

// ListingService runs the listing query pipeline and the quota-gated listing writes.
type ListingService struct {
	listings store.Listings
	enforcer *QuotaEnforcer
	audit    AuditRecorder
	cfg      config.ListingConfig
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

// NewListingService creates a new ListingService
func NewListingService(
	listings store.Listings,
	enforcer *QuotaEnforcer,
	audit AuditRecorder,
	cfg config.ListingConfig,
	tracer trace.Tracer,
	logger *slog.Logger,
) *ListingService {
	if tracer == nil {
		tracer = telemetry.NoopTracer()
	}
	return &ListingService{
		listings: listings,
		enforcer: enforcer,
		audit:    audit,
		cfg:      cfg,
		tracer:   tracer,
		logger:   logger,
		now:      time.Now,
	}
}

// Query returns one page of listings visible to caller under scope.
// The same request against an unchanged store always yields the same items in the same order.
func (s *ListingService) Query(ctx context.Context, req models.QueryRequest, scope models.Scope, caller *models.User) (result models.QueryResult, err error) {
	ctx, span := s.tracer.Start(ctx, "listings.query",
		trace.WithAttributes(attribute.String("listing.scope", scope.String())),
	)
	start := time.Now()
	defer func() {
		var storeErr *models.StoreError
		metrics.ListingQuery(scope.String(), time.Since(start), errors.As(err, &storeErr))
		telemetry.EndSpan(span, err)
	}()

	filter, err := models.ApplyScope(req.Filter, scope, caller)
	if err != nil {
		return models.QueryResult{}, err
	}
	req.Filter = filter
	req = req.Normalize(s.cfg.PageSizeFor(scope), s.cfg.MaxPageSize)

	span.SetAttributes(
		attribute.String("listing.sort", string(req.Sort.Key)),
		attribute.Int("listing.page", req.Page),
		attribute.Int("listing.limit", req.Limit),
	)

	items, total, err := s.listings.Query(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "listing query failed",
			slog.String("scope", scope.String()),
			slog.Any("error", err),
		)
		return models.QueryResult{}, models.NewStoreError("query listings", err)
	}

	span.SetAttributes(attribute.Int64("listing.total", total))
	return models.NewQueryResult(items, total, req.Limit), nil
}

// Get returns a listing. Listings outside the public statuses are only
// returned to their agent and to admins; everyone else sees ErrNotFound.
func (s *ListingService) Get(ctx context.Context, propertyID string, caller *models.User) (*models.Listing, error) {
	l, err := s.listings.GetByID(ctx, propertyID)
	if err != nil {
		return nil, wrapStoreError("get listing", err)
	}
	if !l.VisibleTo(caller) {
		return nil, models.ErrNotFound
	}
	return l, nil
}

// Create inserts a listing owned by caller. New listings await moderation
// unless an admin creates them with an explicit moderation status.
func (s *ListingService) Create(ctx context.Context, caller *models.User, listing *models.Listing, ipAddress *string) (*models.Listing, error) {
	if !caller.CanPublish() {
		return nil, models.ErrForbidden
	}

	l := *listing
	l.PropertyID = ""
	l.AgentID = caller.ID
	l.AgencyID = caller.AgencyID
	l.Unfeature()
	if !caller.IsAdmin() || !models.ValidModerationStatus(l.Status) {
		l.Status = models.ListingStatusPending
	}

	var created *models.Listing
	err := s.listings.InTx(ctx, func(tx store.Listings) error {
		decision, err := s.enforcer.WithCounter(tx).CheckQuota(ctx, caller, models.QuotaActionAddListing)
		if err != nil {
			return err
		}
		if !decision.Allowed {
			s.audit.LogQuotaDenied(ctx, caller, decision, ipAddress)
			return &models.QuotaDeniedError{Decision: decision}
		}

		created, err = tx.Create(ctx, &l)
		return err
	})
	if err != nil {
		return nil, wrapStoreError("create listing", err)
	}

	metrics.ListingsCreated.Inc()
	s.audit.LogListingEvent(ctx, models.AuditEventTypeListingCreate, caller.ID, models.AuditActionCreate, created.PropertyID,
		models.AuditMetadata{"status": created.Status})
	return created, nil
}

// loadForWrite fetches a listing and checks that caller may change it.
func (s *ListingService) loadForWrite(ctx context.Context, tx store.Listings, caller *models.User, propertyID string, allowAdmin bool) (*models.Listing, error) {
	l, err := tx.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if l.OwnedBy(caller) || (allowAdmin && caller.IsAdmin()) {
		return l, nil
	}
	if !l.VisibleTo(caller) {
		return nil, models.ErrNotFound
	}
	return nil, models.ErrForbidden
}

// Update applies patch to a listing owned by caller, or any listing for admins.
func (s *ListingService) Update(ctx context.Context, caller *models.User, propertyID string, patch models.ListingPatch) (*models.Listing, error) {
	l, err := s.loadForWrite(ctx, s.listings, caller, propertyID, true)
	if err != nil {
		return nil, wrapStoreError("get listing", err)
	}

	patch.Apply(l)
	updated, err := s.listings.Update(ctx, l)
	if err != nil {
		return nil, wrapStoreError("update listing", err)
	}

	s.audit.LogListingEvent(ctx, models.AuditEventTypeListingUpdate, caller.ID, models.AuditActionUpdate, propertyID, nil)
	return updated, nil
}

// Delete removes a listing owned by caller, or any listing for admins.
func (s *ListingService) Delete(ctx context.Context, caller *models.User, propertyID string) error {
	if _, err := s.loadForWrite(ctx, s.listings, caller, propertyID, true); err != nil {
		return wrapStoreError("get listing", err)
	}
	if err := s.listings.Delete(ctx, propertyID); err != nil {
		return wrapStoreError("delete listing", err)
	}

	s.audit.LogListingEvent(ctx, models.AuditEventTypeListingDelete, caller.ID, models.AuditActionDelete, propertyID, nil)
	return nil
}

// Feature marks caller's listing featured for days. Zero days means the
// configured default. The featureListing quota is checked again inside the
// write transaction.
func (s *ListingService) Feature(ctx context.Context, caller *models.User, propertyID string, days int, ipAddress *string) (*models.Listing, error) {
	if days == 0 {
		days = s.cfg.DefaultFeatureDays
	}
	if days < 1 || days > s.cfg.MaxFeatureDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", models.ErrBadRequest, s.cfg.MaxFeatureDays)
	}

	now := s.now().UTC()
	expiresAt := now.Add(time.Duration(days) * 24 * time.Hour)

	var featured *models.Listing
	err := s.listings.InTx(ctx, func(tx store.Listings) error {
		l, err := s.loadForWrite(ctx, tx, caller, propertyID, false)
		if err != nil {
			return err
		}
		if !l.VisibleTo(nil) {
			return models.ErrInvalidStatus
		}

		decision, err := s.enforcer.WithCounter(tx).CheckQuota(ctx, caller, models.QuotaActionFeatureListing)
		if err != nil {
			return err
		}
		if !decision.Allowed {
			s.audit.LogQuotaDenied(ctx, caller, decision, ipAddress)
			return &models.QuotaDeniedError{Decision: decision}
		}

		featured, err = tx.SetFeatured(ctx, propertyID, &expiresAt)
		return err
	})
	if err != nil {
		return nil, wrapStoreError("feature listing", err)
	}

	s.audit.LogListingEvent(ctx, models.AuditEventTypeListingFeature, caller.ID, models.AuditActionUpdate, propertyID,
		models.AuditMetadata{"days": days, "expires_at": expiresAt.Format(time.RFC3339)})
	return featured, nil
}

// Unfeature clears the featured flag and its expiry.
func (s *ListingService) Unfeature(ctx context.Context, caller *models.User, propertyID string) (*models.Listing, error) {
	if _, err := s.loadForWrite(ctx, s.listings, caller, propertyID, true); err != nil {
		return nil, wrapStoreError("get listing", err)
	}

	l, err := s.listings.SetFeatured(ctx, propertyID, nil)
	if err != nil {
		return nil, wrapStoreError("unfeature listing", err)
	}

	s.audit.LogListingEvent(ctx, models.AuditEventTypeListingUnfeat, caller.ID, models.AuditActionUpdate, propertyID, nil)
	return l, nil
}
