package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

// AuditService handles audit logging with dual-write pattern (slog + database)
type AuditService struct {
	repo   store.AuditLogs
	logger *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo store.AuditLogs, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// parseActor converts a user id into the audit table's uuid column. Ids that
// are not uuids (memory store fixtures) are kept in metadata instead.
func parseActor(id string, metadata models.AuditMetadata) *uuid.UUID {
	if id == "" {
		return nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		metadata["actor"] = id
		return nil
	}
	return &parsed
}

// LogListingEvent logs listing lifecycle events (create, update, delete, feature, moderation)
func (s *AuditService) LogListingEvent(ctx context.Context, eventType string, actorID string, action string, listingID string, metadata models.AuditMetadata) {
	if metadata == nil {
		metadata = models.AuditMetadata{}
	}
	resourceType := models.AuditResourceTypeListing
	log := &models.AuditLog{
		EventType:    eventType,
		ActorID:      parseActor(actorID, metadata),
		ResourceType: &resourceType,
		ResourceID:   &listingID,
		Action:       action,
		Success:      true,
		Metadata:     metadata,
	}

	// Dual-write: immediate slog output
	s.logger.InfoContext(ctx, "listing event",
		slog.String("event_type", eventType),
		slog.String("actor_id", actorID),
		slog.String("action", action),
		slog.String("listing_id", listingID),
		slog.Any("metadata", metadata),
	)

	s.persist(ctx, log)
}

// LogQuotaDenied records a denied quota check. It is a policy outcome, not a failure of the service.
func (s *AuditService) LogQuotaDenied(ctx context.Context, user *models.User, d models.Decision, ipAddress *string) {
	metadata := models.NewQuotaDeniedMetadata(d)
	reason := d.Reason
	resourceType := models.AuditResourceTypeUser
	log := &models.AuditLog{
		EventType:     models.AuditEventTypeQuotaDenied,
		ActorID:       parseActor(user.ID, metadata),
		ResourceType:  &resourceType,
		ResourceID:    &user.ID,
		Action:        string(d.Action),
		Success:       false,
		FailureReason: &reason,
		IPAddress:     ipAddress,
		Metadata:      metadata,
	}

	s.logger.WarnContext(ctx, "audit event failed",
		slog.String("event_type", models.AuditEventTypeQuotaDenied),
		slog.String("actor_id", user.ID),
		slog.String("action", string(d.Action)),
		slog.String("failure_reason", reason),
		slog.Any("metadata", metadata),
	)

	s.persist(ctx, log)
}

// LogPlanChange logs an admin changing a user's subscription tier
func (s *AuditService) LogPlanChange(ctx context.Context, actorID, targetID, from, to string) {
	metadata := models.NewStatusChangeMetadata(from, to)
	resourceType := models.AuditResourceTypeUser
	log := &models.AuditLog{
		EventType:    models.AuditEventTypePlanChange,
		ActorID:      parseActor(actorID, metadata),
		ResourceType: &resourceType,
		ResourceID:   &targetID,
		Action:       models.AuditActionUpdate,
		Success:      true,
		Metadata:     metadata,
	}
	if target, err := uuid.Parse(targetID); err == nil {
		log.TargetID = &target
	}

	s.logger.InfoContext(ctx, "user action",
		slog.String("actor_id", actorID),
		slog.String("target_id", targetID),
		slog.String("action", "plan_change"),
		slog.String("from", from),
		slog.String("to", to),
	)

	s.persist(ctx, log)
}

// List returns audit entries newest first
func (s *AuditService) List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error) {
	filter = filter.Normalize()

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list audit logs", slog.Any("error", err))
		return nil, 0, models.NewStoreError("list audit logs", err)
	}
	return logs, total, nil
}

func (s *AuditService) persist(ctx context.Context, log *models.AuditLog) {
	if _, err := s.repo.Create(ctx, log); err != nil {
		// Non-critical: the slog line above is the fallback record
		s.logger.ErrorContext(ctx, "failed to persist audit log",
			slog.String("event_type", log.EventType),
			slog.Any("error", err),
		)
	}
}
