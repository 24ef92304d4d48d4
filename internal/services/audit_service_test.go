package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/realty/internal/models"
)

func TestAuditService_LogListingEvent(t *testing.T) {
	repo := &MockAuditLogStore{}
	svc := NewAuditService(repo, newTestLogger())
	actor := uuid.New()

	svc.LogListingEvent(context.Background(), models.AuditEventTypeListingCreate, actor.String(), models.AuditActionCreate, "p1", nil)

	require.Len(t, repo.Created, 1)
	log := repo.Created[0]
	assert.Equal(t, models.AuditEventTypeListingCreate, log.EventType)
	require.NotNil(t, log.ActorID)
	assert.Equal(t, actor, *log.ActorID)
	assert.Equal(t, "p1", *log.ResourceID)
	assert.Equal(t, models.AuditResourceTypeListing, *log.ResourceType)
	assert.True(t, log.Success)
}

func TestAuditService_NonUUIDActorKeptInMetadata(t *testing.T) {
	repo := &MockAuditLogStore{}
	svc := NewAuditService(repo, newTestLogger())

	svc.LogListingEvent(context.Background(), models.AuditEventTypeListingDelete, "agent-1", models.AuditActionDelete, "p1", nil)

	require.Len(t, repo.Created, 1)
	assert.Nil(t, repo.Created[0].ActorID)
	assert.Equal(t, "agent-1", repo.Created[0].Metadata["actor"])
}

func TestAuditService_LogQuotaDenied(t *testing.T) {
	repo := &MockAuditLogStore{}
	svc := NewAuditService(repo, newTestLogger())
	ip := "203.0.113.9"
	d := models.Deny(models.QuotaActionAddListing, "basic", models.ReasonListingLimitReached, 5, 5)

	svc.LogQuotaDenied(context.Background(), &models.User{ID: uuid.NewString()}, d, &ip)

	require.Len(t, repo.Created, 1)
	log := repo.Created[0]
	assert.Equal(t, models.AuditEventTypeQuotaDenied, log.EventType)
	assert.False(t, log.Success)
	assert.Equal(t, models.ReasonListingLimitReached, *log.FailureReason)
	assert.Equal(t, &ip, log.IPAddress)
	assert.Equal(t, 5, log.Metadata["limit"])
}

func TestAuditService_PersistFailureIsSwallowed(t *testing.T) {
	repo := &MockAuditLogStore{
		CreateFunc: func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
			return nil, errors.New("insert failed")
		},
	}
	svc := NewAuditService(repo, newTestLogger())

	assert.NotPanics(t, func() {
		svc.LogPlanChange(context.Background(), uuid.NewString(), uuid.NewString(), "basic", "pro")
	})
	require.Len(t, repo.Created, 1)
	assert.NotNil(t, repo.Created[0].TargetID)
}

func TestAuditService_ListClampsPaging(t *testing.T) {
	var got models.AuditLogFilter
	repo := &MockAuditLogStore{
		ListFunc: func(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error) {
			got = filter
			return []*models.AuditLog{}, 0, nil
		},
	}
	svc := NewAuditService(repo, newTestLogger())

	_, _, err := svc.List(context.Background(), models.AuditLogFilter{Limit: 0, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 50, got.Limit)
	assert.Equal(t, 0, got.Offset)

	_, _, err = svc.List(context.Background(), models.AuditLogFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 200, got.Limit)
}
