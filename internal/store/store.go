// Package store declares the persistence contracts shared by the PostgreSQL
// and in-memory repositories.
package store

import (
	"context"
	"time"

	"github.com/BradenHooton/realty/internal/models"
)

// ListingCounter is the read side of the quota enforcer.
type ListingCounter interface {
	// CountAvailableByAgent counts the agent's listings with status available.
	CountAvailableByAgent(ctx context.Context, agentID string) (int64, error)
	// CountActiveFeaturedByAgent counts listings that are featured and expire after now.
	CountActiveFeaturedByAgent(ctx context.Context, agentID string, now time.Time) (int64, error)
}

// Listings is the full listings store.
type Listings interface {
	ListingCounter

	// Query returns one ordered page and the pre-pagination total.
	Query(ctx context.Context, req models.QueryRequest) ([]*models.Listing, int64, error)
	GetByID(ctx context.Context, propertyID string) (*models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	Delete(ctx context.Context, propertyID string) error
	SetStatus(ctx context.Context, propertyID, status string) (*models.Listing, error)
	// SetFeatured features the listing until expiresAt, or clears both fields when nil.
	SetFeatured(ctx context.Context, propertyID string, expiresAt *time.Time) (*models.Listing, error)
	// ExpireFeatured clears the featured fields of listings whose period ended
	// at or before now and returns the listings it changed.
	ExpireFeatured(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error)
	Stats(ctx context.Context, now time.Time) (*models.ListingStats, error)

	// InTx runs fn against a store bound to a single read-committed transaction.
	InTx(ctx context.Context, fn func(Listings) error) error
}

// Favorites is the user to listing favorites relation.
type Favorites interface {
	// Add is idempotent.
	Add(ctx context.Context, userID, propertyID string) error
	Remove(ctx context.Context, userID, propertyID string) error
	Exists(ctx context.Context, userID, propertyID string) (bool, error)
}

// Users is the read and plan-change surface over externally owned users.
type Users interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateSubscription(ctx context.Context, id, subscriptionType string) (*models.User, error)
	CountBySubscription(ctx context.Context) (map[string]int64, error)
}

// AuditLogs persists the audit trail.
type AuditLogs interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error)
}
