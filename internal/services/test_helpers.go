package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockListingCounter implements store.ListingCounter for testing
type MockListingCounter struct {
	CountAvailableByAgentFunc      func(ctx context.Context, agentID string) (int64, error)
	CountActiveFeaturedByAgentFunc func(ctx context.Context, agentID string, now time.Time) (int64, error)

	mu             sync.Mutex
	AvailableCalls int
	FeaturedCalls  int
}

func (m *MockListingCounter) CountAvailableByAgent(ctx context.Context, agentID string) (int64, error) {
	m.mu.Lock()
	m.AvailableCalls++
	m.mu.Unlock()
	if m.CountAvailableByAgentFunc != nil {
		return m.CountAvailableByAgentFunc(ctx, agentID)
	}
	return 0, nil
}

func (m *MockListingCounter) CountActiveFeaturedByAgent(ctx context.Context, agentID string, now time.Time) (int64, error) {
	m.mu.Lock()
	m.FeaturedCalls++
	m.mu.Unlock()
	if m.CountActiveFeaturedByAgentFunc != nil {
		return m.CountActiveFeaturedByAgentFunc(ctx, agentID, now)
	}
	return 0, nil
}

// Calls returns the total number of count queries issued.
func (m *MockListingCounter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AvailableCalls + m.FeaturedCalls
}

// MockListingStore implements store.Listings for testing. Unset funcs fall
// back to the embedded counter or a zero value.
type MockListingStore struct {
	MockListingCounter

	QueryFunc          func(ctx context.Context, req models.QueryRequest) ([]*models.Listing, int64, error)
	GetByIDFunc        func(ctx context.Context, propertyID string) (*models.Listing, error)
	CreateFunc         func(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	UpdateFunc         func(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	DeleteFunc         func(ctx context.Context, propertyID string) error
	SetStatusFunc      func(ctx context.Context, propertyID, status string) (*models.Listing, error)
	SetFeaturedFunc    func(ctx context.Context, propertyID string, expiresAt *time.Time) (*models.Listing, error)
	ExpireFeaturedFunc func(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error)
	StatsFunc          func(ctx context.Context, now time.Time) (*models.ListingStats, error)

	LastQuery models.QueryRequest
}

func (m *MockListingStore) Query(ctx context.Context, req models.QueryRequest) ([]*models.Listing, int64, error) {
	m.LastQuery = req
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, req)
	}
	return []*models.Listing{}, 0, nil
}

func (m *MockListingStore) GetByID(ctx context.Context, propertyID string) (*models.Listing, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, propertyID)
	}
	return nil, models.ErrNotFound
}

func (m *MockListingStore) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, listing)
	}
	created := *listing
	if created.PropertyID == "" {
		created.PropertyID = "new-listing"
	}
	return &created, nil
}

func (m *MockListingStore) Update(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, listing)
	}
	return listing, nil
}

func (m *MockListingStore) Delete(ctx context.Context, propertyID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, propertyID)
	}
	return nil
}

func (m *MockListingStore) SetStatus(ctx context.Context, propertyID, status string) (*models.Listing, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, propertyID, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockListingStore) SetFeatured(ctx context.Context, propertyID string, expiresAt *time.Time) (*models.Listing, error) {
	if m.SetFeaturedFunc != nil {
		return m.SetFeaturedFunc(ctx, propertyID, expiresAt)
	}
	return nil, models.ErrNotFound
}

func (m *MockListingStore) ExpireFeatured(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error) {
	if m.ExpireFeaturedFunc != nil {
		return m.ExpireFeaturedFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *MockListingStore) Stats(ctx context.Context, now time.Time) (*models.ListingStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, now)
	}
	return &models.ListingStats{ByStatus: map[string]int64{}}, nil
}

func (m *MockListingStore) InTx(ctx context.Context, fn func(store.Listings) error) error {
	return fn(m)
}

// MockUserStore implements store.Users for testing
type MockUserStore struct {
	GetByIDFunc             func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.User, error)
	CreateFunc              func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateSubscriptionFunc  func(ctx context.Context, id, subscriptionType string) (*models.User, error)
	CountBySubscriptionFunc func(ctx context.Context) (map[string]int64, error)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserStore) UpdateSubscription(ctx context.Context, id, subscriptionType string) (*models.User, error) {
	if m.UpdateSubscriptionFunc != nil {
		return m.UpdateSubscriptionFunc(ctx, id, subscriptionType)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) CountBySubscription(ctx context.Context) (map[string]int64, error) {
	if m.CountBySubscriptionFunc != nil {
		return m.CountBySubscriptionFunc(ctx)
	}
	return map[string]int64{}, nil
}

// MockAuditLogStore implements store.AuditLogs for testing
type MockAuditLogStore struct {
	CreateFunc func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListFunc   func(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error)

	Created []*models.AuditLog
}

func (m *MockAuditLogStore) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	m.Created = append(m.Created, log)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	return log, nil
}

func (m *MockAuditLogStore) List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.AuditLog{}, 0, nil
}

// MockAuditRecorder implements AuditRecorder and records what it was asked to log
type MockAuditRecorder struct {
	ListingEvents []string
	QuotaDenials  []models.Decision
	PlanChanges   [][2]string
}

func (m *MockAuditRecorder) LogListingEvent(ctx context.Context, eventType string, actorID string, action string, listingID string, metadata models.AuditMetadata) {
	m.ListingEvents = append(m.ListingEvents, eventType)
}

func (m *MockAuditRecorder) LogQuotaDenied(ctx context.Context, user *models.User, d models.Decision, ipAddress *string) {
	m.QuotaDenials = append(m.QuotaDenials, d)
}

func (m *MockAuditRecorder) LogPlanChange(ctx context.Context, actorID, targetID, from, to string) {
	m.PlanChanges = append(m.PlanChanges, [2]string{from, to})
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendListingStatusEmailFunc   func(ctx context.Context, agent *models.User, listing *models.Listing, from, to string) error
	SendFeaturedExpiredEmailFunc func(ctx context.Context, agent *models.User, listing *models.Listing) error

	StatusEmails  int
	ExpiredEmails int
}

func (m *MockEmailService) SendListingStatusEmail(ctx context.Context, agent *models.User, listing *models.Listing, from, to string) error {
	m.StatusEmails++
	if m.SendListingStatusEmailFunc != nil {
		return m.SendListingStatusEmailFunc(ctx, agent, listing, from, to)
	}
	return nil
}

func (m *MockEmailService) SendFeaturedExpiredEmail(ctx context.Context, agent *models.User, listing *models.Listing) error {
	m.ExpiredEmails++
	if m.SendFeaturedExpiredEmailFunc != nil {
		return m.SendFeaturedExpiredEmailFunc(ctx, agent, listing)
	}
	return nil
}
