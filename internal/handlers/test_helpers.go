package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/services"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// NewTestLogger returns a logger that discards output
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestValidator returns a validator bound to the default tiers
func NewTestValidator(t *testing.T) *Validator {
	tiers, err := models.NewTierTable(
		models.SubscriptionTier{Name: "basic", MaxListings: 5, MaxFeatured: 0},
		models.SubscriptionTier{Name: "pro", MaxListings: 25, MaxFeatured: 5},
		models.SubscriptionTier{Name: "enterprise", MaxListings: 100, MaxFeatured: 20},
	)
	if err != nil {
		t.Fatalf("failed to build tier table: %v", err)
	}
	return NewValidator(tiers)
}

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext puts the caller AuthMiddleware would have loaded into the request
func WithAuthContext(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedCode, resp.Code, "Error code mismatch")
	assert.NotEmpty(t, resp.Error, "Error message should not be empty")
	return resp
}

// MockListingService implements ListingService for testing
type MockListingService struct {
	QueryFunc     func(ctx context.Context, req models.QueryRequest, scope models.Scope, caller *models.User) (models.QueryResult, error)
	GetFunc       func(ctx context.Context, propertyID string, caller *models.User) (*models.Listing, error)
	CreateFunc    func(ctx context.Context, caller *models.User, listing *models.Listing, ipAddress *string) (*models.Listing, error)
	UpdateFunc    func(ctx context.Context, caller *models.User, propertyID string, patch models.ListingPatch) (*models.Listing, error)
	DeleteFunc    func(ctx context.Context, caller *models.User, propertyID string) error
	FeatureFunc   func(ctx context.Context, caller *models.User, propertyID string, days int, ipAddress *string) (*models.Listing, error)
	UnfeatureFunc func(ctx context.Context, caller *models.User, propertyID string) (*models.Listing, error)
}

func (m *MockListingService) Query(ctx context.Context, req models.QueryRequest, scope models.Scope, caller *models.User) (models.QueryResult, error) {
	if m.QueryFunc == nil {
		return models.NewQueryResult(nil, 0, 1), nil
	}
	return m.QueryFunc(ctx, req, scope, caller)
}

func (m *MockListingService) Get(ctx context.Context, propertyID string, caller *models.User) (*models.Listing, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, propertyID, caller)
}

func (m *MockListingService) Create(ctx context.Context, caller *models.User, listing *models.Listing, ipAddress *string) (*models.Listing, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateFunc(ctx, caller, listing, ipAddress)
}

func (m *MockListingService) Update(ctx context.Context, caller *models.User, propertyID string, patch models.ListingPatch) (*models.Listing, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.UpdateFunc(ctx, caller, propertyID, patch)
}

func (m *MockListingService) Delete(ctx context.Context, caller *models.User, propertyID string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, caller, propertyID)
}

func (m *MockListingService) Feature(ctx context.Context, caller *models.User, propertyID string, days int, ipAddress *string) (*models.Listing, error) {
	if m.FeatureFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.FeatureFunc(ctx, caller, propertyID, days, ipAddress)
}

func (m *MockListingService) Unfeature(ctx context.Context, caller *models.User, propertyID string) (*models.Listing, error) {
	if m.UnfeatureFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.UnfeatureFunc(ctx, caller, propertyID)
}

// MockFavoriteService implements FavoriteService for testing
type MockFavoriteService struct {
	AddFunc    func(ctx context.Context, caller *models.User, propertyID string) error
	RemoveFunc func(ctx context.Context, caller *models.User, propertyID string) error
	ListFunc   func(ctx context.Context, caller *models.User, req models.QueryRequest) (models.QueryResult, error)
}

func (m *MockFavoriteService) Add(ctx context.Context, caller *models.User, propertyID string) error {
	if m.AddFunc == nil {
		return nil
	}
	return m.AddFunc(ctx, caller, propertyID)
}

func (m *MockFavoriteService) Remove(ctx context.Context, caller *models.User, propertyID string) error {
	if m.RemoveFunc == nil {
		return nil
	}
	return m.RemoveFunc(ctx, caller, propertyID)
}

func (m *MockFavoriteService) List(ctx context.Context, caller *models.User, req models.QueryRequest) (models.QueryResult, error) {
	if m.ListFunc == nil {
		return models.NewQueryResult(nil, 0, 1), nil
	}
	return m.ListFunc(ctx, caller, req)
}

// MockQuotaUsageService implements QuotaUsageService for testing
type MockQuotaUsageService struct {
	UsageFunc func(ctx context.Context, user *models.User) (*models.QuotaUsage, error)
}

func (m *MockQuotaUsageService) Usage(ctx context.Context, user *models.User) (*models.QuotaUsage, error) {
	if m.UsageFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.UsageFunc(ctx, user)
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	GetDashboardStatsFunc  func(ctx context.Context) (*services.DashboardStatsResponse, error)
	ModerateListingFunc    func(ctx context.Context, admin *models.User, propertyID, status string) (*models.Listing, error)
	ChangeSubscriptionFunc func(ctx context.Context, admin *models.User, userID, tier string) (*models.User, error)
}

func (m *MockAdminService) GetDashboardStats(ctx context.Context) (*services.DashboardStatsResponse, error) {
	if m.GetDashboardStatsFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.GetDashboardStatsFunc(ctx)
}

func (m *MockAdminService) ModerateListing(ctx context.Context, admin *models.User, propertyID, status string) (*models.Listing, error) {
	if m.ModerateListingFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ModerateListingFunc(ctx, admin, propertyID, status)
}

func (m *MockAdminService) ChangeSubscription(ctx context.Context, admin *models.User, userID, tier string) (*models.User, error) {
	if m.ChangeSubscriptionFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ChangeSubscriptionFunc(ctx, admin, userID, tier)
}

// MockAuditLogReader implements AuditLogReader for testing
type MockAuditLogReader struct {
	ListFunc func(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error)
}

func (m *MockAuditLogReader) List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error) {
	if m.ListFunc == nil {
		return []*models.AuditLog{}, 0, nil
	}
	return m.ListFunc(ctx, filter)
}

// WithChiRouteContext adds chi URL parameters to request context for testing
// This helper allows tests to set URL parameters that would normally be extracted
// by the Chi router from the URL path.
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithChiID sets the {id} route parameter
func WithChiID(r *http.Request, id string) *http.Request {
	return WithChiRouteContext(r, map[string]string{"id": strings.TrimSpace(id)})
}
