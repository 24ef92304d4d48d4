package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

// MemoryFavoriteRepository keeps favorites in process.
type MemoryFavoriteRepository struct {
	mu        sync.RWMutex
	favorites map[string]map[string]time.Time // user -> property -> created
	listings  interface {
		GetByID(ctx context.Context, propertyID string) (*models.Listing, error)
	}
}

func NewMemoryFavoriteRepository() *MemoryFavoriteRepository {
	return &MemoryFavoriteRepository{favorites: make(map[string]map[string]time.Time)}
}

// BindListings lets Add reject unknown listings the way the foreign key does.
func (r *MemoryFavoriteRepository) BindListings(listings *MemoryListingRepository) {
	r.listings = listings
}

var _ store.Favorites = (*MemoryFavoriteRepository)(nil)

func (r *MemoryFavoriteRepository) Add(ctx context.Context, userID, propertyID string) error {
	if r.listings != nil {
		if _, err := r.listings.GetByID(ctx, propertyID); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.favorites[userID]
	if !ok {
		set = make(map[string]time.Time)
		r.favorites[userID] = set
	}
	if _, exists := set[propertyID]; !exists {
		set[propertyID] = time.Now().UTC()
	}
	return nil
}

func (r *MemoryFavoriteRepository) Remove(ctx context.Context, userID, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.favorites[userID]
	if _, ok := set[propertyID]; !ok {
		return models.ErrNotFound
	}
	delete(set, propertyID)
	return nil
}

func (r *MemoryFavoriteRepository) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.favorites[userID][propertyID]
	return ok, nil
}

// PropertyIDsFor returns a snapshot of the user's favorited property ids.
func (r *MemoryFavoriteRepository) PropertyIDsFor(userID string) map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]struct{}, len(r.favorites[userID]))
	for id := range r.favorites[userID] {
		out[id] = struct{}{}
	}
	return out
}

// MemoryUserRepository keeps users in process.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

var _ store.Users = (*MemoryUserRepository)(nil)

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.AgencyID != nil {
		v := *u.AgencyID
		c.AgencyID = &v
	}
	return &c
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := cloneUser(user)
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, models.ErrConflict
		}
	}
	if u.Role == "" {
		u.Role = models.RoleClient
	}
	if u.SubscriptionType == "" {
		u.SubscriptionType = models.DefaultTierName
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	r.users[u.ID] = u
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) UpdateSubscription(ctx context.Context, id, subscriptionType string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.SubscriptionType = subscriptionType
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) CountBySubscription(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64)
	for _, u := range r.users {
		out[u.SubscriptionType]++
	}
	return out, nil
}

// MemoryAuditLogRepository keeps the audit trail in process.
type MemoryAuditLogRepository struct {
	mu   sync.RWMutex
	logs []*models.AuditLog
}

func NewMemoryAuditLogRepository() *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{}
}

var _ store.AuditLogs = (*MemoryAuditLogRepository)(nil)

func (r *MemoryAuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := *log
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	if entry.Metadata == nil {
		entry.Metadata = models.AuditMetadata{}
	}
	r.logs = append(r.logs, &entry)

	out := entry
	return &out, nil
}

func (r *MemoryAuditLogRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]*models.AuditLog, int64, error) {
	r.mu.RLock()
	matched := make([]*models.AuditLog, 0, len(r.logs))
	for _, l := range r.logs {
		if filter.EventType != "" && !strings.EqualFold(l.EventType, filter.EventType) {
			continue
		}
		if filter.ActorID != nil && (l.ActorID == nil || *l.ActorID != *filter.ActorID) {
			continue
		}
		entry := *l
		matched = append(matched, &entry)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*models.AuditLog{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}
