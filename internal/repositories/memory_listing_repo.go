package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

// FavoriteLookup answers favorites membership for the in-memory listing store.
type FavoriteLookup interface {
	PropertyIDsFor(userID string) map[string]struct{}
}

// MemoryListingRepository keeps listings in process. It follows the same
// filter, ordering and pagination rules as ListingRepository.
type MemoryListingRepository struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	listings  map[string]*models.Listing
	favorites FavoriteLookup
	locale    language.Tag
}

// NewMemoryListingRepository creates an empty store. favorites may be nil when
// favorites queries are not needed.
func NewMemoryListingRepository(favorites FavoriteLookup, locale string) *MemoryListingRepository {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &MemoryListingRepository{
		listings:  make(map[string]*models.Listing),
		favorites: favorites,
		locale:    tag,
	}
}

var _ store.Listings = (*MemoryListingRepository)(nil)

func cloneListing(l *models.Listing) *models.Listing {
	c := *l
	if l.AgencyID != nil {
		v := *l.AgencyID
		c.AgencyID = &v
	}
	if l.FeaturedExpiresAt != nil {
		v := *l.FeaturedExpiresAt
		c.FeaturedExpiresAt = &v
	}
	if l.Price != nil {
		v := *l.Price
		c.Price = &v
	}
	if l.Bedrooms != nil {
		v := *l.Bedrooms
		c.Bedrooms = &v
	}
	if l.Bathrooms != nil {
		v := *l.Bathrooms
		c.Bathrooms = &v
	}
	return &c
}

// InTx serialises fn against other InTx callers. Plain reads and writes outside
// InTx are not blocked, and nothing is rolled back when fn fails.
func (r *MemoryListingRepository) InTx(ctx context.Context, fn func(store.Listings) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(memoryListingTx{r})
}

// memoryListingTx is the store handed to InTx callbacks; nested InTx calls run inline.
type memoryListingTx struct {
	*MemoryListingRepository
}

func (t memoryListingTx) InTx(ctx context.Context, fn func(store.Listings) error) error {
	return fn(t)
}

func (r *MemoryListingRepository) Query(ctx context.Context, req models.QueryRequest) ([]*models.Listing, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var favorites map[string]struct{}
	if req.Filter.FavoritedBy != "" {
		if r.favorites != nil {
			favorites = r.favorites.PropertyIDsFor(req.Filter.FavoritedBy)
		}
		if len(favorites) == 0 {
			return []*models.Listing{}, 0, nil
		}
	}

	r.mu.RLock()
	matched := make([]*models.Listing, 0, len(r.listings))
	for id, l := range r.listings {
		if favorites != nil {
			if _, ok := favorites[id]; !ok {
				continue
			}
		}
		if req.Filter.Matches(l) {
			matched = append(matched, cloneListing(l))
		}
	}
	r.mu.RUnlock()

	cmp := models.NewListingComparator(req.Sort, r.locale)
	sort.Slice(matched, func(i, j int) bool { return cmp.Less(matched[i], matched[j]) })

	total := int64(len(matched))
	offset := req.Offset()
	if offset < 0 || offset >= len(matched) {
		return []*models.Listing{}, total, nil
	}
	end := len(matched)
	if req.Limit > 0 && req.Limit < end-offset {
		end = offset + req.Limit
	}
	return matched[offset:end], total, nil
}

func (r *MemoryListingRepository) GetByID(ctx context.Context, propertyID string) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[propertyID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneListing(l), nil
}

func (r *MemoryListingRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := cloneListing(listing)
	if l.PropertyID == "" {
		l.PropertyID = uuid.NewString()
	}
	if _, exists := r.listings[l.PropertyID]; exists {
		return nil, models.ErrConflict
	}
	if l.IsFeatured && l.FeaturedExpiresAt == nil {
		return nil, models.ErrBadRequest
	}

	now := time.Now().UTC()
	if l.DateListed.IsZero() {
		l.DateListed = now
	}
	l.UpdatedAt = now

	r.listings[l.PropertyID] = l
	return cloneListing(l), nil
}

func (r *MemoryListingRepository) Update(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.listings[listing.PropertyID]
	if !ok {
		return nil, models.ErrNotFound
	}

	in := cloneListing(listing)
	existing.Title = in.Title
	existing.Description = in.Description
	existing.PurchaseCategory = in.PurchaseCategory
	existing.Price = in.Price
	existing.Location = in.Location
	existing.State = in.State
	existing.PropertyType = in.PropertyType
	existing.Subtype = in.Subtype
	existing.Bedrooms = in.Bedrooms
	existing.Bathrooms = in.Bathrooms
	existing.UpdatedAt = time.Now().UTC()

	return cloneListing(existing), nil
}

func (r *MemoryListingRepository) Delete(ctx context.Context, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[propertyID]; !ok {
		return models.ErrNotFound
	}
	delete(r.listings, propertyID)
	return nil
}

func (r *MemoryListingRepository) SetStatus(ctx context.Context, propertyID, status string) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[propertyID]
	if !ok {
		return nil, models.ErrNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	return cloneListing(l), nil
}

func (r *MemoryListingRepository) SetFeatured(ctx context.Context, propertyID string, expiresAt *time.Time) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[propertyID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if expiresAt == nil {
		l.Unfeature()
	} else {
		l.Feature(*expiresAt)
	}
	l.UpdatedAt = time.Now().UTC()
	return cloneListing(l), nil
}

func (r *MemoryListingRepository) ExpireFeatured(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*models.Listing
	for _, l := range r.listings {
		if l.IsFeatured && l.FeaturedExpiresAt != nil && !l.FeaturedExpiresAt.After(now) {
			expired = append(expired, l)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].FeaturedExpiresAt.Before(*expired[j].FeaturedExpiresAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}

	out := make([]*models.Listing, 0, len(expired))
	for _, l := range expired {
		l.Unfeature()
		l.UpdatedAt = time.Now().UTC()
		out = append(out, cloneListing(l))
	}
	return out, nil
}

func (r *MemoryListingRepository) CountAvailableByAgent(ctx context.Context, agentID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, l := range r.listings {
		if l.AgentID == agentID && l.Status == models.ListingStatusAvailable {
			count++
		}
	}
	return count, nil
}

func (r *MemoryListingRepository) CountActiveFeaturedByAgent(ctx context.Context, agentID string, now time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, l := range r.listings {
		if l.AgentID == agentID && l.IsActivelyFeatured(now) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryListingRepository) Stats(ctx context.Context, now time.Time) (*models.ListingStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.ListingStats{ByStatus: make(map[string]int64)}
	for _, l := range r.listings {
		stats.ByStatus[l.Status]++
		stats.Total++
		if l.IsActivelyFeatured(now) {
			stats.ActiveFeatured++
		}
	}
	return stats, nil
}
