package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BradenHooton/realty/internal/database"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

// ListingRepository is the PostgreSQL listings store. A repository bound to a
// transaction has a nil db and runs every statement on q.
type ListingRepository struct {
	db *database.DB
	q  database.Querier
}

func NewListingRepository(db *database.DB) *ListingRepository {
	return &ListingRepository{db: db, q: db.Pool}
}

var _ store.Listings = (*ListingRepository)(nil)

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanListingRow populates a Listing from a row selected with listingColumns
func scanListingRow(row rowScanner) (*models.Listing, error) {
	var l models.Listing

	err := row.Scan(
		&l.PropertyID, &l.AgentID, &l.AgencyID, &l.Title, &l.Description, &l.Status,
		&l.IsFeatured, &l.FeaturedExpiresAt, &l.PurchaseCategory, &l.Price, &l.Location, &l.State,
		&l.PropertyType, &l.Subtype, &l.Bedrooms, &l.Bathrooms, &l.DateListed, &l.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &l, nil
}

// scanListingRows iterates through rows and scans each into Listing models
func scanListingRows(rows pgx.Rows) ([]*models.Listing, error) {
	defer rows.Close()

	listings := make([]*models.Listing, 0)

	for rows.Next() {
		l, err := scanListingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	return listings, nil
}

// InTx runs fn with a repository bound to one transaction. Nested calls reuse
// the outer transaction.
func (r *ListingRepository) InTx(ctx context.Context, fn func(store.Listings) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&ListingRepository{q: tx})
	})
}

// Query counts and selects one page inside a read-only repeatable-read
// transaction so total and items describe the same snapshot.
func (r *ListingRepository) Query(ctx context.Context, req models.QueryRequest) ([]*models.Listing, int64, error) {
	if r.db == nil {
		return r.query(ctx, r.q, req)
	}

	var (
		items []*models.Listing
		total int64
	)
	err := r.db.WithTxOptions(ctx, database.ReadOnlySnapshot, func(tx pgx.Tx) error {
		var err error
		items, total, err = r.query(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ListingRepository) query(ctx context.Context, q database.Querier, req models.QueryRequest) ([]*models.Listing, int64, error) {
	countSQL, pageSQL, countArgs, pageArgs := BuildListingQuery(req)

	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", database.MapPostgresError(err))
	}

	// past the last page: skip the select, the window is empty
	if offset := req.Offset(); offset < 0 || int64(offset) >= total {
		return []*models.Listing{}, total, nil
	}

	rows, err := q.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query listings: %w", err)
	}

	items, err := scanListingRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, propertyID string) (*models.Listing, error) {
	if _, err := uuid.Parse(propertyID); err != nil {
		return nil, models.ErrNotFound
	}

	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.property_id = $1`

	listing, err := scanListingRow(r.q.QueryRow(ctx, query, propertyID))
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if listing.PropertyID == "" {
		listing.PropertyID = uuid.NewString()
	}

	query := `
		INSERT INTO listings AS l (
			property_id, agent_id, agency_id, title, description, status,
			is_featured, featured_expires_at, purchase_category, price,
			location, state, property_type, subtype, bedrooms, bathrooms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + listingColumns

	created, err := scanListingRow(r.q.QueryRow(
		ctx, query,
		listing.PropertyID, listing.AgentID, listing.AgencyID, listing.Title, listing.Description, listing.Status,
		listing.IsFeatured, listing.FeaturedExpiresAt, listing.PurchaseCategory, listing.Price,
		listing.Location, listing.State, listing.PropertyType, listing.Subtype, listing.Bedrooms, listing.Bathrooms,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return created, nil
}

// Update writes the descriptive fields. Status and featuring have their own methods.
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if _, err := uuid.Parse(listing.PropertyID); err != nil {
		return nil, models.ErrNotFound
	}

	query := `
		UPDATE listings AS l
		SET title = $2, description = $3, purchase_category = $4, price = $5,
		    location = $6, state = $7, property_type = $8, subtype = $9,
		    bedrooms = $10, bathrooms = $11, updated_at = NOW()
		WHERE l.property_id = $1
		RETURNING ` + listingColumns

	updated, err := scanListingRow(r.q.QueryRow(
		ctx, query,
		listing.PropertyID, listing.Title, listing.Description, listing.PurchaseCategory, listing.Price,
		listing.Location, listing.State, listing.PropertyType, listing.Subtype,
		listing.Bedrooms, listing.Bathrooms,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return updated, nil
}

func (r *ListingRepository) Delete(ctx context.Context, propertyID string) error {
	if _, err := uuid.Parse(propertyID); err != nil {
		return models.ErrNotFound
	}

	result, err := r.q.Exec(ctx, `DELETE FROM listings WHERE property_id = $1`, propertyID)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) SetStatus(ctx context.Context, propertyID, status string) (*models.Listing, error) {
	if _, err := uuid.Parse(propertyID); err != nil {
		return nil, models.ErrNotFound
	}

	query := `
		UPDATE listings AS l
		SET status = $2, updated_at = NOW()
		WHERE l.property_id = $1
		RETURNING ` + listingColumns

	updated, err := scanListingRow(r.q.QueryRow(ctx, query, propertyID, status))
	if err != nil {
		return nil, fmt.Errorf("failed to set listing status: %w", err)
	}
	return updated, nil
}

func (r *ListingRepository) SetFeatured(ctx context.Context, propertyID string, expiresAt *time.Time) (*models.Listing, error) {
	if _, err := uuid.Parse(propertyID); err != nil {
		return nil, models.ErrNotFound
	}

	query := `
		UPDATE listings AS l
		SET is_featured = $2, featured_expires_at = $3, updated_at = NOW()
		WHERE l.property_id = $1
		RETURNING ` + listingColumns

	updated, err := scanListingRow(r.q.QueryRow(ctx, query, propertyID, expiresAt != nil, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to set featured: %w", err)
	}
	return updated, nil
}

func (r *ListingRepository) ExpireFeatured(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error) {
	query := `
		UPDATE listings AS l
		SET is_featured = FALSE, featured_expires_at = NULL, updated_at = NOW()
		WHERE l.property_id IN (
			SELECT property_id FROM listings
			WHERE is_featured AND featured_expires_at <= $1
			ORDER BY featured_expires_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + listingColumns

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to expire featured listings: %w", err)
	}
	return scanListingRows(rows)
}

func (r *ListingRepository) CountAvailableByAgent(ctx context.Context, agentID string) (int64, error) {
	if _, err := uuid.Parse(agentID); err != nil {
		return 0, nil
	}

	query := `SELECT COUNT(*) FROM listings WHERE agent_id = $1 AND status = $2`

	var count int64
	if err := r.q.QueryRow(ctx, query, agentID, models.ListingStatusAvailable).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count available listings: %w", err)
	}
	return count, nil
}

func (r *ListingRepository) CountActiveFeaturedByAgent(ctx context.Context, agentID string, now time.Time) (int64, error) {
	if _, err := uuid.Parse(agentID); err != nil {
		return 0, nil
	}

	query := `
		SELECT COUNT(*) FROM listings
		WHERE agent_id = $1 AND is_featured AND featured_expires_at > $2
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, agentID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count featured listings: %w", err)
	}
	return count, nil
}

func (r *ListingRepository) Stats(ctx context.Context, now time.Time) (*models.ListingStats, error) {
	stats := &models.ListingStats{ByStatus: make(map[string]int64)}

	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM listings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count listings by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	query := `SELECT COUNT(*) FROM listings WHERE is_featured AND featured_expires_at > $1`
	if err := r.q.QueryRow(ctx, query, now).Scan(&stats.ActiveFeatured); err != nil {
		return nil, fmt.Errorf("failed to count featured listings: %w", err)
	}

	return stats, nil
}
