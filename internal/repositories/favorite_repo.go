package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BradenHooton/realty/internal/database"
	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

// FavoriteRepository stores favorites. Listing pages of favorites go through
// ListingRepository.Query with ListingFilter.FavoritedBy.
type FavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(db *database.DB) *FavoriteRepository {
	return &FavoriteRepository{pool: db.Pool}
}

var _ store.Favorites = (*FavoriteRepository)(nil)

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, propertyID string) error {
	if !validIDs(userID, propertyID) {
		return models.ErrNotFound
	}

	query := `
		INSERT INTO favorites (user_id, property_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, property_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, propertyID); err != nil {
		// foreign key violation means the listing does not exist
		mapped := database.MapPostgresError(err)
		if mapped == models.ErrBadRequest {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to add favorite: %w", mapped)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, propertyID string) error {
	if !validIDs(userID, propertyID) {
		return models.ErrNotFound
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND property_id = $2`, userID, propertyID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	if !validIDs(userID, propertyID) {
		return false, nil
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND property_id = $2)`
	if err := r.pool.QueryRow(ctx, query, userID, propertyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}
