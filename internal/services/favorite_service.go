package services

import (
	"context"
	"log/slog"

	"github.com/BradenHooton/realty/internal/models"
	"github.com/BradenHooton/realty/internal/store"
)

// FavoriteService manages a user's saved listings
type FavoriteService struct {
	favorites store.Favorites
	listings  *ListingService
	logger    *slog.Logger
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favorites store.Favorites, listings *ListingService, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		listings:  listings,
		logger:    logger,
	}
}

// Add saves a listing for caller. Saving the same listing twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, caller *models.User, propertyID string) error {
	if _, err := s.listings.Get(ctx, propertyID, caller); err != nil {
		return err
	}
	if err := s.favorites.Add(ctx, caller.ID, propertyID); err != nil {
		return wrapStoreError("add favorite", err)
	}

	s.logger.DebugContext(ctx, "favorite added",
		slog.String("user_id", caller.ID),
		slog.String("property_id", propertyID),
	)
	return nil
}

// Remove forgets a saved listing. ErrNotFound when it was not saved.
func (s *FavoriteService) Remove(ctx context.Context, caller *models.User, propertyID string) error {
	if err := s.favorites.Remove(ctx, caller.ID, propertyID); err != nil {
		return wrapStoreError("remove favorite", err)
	}
	return nil
}

// List pages through caller's saved listings with the usual filters and sort.
func (s *FavoriteService) List(ctx context.Context, caller *models.User, req models.QueryRequest) (models.QueryResult, error) {
	return s.listings.Query(ctx, req, models.ScopeFavorites, caller)
}
