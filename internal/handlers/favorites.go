package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/models"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// FavoriteService defines the saved-listing operations the HTTP layer needs
type FavoriteService interface {
	Add(ctx context.Context, caller *models.User, propertyID string) error
	Remove(ctx context.Context, caller *models.User, propertyID string) error
	List(ctx context.Context, caller *models.User, req models.QueryRequest) (models.QueryResult, error)
}

// FavoriteHandler handles the caller's saved listings
type FavoriteHandler struct {
	service FavoriteService
	logger  *slog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(service FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: service,
		logger:  logger,
	}
}

// ListFavouritesResponse is one page of saved listings
type ListFavouritesResponse struct {
	Favourites []*ListingResponse `json:"favourites"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"totalPages"`
}

// ListFavourites lists the caller's saved listings
//
// @Summary List saved listings
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 12)"
// @Produce json
// @Success 200 {object} ListFavouritesResponse
// @Failure 401 {object} ErrorResponse
// @Router /me/favourites [get]
func (h *FavoriteHandler) ListFavourites(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	result, err := h.service.List(r.Context(), caller, ParseListingQuery(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListFavouritesResponse{
		Favourites: listingsToResponse(result.Items),
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// AddFavourite saves a listing for the caller
//
// @Summary Save listing
// @Param id path string true "Property ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /me/favourites/{id} [post]
func (h *FavoriteHandler) AddFavourite(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := h.service.Add(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveFavourite forgets a saved listing
//
// @Summary Remove saved listing
// @Param id path string true "Property ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /me/favourites/{id} [delete]
func (h *FavoriteHandler) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := h.service.Remove(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
