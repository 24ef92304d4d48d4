package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/models"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// ListingService defines the listing operations the HTTP layer needs
type ListingService interface {
	Query(ctx context.Context, req models.QueryRequest, scope models.Scope, caller *models.User) (models.QueryResult, error)
	Get(ctx context.Context, propertyID string, caller *models.User) (*models.Listing, error)
	Create(ctx context.Context, caller *models.User, listing *models.Listing, ipAddress *string) (*models.Listing, error)
	Update(ctx context.Context, caller *models.User, propertyID string, patch models.ListingPatch) (*models.Listing, error)
	Delete(ctx context.Context, caller *models.User, propertyID string) error
	Feature(ctx context.Context, caller *models.User, propertyID string, days int, ipAddress *string) (*models.Listing, error)
	Unfeature(ctx context.Context, caller *models.User, propertyID string) (*models.Listing, error)
}

// ListingHandler handles listing HTTP requests
type ListingHandler struct {
	service   ListingService
	validator *Validator
	ipConfig  *pkghttp.IPConfig
	logger    *slog.Logger
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(service ListingService, validator *Validator, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		service:   service,
		validator: validator,
		ipConfig:  ipConfig,
		logger:    logger,
	}
}

// Request/Response DTOs

// CreateListingRequest represents the request body for creating a listing.
// Status is honoured for admins only.
type CreateListingRequest struct {
	Title            string  `json:"title" validate:"required,min=1,max=200"`
	Description      string  `json:"description" validate:"max=5000"`
	PurchaseCategory string  `json:"purchase_category" validate:"required,purchase_category"`
	Price            *string `json:"price" validate:"omitempty,price"`
	Location         string  `json:"location" validate:"required,min=1,max=200"`
	State            string  `json:"state" validate:"required,min=1,max=100"`
	PropertyType     string  `json:"property_type" validate:"required,min=1,max=100"`
	Subtype          string  `json:"subtype" validate:"max=100"`
	Bedrooms         *int    `json:"bedrooms" validate:"omitempty,gte=0,lte=100"`
	Bathrooms        *int    `json:"bathrooms" validate:"omitempty,gte=0,lte=100"`
	Status           string  `json:"status" validate:"omitempty,moderation_status"`
}

func (req *CreateListingRequest) toModel() *models.Listing {
	return &models.Listing{
		Title:            req.Title,
		Description:      req.Description,
		PurchaseCategory: req.PurchaseCategory,
		Price:            req.Price,
		Location:         req.Location,
		State:            req.State,
		PropertyType:     req.PropertyType,
		Subtype:          req.Subtype,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
		Status:           req.Status,
	}
}

// UpdateListingRequest represents the request body for updating a listing.
// Omitted fields are left unchanged.
type UpdateListingRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string `json:"description" validate:"omitempty,max=5000"`
	PurchaseCategory *string `json:"purchase_category" validate:"omitempty,purchase_category"`
	Price            *string `json:"price" validate:"omitempty,price"`
	Location         *string `json:"location" validate:"omitempty,min=1,max=200"`
	State            *string `json:"state" validate:"omitempty,min=1,max=100"`
	PropertyType     *string `json:"property_type" validate:"omitempty,min=1,max=100"`
	Subtype          *string `json:"subtype" validate:"omitempty,max=100"`
	Bedrooms         *int    `json:"bedrooms" validate:"omitempty,gte=0,lte=100"`
	Bathrooms        *int    `json:"bathrooms" validate:"omitempty,gte=0,lte=100"`
}

func (req *UpdateListingRequest) toPatch() models.ListingPatch {
	return models.ListingPatch{
		Title:            req.Title,
		Description:      req.Description,
		PurchaseCategory: req.PurchaseCategory,
		Price:            req.Price,
		Location:         req.Location,
		State:            req.State,
		PropertyType:     req.PropertyType,
		Subtype:          req.Subtype,
		Bedrooms:         req.Bedrooms,
		Bathrooms:        req.Bathrooms,
	}
}

// FeatureListingRequest represents the request body for featuring a listing.
// Zero or an omitted body means the default duration.
type FeatureListingRequest struct {
	Days int `json:"days" validate:"gte=0"`
}

// ListingResponse represents a listing in the HTTP response
type ListingResponse struct {
	PropertyID        string  `json:"property_id"`
	AgentID           string  `json:"agent_id"`
	AgencyID          *string `json:"agency_id,omitempty"`
	Title             string  `json:"title"`
	Description       string  `json:"description,omitempty"`
	Status            string  `json:"status"`
	IsFeatured        bool    `json:"is_featured"`
	FeaturedExpiresAt *string `json:"featured_expires_at,omitempty"`
	PurchaseCategory  string  `json:"purchase_category"`
	Price             *string `json:"price,omitempty"`
	Location          string  `json:"location"`
	State             string  `json:"state"`
	PropertyType      string  `json:"property_type"`
	Subtype           string  `json:"subtype,omitempty"`
	Bedrooms          *int    `json:"bedrooms,omitempty"`
	Bathrooms         *int    `json:"bathrooms,omitempty"`
	DateListed        string  `json:"date_listed"`
	UpdatedAt         string  `json:"updated_at"`
}

// ListListingsResponse is one page of listings
type ListListingsResponse struct {
	Listings   []*ListingResponse `json:"listings"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"totalPages"`
}

// listingModelToResponse converts a listing model to a response DTO
func listingModelToResponse(l *models.Listing) *ListingResponse {
	resp := &ListingResponse{
		PropertyID:       l.PropertyID,
		AgentID:          l.AgentID,
		AgencyID:         l.AgencyID,
		Title:            l.Title,
		Description:      l.Description,
		Status:           l.Status,
		IsFeatured:       l.IsFeatured,
		PurchaseCategory: l.PurchaseCategory,
		Price:            l.Price,
		Location:         l.Location,
		State:            l.State,
		PropertyType:     l.PropertyType,
		Subtype:          l.Subtype,
		Bedrooms:         l.Bedrooms,
		Bathrooms:        l.Bathrooms,
		DateListed:       l.DateListed.Format(time.RFC3339),
		UpdatedAt:        l.UpdatedAt.Format(time.RFC3339),
	}
	if l.FeaturedExpiresAt != nil {
		expires := l.FeaturedExpiresAt.Format(time.RFC3339)
		resp.FeaturedExpiresAt = &expires
	}
	return resp
}

func listingsToResponse(items []*models.Listing) []*ListingResponse {
	out := make([]*ListingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, listingModelToResponse(l))
	}
	return out
}

// SearchListings lists publicly visible listings
//
// @Summary Search listings
// @Param search query string false "Location or state substring"
// @Param sort query string false "Sort key"
// @Param direction query string false "asc or desc"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Produce json
// @Success 200 {object} ListListingsResponse
// @Failure 500 {object} ErrorResponse
// @Router /listings [get]
func (h *ListingHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.ScopePublic)
}

// ListAgentListings lists the caller's own listings in every status
//
// @Summary List my listings
// @Produce json
// @Success 200 {object} ListListingsResponse
// @Failure 401 {object} ErrorResponse
// @Router /agent/listings [get]
func (h *ListingHandler) ListAgentListings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.ScopeAgent)
}

// ListAgencyListings lists every listing of the caller's agency
//
// @Summary List agency listings
// @Produce json
// @Success 200 {object} ListListingsResponse
// @Failure 403 {object} ErrorResponse
// @Router /agency/listings [get]
func (h *ListingHandler) ListAgencyListings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.ScopeAgency)
}

// ListAdminListings lists every listing
//
// @Summary List all listings
// @Produce json
// @Success 200 {object} ListListingsResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/listings [get]
func (h *ListingHandler) ListAdminListings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.ScopeAdmin)
}

func (h *ListingHandler) list(w http.ResponseWriter, r *http.Request, scope models.Scope) {
	req := ParseListingQuery(r.URL.Query())

	result, err := h.service.Query(r.Context(), req, scope, auth.GetUserFromContext(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListListingsResponse{
		Listings:   listingsToResponse(result.Items),
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// GetListing retrieves a listing by ID
//
// @Summary Get listing by ID
// @Param id path string true "Property ID"
// @Produce json
// @Success 200 {object} ListingResponse
// @Failure 404 {object} ErrorResponse
// @Router /listings/{id} [get]
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		pkghttp.WriteBadRequest(w, "listing ID is required")
		return
	}

	listing, err := h.service.Get(r.Context(), propertyID, auth.GetUserFromContext(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, listingModelToResponse(listing))
}

// CreateListing creates a listing owned by the caller
//
// @Summary Create listing
// @Accept json
// @Produce json
// @Param body body CreateListingRequest true "Listing"
// @Success 201 {object} ListingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /listings [post]
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req CreateListingRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.validator.ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), caller, req.toModel(), pkghttp.ClientIPPtr(r, h.ipConfig))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, listingModelToResponse(created))
}

// UpdateListing updates the editable fields of a listing
//
// @Summary Update listing
// @Param id path string true "Property ID"
// @Accept json
// @Produce json
// @Param body body UpdateListingRequest true "Fields to change"
// @Success 200 {object} ListingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /listings/{id} [put]
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}
	propertyID := chi.URLParam(r, "id")

	var req UpdateListingRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.validator.ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), caller, propertyID, req.toPatch())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, listingModelToResponse(updated))
}

// DeleteListing removes a listing
//
// @Summary Delete listing
// @Param id path string true "Property ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /listings/{id} [delete]
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FeatureListing features the caller's listing for a number of days
//
// @Summary Feature listing
// @Param id path string true "Property ID"
// @Accept json
// @Produce json
// @Param body body FeatureListingRequest false "Duration"
// @Success 200 {object} ListingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /listings/{id}/feature [post]
func (h *ListingHandler) FeatureListing(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req FeatureListingRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.validator.ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	featured, err := h.service.Feature(r.Context(), caller, chi.URLParam(r, "id"), req.Days, pkghttp.ClientIPPtr(r, h.ipConfig))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, listingModelToResponse(featured))
}

// UnfeatureListing clears a listing's featured period
//
// @Summary Unfeature listing
// @Param id path string true "Property ID"
// @Produce json
// @Success 200 {object} ListingResponse
// @Failure 403 {object} ErrorResponse
// @Router /listings/{id}/feature [delete]
func (h *ListingHandler) UnfeatureListing(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetUserFromContext(r)
	if caller == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	listing, err := h.service.Unfeature(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, listingModelToResponse(listing))
}
