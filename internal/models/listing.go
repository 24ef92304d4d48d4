package models

import (
	"strconv"
	"strings"
	"time"
)

// Listing statuses
const (
	ListingStatusPending    = "pending"
	ListingStatusAvailable  = "available"
	ListingStatusUnderOffer = "under_offer"
	ListingStatusSold       = "sold"
	ListingStatusRejected   = "rejected"
	ListingStatusFeatured   = "featured"
)

// Purchase categories
const (
	PurchaseCategorySale     = "Sale"
	PurchaseCategoryRent     = "Rent"
	PurchaseCategoryLease    = "Lease"
	PurchaseCategoryShortLet = "Short Let"
	PurchaseCategoryLongLet  = "Long Let"
)

// PublicStatuses are the statuses visible to anonymous and client callers.
var PublicStatuses = []string{
	ListingStatusAvailable,
	ListingStatusUnderOffer,
	ListingStatusFeatured,
	ListingStatusSold,
}

// ModerationStatuses are the statuses an admin may set through moderation.
var ModerationStatuses = []string{
	ListingStatusPending,
	ListingStatusAvailable,
	ListingStatusUnderOffer,
	ListingStatusSold,
	ListingStatusRejected,
}

type Listing struct {
	PropertyID        string     `json:"property_id"`
	AgentID           string     `json:"agent_id"`
	AgencyID          *string    `json:"agency_id,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	IsFeatured        bool       `json:"is_featured"`
	FeaturedExpiresAt *time.Time `json:"featured_expires_at,omitempty"`
	PurchaseCategory  string     `json:"purchase_category"`
	Price             *string    `json:"price,omitempty"`
	Location          string     `json:"location"`
	State             string     `json:"state"`
	PropertyType      string     `json:"property_type"`
	Subtype           string     `json:"subtype,omitempty"`
	Bedrooms          *int       `json:"bedrooms,omitempty"`
	Bathrooms         *int       `json:"bathrooms,omitempty"`
	DateListed        time.Time  `json:"date_listed"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsActivelyFeatured reports whether the listing is featured and unexpired at now.
func (l *Listing) IsActivelyFeatured(now time.Time) bool {
	return l.IsFeatured && l.FeaturedExpiresAt != nil && l.FeaturedExpiresAt.After(now)
}

// Feature marks the listing featured until expiresAt. Both fields always move together.
func (l *Listing) Feature(expiresAt time.Time) {
	l.IsFeatured = true
	l.FeaturedExpiresAt = &expiresAt
}

// Unfeature clears the featured flag and its expiry together.
func (l *Listing) Unfeature() {
	l.IsFeatured = false
	l.FeaturedExpiresAt = nil
}

// NumericPrice returns the numeric reading of Price after stripping currency
// formatting. ok is false for a nil price or one with no parseable number.
func (l *Listing) NumericPrice() (float64, bool) {
	if l.Price == nil {
		return 0, false
	}
	return ParsePrice(*l.Price)
}

// ParsePrice strips everything except digits and '.' and parses the rest.
// It mirrors the price_numeric column expression in the listings table.
func ParsePrice(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if !priceShape(cleaned) {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// priceShape matches ^[0-9]+(\.[0-9]+)?$
func priceShape(s string) bool {
	intPart, frac, hasDot := strings.Cut(s, ".")
	if intPart == "" || !allDigits(intPart) {
		return false
	}
	if hasDot {
		return frac != "" && allDigits(frac)
	}
	return true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidListingStatus reports whether status is a known listing status.
func ValidListingStatus(status string) bool {
	switch status {
	case ListingStatusPending, ListingStatusAvailable, ListingStatusUnderOffer,
		ListingStatusSold, ListingStatusRejected, ListingStatusFeatured:
		return true
	}
	return false
}

// ValidModerationStatus reports whether an admin may set status through moderation.
func ValidModerationStatus(status string) bool {
	for _, s := range ModerationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidPurchaseCategory reports whether category is a known purchase category.
// Matching is case-insensitive, as it is for the purchase_category filter.
func ValidPurchaseCategory(category string) bool {
	switch strings.ToLower(category) {
	case strings.ToLower(PurchaseCategorySale), strings.ToLower(PurchaseCategoryRent),
		strings.ToLower(PurchaseCategoryLease), strings.ToLower(PurchaseCategoryShortLet),
		strings.ToLower(PurchaseCategoryLongLet):
		return true
	}
	return false
}

// ListingStats are the dashboard counts shown to admins.
type ListingStats struct {
	ByStatus       map[string]int64 `json:"by_status"`
	ActiveFeatured int64            `json:"active_featured"`
	Total          int64            `json:"total"`
}

// Favorite links a user to a listing they saved. Unique per (user, property).
type Favorite struct {
	UserID     string    `json:"user_id"`
	PropertyID string    `json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListingPatch carries the owner-editable fields of a listing. Nil fields are
// left unchanged. Status and featuring are not editable through a patch.
type ListingPatch struct {
	Title            *string
	Description      *string
	PurchaseCategory *string
	Price            *string
	Location         *string
	State            *string
	PropertyType     *string
	Subtype          *string
	Bedrooms         *int
	Bathrooms        *int
}

// Apply copies the non-nil fields of p onto l.
func (p ListingPatch) Apply(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.PurchaseCategory != nil {
		l.PurchaseCategory = *p.PurchaseCategory
	}
	if p.Price != nil {
		price := *p.Price
		l.Price = &price
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.State != nil {
		l.State = *p.State
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	if p.Subtype != nil {
		l.Subtype = *p.Subtype
	}
	if p.Bedrooms != nil {
		n := *p.Bedrooms
		l.Bedrooms = &n
	}
	if p.Bathrooms != nil {
		n := *p.Bathrooms
		l.Bathrooms = &n
	}
}

// OwnedBy reports whether user is the listing's agent.
func (l *Listing) OwnedBy(user *User) bool {
	return user != nil && l.AgentID == user.ID
}

// VisibleTo reports whether user may see the listing outside the public statuses.
func (l *Listing) VisibleTo(user *User) bool {
	if user.IsAdmin() || l.OwnedBy(user) {
		return true
	}
	for _, s := range PublicStatuses {
		if l.Status == s {
			return true
		}
	}
	return false
}
