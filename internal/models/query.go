package models

import (
	"math"
	"strings"
)

// SortKey is a listing column a query may be ordered by.
type SortKey string

const (
	SortByPropertyID       SortKey = "property_id"
	SortByTitle            SortKey = "title"
	SortByLocation         SortKey = "location"
	SortByPropertyType     SortKey = "property_type"
	SortByPrice            SortKey = "price"
	SortByStatus           SortKey = "status"
	SortByDateListed       SortKey = "date_listed"
	SortByPurchaseCategory SortKey = "purchase_category"
	SortByBedrooms         SortKey = "bedrooms"
	SortByBathrooms        SortKey = "bathrooms"
)

var sortKeys = map[SortKey]struct{}{
	SortByPropertyID:       {},
	SortByTitle:            {},
	SortByLocation:         {},
	SortByPropertyType:     {},
	SortByPrice:            {},
	SortByStatus:           {},
	SortByDateListed:       {},
	SortByPurchaseCategory: {},
	SortByBedrooms:         {},
	SortByBathrooms:        {},
}

// IsValid reports whether k is on the sort allow-list.
func (k SortKey) IsValid() bool {
	_, ok := sortKeys[k]
	return ok
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts asc/desc in any case; anything else yields def.
func ParseSortDirection(raw string, def SortDirection) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending":
		return SortAsc
	case "desc", "descending":
		return SortDesc
	}
	return def
}

type ListingSort struct {
	Key       SortKey
	Direction SortDirection
}

// DefaultListingSort orders newest listings first.
var DefaultListingSort = ListingSort{Key: SortByDateListed, Direction: SortDesc}

// WithKey returns s ordered by key, or s unchanged when key is not allow-listed.
func (s ListingSort) WithKey(key string) ListingSort {
	k := SortKey(strings.TrimSpace(key))
	if !k.IsValid() {
		return s
	}
	s.Key = k
	return s
}

// StatusAllSentinels mean "no status filter".
var StatusAllSentinels = []string{"all", "all statuses"}

// IsStatusAll reports whether status is one of the "no filter" sentinels.
func IsStatusAll(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, sentinel := range StatusAllSentinels {
		if s == sentinel {
			return true
		}
	}
	return false
}

// ListingFilter holds AND-combined listing predicates. Zero values mean no restriction.
type ListingFilter struct {
	Location         string
	PropertyType     string
	Subtype          string
	Bedrooms         *int
	Bathrooms        *int
	PurchaseCategory string
	MinPrice         *float64
	MaxPrice         *float64
	Status           string
	Statuses         []string
	AgentID          string
	AgencyID         string
	FavoritedBy      string
}

// HasPriceBound reports whether either price bound is set.
func (f ListingFilter) HasPriceBound() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

// Matches evaluates every predicate except FavoritedBy, which needs the
// favorites relation and is applied by the store.
func (f ListingFilter) Matches(l *Listing) bool {
	if f.Location != "" {
		needle := strings.ToLower(f.Location)
		if !strings.Contains(strings.ToLower(l.Location), needle) &&
			!strings.Contains(strings.ToLower(l.State), needle) {
			return false
		}
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.Subtype != "" && l.Subtype != f.Subtype {
		return false
	}
	if f.Bedrooms != nil && (l.Bedrooms == nil || *l.Bedrooms != *f.Bedrooms) {
		return false
	}
	if f.Bathrooms != nil && (l.Bathrooms == nil || *l.Bathrooms != *f.Bathrooms) {
		return false
	}
	if f.PurchaseCategory != "" && !strings.EqualFold(l.PurchaseCategory, f.PurchaseCategory) {
		return false
	}
	if f.HasPriceBound() {
		price, ok := l.NumericPrice()
		if !ok {
			return false
		}
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}
	if f.Status != "" && !IsStatusAll(f.Status) && l.Status != f.Status {
		return false
	}
	if len(f.Statuses) > 0 && !containsString(f.Statuses, l.Status) {
		return false
	}
	if f.AgentID != "" && l.AgentID != f.AgentID {
		return false
	}
	if f.AgencyID != "" && (l.AgencyID == nil || *l.AgencyID != f.AgencyID) {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// QueryRequest is a typed, validated listing query. Build it with a parse step,
// never from raw request input.
type QueryRequest struct {
	Filter ListingFilter
	Sort   ListingSort
	Page   int
	Limit  int
}

// Normalize clamps Page and Limit into range and resets an invalid sort.
func (q QueryRequest) Normalize(defaultLimit, maxLimit int) QueryRequest {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if !q.Sort.Key.IsValid() {
		q.Sort.Key = DefaultListingSort.Key
	}
	if q.Sort.Direction != SortAsc && q.Sort.Direction != SortDesc {
		q.Sort.Direction = DefaultListingSort.Direction
	}
	if IsStatusAll(q.Filter.Status) {
		q.Filter.Status = ""
	}
	return q
}

// Offset is the zero-based index of the first row on the requested page. A
// page too large to address saturates at math.MaxInt, which every store reads
// as past the end.
func (q QueryRequest) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// QueryResult is one page of listings plus the pre-pagination total.
type QueryResult struct {
	Items      []*Listing
	Total      int64
	TotalPages int
}

// NewQueryResult computes TotalPages as max(1, ceil(total/limit)).
func NewQueryResult(items []*Listing, total int64, limit int) QueryResult {
	if items == nil {
		items = []*Listing{}
	}
	return QueryResult{Items: items, Total: total, TotalPages: TotalPages(total, limit)}
}

// TotalPages returns max(1, ceil(total/limit)).
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		return 1
	}
	return pages
}
