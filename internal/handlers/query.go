package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/BradenHooton/realty/internal/models"
)

// ParseListingQuery turns raw query-string parameters into a typed listing
// query. It never fails: malformed numbers are dropped, an unknown sort key
// keeps the default order and a missing limit is left at zero so the caller's
// per-view default applies later.
func ParseListingQuery(values url.Values) models.QueryRequest {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(values.Get(k)); v != "" {
				return v
			}
		}
		return ""
	}

	filter := models.ListingFilter{
		Location:         get("search", "location"),
		PropertyType:     get("propertyType", "property_type"),
		Subtype:          get("subtype"),
		Bedrooms:         parseIntPtr(get("bedrooms")),
		Bathrooms:        parseIntPtr(get("bathrooms")),
		PurchaseCategory: get("purchase_category", "purchaseCategory"),
		MinPrice:         parsePricePtr(get("min_price", "minPrice")),
		MaxPrice:         parsePricePtr(get("max_price", "maxPrice")),
		Status:           get("status"),
		AgentID:          get("agent_id"),
		AgencyID:         get("agency_id"),
	}
	if models.IsStatusAll(filter.Status) {
		filter.Status = ""
	}

	sort := models.DefaultListingSort
	if key := get("sort"); models.SortKey(key).IsValid() {
		// an explicit sort key reads ascending unless told otherwise
		sort = sort.WithKey(key)
		sort.Direction = models.SortAsc
	}
	sort.Direction = models.ParseSortDirection(get("direction", "order"), sort.Direction)

	return models.QueryRequest{
		Filter: filter,
		Sort:   sort,
		Page:   parseIntDefault(get("page"), 1),
		Limit:  parseIntDefault(get("limit"), 0),
	}
}

func parseIntPtr(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// parsePricePtr accepts the same formatted amounts listings carry ("$1,200").
func parsePricePtr(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, ok := models.ParsePrice(raw)
	if !ok {
		return nil
	}
	return &v
}

func parseIntDefault(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
