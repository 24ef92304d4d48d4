package models

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ListingComparator orders listings in memory with the same semantics the SQL
// store uses. It holds a collator, which is not safe for concurrent use; build
// one per query.
type ListingComparator struct {
	sort     ListingSort
	collator *collate.Collator
}

// NewListingComparator builds a comparator for s using locale-aware string
// ordering for tag.
func NewListingComparator(s ListingSort, tag language.Tag) *ListingComparator {
	if !s.Key.IsValid() {
		s = DefaultListingSort
	}
	return &ListingComparator{
		sort:     s,
		collator: collate.New(tag, collate.IgnoreCase),
	}
}

// Less reports whether a sorts before b.
func (c *ListingComparator) Less(a, b *Listing) bool {
	return c.Compare(a, b) < 0
}

// Compare returns -1, 0 or 1. Ties on the sort key fall back to property_id ascending.
func (c *ListingComparator) Compare(a, b *Listing) int {
	if r := c.compareKey(a, b); r != 0 {
		return r
	}
	return strings.Compare(a.PropertyID, b.PropertyID)
}

func (c *ListingComparator) compareKey(a, b *Listing) int {
	desc := c.sort.Direction == SortDesc

	switch c.sort.Key {
	case SortByPrice:
		pa, okA := a.NumericPrice()
		pb, okB := b.NumericPrice()
		// unparseable prices sort last in both directions
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return directed(compareFloat(pa, pb), desc)
	case SortByBedrooms:
		return directed(compareNullableInt(a.Bedrooms, b.Bedrooms), desc)
	case SortByBathrooms:
		return directed(compareNullableInt(a.Bathrooms, b.Bathrooms), desc)
	case SortByDateListed:
		return directed(a.DateListed.Compare(b.DateListed), desc)
	default:
		return directed(c.compareStrings(stringField(a, c.sort.Key), stringField(b, c.sort.Key)), desc)
	}
}

// compareStrings collates a and b, then falls back to byte order so that
// values equal under the collator still have a fixed order. Text columns are
// never read as numbers: mixing the two readings is not transitive.
func (c *ListingComparator) compareStrings(a, b string) int {
	if r := c.collator.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

func stringField(l *Listing, key SortKey) string {
	switch key {
	case SortByPropertyID:
		return l.PropertyID
	case SortByTitle:
		return l.Title
	case SortByLocation:
		return l.Location
	case SortByPropertyType:
		return l.PropertyType
	case SortByStatus:
		return l.Status
	case SortByPurchaseCategory:
		return l.PurchaseCategory
	}
	return ""
}

// compareNullableInt treats nil as greater than every value.
func compareNullableInt(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func directed(r int, desc bool) int {
	if desc {
		return -r
	}
	return r
}
