package models

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func sortedIDs(listings []*Listing, s ListingSort) []string {
	cmp := NewListingComparator(s, language.English)
	out := append([]*Listing(nil), listings...)
	sort.SliceStable(out, func(i, j int) bool { return cmp.Less(out[i], out[j]) })

	ids := make([]string, len(out))
	for i, l := range out {
		ids[i] = l.PropertyID
	}
	return ids
}

func TestListingComparator_PriceNonNumericLast(t *testing.T) {
	listings := []*Listing{
		{PropertyID: "a-null", Price: nil},
		{PropertyID: "b-500", Price: strPtr("500")},
		{PropertyID: "c-na", Price: strPtr("N/A")},
		{PropertyID: "d-100", Price: strPtr("100")},
	}

	asc := sortedIDs(listings, ListingSort{Key: SortByPrice, Direction: SortAsc})
	assert.Equal(t, []string{"d-100", "b-500", "a-null", "c-na"}, asc)

	desc := sortedIDs(listings, ListingSort{Key: SortByPrice, Direction: SortDesc})
	assert.Equal(t, []string{"b-500", "d-100", "a-null", "c-na"}, desc)
}

func TestListingComparator_NullsMaximal(t *testing.T) {
	listings := []*Listing{
		{PropertyID: "p1", Bedrooms: intPtr(2)},
		{PropertyID: "p2", Bedrooms: nil},
		{PropertyID: "p3", Bedrooms: intPtr(4)},
	}

	assert.Equal(t, []string{"p1", "p3", "p2"}, sortedIDs(listings, ListingSort{Key: SortByBedrooms, Direction: SortAsc}))
	assert.Equal(t, []string{"p2", "p3", "p1"}, sortedIDs(listings, ListingSort{Key: SortByBedrooms, Direction: SortDesc}))
}

func TestListingComparator_TieBreakOnPropertyID(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	listings := []*Listing{
		{PropertyID: "p3", DateListed: day},
		{PropertyID: "p1", DateListed: day},
		{PropertyID: "p2", DateListed: day},
	}

	// property_id ascending regardless of direction
	assert.Equal(t, []string{"p1", "p2", "p3"}, sortedIDs(listings, ListingSort{Key: SortByDateListed, Direction: SortDesc}))
	assert.Equal(t, []string{"p1", "p2", "p3"}, sortedIDs(listings, ListingSort{Key: SortByDateListed, Direction: SortAsc}))
}

func TestListingComparator_LocaleAwareStrings(t *testing.T) {
	listings := []*Listing{
		{PropertyID: "p1", Title: "banana"},
		{PropertyID: "p2", Title: "Apple"},
		{PropertyID: "p3", Title: "Éclair"},
	}

	assert.Equal(t, []string{"p2", "p1", "p3"}, sortedIDs(listings, ListingSort{Key: SortByTitle, Direction: SortAsc}))
}

func TestListingComparator_InvalidSortFallsBackToDefault(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	listings := []*Listing{
		{PropertyID: "old", DateListed: older},
		{PropertyID: "new", DateListed: newer},
	}

	assert.Equal(t, []string{"new", "old"}, sortedIDs(listings, ListingSort{Key: "nope", Direction: SortAsc}))
}

func TestListingComparator_MixedDigitTitlesTotalOrder(t *testing.T) {
	titles := []string{"9", "10", "1a", "2b", "30", "300a", "7", "70x"}
	listings := make([]*Listing, len(titles))
	for i, title := range titles {
		listings[i] = &Listing{PropertyID: title, Title: title}
	}

	want := []string{"10", "1a", "2b", "30", "300a", "7", "70x", "9"}
	s := ListingSort{Key: SortByTitle, Direction: SortAsc}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		rng.Shuffle(len(listings), func(a, b int) { listings[a], listings[b] = listings[b], listings[a] })
		cmp := NewListingComparator(s, language.English)
		sort.Slice(listings, func(a, b int) bool { return cmp.Less(listings[a], listings[b]) })

		got := make([]string, len(listings))
		for j, l := range listings {
			got[j] = l.Title
		}
		assert.Equal(t, want, got, "shuffle %d", i)
	}
}

func TestListingComparator_StringKeyIsTransitive(t *testing.T) {
	cmp := NewListingComparator(ListingSort{Key: SortByLocation, Direction: SortAsc}, language.English)
	values := []string{"9", "10", "1a", "Lekki", "lekki", "Ikoyi 2", "Ikoyi 10", ""}

	for _, a := range values {
		for _, b := range values {
			la, lb := &Listing{PropertyID: "a", Location: a}, &Listing{PropertyID: "b", Location: b}
			ab := cmp.compareKey(la, lb)
			assert.Equal(t, -ab, cmp.compareKey(lb, la), "%q vs %q", a, b)
			for _, c := range values {
				lc := &Listing{PropertyID: "c", Location: c}
				if ab < 0 && cmp.compareKey(lb, lc) < 0 {
					assert.Negative(t, cmp.compareKey(la, lc), "%q < %q < %q", a, b, c)
				}
			}
		}
	}
}
