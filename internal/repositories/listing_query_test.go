package repositories

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/realty/internal/models"
)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

const agentUUID = "7a1f6e3c-2b1d-4c55-9a0e-0d6f3b8b2c11"

func TestBuildListingQuery_NoFilters(t *testing.T) {
	req := models.QueryRequest{Sort: models.DefaultListingSort, Page: 1, Limit: 20}

	countSQL, pageSQL, countArgs, pageArgs := BuildListingQuery(req)

	assert.Equal(t, "SELECT COUNT(*) FROM listings l", countSQL)
	assert.Empty(t, countArgs)
	assert.Contains(t, pageSQL, "ORDER BY l.date_listed DESC NULLS FIRST, l.property_id ASC")
	assert.True(t, strings.HasSuffix(pageSQL, "LIMIT $1 OFFSET $2"))
	assert.Equal(t, []any{20, 0}, pageArgs)
}

func TestBuildListingQuery_HugePageOffsetNeverNegative(t *testing.T) {
	req := models.QueryRequest{Page: 461168601842738792, Limit: 20}.Normalize(20, 100)

	_, _, _, pageArgs := BuildListingQuery(req)

	assert.Equal(t, []any{20, math.MaxInt}, pageArgs)
}

func TestBuildListingQuery_AllFilters(t *testing.T) {
	req := models.QueryRequest{
		Filter: models.ListingFilter{
			Location:         "50%_off",
			PropertyType:     "Apartment",
			Subtype:          "Studio",
			Bedrooms:         intPtr(2),
			Bathrooms:        intPtr(1),
			PurchaseCategory: "rent",
			MinPrice:         floatPtr(100),
			MaxPrice:         floatPtr(900),
			Status:           "available",
			Statuses:         models.PublicStatuses,
			AgentID:          agentUUID,
			FavoritedBy:      agentUUID,
		},
		Sort:  models.ListingSort{Key: models.SortByPrice, Direction: models.SortAsc},
		Page:  3,
		Limit: 10,
	}

	countSQL, pageSQL, countArgs, pageArgs := BuildListingQuery(req)

	assert.Contains(t, countSQL, `(l.location ILIKE $1 ESCAPE '\' OR l.state ILIKE $1 ESCAPE '\')`)
	assert.Equal(t, `%50\%\_off%`, countArgs[0])
	assert.Contains(t, countSQL, "l.property_type = $2")
	assert.Contains(t, countSQL, "l.subtype = $3")
	assert.Contains(t, countSQL, "l.bedrooms = $4")
	assert.Contains(t, countSQL, "l.bathrooms = $5")
	assert.Contains(t, countSQL, "LOWER(l.purchase_category) = LOWER($6)")
	assert.Contains(t, countSQL, "l.price_numeric IS NOT NULL")
	assert.Contains(t, countSQL, "l.price_numeric >= $7")
	assert.Contains(t, countSQL, "l.price_numeric <= $8")
	assert.Contains(t, countSQL, "l.status = $9")
	assert.Contains(t, countSQL, "l.status = ANY($10)")
	assert.Contains(t, countSQL, "l.agent_id = $11")
	assert.Contains(t, countSQL, "f.user_id = $12")
	assert.Len(t, countArgs, 12)

	assert.Contains(t, pageSQL, "ORDER BY l.price_numeric ASC NULLS LAST, l.property_id ASC")
	assert.True(t, strings.HasSuffix(pageSQL, "LIMIT $13 OFFSET $14"))
	assert.Equal(t, 10, pageArgs[12])
	assert.Equal(t, 20, pageArgs[13])
}

func TestBuildListingQuery_StatusSentinelIgnored(t *testing.T) {
	for _, status := range []string{"all", "All Statuses"} {
		req := models.QueryRequest{
			Filter: models.ListingFilter{Status: status},
			Sort:   models.DefaultListingSort,
			Page:   1,
			Limit:  10,
		}
		countSQL, _, _, _ := BuildListingQuery(req)
		assert.Equal(t, "SELECT COUNT(*) FROM listings l", countSQL, "status=%q", status)
	}
}

func TestBuildListingQuery_InvalidUUIDMatchesNothing(t *testing.T) {
	req := models.QueryRequest{
		Filter: models.ListingFilter{AgencyID: "not-a-uuid"},
		Sort:   models.DefaultListingSort,
		Page:   1,
		Limit:  10,
	}

	countSQL, _, countArgs, _ := BuildListingQuery(req)

	assert.Equal(t, "SELECT COUNT(*) FROM listings l WHERE FALSE", countSQL)
	assert.Empty(t, countArgs)
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		sort models.ListingSort
		want string
	}{
		{models.ListingSort{Key: models.SortByPrice, Direction: models.SortDesc}, " ORDER BY l.price_numeric DESC NULLS LAST, l.property_id ASC"},
		{models.ListingSort{Key: models.SortByBedrooms, Direction: models.SortAsc}, " ORDER BY l.bedrooms ASC NULLS LAST, l.property_id ASC"},
		{models.ListingSort{Key: models.SortByTitle, Direction: models.SortDesc}, " ORDER BY l.title DESC NULLS FIRST, l.property_id ASC"},
		{models.ListingSort{Key: models.SortByPropertyID, Direction: models.SortAsc}, " ORDER BY l.property_id ASC NULLS LAST"},
		{models.ListingSort{Key: "drop table", Direction: models.SortAsc}, " ORDER BY l.date_listed DESC NULLS FIRST, l.property_id ASC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, orderBy(tt.sort))
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "lekki", escapeLike("lekki"))
}
