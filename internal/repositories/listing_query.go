package repositories

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/BradenHooton/realty/internal/models"
)

const listingColumns = `l.property_id, l.agent_id, l.agency_id, l.title, l.description, l.status,
	l.is_featured, l.featured_expires_at, l.purchase_category, l.price, l.location, l.state,
	l.property_type, l.subtype, l.bedrooms, l.bathrooms, l.date_listed, l.updated_at`

var sortColumns = map[models.SortKey]string{
	models.SortByPropertyID:       "l.property_id",
	models.SortByTitle:            "l.title",
	models.SortByLocation:         "l.location",
	models.SortByPropertyType:     "l.property_type",
	models.SortByPrice:            "l.price_numeric",
	models.SortByStatus:           "l.status",
	models.SortByDateListed:       "l.date_listed",
	models.SortByPurchaseCategory: "l.purchase_category",
	models.SortByBedrooms:         "l.bedrooms",
	models.SortByBathrooms:        "l.bathrooms",
}

// listingQuery accumulates WHERE conditions and their positional arguments.
type listingQuery struct {
	conds []string
	args  []any
}

func (q *listingQuery) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *listingQuery) where(cond string) {
	q.conds = append(q.conds, cond)
}

// uuidEquals adds column = value, or a never-true condition when value is not a uuid.
func (q *listingQuery) uuidEquals(column, value string) {
	if _, err := uuid.Parse(value); err != nil {
		q.where("FALSE")
		return
	}
	q.where(column + " = " + q.arg(value))
}

func (q *listingQuery) clause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

// escapeLike escapes LIKE wildcards so user input only matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func buildListingFilter(f models.ListingFilter) *listingQuery {
	q := &listingQuery{}

	if f.Location != "" {
		p := q.arg("%" + escapeLike(f.Location) + "%")
		q.where(fmt.Sprintf(`(l.location ILIKE %s ESCAPE '\' OR l.state ILIKE %s ESCAPE '\')`, p, p))
	}
	if f.PropertyType != "" {
		q.where("l.property_type = " + q.arg(f.PropertyType))
	}
	if f.Subtype != "" {
		q.where("l.subtype = " + q.arg(f.Subtype))
	}
	if f.Bedrooms != nil {
		q.where("l.bedrooms = " + q.arg(*f.Bedrooms))
	}
	if f.Bathrooms != nil {
		q.where("l.bathrooms = " + q.arg(*f.Bathrooms))
	}
	if f.PurchaseCategory != "" {
		q.where("LOWER(l.purchase_category) = LOWER(" + q.arg(f.PurchaseCategory) + ")")
	}
	if f.HasPriceBound() {
		q.where("l.price_numeric IS NOT NULL")
		if f.MinPrice != nil {
			q.where("l.price_numeric >= " + q.arg(*f.MinPrice))
		}
		if f.MaxPrice != nil {
			q.where("l.price_numeric <= " + q.arg(*f.MaxPrice))
		}
	}
	if f.Status != "" && !models.IsStatusAll(f.Status) {
		q.where("l.status = " + q.arg(f.Status))
	}
	if len(f.Statuses) > 0 {
		q.where("l.status = ANY(" + q.arg(pq.Array(f.Statuses)) + ")")
	}
	if f.AgentID != "" {
		q.uuidEquals("l.agent_id", f.AgentID)
	}
	if f.AgencyID != "" {
		q.uuidEquals("l.agency_id", f.AgencyID)
	}
	if f.FavoritedBy != "" {
		if _, err := uuid.Parse(f.FavoritedBy); err != nil {
			q.where("FALSE")
		} else {
			q.where("EXISTS (SELECT 1 FROM favorites f WHERE f.property_id = l.property_id AND f.user_id = " + q.arg(f.FavoritedBy) + ")")
		}
	}

	return q
}

// orderBy renders the ORDER BY clause. Unparseable prices sort last in both
// directions; other nulls are maximal. property_id breaks every tie.
func orderBy(s models.ListingSort) string {
	column, ok := sortColumns[s.Key]
	if !ok {
		s = models.DefaultListingSort
		column = sortColumns[s.Key]
	}

	var dir string
	switch {
	case s.Key == models.SortByPrice && s.Direction == models.SortDesc:
		dir = "DESC NULLS LAST"
	case s.Key == models.SortByPrice:
		dir = "ASC NULLS LAST"
	case s.Direction == models.SortAsc:
		dir = "ASC NULLS LAST"
	default:
		dir = "DESC NULLS FIRST"
	}

	if s.Key == models.SortByPropertyID {
		return fmt.Sprintf(" ORDER BY %s %s", column, dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, l.property_id ASC", column, dir)
}

// BuildListingQuery renders the count and page statements for req. Both share
// args; the page statement appends LIMIT and OFFSET.
func BuildListingQuery(req models.QueryRequest) (countSQL, pageSQL string, countArgs, pageArgs []any) {
	q := buildListingFilter(req.Filter)
	where := q.clause()

	countSQL = "SELECT COUNT(*) FROM listings l" + where
	countArgs = append([]any(nil), q.args...)

	limit := q.arg(req.Limit)
	offset := q.arg(req.Offset())
	pageSQL = "SELECT " + listingColumns + " FROM listings l" + where + orderBy(req.Sort) +
		" LIMIT " + limit + " OFFSET " + offset

	return countSQL, pageSQL, countArgs, q.args
}
